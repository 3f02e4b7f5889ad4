package handler

import (
	"net/http"

	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/cleberrangel/diane-api/internal/service"
	"github.com/gin-gonic/gin"
)

// CalendarHandler handles calendar event endpoints
type CalendarHandler struct {
	events *service.CalendarService
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(events *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{events: events}
}

// List returns events ordered by date then time
// @Summary      List calendar events
// @Tags         calendar
// @Produce      json
// @Param        start_date query string false "YYYY-MM-DD, inclusive"
// @Param        end_date query string false "YYYY-MM-DD, inclusive"
// @Success      200 {object} model.Response
// @Failure      400 {object} model.ErrorResponse
// @Router       /api/calendar [get]
func (h *CalendarHandler) List(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}

	var filter model.CalendarFilter
	if v, ok := c.GetQuery("start_date"); ok {
		filter.StartDate = &v
	}
	if v, ok := c.GetQuery("end_date"); ok {
		filter.EndDate = &v
	}

	events, err := h.events.List(c.Request.Context(), session.UserID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, events, len(events))
}

// Create creates an event
func (h *CalendarHandler) Create(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}

	var req model.CalendarEventCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_INPUT", err)
		return
	}

	event, err := h.events.Create(c.Request.Context(), session.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, event)
}

// Update partially updates an event. An empty event_time clears it.
func (h *CalendarHandler) Update(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req model.CalendarEventUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_INPUT", err)
		return
	}

	event, err := h.events.Update(c.Request.Context(), session.UserID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, event)
}

// Delete removes an event
func (h *CalendarHandler) Delete(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.events.Delete(c.Request.Context(), session.UserID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Response{Success: true, Message: "Event deleted"})
}
