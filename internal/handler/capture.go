package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cleberrangel/diane-api/internal/middleware"
	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/cleberrangel/diane-api/internal/service"
	"github.com/gin-gonic/gin"
)

// CaptureHandler exposes the quick-capture form of the current session
type CaptureHandler struct {
	captures *service.CaptureService
}

// NewCaptureHandler creates a new capture handler
func NewCaptureHandler(captures *service.CaptureService) *CaptureHandler {
	return &CaptureHandler{captures: captures}
}

// Get returns the form state and draft
// @Summary      Capture form state
// @Tags         capture
// @Produce      json
// @Success      200 {object} model.Response
// @Router       /api/capture [get]
func (h *CaptureHandler) Get(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, h.captures.Snapshot(session))
}

// SaveDraft replaces the draft text. Rejected with 409 while submitting.
// @Summary      Save capture draft
// @Tags         capture
// @Accept       json
// @Produce      json
// @Param        request body model.DraftRequest true "Draft"
// @Success      200 {object} model.Response
// @Failure      409 {object} model.ErrorResponse
// @Router       /api/capture/draft [put]
func (h *CaptureHandler) SaveDraft(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}

	var req model.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_INPUT", err)
		return
	}

	snapshot, err := h.captures.SaveDraft(session, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, snapshot)
}

// Submit sets the input when text is given and submits the form
// @Summary      Submit quick capture
// @Tags         capture
// @Accept       json
// @Produce      json
// @Param        request body model.CaptureRequest false "Capture"
// @Success      200 {object} model.Response
// @Failure      409 {object} model.ErrorResponse
// @Failure      502 {object} model.Response
// @Router       /api/capture [post]
func (h *CaptureHandler) Submit(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}

	var req model.CaptureRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "INVALID_INPUT", err)
			return
		}
	}

	result, err := h.captures.Submit(c.Request.Context(), session, req.Text)
	if result != nil {
		middleware.SetCaptureID(c, result.CaptureID)
	}
	if errors.Is(err, service.ErrCaptureFailed) && result != nil {
		// A falha volta com a notificação de erro e o texto preservado
		c.JSON(http.StatusBadGateway, model.Response{
			Success: false,
			Data:    result,
			Message: result.Notification.Message,
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}

// History lists the latest submissions of the user
// @Summary      Capture history
// @Tags         capture
// @Produce      json
// @Param        limit query int false "Max records (default 50)"
// @Success      200 {object} model.Response
// @Router       /api/captures [get]
func (h *CaptureHandler) History(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}

	limit := service.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > 200 {
			badRequest(c, "INVALID_LIMIT", errors.New("limit must be between 1 and 200"))
			return
		}
		limit = v
	}

	records, err := h.captures.History(c.Request.Context(), session.UserID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, records, len(records))
}
