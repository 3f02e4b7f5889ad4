package handler

import (
	"net/http"

	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/cleberrangel/diane-api/internal/service"
	"github.com/gin-gonic/gin"
)

// BrainDumpHandler saves processed brain dumps
type BrainDumpHandler struct {
	dumps *service.BrainDumpService
}

// NewBrainDumpHandler creates a new brain dump handler
func NewBrainDumpHandler(dumps *service.BrainDumpService) *BrainDumpHandler {
	return &BrainDumpHandler{dumps: dumps}
}

// Save stores every record of a processed brain dump in one transaction
// @Summary      Save brain dump
// @Tags         brain-dumps
// @Accept       json
// @Produce      json
// @Param        request body model.BrainDumpRequest true "Processed brain dump"
// @Success      201 {object} model.Response
// @Failure      400 {object} model.ErrorResponse
// @Router       /api/brain-dumps [post]
func (h *BrainDumpHandler) Save(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}

	var req model.BrainDumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_INPUT", err)
		return
	}

	resp, err := h.dumps.Save(c.Request.Context(), session.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, resp)
}
