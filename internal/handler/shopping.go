package handler

import (
	"net/http"

	"github.com/cleberrangel/diane-api/internal/metrics"
	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/cleberrangel/diane-api/internal/service"
	"github.com/gin-gonic/gin"
)

// ShoppingHandler handles the shopping list endpoints
type ShoppingHandler struct {
	items *service.ShoppingService
	excel *service.ExcelGenerator
}

// NewShoppingHandler creates a new shopping handler
func NewShoppingHandler(items *service.ShoppingService, excel *service.ExcelGenerator) *ShoppingHandler {
	return &ShoppingHandler{items: items, excel: excel}
}

// List returns the user's shopping items, newest first
// @Summary      List shopping items
// @Tags         shopping
// @Produce      json
// @Param        completed query bool false "Filter by completion"
// @Success      200 {object} model.Response
// @Router       /api/shopping-items [get]
func (h *ShoppingHandler) List(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	completed, ok := queryBool(c, "completed")
	if !ok {
		return
	}

	items, err := h.items.List(c.Request.Context(), session.UserID, completed)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, items, len(items))
}

// Create adds a shopping item
func (h *ShoppingHandler) Create(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}

	var req model.ShoppingItemCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_INPUT", err)
		return
	}

	item, err := h.items.Create(c.Request.Context(), session.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, item)
}

// Update partially updates a shopping item
func (h *ShoppingHandler) Update(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req model.ShoppingItemUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_INPUT", err)
		return
	}

	item, err := h.items.Update(c.Request.Context(), session.UserID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, item)
}

// Delete removes a shopping item
func (h *ShoppingHandler) Delete(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.items.Delete(c.Request.Context(), session.UserID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Response{Success: true, Message: "Item deleted"})
}

// Export downloads the shopping list as XLSX
// @Summary      Export shopping list
// @Tags         shopping
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200 {file} file
// @Router       /api/shopping-items/export [get]
func (h *ShoppingHandler) Export(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	completed, ok := queryBool(c, "completed")
	if !ok {
		return
	}

	items, err := h.items.List(c.Request.Context(), session.UserID, completed)
	if err != nil {
		respondError(c, err)
		return
	}

	buf, err := h.excel.ShoppingItems(items)
	metrics.Get().IncrementExport(err == nil)
	if err != nil {
		respondError(c, err)
		return
	}

	sendWorkbook(c, "shopping", buf.Bytes(), len(items))
}
