package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cleberrangel/diane-api/internal/capture"
	"github.com/cleberrangel/diane-api/internal/logger"
	"github.com/cleberrangel/diane-api/internal/middleware"
	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/cleberrangel/diane-api/internal/service"
	"github.com/gin-gonic/gin"
)

// errorMapping associa um erro de serviço a um status HTTP
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{model.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "Resource not found"},
	{service.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND", "User not found"},
	{service.ErrNotAuthorized, http.StatusUnauthorized, "SESSION_NOT_FOUND", "Not authenticated"},
	{model.ErrUnauthorized, http.StatusUnauthorized, "SESSION_INVALID", "Session invalid or expired"},
	{capture.ErrSubmitting, http.StatusConflict, "CAPTURE_BUSY", "A capture is already being submitted"},
	{model.ErrConflict, http.StatusConflict, "CONFLICT", "Operation in progress"},
	{model.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests"},
	{service.ErrCaptureFailed, http.StatusBadGateway, "CAPTURE_FAILED", "Couldn't create task"},
	{service.ErrInvalidEmail, http.StatusBadRequest, "INVALID_EMAIL", "Invalid email"},
	{service.ErrInvalidDate, http.StatusBadRequest, "INVALID_DATE", "Invalid date, use YYYY-MM-DD"},
	{service.ErrInvalidTime, http.StatusBadRequest, "INVALID_TIME", "Invalid time, use HH:MM or HH:MM:SS"},
	{service.ErrInvalidRange, http.StatusBadRequest, "INVALID_RANGE", "start_date is after end_date"},
	{service.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT", "Capture text is too long or not valid text"},
	{service.ErrEmptyInput, http.StatusBadRequest, "EMPTY_INPUT", "Description must not be empty"},
	{service.ErrInvalidSort, http.StatusBadRequest, "INVALID_SORT", "sort_by must be created_at or due_date"},
}

// respondError traduz err para o envelope de erro padrão
func respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			resp := model.ErrorResponse{Error: m.message, Code: m.code}
			if m.status == http.StatusBadRequest {
				resp.Details = err.Error()
			}
			c.JSON(m.status, resp)
			return
		}
	}

	logger.FromGin(c).Error().Err(err).
		Str("path", c.FullPath()).
		Msg("Erro interno")
	c.JSON(http.StatusInternalServerError, model.ErrorResponse{
		Error: "Internal server error",
		Code:  "INTERNAL_ERROR",
	})
}

// badRequest responde 400 para corpo ou parâmetros inválidos
func badRequest(c *gin.Context, code string, err error) {
	resp := model.ErrorResponse{Error: "Invalid request", Code: code}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

// sessionOrAbort devolve a sessão da requisição ou responde 401
func sessionOrAbort(c *gin.Context) (*middleware.Session, bool) {
	session := middleware.CurrentSession(c)
	if session == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
			Error: "Not authenticated",
			Code:  "SESSION_NOT_FOUND",
		})
		return nil, false
	}
	return session, true
}

// pathID lê um id numérico positivo da rota
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "Invalid " + name,
			Code:    "INVALID_ID",
			Details: c.Param(name),
		})
		return 0, false
	}
	return id, true
}

// queryBool lê um filtro booleano opcional
func queryBool(c *gin.Context, name string) (*bool, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "Invalid " + name + " filter",
			Code:    "INVALID_FILTER",
			Details: raw,
		})
		return nil, false
	}
	return &v, true
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, model.Response{Success: true, Data: data})
}

func respondList(c *gin.Context, data interface{}, total int) {
	c.JSON(http.StatusOK, model.Response{Success: true, Data: data, Meta: &model.Meta{Total: total}})
}
