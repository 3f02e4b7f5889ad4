package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cleberrangel/diane-api/internal/logger"
	"github.com/cleberrangel/diane-api/internal/metrics"
	"github.com/cleberrangel/diane-api/internal/middleware"
	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/cleberrangel/diane-api/internal/service"
	"github.com/gin-gonic/gin"
)

// TaskHandler handles task and subtask endpoints
type TaskHandler struct {
	tasks *service.TaskService
	excel *service.ExcelGenerator
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(tasks *service.TaskService, excel *service.ExcelGenerator) *TaskHandler {
	return &TaskHandler{tasks: tasks, excel: excel}
}

// List returns the user's tasks
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Param        completed query bool false "Filter by completion"
// @Param        sort_by query string false "created_at (default) or due_date"
// @Success      200 {object} model.Response
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	completed, ok := queryBool(c, "completed")
	if !ok {
		return
	}

	tasks, err := h.tasks.List(c.Request.Context(), session.UserID, model.TaskFilter{
		Completed: completed,
		SortBy:    model.TaskSort(c.Query("sort_by")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, tasks, len(tasks))
}

// Get returns one task with its subtasks
func (h *TaskHandler) Get(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), session.UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, task)
}

// Create creates a task and its subtasks
// @Summary      Create task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        request body model.TaskCreateRequest true "Task"
// @Success      201 {object} model.Response
// @Failure      400 {object} model.ErrorResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}

	var req model.TaskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_INPUT", err)
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), session.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, task)
}

// Update partially updates a task. An empty due_date clears it.
func (h *TaskHandler) Update(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req model.TaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_INPUT", err)
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), session.UserID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, task)
}

// Delete removes a task and its subtasks
func (h *TaskHandler) Delete(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), session.UserID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Response{Success: true, Message: "Task deleted"})
}

// UpdateSubtask partially updates one subtask of a task
func (h *TaskHandler) UpdateSubtask(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	subtaskID, ok := pathID(c, "subtask_id")
	if !ok {
		return
	}

	var req model.SubTaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_INPUT", err)
		return
	}

	subtask, err := h.tasks.UpdateSubtask(c.Request.Context(), session.UserID, taskID, subtaskID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, subtask)
}

// DeleteSubtask removes one subtask
func (h *TaskHandler) DeleteSubtask(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	subtaskID, ok := pathID(c, "subtask_id")
	if !ok {
		return
	}

	if err := h.tasks.DeleteSubtask(c.Request.Context(), session.UserID, taskID, subtaskID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Response{Success: true, Message: "Subtask deleted"})
}

// Export downloads the user's tasks as XLSX
// @Summary      Export tasks
// @Tags         tasks
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200 {file} file
// @Router       /api/tasks/export [get]
func (h *TaskHandler) Export(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	completed, ok := queryBool(c, "completed")
	if !ok {
		return
	}

	tasks, err := h.tasks.List(c.Request.Context(), session.UserID, model.TaskFilter{
		Completed: completed,
		SortBy:    model.TaskSort(c.Query("sort_by")),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	buf, err := h.excel.Tasks(tasks)
	metrics.Get().IncrementExport(err == nil)
	if err != nil {
		respondError(c, err)
		return
	}

	sendWorkbook(c, "tasks", buf.Bytes(), len(tasks))
}

// sendWorkbook escreve a planilha como anexo e registra a auditoria
func sendWorkbook(c *gin.Context, resource string, data []byte, rows int) {
	filename := middleware.SanitizeFilename(fmt.Sprintf("%s-%s.xlsx", resource, time.Now().Format("2006-01-02")))

	logger.Audit(c.Request.Context(), logger.AuditEvent{
		Action:   logger.AuditActionExportDownload,
		Resource: resource,
		ClientIP: c.ClientIP(),
		Success:  true,
		Details:  map[string]interface{}{"rows": rows, "bytes": len(data)},
	})

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, service.XLSXContentType, data)
}
