package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/todo-api/internal/api/metrics"
	"github.com/taskflow/todo-api/internal/core/ports"
)

// TaskHandler serves the per-user task endpoints. Every route sits behind the
// Auth middleware and is scoped to its subject.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Add handles POST /task/addTask.
//
// @Summary      Create a task
// @Tags         task
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      taskRequest  true  "Task fields"
// @Success      201   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /task/addTask [post]
func (h *TaskHandler) Add(c echo.Context) error {
	userID, err := ctxSubject(c)
	if err != nil {
		return err
	}
	var req taskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.service.Create(c.Request().Context(), userID, toTaskInput(req))
	if err != nil {
		return err
	}
	metrics.TasksMutationsTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

// List handles GET /task/getTask.
//
// @Summary      List the caller's tasks
// @Tags         task
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  taskListResponse
// @Failure      401  {object}  errorResponse
// @Router       /task/getTask [get]
func (h *TaskHandler) List(c echo.Context) error {
	userID, err := ctxSubject(c)
	if err != nil {
		return err
	}

	tasks, err := h.service.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskList(tasks))
}

// Edit handles PUT /task/editTask.
//
// @Summary      Update a task
// @Tags         task
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      editTaskRequest  true  "Task id and new fields"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /task/editTask [put]
func (h *TaskHandler) Edit(c echo.Context) error {
	userID, err := ctxSubject(c)
	if err != nil {
		return err
	}
	var req editTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.service.Update(c.Request().Context(), userID, req.ID, toEditInput(req))
	if err != nil {
		return err
	}
	metrics.TasksMutationsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Remove handles DELETE /task/removeTask/:id.
//
// @Summary      Delete a task
// @Tags         task
// @Security     BearerAuth
// @Param        id   path  string  true  "Task id"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /task/removeTask/{id} [delete]
func (h *TaskHandler) Remove(c echo.Context) error {
	userID, err := ctxSubject(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	metrics.TasksMutationsTotal.WithLabelValues("delete").Inc()
	return c.NoContent(http.StatusNoContent)
}
