package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mek0124/TrackMasterPro/internal/models"
	"github.com/mek0124/TrackMasterPro/internal/realtime"
	"github.com/mek0124/TrackMasterPro/internal/services"
)

type taskResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Detail    string    `json:"detail"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Completed bool      `json:"completed"`
	Priority  string    `json:"priority"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newTaskResponse(task *models.Task) taskResponse {
	return taskResponse{
		ID:        task.ID,
		Title:     task.Title,
		Detail:    task.Detail,
		Date:      task.Date,
		Time:      task.Time,
		Completed: task.Completed,
		Priority:  task.Priority,
		UserID:    task.UserID,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
}

type taskEvent struct {
	Type string       `json:"type"`
	Task taskResponse `json:"task"`
}

type taskDeletedEvent struct {
	Type   string `json:"type"`
	TaskID int64  `json:"task_id"`
}

func (h *handlerImpl) HandleListTasks(c *gin.Context) {
	requesterID, ok := getUserIDFromContext(c)
	if !ok {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError("Not authenticated"))
		return
	}

	ownerID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		abort(c, newBadRequestError("Invalid user id"))
		return
	}

	tasks, err := h.tasks.ListTasks(c, requesterID, ownerID)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			abort(c, newForbiddenError("Not authorized to access these tasks"))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	response := make([]taskResponse, len(tasks))
	for i, task := range tasks {
		response[i] = newTaskResponse(task)
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":   response,
		"message": "Tasks retrieved successfully",
	})
}

type createTaskRequest struct {
	Title     string `json:"title" binding:"required,max=255"`
	Detail    string `json:"detail" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
	Priority  string `json:"priority" binding:"omitempty,oneof=low medium high"`
	Completed bool   `json:"completed"`
	UserID    int64  `json:"userId" binding:"required"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	requesterID, ok := getUserIDFromContext(c)
	if !ok {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError("Not authenticated"))
		return
	}

	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError("Invalid request body"))
		return
	}

	task, err := h.tasks.CreateTask(c, requesterID, services.CreateTaskParams{
		UserID:    req.UserID,
		Title:     req.Title,
		Detail:    req.Detail,
		Date:      req.Date,
		Time:      req.Time,
		Priority:  req.Priority,
		Completed: req.Completed,
	})
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			abort(c, newForbiddenError("Not authorized to create task for this user"))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	h.registry.Notify(task.UserID, taskEvent{
		Type: realtime.TypeTaskCreated,
		Task: newTaskResponse(task),
	})

	c.JSON(http.StatusCreated, gin.H{
		"task":    newTaskResponse(task),
		"message": "Task created successfully",
	})
}

type updateTaskRequest struct {
	Title     *string `json:"title,omitempty" binding:"omitempty,max=255"`
	Detail    *string `json:"detail,omitempty"`
	Date      *string `json:"date,omitempty"`
	Time      *string `json:"time,omitempty"`
	Priority  *string `json:"priority,omitempty" binding:"omitempty,oneof=low medium high"`
	Completed *bool   `json:"completed,omitempty"`
	UserID    *int64  `json:"userId,omitempty"`
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	requesterID, ok := getUserIDFromContext(c)
	if !ok {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError("Not authenticated"))
		return
	}

	taskID, err := strconv.ParseInt(c.Param("taskId"), 10, 64)
	if err != nil {
		abort(c, newBadRequestError("Invalid task id"))
		return
	}

	var req updateTaskRequest
	err = c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError("Invalid request body"))
		return
	}

	task, err := h.tasks.UpdateTask(c, requesterID, taskID, services.TaskPatch{
		Title:     req.Title,
		Detail:    req.Detail,
		Date:      req.Date,
		Time:      req.Time,
		Priority:  req.Priority,
		Completed: req.Completed,
		UserID:    req.UserID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			abort(c, newNotFoundError("Task not found"))
		case errors.Is(err, services.ErrForbidden):
			abort(c, newForbiddenError("Not authorized to update this task"))
		default:
			h.logger.Error().
				Err(err).
				Msg("failed to update task")
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	h.registry.Notify(task.UserID, taskEvent{
		Type: realtime.TypeTaskUpdated,
		Task: newTaskResponse(task),
	})

	c.JSON(http.StatusOK, gin.H{
		"task":    newTaskResponse(task),
		"message": "Task updated successfully",
	})
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	requesterID, ok := getUserIDFromContext(c)
	if !ok {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError("Not authenticated"))
		return
	}

	taskID, err := strconv.ParseInt(c.Param("taskId"), 10, 64)
	if err != nil {
		abort(c, newBadRequestError("Invalid task id"))
		return
	}

	err = h.tasks.DeleteTask(c, requesterID, taskID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			abort(c, newNotFoundError("Task not found"))
		case errors.Is(err, services.ErrForbidden):
			abort(c, newForbiddenError("Not authorized to delete this task"))
		default:
			h.logger.Error().
				Err(err).
				Msg("failed to delete task")
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	h.registry.Notify(requesterID, taskDeletedEvent{
		Type:   realtime.TypeTaskDeleted,
		TaskID: taskID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}
