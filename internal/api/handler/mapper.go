package handler

import (
	"github.com/taskflow/todo-api/internal/core/domain"
	"github.com/taskflow/todo-api/internal/core/ports"
)

// --- Domain → Response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		AuthProvider: u.AuthProvider(),
		CreatedAt:    u.CreatedAt,
	}
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskList(tasks []*domain.Task) taskListResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return taskListResponse{Tasks: out}
}

// --- Request → Service input ---

func toTaskInput(req taskRequest) ports.TaskInput {
	return ports.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Completed:   req.Completed,
	}
}

func toEditInput(req editTaskRequest) ports.TaskInput {
	return ports.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Completed:   req.Completed,
	}
}
