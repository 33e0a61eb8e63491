package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- User ---

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleAuthRequest struct {
	TokenID string `json:"tokenId" validate:"required"`
}

// userResponse is the public view of an account. It never carries the
// password hash.
type userResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	AuthProvider string    `json:"auth_provider"`
	CreatedAt    time.Time `json:"created_at"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

type getUserResponse struct {
	User userResponse `json:"user"`
}

// --- Task ---

type taskRequest struct {
	Title       string     `json:"title"       validate:"required,max=200"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=Low Medium High"`
	DueDate     *time.Time `json:"dueDate"`
	Completed   bool       `json:"completed"`
}

type editTaskRequest struct {
	ID          string     `json:"id"          validate:"required"`
	Title       string     `json:"title"       validate:"required,max=200"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=Low Medium High"`
	DueDate     *time.Time `json:"dueDate"`
	Completed   bool       `json:"completed"`
}

type taskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type taskListResponse struct {
	Tasks []taskResponse `json:"tasks"`
}
