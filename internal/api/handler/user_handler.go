package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/todo-api/internal/api/metrics"
	"github.com/taskflow/todo-api/internal/core/domain"
	"github.com/taskflow/todo-api/internal/core/ports"
)

// UserHandler serves the account endpoints under /user.
type UserHandler struct {
	auth ports.AuthService
}

func NewUserHandler(auth ports.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// Register creates a password account and signs it in.
//
// @Summary      Register a new user
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Name, email and password"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /user/register [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.auth.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	observeAuth("register", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{User: toUserResponse(user), Token: token})
}

// Login exchanges email and password for a session token.
//
// @Summary      Login
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /user/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	observeAuth("login", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{User: toUserResponse(user), Token: token})
}

// GoogleAuth signs in with a Google ID token, creating the account on first use.
//
// @Summary      Sign in with Google
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      googleAuthRequest  true  "Google ID token"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /user/google-auth [post]
func (h *UserHandler) GoogleAuth(c echo.Context) error {
	var req googleAuthRequest
	if err := bindAndValidate(c, &req); err != nil {
		observeAuth("google", err)
		return err
	}

	token, user, err := h.auth.GoogleAuth(c.Request().Context(), req.TokenID)
	observeAuth("google", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{User: toUserResponse(user), Token: token})
}

// GetUser returns the account behind the bearer token.
//
// @Summary      Current user
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  getUserResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /user/getuser [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	subject, err := ctxSubject(c)
	if err != nil {
		return err
	}

	user, err := h.auth.GetUser(c.Request().Context(), subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrUnauthorized) {
			return err
		}
		return echo.NewHTTPError(http.StatusBadGateway, "user lookup failed").SetInternal(err)
	}
	return c.JSON(http.StatusOK, getUserResponse{User: toUserResponse(user)})
}

// observeAuth records the outcome of an account flow.
func observeAuth(flow string, err error) {
	metrics.AuthAttemptsTotal.WithLabelValues(flow, authResult(err)).Inc()
}

func authResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrWeakPassword):
		return "weak_password"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrUserExists):
		return "user_exists"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	case errors.Is(err, domain.ErrOAuthVerificationFailed):
		return "verification_failed"
	default:
		return "error"
	}
}
