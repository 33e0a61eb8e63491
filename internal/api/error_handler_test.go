package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskflow/todo-api/internal/core/domain"
)

func handle(t *testing.T, log zerolog.Logger, err error) (int, string) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/user/login", nil), rec)

	NewHTTPErrorHandler(log)(err, c)

	var body errorResponse
	if jerr := json.Unmarshal(rec.Body.Bytes(), &body); jerr != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), jerr)
	}
	return rec.Code, body.Error
}

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{domain.NewValidationError("email", "is required"), http.StatusBadRequest},
		{domain.ErrWeakPassword, http.StatusBadRequest},
		{fmt.Errorf("register: %w", domain.ErrUserExists), http.StatusBadRequest},
		{domain.ErrInvalidCredentials, http.StatusBadRequest},
		{domain.ErrTooManyAttempts, http.StatusTooManyRequests},
		{fmt.Errorf("%w: bad audience", domain.ErrOAuthVerificationFailed), http.StatusUnauthorized},
		{domain.ErrTokenExpired, http.StatusUnauthorized},
		{domain.ErrTokenInvalid, http.StatusUnauthorized},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrUserNotFound, http.StatusNotFound},
		{domain.ErrTaskNotFound, http.StatusNotFound},
		{echo.NewHTTPError(http.StatusBadGateway, "user lookup failed"), http.StatusBadGateway},
		{errors.New("mongo: connection pool exhausted"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			code, _ := handle(t, zerolog.Nop(), tc.err)
			if code != tc.code {
				t.Fatalf("code = %d, want %d", code, tc.code)
			}
		})
	}
}

func TestHTTPErrorHandler_ValidationMessageNamesField(t *testing.T) {
	_, msg := handle(t, zerolog.Nop(), domain.NewValidationError("password", "is required"))
	if !strings.Contains(msg, "password") {
		t.Fatalf("message %q does not name the field", msg)
	}
}

func TestHTTPErrorHandler_SanitisesInternalErrors(t *testing.T) {
	var logs bytes.Buffer
	log := zerolog.New(&logs)

	code, msg := handle(t, log, errors.New("dial tcp 10.0.0.7:27017: i/o timeout"))
	if code != http.StatusInternalServerError {
		t.Fatalf("code = %d", code)
	}
	if msg != "internal server error" {
		t.Errorf("client message leaks detail: %q", msg)
	}
	if !strings.Contains(logs.String(), "10.0.0.7") {
		t.Errorf("cause not logged: %q", logs.String())
	}
}

func TestHTTPErrorHandler_OAuthDetailStaysInternal(t *testing.T) {
	_, msg := handle(t, zerolog.Nop(), fmt.Errorf("%w: token audience mismatch", domain.ErrOAuthVerificationFailed))
	if strings.Contains(msg, "audience") {
		t.Errorf("client message leaks verifier detail: %q", msg)
	}
}
