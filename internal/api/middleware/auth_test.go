package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/todo-api/internal/infrastructure/token"
)

const testSecret = "middleware-secret"

func newIssuer(t *testing.T, secret string, now func() time.Time) *token.Issuer {
	t.Helper()
	opts := []token.Option{}
	if now != nil {
		opts = append(opts, token.WithClock(now))
	}
	iss, err := token.NewIssuer(secret, opts...)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	return iss
}

func runGuard(t *testing.T, header string) (subject string, called bool, err error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/task/getTask", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Auth(newIssuer(t, testSecret, nil))(func(c echo.Context) error {
		called = true
		subject = Subject(c)
		return c.NoContent(http.StatusOK)
	})
	err = h(c)
	return subject, called, err
}

func assertUnauthorized(t *testing.T, err error, called bool) {
	t.Helper()
	if called {
		t.Fatal("next handler must not run")
	}
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", he.Code)
	}
}

func TestAuth_ValidToken(t *testing.T) {
	signed, err := newIssuer(t, testSecret, nil).Issue("user-42")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	subject, called, err := runGuard(t, "Bearer "+signed)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatal("next not called")
	}
	if subject != "user-42" {
		t.Fatalf("subject = %q, want user-42", subject)
	}
}

func TestAuth_SchemeIsCaseInsensitive(t *testing.T) {
	signed, _ := newIssuer(t, testSecret, nil).Issue("user-42")
	if _, called, err := runGuard(t, "bearer "+signed); err != nil || !called {
		t.Fatalf("lower-case scheme rejected: %v", err)
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	_, called, err := runGuard(t, "")
	assertUnauthorized(t, err, called)
}

func TestAuth_Rejections(t *testing.T) {
	wrongSig, _ := newIssuer(t, "another-secret", nil).Issue("user-42")

	issuedLongAgo := func() time.Time { return time.Now().Add(-4 * 24 * time.Hour) }
	expired, _ := newIssuer(t, testSecret, issuedLongAgo).Issue("user-42")

	valid, _ := newIssuer(t, testSecret, nil).Issue("user-42")

	tests := []struct {
		name   string
		header string
	}{
		{"basic scheme", "Basic dXNlcjpwYXNz"},
		{"bearer without token", "Bearer "},
		{"token without scheme", valid},
		{"garbage", "Bearer not.a.jwt"},
		{"wrong signature", "Bearer " + wrongSig},
		{"expired", "Bearer " + expired},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, called, err := runGuard(t, tc.header)
			assertUnauthorized(t, err, called)
		})
	}
}
