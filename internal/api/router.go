package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/taskflow/todo-api/docs"
	"github.com/taskflow/todo-api/internal/api/handler"
	"github.com/taskflow/todo-api/internal/api/middleware"
	"github.com/taskflow/todo-api/internal/core/ports"
	"github.com/taskflow/todo-api/internal/infrastructure/http/handlers"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Auth   ports.AuthService
	Tasks  ports.TaskService
	Tokens ports.TokenIssuer
	Checks map[string]handlers.Check
	Log    zerolog.Logger

	CORSOrigins []string
	// AuthRateLimit is requests per second per client IP on /user; 0 disables.
	AuthRateLimit float64

	// Registerer and Gatherer default to the Prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "todo",
		Subsystem:  "http",
		Registerer: d.Registerer,
	}))

	// --- Operational endpoints (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewReadinessHandler(d.Checks, d.Log).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	guard := middleware.Auth(d.Tokens)

	// --- User routes ---
	userHandler := handler.NewUserHandler(d.Auth)
	users := e.Group("/user")
	if d.AuthRateLimit > 0 {
		users.Use(rateLimiter(d.AuthRateLimit))
	}
	users.POST("/register", userHandler.Register)
	users.POST("/login", userHandler.Login)
	users.POST("/google-auth", userHandler.GoogleAuth)
	users.GET("/getuser", userHandler.GetUser, guard)

	// --- Task routes ---
	taskHandler := handler.NewTaskHandler(d.Tasks)
	tasks := e.Group("/task", guard)
	tasks.POST("/addTask", taskHandler.Add)
	tasks.GET("/getTask", taskHandler.List)
	tasks.PUT("/editTask", taskHandler.Edit)
	tasks.DELETE("/removeTask/:id", taskHandler.Remove)

	return e
}

// rateLimiter throttles the account endpoints per client IP.
func rateLimiter(perSecond float64) echo.MiddlewareFunc {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		},
	})
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
