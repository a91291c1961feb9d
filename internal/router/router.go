package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"                    // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Echo's stock middleware (recover, body limit)
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/taskboard/internal/config"
	"github.com/iliyamo/taskboard/internal/handler"
	"github.com/iliyamo/taskboard/internal/middleware"
	"github.com/iliyamo/taskboard/internal/repository"
	"github.com/iliyamo/taskboard/internal/service"
	"github.com/iliyamo/taskboard/internal/validation"
)

// Deps carries everything the HTTP layer needs.  Redis and Events are
// optional; Tasks is required.
type Deps struct {
	Config config.Config
	Tasks  *repository.TaskRepo
	Events *service.Dispatcher
	Redis  *redis.Client
	Log    *zap.Logger
}

// New builds a fully configured Echo instance: validator, error handler,
// middleware chain and routes.
func New(d Deps) *echo.Echo {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.RequestValidator{}
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log)

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.BodyLimit(d.Config.BodyLimit))

	RegisterRoutes(e,
		handler.NewTaskHandler(d.Tasks, d.Events, d.Log),
		middleware.NewTokenBucket(d.Config.RateLimit, d.Redis, d.Log).Middleware(),
		middleware.NewRedisCache(d.Config.Cache, d.Redis, d.Log),
	)
	return e
}

// RegisterRoutes maps the three public endpoints.  The cache middleware is
// applied to /tasks only; it caches GET and is invalidated by a successful
// POST.  Only task creation is rate limited.
func RegisterRoutes(e *echo.Echo, tasks *handler.TaskHandler, limit, cache echo.MiddlewareFunc) {
	e.GET("/", handler.Health)

	e.GET("/tasks", tasks.List, cache)
	e.POST("/tasks", tasks.Create, limit, cache)
}
