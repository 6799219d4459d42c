package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/trezcool/markbook/core"
	"github.com/trezcool/markbook/core/marks"
	"github.com/trezcool/markbook/core/teacher"
	"github.com/trezcool/markbook/services/metrics"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		TeacherSvc teacher.Service
		MarksSvc   marks.Service
		Validate   *validator.Validate
		Translator ut.Translator
		Metrics    *metricsvc.Metrics // optional

		// Ready reports whether the service can serve requests; nil means always ready.
		Ready func(ctx context.Context) error
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(ctx context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	if deps.Logger == nil {
		deps.Logger = core.NopLogger{}
	}
	if deps.Validate == nil || deps.Translator == nil {
		deps.Validate = validator.New()
		deps.Translator = core.NewTranslator()
		core.InitValidators(deps.Validate, deps.Translator)
	}
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: conf.Server.AllowOrigins}))
	if s.deps.Metrics != nil {
		s.app.Use(metricsMiddleware(s.deps.Metrics))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)
	s.app.GET("/healthz", s.health)

	registerMarksAPI(
		s.app.Group("/api"),
		s.deps.TeacherSvc,
		s.deps.MarksSvc,
		s.deps.Validate,
	)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.errors <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	signal.Stop(s.shutdown)
	return s.app.Close()
}

func (s *server) Errors() <-chan error { return s.errors }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// signalShutdown asks the process to stop gracefully, as if it received SIGTERM.
func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}

func (s *server) health(ctx echo.Context) error {
	if s.deps.Ready != nil {
		if err := s.deps.Ready(ctx.Request().Context()); err != nil {
			s.deps.Logger.Warn("readiness check failed", err)
			return ctx.JSON(http.StatusServiceUnavailable, errorResponse{Message: "Service Unavailable"})
		}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok", "build": s.deps.Conf.Build})
}
