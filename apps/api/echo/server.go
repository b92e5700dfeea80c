package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/actioncard"
	"github.com/caplc/backend/core/user"
	"github.com/caplc/backend/core/workshop"
)

type (
	ServerDeps struct {
		Conf          *core.Config
		Logger        core.Logger
		UserSvc       user.Service
		ActionCardSvc actioncard.Service
		WorkshopSvc   workshop.Service
		Validate      *validator.Validate
		Translator    ut.Translator
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		jwt      *jwtAuth
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		jwt:      newJWTAuth(deps.Conf),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORS())

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	api := s.app.Group("/api")
	api.GET("/ping", ping)

	v1 := api.Group("/v1")
	jwt := []echo.MiddlewareFunc{s.jwt.middleware()}
	if conf.Server.JWTBlacklistEnabled {
		jwt = append(jwt, revocationMiddleware(s.deps.UserSvc))
	}
	rateLimit := newRateLimitMiddleware(conf)

	registerUserAPI(v1, jwt, rateLimit, s.jwt, s.deps)
	registerCoachAPI(v1, jwt, s.deps)
	registerModeratorAPI(v1, jwt, s.deps)
	registerActionCardAPI(v1, jwt, s.deps)
	registerWorkshopAPI(v1, jwt, s.deps)
	registerCarbonFormAPI(v1, s.deps)
}

func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func ping(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"data": "pong"})
}
