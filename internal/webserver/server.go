package webserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/impressalabs/console/config"
	"github.com/impressalabs/console/internal/session"
)

const sessionContextKey = "operator_session"

type apiRoute struct {
	method  string
	path    string
	handler echo.HandlerFunc
}

var apiRoutes []apiRoute

// ApiGET registers an authenticated GET route. Handlers register themselves
// from the adminapi package init path before the server is built.
func ApiGET(path string, handler echo.HandlerFunc) {
	apiRoutes = append(apiRoutes, apiRoute{http.MethodGet, path, handler})
}

func ApiPOST(path string, handler echo.HandlerFunc) {
	apiRoutes = append(apiRoutes, apiRoute{http.MethodPost, path, handler})
}

func ApiPUT(path string, handler echo.HandlerFunc) {
	apiRoutes = append(apiRoutes, apiRoute{http.MethodPut, path, handler})
}

func ApiDELETE(path string, handler echo.HandlerFunc) {
	apiRoutes = append(apiRoutes, apiRoute{http.MethodDelete, path, handler})
}

// WebServer hosts the operator HTTP API.
type WebServer struct {
	root    *echo.Echo
	cfg     *config.AppConfig
	sessmgr *session.Manager
}

func NewWebServer(cfg *config.AppConfig, sessmgr *session.Manager) *WebServer {
	s := &WebServer{
		root:    echo.New(),
		cfg:     cfg,
		sessmgr: sessmgr,
	}
	s.root.HideBanner = true
	s.root.HidePort = true
	s.root.Use(middleware.Recover())
	s.root.Use(requestLogger())
	s.root.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: sessmgr.Secret(),
		Skipper:    publicRoute,
	}))
	s.root.Use(s.resolveSession)

	for _, r := range apiRoutes {
		s.root.Add(r.method, r.path, r.handler)
	}
	return s
}

// publicRoute marks the endpoints reachable without a bearer token.
func publicRoute(c echo.Context) bool {
	switch c.Path() {
	case "/api/login", "/api/health":
		return true
	}
	return false
}

// resolveSession maps the verified bearer token onto the live operator
// session. Expired or evicted sessions yield 401 even for valid tokens.
func (s *WebServer) resolveSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if publicRoute(c) {
			return next(c)
		}
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}
		sid, ok := session.SessionID(token)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "malformed session token")
		}
		sess, ok := s.sessmgr.Get(sid)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
		}
		c.Set(sessionContextKey, sess)
		return next(c)
	}
}

// GetSession returns the operator session attached by resolveSession.
func GetSession(c echo.Context) *session.Session {
	sess, _ := c.Get(sessionContextKey).(*session.Session)
	return sess
}

func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			zap.L().Debug("http request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("elapsed", time.Since(start)),
			)
			return err
		}
	}
}

// Echo exposes the underlying router for handler tests.
func (s *WebServer) Echo() *echo.Echo {
	return s.root
}

func (s *WebServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Web.Host, s.cfg.Web.Port)
	zap.L().Info("operator console listening", zap.String("addr", addr))
	return s.root.Start(addr)
}

func (s *WebServer) Stop(ctx context.Context) error {
	return s.root.Shutdown(ctx)
}
