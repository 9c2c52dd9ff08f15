package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/impressalabs/console/internal/session"
	"github.com/impressalabs/console/internal/webserver"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func registerAuthRoutes() {
	webserver.ApiPOST("/api/login", login)
	webserver.ApiPOST("/api/logout", logout)
}

func login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login request", err.Error())
	}
	token, sess, err := sessmgr.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
		}
		return fail(c, http.StatusInternalServerError, "LOGIN_ERROR", "Failed to open session", err.Error())
	}
	return ok(c, map[string]interface{}{
		"token":    token,
		"username": sess.Username,
	})
}

func logout(c echo.Context) error {
	sess := webserver.GetSession(c)
	if sess != nil {
		sessmgr.Logout(sess.ID)
	}
	return ok(c, nil)
}
