package adminapi

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/labstack/echo/v4"
	cache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"github.com/impressalabs/console/internal/catalog"
	"github.com/impressalabs/console/internal/composer"
	"github.com/impressalabs/console/internal/session"
	"github.com/impressalabs/console/internal/webserver"
)

var (
	sessmgr      *session.Manager
	products     *catalog.Client
	idNode       *snowflake.Node
	listingCache *cache.Cache
)

// Setup wires the handler dependencies and registers all routes. Must run
// before the web server is built.
func Setup(sm *session.Manager, pc *catalog.Client, node *snowflake.Node) {
	sessmgr = sm
	products = pc
	idNode = node
	listingCache = cache.New(30*time.Second, time.Minute)

	registerAuthRoutes()
	registerComposerRoutes()
	registerBatchRoutes()
	registerProductRoutes()

	webserver.ApiGET("/api/health", func(c echo.Context) error {
		return ok(c, map[string]interface{}{"status": "up"})
	})
}

// FlushProductListing drops the cached catalog listing so the parent view
// re-reads after a successful submission.
func FlushProductListing() {
	if listingCache != nil {
		listingCache.Flush()
	}
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code": 0,
		"data": data,
	})
}

func fail(c echo.Context, status int, code string, msg string, detail interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"code":   1,
		"error":  code,
		"msg":    msg,
		"detail": detail,
	})
}

// getComposer resolves the current session's composer.
func getComposer(c echo.Context) *composer.Composer {
	sess := webserver.GetSession(c)
	if sess == nil {
		return nil
	}
	return sess.Composer
}

// failComposer maps composer and collaborator errors onto the response
// envelope. fallbackCode names the phase for errors without a typed cause
// (upload vs submission).
func failComposer(c echo.Context, err error, fallbackCode string) error {
	var verr *composer.ValidationError
	switch {
	case errors.As(err, &verr):
		return fail(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), verr.Fields)
	case errors.Is(err, composer.ErrNoImages):
		return fail(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, composer.ErrBusy):
		return fail(c, http.StatusConflict, "BUSY", err.Error(), nil)
	case errors.Is(err, composer.ErrNothingQueued):
		return fail(c, http.StatusBadRequest, "NOTHING_QUEUED", err.Error(), nil)
	case errors.Is(err, composer.ErrNoSuchEntry):
		return fail(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	}
	var serr *catalog.SubmissionError
	if errors.As(err, &serr) {
		return fail(c, http.StatusBadGateway, "SUBMISSION_ERROR", err.Error(), serr.Status)
	}
	return fail(c, http.StatusBadGateway, fallbackCode, err.Error(), nil)
}
