package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/impressalabs/console/internal/composer"
	"github.com/impressalabs/console/internal/taxonomy"
	"github.com/impressalabs/console/internal/webserver"
)

func registerComposerRoutes() {
	webserver.ApiGET("/api/composer", getSnapshot)
	webserver.ApiPUT("/api/composer/draft", updateDraft)
	webserver.ApiPOST("/api/composer/draft/reset", resetDraft)
	webserver.ApiPOST("/api/composer/draft/sizes", addSizes)
	webserver.ApiPUT("/api/composer/draft/sizes/:label", toggleSize)
	webserver.ApiDELETE("/api/composer/draft/sizes/:label", removeSize)
	webserver.ApiGET("/api/composer/taxonomy", getTaxonomy)
	webserver.ApiPOST("/api/composer/taxonomy/item-types", addCustomItemType)
	webserver.ApiPOST("/api/composer/taxonomy/categories", addCustomCategory)
}

func getSnapshot(c echo.Context) error {
	return ok(c, getComposer(c).Snapshot())
}

func updateDraft(c echo.Context) error {
	var upd composer.DraftUpdate
	if err := c.Bind(&upd); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse draft update", err.Error())
	}
	comp := getComposer(c)
	comp.UpdateDraft(upd)
	return ok(c, comp.Snapshot())
}

func resetDraft(c echo.Context) error {
	comp := getComposer(c)
	if err := comp.ResetDraft(); err != nil {
		return failComposer(c, err, "COMPOSER_ERROR")
	}
	return ok(c, comp.Snapshot())
}

type sizesRequest struct {
	Values string `json:"values"`
}

func addSizes(c echo.Context) error {
	var req sizesRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse sizes", err.Error())
	}
	comp := getComposer(c)
	comp.AddSizes(req.Values)
	return ok(c, comp.Snapshot())
}

type toggleRequest struct {
	Checked bool `json:"checked"`
}

func toggleSize(c echo.Context) error {
	var req toggleRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse size toggle", err.Error())
	}
	comp := getComposer(c)
	comp.ToggleSize(c.Param("label"), req.Checked)
	return ok(c, comp.Snapshot())
}

func removeSize(c echo.Context) error {
	comp := getComposer(c)
	comp.RemoveSize(c.Param("label"))
	return ok(c, comp.Snapshot())
}

type taxonomyView struct {
	ItemTypes  []string         `json:"itemTypes"`
	Categories []string         `json:"categories"`
	Preset     *taxonomy.Preset `json:"preset,omitempty"`
	SizeRun    []string         `json:"sizeRun"`
}

// getTaxonomy returns the vocabularies plus the preset resolved for the
// draft's current category. SizeRun is the generic fallback offered when no
// category is selected.
func getTaxonomy(c echo.Context) error {
	comp := getComposer(c)
	view := taxonomyView{
		ItemTypes:  comp.ItemTypes(),
		Categories: comp.Categories(),
		SizeRun:    taxonomy.DefaultSizeOptions,
	}
	if category := comp.Snapshot().Draft.Category; category != "" {
		if preset, found := comp.ResolvePreset(category); found {
			view.Preset = &preset
		}
	}
	return ok(c, view)
}

type customValueRequest struct {
	Value string `json:"value"`
}

func addCustomItemType(c echo.Context) error {
	var req customValueRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse custom value", err.Error())
	}
	comp := getComposer(c)
	val, accepted := comp.AddCustomItemType(req.Value)
	return ok(c, map[string]interface{}{"value": val, "accepted": accepted})
}

func addCustomCategory(c echo.Context) error {
	var req customValueRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse custom value", err.Error())
	}
	comp := getComposer(c)
	val, accepted := comp.AddCustomCategory(req.Value)
	return ok(c, map[string]interface{}{"value": val, "accepted": accepted})
}
