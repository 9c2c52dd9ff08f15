package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/impressalabs/console/internal/domain"
	"github.com/impressalabs/console/internal/webserver"
)

const listingCacheKey = "catalog_listing"

// registerProductRoutes registers the read-only catalog listing the parent
// view renders. The console holds no product data of its own; rows come
// from the data API and are cached briefly to absorb view refreshes.
func registerProductRoutes() {
	webserver.ApiGET("/api/products", listProducts)
}

func listProducts(c echo.Context) error {
	rows, err := fetchListing(c)
	if err != nil {
		return fail(c, http.StatusBadGateway, "DATA_API_ERROR", "Failed to query products", err.Error())
	}

	// Filters: q matches title, category narrows
	q := strings.ToLower(strings.TrimSpace(c.QueryParam("q")))
	category := strings.TrimSpace(c.QueryParam("category"))
	filtered := make([]domain.Product, 0, len(rows))
	for _, p := range rows {
		if q != "" && !strings.Contains(strings.ToLower(p.Title), q) {
			continue
		}
		if category != "" && category != "all" && p.Category != category {
			continue
		}
		filtered = append(filtered, p)
	}

	// Pagination
	page := 1
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	perPage := 20
	if v, err := strconv.Atoi(c.QueryParam("perPage")); err == nil && v > 0 && v <= 500 {
		perPage = v
	}

	total := len(filtered)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	return ok(c, map[string]interface{}{
		"items":   filtered[start:end],
		"total":   total,
		"page":    page,
		"perPage": perPage,
	})
}

func fetchListing(c echo.Context) ([]domain.Product, error) {
	if cached, found := listingCache.Get(listingCacheKey); found {
		return cached.([]domain.Product), nil
	}
	rows, err := products.ListProducts(c.Request().Context())
	if err != nil {
		return nil, err
	}
	listingCache.SetDefault(listingCacheKey, rows)
	return rows, nil
}
