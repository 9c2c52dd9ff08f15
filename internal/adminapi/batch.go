package adminapi

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/impressalabs/console/internal/domain"
	"github.com/impressalabs/console/internal/webserver"
)

func registerBatchRoutes() {
	webserver.ApiPOST("/api/composer/images", selectImages)
	webserver.ApiGET("/api/composer/images/:id", previewImage)
	webserver.ApiPOST("/api/composer/batch", addToBatch)
	webserver.ApiPOST("/api/composer/batch/:index/edit", editEntry)
	webserver.ApiDELETE("/api/composer/batch/:index", removeEntry)
	webserver.ApiPOST("/api/composer/batch/clear", clearBatch)
	webserver.ApiPOST("/api/composer/submit", submitBatch)
	webserver.ApiPOST("/api/composer/submit-one", submitOne)
	webserver.ApiPOST("/api/composer/close", closeComposer)
}

// selectImages replaces the staged selection with the files of this
// multipart request. Nothing is uploaded yet.
func selectImages(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse image upload", err.Error())
	}
	headers := form.File["images"]

	files := make([]domain.StagedImage, 0, len(headers))
	for _, hdr := range headers {
		src, err := hdr.Open()
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read image "+hdr.Filename, err.Error())
		}
		content, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read image "+hdr.Filename, err.Error())
		}
		files = append(files, domain.StagedImage{
			PreviewID:   idNode.Generate().String(),
			Filename:    hdr.Filename,
			ContentType: hdr.Header.Get("Content-Type"),
			Content:     content,
		})
	}

	comp := getComposer(c)
	if err := comp.SelectImages(files); err != nil {
		return failComposer(c, err, "COMPOSER_ERROR")
	}
	return ok(c, comp.Snapshot())
}

func previewImage(c echo.Context) error {
	img, found := getComposer(c).PreviewImage(c.Param("id"))
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "No staged image with that id", nil)
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return c.Blob(http.StatusOK, contentType, img.Content)
}

func addToBatch(c echo.Context) error {
	comp := getComposer(c)
	if err := comp.AddToBatch(c.Request().Context()); err != nil {
		return failComposer(c, err, "UPLOAD_ERROR")
	}
	return ok(c, comp.Snapshot())
}

func editEntry(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INDEX", "Invalid batch index", nil)
	}
	comp := getComposer(c)
	if err := comp.EditEntry(index); err != nil {
		return failComposer(c, err, "COMPOSER_ERROR")
	}
	return ok(c, comp.Snapshot())
}

func removeEntry(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INDEX", "Invalid batch index", nil)
	}
	comp := getComposer(c)
	if err := comp.RemoveEntry(index); err != nil {
		return failComposer(c, err, "COMPOSER_ERROR")
	}
	return ok(c, comp.Snapshot())
}

func clearBatch(c echo.Context) error {
	comp := getComposer(c)
	if err := comp.ClearBatch(); err != nil {
		return failComposer(c, err, "COMPOSER_ERROR")
	}
	return ok(c, comp.Snapshot())
}

func submitBatch(c echo.Context) error {
	comp := getComposer(c)
	if err := comp.SubmitBatch(c.Request().Context()); err != nil {
		return failComposer(c, err, "SUBMISSION_ERROR")
	}
	return ok(c, comp.Snapshot())
}

func submitOne(c echo.Context) error {
	comp := getComposer(c)
	if err := comp.SubmitOne(c.Request().Context()); err != nil {
		return failComposer(c, err, "SUBMISSION_ERROR")
	}
	return ok(c, comp.Snapshot())
}

func closeComposer(c echo.Context) error {
	comp := getComposer(c)
	if err := comp.Close(); err != nil {
		return failComposer(c, err, "COMPOSER_ERROR")
	}
	return ok(c, comp.Snapshot())
}
