package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/impressalabs/console/config"
	"github.com/impressalabs/console/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to the object-storage upload endpoint: one file plus an
// upload preset per call, one durable URL back. The endpoint is an opaque
// black box that fails as a unit.
type Client struct {
	uploadURL  string
	preset     string
	httpClient *http.Client
}

func NewClient(cfg *config.AppConfig) *Client {
	return &Client{
		uploadURL: cfg.Storage.UploadURL,
		preset:    cfg.Storage.UploadPreset,
		httpClient: &http.Client{
			Timeout: cfg.StorageTimeout(),
		},
	}
}

// uploadResponse is the subset of the storage endpoint's reply we use.
type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends a single file and returns its durable URL.
func (c *Client) Upload(ctx context.Context, img domain.StagedImage) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", img.Filename)
	if err != nil {
		return "", errors.Wrap(err, "build upload form")
	}
	if _, err := part.Write(img.Content); err != nil {
		return "", errors.Wrap(err, "build upload form")
	}
	if err := form.WriteField("upload_preset", c.preset); err != nil {
		return "", errors.Wrap(err, "build upload form")
	}
	if err := form.Close(); err != nil {
		return "", errors.Wrap(err, "build upload form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return "", errors.Wrap(err, "build upload request")
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "upload image %s", img.Filename)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrapf(err, "read upload response for %s", img.Filename)
	}

	var parsed uploadResponse
	if err := json.Unmarshal(data, &parsed); err != nil && resp.StatusCode < 300 {
		return "", errors.Wrapf(err, "decode upload response for %s", img.Filename)
	}

	if resp.StatusCode >= 300 {
		msg := parsed.Error.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("upload image %s: %s", img.Filename, msg)
	}

	url := parsed.SecureURL
	if url == "" {
		url = parsed.URL
	}
	if url == "" {
		return "", fmt.Errorf("upload image %s: response carries no url", img.Filename)
	}
	return url, nil
}

// UploadAll uploads the files strictly sequentially; upload k+1 does not
// begin until upload k resolved. The first failure aborts the whole call
// and the URLs collected so far are discarded, never partially kept.
func (c *Client) UploadAll(ctx context.Context, files []domain.StagedImage) ([]string, error) {
	if len(files) == 0 {
		return []string{}, nil
	}
	urls := make([]string, 0, len(files))
	for _, img := range files {
		url, err := c.Upload(ctx, img)
		if err != nil {
			zap.L().Warn("image upload failed",
				zap.String("filename", img.Filename),
				zap.Int("uploaded_before_failure", len(urls)),
				zap.Error(err),
			)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}
