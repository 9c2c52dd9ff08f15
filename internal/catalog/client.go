package catalog

import (
	"context"
	"net/http"

	"github.com/guonaihong/gout"
	"github.com/guonaihong/gout/dataflow"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/impressalabs/console/config"
	"github.com/impressalabs/console/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to the storefront data API: catalog creation plus the
// read-only listing the parent catalog view renders.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	g          *dataflow.Gout
}

func NewClient(cfg *config.AppConfig) *Client {
	httpClient := &http.Client{Timeout: cfg.DataAPITimeout()}
	return &Client{
		baseURL:    cfg.DataAPI.BaseURL,
		token:      cfg.DataAPI.Token,
		httpClient: httpClient,
		g:          gout.New(httpClient),
	}
}

// apiError is the data API's structured error body.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CreateProducts sends one combined creation request. A single payload is
// sent as a bare object, several as an array; the endpoint accepts both
// under the products key.
func (c *Client) CreateProducts(ctx context.Context, payloads []domain.ProductPayload) error {
	if len(payloads) == 0 {
		return errors.New("create products: empty payload list")
	}

	var products interface{} = payloads
	if len(payloads) == 1 {
		products = payloads[0]
	}

	code := 0
	var raw []byte
	err := c.g.POST(c.baseURL+"/templates").
		WithContext(ctx).
		SetHeader(gout.H{"Authorization": "Bearer " + c.token}).
		SetJSON(gout.H{"products": products}).
		Code(&code).
		BindBody(&raw).
		Do()
	if err != nil {
		return errors.Wrap(err, "create products")
	}
	if code >= 300 {
		detail := errorDetail(raw)
		zap.L().Warn("catalog creation rejected",
			zap.Int("status", code),
			zap.Int("count", len(payloads)),
			zap.String("detail", detail),
		)
		return &SubmissionError{Status: code, Detail: detail}
	}

	zap.L().Info("catalog creation accepted", zap.Int("count", len(payloads)))
	return nil
}

// ListProducts fetches the current catalog for the parent view.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	code := 0
	var raw []byte
	err := c.g.GET(c.baseURL+"/templates").
		WithContext(ctx).
		SetHeader(gout.H{"Authorization": "Bearer " + c.token}).
		Code(&code).
		BindBody(&raw).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	if code >= 300 {
		return nil, &SubmissionError{Status: code, Detail: errorDetail(raw)}
	}

	// the listing endpoint returns either a bare array or {products: [...]}
	var wrapped struct {
		Products []domain.Product `json:"products"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Products != nil {
		return wrapped.Products, nil
	}
	var list []domain.Product
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, errors.Wrap(err, "decode product listing")
	}
	return list, nil
}

func errorDetail(raw []byte) string {
	var parsed apiError
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return ""
	}
	if parsed.Error != "" {
		return parsed.Error
	}
	return parsed.Message
}
