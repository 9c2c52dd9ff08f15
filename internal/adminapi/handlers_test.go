package adminapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impressalabs/console/config"
	"github.com/impressalabs/console/internal/catalog"
	"github.com/impressalabs/console/internal/composer"
	"github.com/impressalabs/console/internal/session"
	"github.com/impressalabs/console/internal/storage"
	"github.com/impressalabs/console/internal/taxonomy"
	"github.com/impressalabs/console/internal/webserver"
)

const (
	testUploadURL  = "https://storage.example.com/image/upload"
	testDataAPIURL = "https://api.example.com/api/v1"
)

type recordingNotifier struct {
	mu        sync.Mutex
	submitted int
}

func (n *recordingNotifier) Submitted(int) {
	n.mu.Lock()
	n.submitted++
	n.mu.Unlock()
}

func (n *recordingNotifier) Closed() {}

var setupOnce sync.Once

func newTestNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(9)
	require.NoError(t, err)
	return node
}

func newTestServer(t *testing.T) (*webserver.WebServer, *recordingNotifier) {
	t.Helper()
	cfg := &config.AppConfig{
		Web: config.WebConfig{
			JwtSecret:  "test-secret",
			SessionTTL: 5,
		},
		Operators: []config.OperatorConfig{
			{Username: "admin", Password: "impressa"},
		},
		Storage: config.StorageConfig{
			UploadURL:    testUploadURL,
			UploadPreset: "impressa",
		},
		DataAPI: config.DataAPIConfig{
			BaseURL: testDataAPIURL,
			Token:   "upstream-token",
		},
	}

	notifier := &recordingNotifier{}
	uploader := storage.NewClient(cfg)
	creator := catalog.NewClient(cfg)
	sm, err := session.NewManager(cfg, func(string) *composer.Composer {
		return composer.New(taxonomy.NewVocabulary(), uploader, creator, notifier)
	})
	require.NoError(t, err)

	node := newTestNode(t)
	setupOnce.Do(func() {
		Setup(sm, creator, node)
	})
	// later calls rebind the globals without duplicating routes
	sessmgr = sm
	products = creator
	idNode = node
	FlushProductListing()

	// both collaborator clients use default transport; intercept it
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	return webserver.NewWebServer(cfg, sm), notifier
}

func doJSON(t *testing.T, srv *webserver.WebServer, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echoHeaderContentType, "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	return rec
}

const echoHeaderContentType = "Content-Type"

func loginToken(t *testing.T, srv *webserver.WebServer) string {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/login", "",
		map[string]string{"username": "admin", "password": "impressa"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/login", "",
		map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_CREDENTIALS")
}

func TestProtectedRouteRequiresBearer(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/composer", "", nil)
	assert.GreaterOrEqual(t, rec.Code, http.StatusBadRequest, "no token, no composer")

	token := loginToken(t, srv)
	rec = doJSON(t, srv, http.MethodGet, "/api/composer", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"state":"idle"`)
}

func TestValidationErrorEnvelope(t *testing.T) {
	srv, _ := newTestServer(t)
	token := loginToken(t, srv)

	rec := doJSON(t, srv, http.MethodPut, "/api/composer/draft", token,
		map[string]string{"title": "Tee", "price": "5000"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/composer/batch", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
	assert.Contains(t, rec.Body.String(), "itemType")
	assert.Equal(t, 0, httpmock.GetTotalCallCount(), "validation failures never reach the network")
}

func stageImages(t *testing.T, srv *webserver.WebServer, token string, names ...string) {
	t.Helper()
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for _, name := range names {
		part, err := form.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("jpeg-bytes-" + name))
		require.NoError(t, err)
	}
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/composer/images", &buf)
	req.Header.Set(echoHeaderContentType, form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestComposeAndSubmitFlow(t *testing.T) {
	srv, notifier := newTestServer(t)
	token := loginToken(t, srv)

	n := 0
	httpmock.RegisterResponder(http.MethodPost, testUploadURL,
		func(*http.Request) (*http.Response, error) {
			n++
			body := fmt.Sprintf(`{"secure_url":"https://cdn.example.com/%d.jpg"}`, n)
			return httpmock.NewStringResponse(http.StatusOK, body), nil
		})
	httpmock.RegisterResponder(http.MethodPost, testDataAPIURL+"/templates",
		httpmock.NewStringResponder(http.StatusCreated, `{"message":"created"}`))

	rec := doJSON(t, srv, http.MethodPut, "/api/composer/draft", token, map[string]interface{}{
		"title":    "Premium Hoodie",
		"itemType": "hoodie",
		"category": "clothing",
		"price":    "15000",
		"colors":   "Black, White",
		"tags":     "promo",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/composer/draft/sizes", token,
		map[string]string{"values": "M, L, XL"})
	require.Equal(t, http.StatusOK, rec.Code)

	stageImages(t, srv, token, "front.jpg", "back.jpg")

	rec = doJSON(t, srv, http.MethodPost, "/api/composer/batch", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"state":"staged"`)
	assert.Contains(t, rec.Body.String(), "https://cdn.example.com/1.jpg")

	rec = doJSON(t, srv, http.MethodPost, "/api/composer/submit", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"state":"idle"`)
	assert.Equal(t, 1, notifier.submitted)
}

func TestSubmitEmptyLedger(t *testing.T) {
	srv, _ := newTestServer(t)
	token := loginToken(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/composer/submit", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOTHING_QUEUED")
}

func TestSubmissionErrorSurfacesServerDetail(t *testing.T) {
	srv, _ := newTestServer(t)
	token := loginToken(t, srv)

	httpmock.RegisterResponder(http.MethodPost, testUploadURL,
		httpmock.NewStringResponder(http.StatusOK, `{"secure_url":"https://cdn.example.com/a.jpg"}`))
	httpmock.RegisterResponder(http.MethodPost, testDataAPIURL+"/templates",
		httpmock.NewStringResponder(http.StatusUnprocessableEntity, `{"error":"title already exists"}`))

	rec := doJSON(t, srv, http.MethodPut, "/api/composer/draft", token, map[string]interface{}{
		"title": "Tee", "itemType": "t-shirt", "category": "clothing", "price": "5000",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	stageImages(t, srv, token, "front.jpg")

	rec = doJSON(t, srv, http.MethodPost, "/api/composer/submit-one", token, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to create product. title already exists")

	// draft retained for retry
	rec = doJSON(t, srv, http.MethodGet, "/api/composer", token, nil)
	assert.Contains(t, rec.Body.String(), "Tee")
}

func TestProductListingProxyAndCache(t *testing.T) {
	srv, _ := newTestServer(t)
	token := loginToken(t, srv)

	httpmock.RegisterResponder(http.MethodGet, testDataAPIURL+"/templates",
		httpmock.NewStringResponder(http.StatusOK,
			`{"products":[{"_id":"p1","title":"Classic Tee","category":"clothing","price":5000}]}`))

	rec := doJSON(t, srv, http.MethodGet, "/api/products", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Classic Tee")
	first := httpmock.GetTotalCallCount()

	// second read is served from cache
	rec = doJSON(t, srv, http.MethodGet, "/api/products", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first, httpmock.GetTotalCallCount())

	// flush (as fired on composer.submitted) forces a refetch
	FlushProductListing()
	rec = doJSON(t, srv, http.MethodGet, "/api/products", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first+1, httpmock.GetTotalCallCount())
}

func TestPreviewImageRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	token := loginToken(t, srv)

	stageImages(t, srv, token, "front.jpg")

	rec := doJSON(t, srv, http.MethodGet, "/api/composer", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data composer.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Draft.Images, 1)

	previewID := resp.Data.Draft.Images[0].PreviewID
	rec = doJSON(t, srv, http.MethodGet, "/api/composer/images/"+previewID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "jpeg-bytes-front.jpg"))
}
