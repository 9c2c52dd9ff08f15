package domain

// StagedImage is a locally selected product image held in memory until the
// upload pipeline turns it into a durable URL. PreviewID addresses the raw
// bytes for the operator-facing preview endpoint.
type StagedImage struct {
	PreviewID   string `json:"previewId"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     []byte `json:"-"`
}
