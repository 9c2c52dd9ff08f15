package domain

// ProductPayload is one element of the catalog creation request body.
// Field names and shapes follow the storefront data API contract exactly.
type ProductPayload struct {
	Title        string   `json:"title"`
	ItemType     string   `json:"itemType"`
	Category     string   `json:"category"`
	ImageURLs    []string `json:"imageUrls"`
	Price        float64  `json:"price"`
	Sizes        []string `json:"sizes"`
	Colors       []string `json:"colors"`
	Tags         []string `json:"tags"`
	Customizable bool     `json:"customizable"`
	IsFeatured   bool     `json:"isFeatured"`
	Description  *string  `json:"description"`
}

// Product is a catalog row as returned by the data API listing endpoint.
// The console only reads these for the parent catalog view.
type Product struct {
	ID           string   `json:"_id"`
	Title        string   `json:"title"`
	ItemType     string   `json:"itemType"`
	Category     string   `json:"category"`
	ImageURLs    []string `json:"imageUrls"`
	Price        float64  `json:"price"`
	Sizes        []string `json:"sizes"`
	Colors       []string `json:"colors"`
	Tags         []string `json:"tags"`
	Customizable bool     `json:"customizable"`
	IsFeatured   bool     `json:"isFeatured"`
	Description  *string  `json:"description"`
	CreatedAt    string   `json:"createdAt"`
}
