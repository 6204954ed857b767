package request

// AddProductRequest is the payload for submitting a product URL for tracking.
type AddProductRequest struct {
	URL string `json:"url"`
}
