package provider

// MediaDescriptor is the provider-agnostic shape of one search result; the
// same fields travel on into playlist items when a result is saved.
type MediaDescriptor struct {
	ID          string `json:"id"`
	Kind        string `json:"type"` // always "youtube" for this provider
	Title       string `json:"title"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	DurationSec int    `json:"durationSec"`
	Views       int64  `json:"views"`
	Embeddable  bool   `json:"embeddable"`
}
