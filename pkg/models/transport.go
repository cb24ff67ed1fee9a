package models

// StatusSuccess and StatusError are the values of the "status" field.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// CoverRequest is the body of POST /generate-cover.
// The Portuguese field names are accepted for older callers.
type CoverRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`

	LegacyTitle       string `json:"titulo,omitempty"`
	LegacyDescription string `json:"descricao,omitempty"`
}

// Normalize folds the legacy aliases into Title and Description when the
// primary fields are empty.
func (r *CoverRequest) Normalize() {
	if r.Title == "" {
		r.Title = r.LegacyTitle
	}
	if r.Description == "" {
		r.Description = r.LegacyDescription
	}
	r.LegacyTitle, r.LegacyDescription = "", ""
}

// CoverResponse is returned when a cover was resolved.
type CoverResponse struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// ErrorResponse represents an error response. Status is only set for
// internal errors.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status,omitempty"`
}

// TestResponse is returned by GET /test.
type TestResponse struct {
	Message     string `json:"message"`
	TotalImages int    `json:"total_images"`
}

// InfoResponse is returned by GET /.
type InfoResponse struct {
	Message   string        `json:"message"`
	Endpoints EndpointIndex `json:"endpoints"`
}

// EndpointIndex lists the routes in the service descriptor.
type EndpointIndex struct {
	GenerateCover string       `json:"generate_cover"`
	Test          string       `json:"test"`
	Health        string       `json:"health"`
	Example       CoverExample `json:"example"`
}

// CoverExample is a sample POST /generate-cover payload.
type CoverExample struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status      string     `json:"status"`
	Version     string     `json:"version"`
	Time        string     `json:"time"`
	TotalImages int        `json:"total_images"`
	Covers      CoverStats `json:"covers"`
}

// CoverStats counts generate-cover outcomes since process start.
type CoverStats struct {
	Resolved int64 `json:"resolved"`
	Rejected int64 `json:"rejected"`
	Failed   int64 `json:"failed"`

	// AvgProcessingTimeMs is the mean time spent on resolved covers.
	AvgProcessingTimeMs float64 `json:"avg_processing_time_ms"`
}
