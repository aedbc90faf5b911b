package models

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// Error codes
const (
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeUpstreamFailure = "UPSTREAM_FAILURE"
	ErrCodeNotConfigured   = "NOT_CONFIGURED"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)
