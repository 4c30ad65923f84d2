package dto

import "time"

// ErrorDetail carries the stable error code and a caller-safe message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FailureResponse is the typed failure envelope returned on any error.
type FailureResponse struct {
	Success   bool        `json:"success"`
	Error     ErrorDetail `json:"error"`
	Timestamp time.Time   `json:"timestamp"`
}

// SuccessResponse wraps a successful payload with a timestamp for traceability.
type SuccessResponse struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewFailureResponse builds the failure envelope.
func NewFailureResponse(code, message string) FailureResponse {
	return FailureResponse{
		Success:   false,
		Error:     ErrorDetail{Code: code, Message: message},
		Timestamp: time.Now().UTC(),
	}
}

// NewSuccessResponse builds the success envelope.
func NewSuccessResponse(data any) SuccessResponse {
	return SuccessResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}
