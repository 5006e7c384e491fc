package errors

// ErrorDetail is the error payload embedded in API responses
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse is the envelope returned for every failed API request
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// NewErrorResponse builds the API error envelope for an error. The message
// prefers the hint when one was attached so internals never leak verbatim.
func NewErrorResponse(err error) *ErrorResponse {
	msg := Hint(err)
	if msg == "" {
		msg = err.Error()
	}
	return &ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Code:    Code(err),
			Message: msg,
			Details: ReportableDetails(err),
		},
	}
}
