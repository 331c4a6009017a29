package dto

import "encoding/json"

// Envelope is the body shape of every API response.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Code    string          `json:"code,omitempty"`
	Errors  []FieldError    `json:"errors,omitempty"`
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string      `json:"field"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// SuccessResponse is what handlers render; Data is marshalled into the envelope.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// OK wraps data in a successful envelope.
func OK(data interface{}) SuccessResponse {
	return SuccessResponse{Success: true, Data: data}
}

// ErrorResponse is rendered by the error middleware.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}
