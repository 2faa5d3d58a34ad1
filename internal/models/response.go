package models

// ErrorResponse - стандартная структура для ответа об ошибке в формате JSON.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse carries one message per failed input field,
// mirroring the `{"errors": [...]}` shape the frontend expects.
type ValidationErrorResponse struct {
	Errors []FieldError `json:"errors"`
}

// FieldError describes a single boundary validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"msg"`
}
