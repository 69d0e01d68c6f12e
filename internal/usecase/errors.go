package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// 入力のどこが悪いか
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type HTTPError struct {
	Status  int
	Message string
	Fields  []FieldError
}

func (e *HTTPError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%d: %s (%s: %s)", e.Status, e.Message, e.Fields[0].Field, e.Fields[0].Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

// 400 + フィールドごとのエラー
func NewValidationError(fields []FieldError) error {
	return &HTTPError{
		Status:  http.StatusBadRequest,
		Message: "validation error",
		Fields:  fields,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
