package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"printshop/internal/usecase"
)

const (
	maxOrderLines        = 50
	maxQuantity          = 1000
	maxDesignTextLength  = 500
	maxDesignURLLength   = 2048
	maxIdempotencyKeyLen = 255
)

type orderValidator struct{}

func NewOrderValidator() usecase.OrderValidator {
	return &orderValidator{}
}

// 注文の構造チェック。DBは見ない。
func (v *orderValidator) ValidatePlaceOrder(in usecase.PlaceOrderInput) []usecase.FieldError {
	fields := v.ValidateCartItems(in.Items)

	if in.TotalAmount != nil && *in.TotalAmount < 0 {
		fields = append(fields, usecase.FieldError{Field: "totalAmount", Message: "must be >= 0"})
	}
	if len(strings.TrimSpace(in.IdempotencyKey)) > maxIdempotencyKeyLen {
		fields = append(fields, usecase.FieldError{Field: "idempotencyKey", Message: "must be at most 255 characters"})
	}
	return fields
}

func (v *orderValidator) ValidateCartItems(items []usecase.OrderItemInput) []usecase.FieldError {
	var fields []usecase.FieldError

	if len(items) == 0 {
		return append(fields, usecase.FieldError{Field: "items", Message: "must contain at least one item"})
	}
	if len(items) > maxOrderLines {
		return append(fields, usecase.FieldError{Field: "items", Message: fmt.Sprintf("must contain at most %d items", maxOrderLines)})
	}

	for i, it := range items {
		at := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }

		if it.ProductID <= 0 {
			fields = append(fields, usecase.FieldError{Field: at("productId"), Message: "must be > 0"})
		}
		if it.Quantity < 1 || it.Quantity > maxQuantity {
			fields = append(fields, usecase.FieldError{Field: at("quantity"), Message: fmt.Sprintf("must be between 1 and %d", maxQuantity)})
		}
		if strings.TrimSpace(it.Size) == "" {
			fields = append(fields, usecase.FieldError{Field: at("size"), Message: "required"})
		}
		if strings.TrimSpace(it.Color) == "" {
			fields = append(fields, usecase.FieldError{Field: at("color"), Message: "required"})
		}
		if strings.TrimSpace(it.PersonalizationMethod) == "" {
			fields = append(fields, usecase.FieldError{Field: at("personalizationMethod"), Message: "required"})
		}
		if it.CustomDesignText != nil && utf8.RuneCountInString(*it.CustomDesignText) > maxDesignTextLength {
			fields = append(fields, usecase.FieldError{Field: at("customDesignText"), Message: fmt.Sprintf("must be at most %d characters", maxDesignTextLength)})
		}
		if it.CustomDesignImageURL != nil && len(*it.CustomDesignImageURL) > maxDesignURLLength {
			fields = append(fields, usecase.FieldError{Field: at("customDesignImageUrl"), Message: fmt.Sprintf("must be at most %d characters", maxDesignURLLength)})
		}
	}
	return fields
}
