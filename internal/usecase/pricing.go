package usecase

import (
	"context"
	"fmt"
	"net/http"

	"printshop/internal/domain/model"
	repo "printshop/internal/repository"
)

// カート1行 / 注文明細1行の入力
type OrderItemInput struct {
	ProductID             int64   `json:"productId"`
	Quantity              int64   `json:"quantity"`
	Size                  string  `json:"size"`
	Color                 string  `json:"color"`
	PersonalizationMethod string  `json:"personalizationMethod"`
	CustomDesignText      *string `json:"customDesignText,omitempty"`
	CustomDesignImageURL  *string `json:"customDesignImageUrl,omitempty"`
}

type pricedLine struct {
	product   model.Product
	in        OrderItemInput
	lineTotal int64
}

// カタログの価格で合計を出す。
// 商品が無い、オプションに無いものはフィールドエラーにまとめる。
func priceItems(ctx context.Context, products repo.ProductRepository, items []OrderItemInput) ([]pricedLine, int64, error) {
	cache := make(map[int64]model.Product, len(items))
	lines := make([]pricedLine, 0, len(items))
	var fields []FieldError
	var total int64

	for i, it := range items {
		p, ok := cache[it.ProductID]
		if !ok {
			found, err := products.FindByID(ctx, it.ProductID)
			if err == repo.ErrNotFound {
				fields = append(fields, FieldError{Field: itemField(i, "productId"), Message: "product not found"})
				continue
			}
			if err != nil {
				return nil, 0, NewHTTPError(http.StatusInternalServerError, "db error")
			}
			cache[it.ProductID] = found
			p = found
		}

		opts := p.Options()
		if !opts.HasSize(it.Size) {
			fields = append(fields, FieldError{Field: itemField(i, "size"), Message: "size not available for this product"})
		}
		if !opts.HasColor(it.Color) {
			fields = append(fields, FieldError{Field: itemField(i, "color"), Message: "color not available for this product"})
		}
		if !opts.HasMethod(it.PersonalizationMethod) {
			fields = append(fields, FieldError{Field: itemField(i, "personalizationMethod"), Message: "personalization method not available for this product"})
		}

		line := p.Price * it.Quantity
		total += line
		lines = append(lines, pricedLine{product: p, in: it, lineTotal: line})
	}

	if len(fields) > 0 {
		return nil, 0, NewValidationError(fields)
	}
	return lines, total, nil
}

func itemField(i int, name string) string {
	return fmt.Sprintf("items[%d].%s", i, name)
}
