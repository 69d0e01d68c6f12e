package usecase

import (
	"context"

	repo "printshop/internal/repository"
)

// カートはクライアントが持つ。サーバーは値段を付けて返すだけ（保存しない）。
type CartUsecase struct {
	products  repo.ProductRepository
	validator OrderValidator
}

func NewCartUsecase(products repo.ProductRepository, validator OrderValidator) *CartUsecase {
	return &CartUsecase{products: products, validator: validator}
}

type CartItemResponse struct {
	ProductID             int64   `json:"productId"`
	Name                  string  `json:"name"`
	Price                 int64   `json:"price"`
	Quantity              int64   `json:"quantity"`
	LineTotal             int64   `json:"lineTotal"`
	Size                  string  `json:"size"`
	Color                 string  `json:"color"`
	PersonalizationMethod string  `json:"personalizationMethod"`
	CustomDesignText      *string `json:"customDesignText,omitempty"`
	CustomDesignImageURL  *string `json:"customDesignImageUrl,omitempty"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total int64              `json:"total"`
}

// 注文と同じチェックと価格計算
func (u *CartUsecase) Quote(ctx context.Context, items []OrderItemInput) (CartResponse, error) {
	if fields := u.validator.ValidateCartItems(items); len(fields) > 0 {
		return CartResponse{}, NewValidationError(fields)
	}

	lines, total, err := priceItems(ctx, u.products, items)
	if err != nil {
		return CartResponse{}, err
	}

	out := CartResponse{Items: make([]CartItemResponse, 0, len(lines)), Total: total}
	for _, l := range lines {
		out.Items = append(out.Items, CartItemResponse{
			ProductID:             l.product.ID,
			Name:                  l.product.Name,
			Price:                 l.product.Price,
			Quantity:              l.in.Quantity,
			LineTotal:             l.lineTotal,
			Size:                  l.in.Size,
			Color:                 l.in.Color,
			PersonalizationMethod: l.in.PersonalizationMethod,
			CustomDesignText:      l.in.CustomDesignText,
			CustomDesignImageURL:  l.in.CustomDesignImageURL,
		})
	}
	return out, nil
}
