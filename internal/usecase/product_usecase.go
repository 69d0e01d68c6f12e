package usecase

import (
	"context"
	"net/http"
	"strings"

	"printshop/internal/domain/model"
	repo "printshop/internal/repository"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo}
}

// GET /api/productsの入力DTO
type ListProductsInput struct {
	Category string
	Q        string
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) ([]model.Product, error) {
	category := strings.TrimSpace(in.Category)
	switch model.Category(category) {
	case "", model.CategoryTShirt, model.CategoryPolo, model.CategoryJacket:
	default:
		return []model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid category")
	}
	if len(in.Q) > 100 {
		return []model.Product{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}

	items, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Category: category,
		Q:        strings.TrimSpace(in.Q),
	})
	if err != nil {
		return []model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}
