package db

import (
	"context"

	"printshop/internal/domain/model"
	"printshop/internal/logger"
	"printshop/internal/repository"

	"gorm.io/datatypes"
)

// 初期カタログ
func DefaultCatalog() []model.Product {
	return []model.Product{
		{
			Name:        "Premium Cotton T-Shirt",
			Description: "High-quality 100% cotton t-shirt, perfect for custom prints.",
			Price:       5000,
			Category:    model.CategoryTShirt,
			ImageURL:    "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=800&q=80",
			CustomizationOptions: datatypes.NewJSONType(model.CustomizationOptions{
				Methods: []string{"Screen Printing", "Flocking"},
				Colors:  []string{"White", "Black", "Navy", "Red"},
				Sizes:   []string{"S", "M", "L", "XL"},
			}),
		},
		{
			Name:        "Classic Polo Shirt",
			Description: "Elegant polo shirt suitable for professional branding.",
			Price:       7500,
			Category:    model.CategoryPolo,
			ImageURL:    "https://images.unsplash.com/photo-1625910515337-3f9c3469a51c?w=800&q=80",
			CustomizationOptions: datatypes.NewJSONType(model.CustomizationOptions{
				Methods: []string{"Screen Printing", "Flocking"},
				Colors:  []string{"White", "Black", "Blue"},
				Sizes:   []string{"S", "M", "L", "XL", "XXL"},
			}),
		},
		{
			Name:        "Urban Hoodie Jacket",
			Description: "Warm and stylish hoodie, great for large back prints.",
			Price:       15000,
			Category:    model.CategoryJacket,
			ImageURL:    "https://images.unsplash.com/photo-1556821840-3a63f95609a7?w=800&q=80",
			CustomizationOptions: datatypes.NewJSONType(model.CustomizationOptions{
				Methods: []string{"Screen Printing", "Flocking"},
				Colors:  []string{"Grey", "Black", "Navy"},
				Sizes:   []string{"M", "L", "XL"},
			}),
		},
	}
}

// 商品が1件もなければ投入する。投入した件数を返す。
func SeedProducts(ctx context.Context, products repository.ProductRepository, log *logger.Logger) (int, error) {
	n, err := products.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	catalog := DefaultCatalog()
	if err := products.CreateBulk(ctx, catalog); err != nil {
		return 0, err
	}
	log.Info("seeded catalog", "products", len(catalog))
	return len(catalog), nil
}
