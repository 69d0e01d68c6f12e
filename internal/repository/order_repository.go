package repository

import (
	"context"
	"errors"

	"printshop/internal/domain/model"
)

// 同じユーザーで同じ冪等キーの注文が既にある
var ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.Order, error)
	// IDとCreatedAtを埋めた注文を返す
	Create(ctx context.Context, order model.Order) (model.Order, error)

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)

	//通知済みフラグを立てる
	MarkNotificationSent(ctx context.Context, orderID int64) error
}
