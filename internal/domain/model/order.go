package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
)

// 代金引換のみ。作成後は削除しない。
type Order struct {
	ID                       int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID                   int64       `gorm:"not null;index;uniqueIndex:idx_orders_user_idem" json:"userId"`
	TotalAmount              int64       `gorm:"not null" json:"totalAmount"`
	Status                   OrderStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	WhatsappNotificationSent bool        `gorm:"not null;default:false" json:"whatsappNotificationSent"`
	// キーなしの注文はNULL（重複可）
	IdempotencyKey *string   `gorm:"type:varchar(255);uniqueIndex:idx_orders_user_idem" json:"-"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
}
