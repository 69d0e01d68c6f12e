package model

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
)

// トークンに載せてよいロール
func (r Role) Valid() bool {
	return r == RoleCustomer
}

type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Email        string    `gorm:"type:varchar(255);not null" json:"email"`
	Location     string    `gorm:"type:varchar(255);not null" json:"location"`
	Role         Role      `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
}
