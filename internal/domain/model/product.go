package model

import "gorm.io/datatypes"

// t-shirt / polo / jacket
type Category string

const (
	CategoryTShirt Category = "t-shirt"
	CategoryPolo   Category = "polo"
	CategoryJacket Category = "jacket"
)

// 商品ごとに選べるカスタマイズ
type CustomizationOptions struct {
	Methods []string `json:"methods"`
	Colors  []string `json:"colors"`
	Sizes   []string `json:"sizes"`
}

func (o CustomizationOptions) HasMethod(m string) bool { return contains(o.Methods, m) }
func (o CustomizationOptions) HasColor(c string) bool  { return contains(o.Colors, c) }
func (o CustomizationOptions) HasSize(s string) bool   { return contains(o.Sizes, s) }

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// 価格はFCFA（整数、小数なし）
type Product struct {
	ID                   int64                                    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                 string                                   `gorm:"type:varchar(255);not null" json:"name"`
	Description          string                                   `gorm:"type:text;not null" json:"description"`
	Price                int64                                    `gorm:"not null" json:"price"`
	Category             Category                                 `gorm:"type:varchar(20);not null;index" json:"category"`
	ImageURL             string                                   `gorm:"column:image_url;not null" json:"imageUrl"`
	CustomizationOptions datatypes.JSONType[CustomizationOptions] `gorm:"not null" json:"customizationOptions"`
}

// JSONカラムの中身
func (p Product) Options() CustomizationOptions {
	return p.CustomizationOptions.Data()
}
