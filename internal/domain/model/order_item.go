package model

// 注文明細。注文と同じトランザクションでだけ作られる。
type OrderItem struct {
	ID                    int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID               int64   `gorm:"not null;index" json:"orderId"`
	ProductID             int64   `gorm:"not null;index" json:"productId"`
	Quantity              int64   `gorm:"not null;check:chk_order_items_quantity,quantity >= 1" json:"quantity"`
	Size                  string  `gorm:"type:varchar(20);not null" json:"size"`
	Color                 string  `gorm:"type:varchar(50);not null" json:"color"`
	PersonalizationMethod string  `gorm:"type:varchar(100);not null" json:"personalizationMethod"`
	CustomDesignText      *string `gorm:"type:text" json:"customDesignText,omitempty"`
	CustomDesignImageURL  *string `gorm:"column:custom_design_image_url;type:text" json:"customDesignImageUrl,omitempty"`
}
