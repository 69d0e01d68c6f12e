package notify

import (
	"encoding/json"
	"fmt"
	"time"
)

// 注文確定後に流すイベント
type OrderCreated struct {
	EventID     string    `json:"eventId"`
	OrderID     int64     `json:"orderId"`
	UserID      int64     `json:"userId"`
	Username    string    `json:"username,omitempty"`
	TotalAmount int64     `json:"totalAmount"`
	ItemCount   int       `json:"itemCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// WhatsAppに送る本文
func (e OrderCreated) Summary() string {
	who := e.Username
	if who == "" {
		who = fmt.Sprintf("user #%d", e.UserID)
	}
	return fmt.Sprintf(
		"New order #%d from %s: %d item(s), total %d FCFA, cash on delivery.",
		e.OrderID, who, e.ItemCount, e.TotalAmount,
	)
}

func encodeEvent(e OrderCreated) ([]byte, error) {
	return json.Marshal(e)
}

func decodeEvent(raw []byte) (OrderCreated, error) {
	var e OrderCreated
	if err := json.Unmarshal(raw, &e); err != nil {
		return OrderCreated{}, err
	}
	if e.OrderID <= 0 {
		return OrderCreated{}, fmt.Errorf("event without order id")
	}
	return e, nil
}
