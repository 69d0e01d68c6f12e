package notify

import (
	"context"
	"fmt"

	"printshop/internal/logger"
	"printshop/internal/repository"
)

// 注文サマリーを送る先
type Notifier interface {
	Notify(ctx context.Context, evt OrderCreated) error
}

// 送信せずログに残すだけ（WhatsAppのモック）
type LogNotifier struct {
	log *logger.Logger
	to  string
}

func NewLogNotifier(log *logger.Logger, to string) *LogNotifier {
	return &LogNotifier{log: log.With("notifier", "whatsapp-mock"), to: to}
}

func (n *LogNotifier) Notify(_ context.Context, evt OrderCreated) error {
	n.log.Info(fmt.Sprintf("[WhatsApp Mock] Sending order summary to %s for Order #%d", n.to, evt.OrderID),
		"order_id", evt.OrderID,
		"summary", evt.Summary(),
	)
	return nil
}

// 通知して、成功したら注文のフラグを立てる
type OrderNotificationHandler struct {
	log      *logger.Logger
	notifier Notifier
	orders   repository.OrderRepository
}

func NewOrderNotificationHandler(log *logger.Logger, notifier Notifier, orders repository.OrderRepository) *OrderNotificationHandler {
	return &OrderNotificationHandler{
		log:      log.With("service", "OrderNotificationHandler"),
		notifier: notifier,
		orders:   orders,
	}
}

func (h *OrderNotificationHandler) Handle(ctx context.Context, evt OrderCreated) error {
	if err := h.notifier.Notify(ctx, evt); err != nil {
		return fmt.Errorf("notify order %d: %w", evt.OrderID, err)
	}
	if err := h.orders.MarkNotificationSent(ctx, evt.OrderID); err != nil {
		return fmt.Errorf("mark order %d notified: %w", evt.OrderID, err)
	}
	h.log.Debug("order notification sent", "order_id", evt.OrderID)
	return nil
}
