package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"printshop/internal/domain/model"
	"printshop/internal/logger"
	"printshop/internal/notify"
	repo "printshop/internal/repository"

	"github.com/google/uuid"
)

// 注文の入力チェック（DBを見ない構造チェックだけ）
type OrderValidator interface {
	ValidatePlaceOrder(in PlaceOrderInput) []FieldError
	ValidateCartItems(items []OrderItemInput) []FieldError
}

// 注文確定後のイベント送信先。ブロックしないこと。
type OrderEventPublisher interface {
	Publish(ctx context.Context, evt notify.OrderCreated) error
}

type OrderUsecase struct {
	tx        repo.TransactionManager
	validator OrderValidator
	users     repo.UserRepository
	events    OrderEventPublisher
	log       *logger.Logger
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	validator OrderValidator,
	users repo.UserRepository,
	events OrderEventPublisher,
	log *logger.Logger,
) *OrderUsecase {
	return &OrderUsecase{
		tx:        tx,
		validator: validator,
		users:     users,
		events:    events,
		log:       log.With("service", "OrderUsecase"),
	}
}

type PlaceOrderInput struct {
	Items []OrderItemInput
	// nilならカタログの合計を使う
	TotalAmount    *int64
	IdempotencyKey string
}

// 一覧ではItemsを空にする
type OrderOutput struct {
	model.Order
	Items []model.OrderItem `json:"items,omitempty"`
}

var errIdempotencyRace = errors.New("idempotency key inserted concurrently")

func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if fields := u.validator.ValidatePlaceOrder(in); len(fields) > 0 {
		return OrderOutput{}, NewValidationError(fields)
	}
	key := strings.TrimSpace(in.IdempotencyKey)

	var out OrderOutput
	created := false

	//注文ヘッダと明細は1トランザクション
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		if key != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if found {
				items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				out = OrderOutput{Order: existing, Items: items}
				return nil
			}
		}

		//価格はクライアントを信用せずカタログから
		lines, total, err := priceItems(ctx, r.Products(), in.Items)
		if err != nil {
			return err
		}
		if in.TotalAmount != nil && *in.TotalAmount != total {
			return NewValidationError([]FieldError{{
				Field:   "totalAmount",
				Message: fmt.Sprintf("does not match catalog total %d", total),
			}})
		}

		order := model.Order{
			UserID:      userID,
			TotalAmount: total,
			Status:      model.OrderStatusPending,
		}
		if key != "" {
			k := key
			order.IdempotencyKey = &k
		}
		saved, err := r.Orders().Create(ctx, order)
		if errors.Is(err, repo.ErrDuplicateIdempotencyKey) {
			return errIdempotencyRace
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		rows := make([]model.OrderItem, 0, len(lines))
		for _, l := range lines {
			rows = append(rows, model.OrderItem{
				ProductID:             l.product.ID,
				Quantity:              l.in.Quantity,
				Size:                  l.in.Size,
				Color:                 l.in.Color,
				PersonalizationMethod: l.in.PersonalizationMethod,
				CustomDesignText:      l.in.CustomDesignText,
				CustomDesignImageURL:  l.in.CustomDesignImageURL,
			})
		}
		items, err := r.OrderItems().CreateBulk(ctx, saved.ID, rows)
		if err != nil {
			//ここで返せばヘッダも巻き戻る
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = OrderOutput{Order: saved, Items: items}
		created = true
		return nil
	})

	//競合（同時に同じキーが入った）はもう一回検索して同じ結果を返す
	if errors.Is(err, errIdempotencyRace) {
		return u.findByKey(ctx, userID, key)
	}
	if err != nil {
		return OrderOutput{}, err
	}

	if created {
		u.publishCreated(ctx, out)
	}
	return out, nil
}

func (u *OrderUsecase) findByKey(ctx context.Context, userID int64, key string) (OrderOutput, error) {
	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !found {
			return NewHTTPError(http.StatusConflict, "idempotency conflict")
		}
		items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = OrderOutput{Order: existing, Items: items}
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// commit後に通知を積む。失敗しても注文は成功のまま。
func (u *OrderUsecase) publishCreated(ctx context.Context, out OrderOutput) {
	if u.events == nil {
		return
	}

	evt := notify.OrderCreated{
		EventID:     uuid.NewString(),
		OrderID:     out.ID,
		UserID:      out.UserID,
		TotalAmount: out.TotalAmount,
		ItemCount:   len(out.Items),
		CreatedAt:   out.CreatedAt,
	}
	if u.users != nil {
		if user, err := u.users.FindByID(ctx, out.UserID); err == nil && user != nil {
			evt.Username = user.Username
		}
	}

	if err := u.events.Publish(ctx, evt); err != nil {
		u.log.Warn("order notification not queued", "order_id", out.ID, "error", err.Error())
	}
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			outs = append(outs, OrderOutput{Order: o})
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = OrderOutput{Order: o, Items: items}
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}
