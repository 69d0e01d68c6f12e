package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"printshop/internal/domain/model"
	"printshop/internal/logger"
	"printshop/internal/notify"
	repo "printshop/internal/repository"
	"printshop/internal/usecase"
	"printshop/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	tx         *TxManagerMock
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	products   *ProductRepoMock
	events     *PublisherMock
	uc         *usecase.OrderUsecase
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		products:   new(ProductRepoMock),
		events:     new(PublisherMock),
	}
	f.tx = &TxManagerMock{Repos: &TxReposMock{orders: f.orders, orderItems: f.orderItems, products: f.products}}
	f.uc = usecase.NewOrderUsecase(f.tx, validator.NewOrderValidator(), nil, f.events, logger.NewNop())
	return f
}

func blackM(qty int64) usecase.OrderItemInput {
	return usecase.OrderItemInput{
		ProductID:             1,
		Quantity:              qty,
		Size:                  "M",
		Color:                 "Black",
		PersonalizationMethod: "Screen Printing",
	}
}

func int64Ptr(v int64) *int64 { return &v }

func requireHTTPError(t *testing.T, err error, status int) *usecase.HTTPError {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "want HTTPError, got %v", err)
	assert.Equal(t, status, he.Status)
	return he
}

func fieldNames(he *usecase.HTTPError) []string {
	out := make([]string, 0, len(he.Fields))
	for _, f := range he.Fields {
		out = append(out, f.Field)
	}
	return out
}

func TestPlaceOrder_Unauthenticated(t *testing.T) {
	f := newOrderFixture()

	_, err := f.uc.PlaceOrder(context.Background(), 0, usecase.PlaceOrderInput{Items: []usecase.OrderItemInput{blackM(1)}})
	requireHTTPError(t, err, http.StatusUnauthorized)

	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestPlaceOrder_StructuralValidation(t *testing.T) {
	f := newOrderFixture()

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{})
	he := requireHTTPError(t, err, http.StatusBadRequest)
	assert.Equal(t, []string{"items"}, fieldNames(he))

	bad := blackM(0)
	bad.Color = ""
	_, err = f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		Items:       []usecase.OrderItemInput{blackM(1), bad},
		TotalAmount: int64Ptr(-1),
	})
	he = requireHTTPError(t, err, http.StatusBadRequest)
	assert.ElementsMatch(t, []string{"items[1].quantity", "items[1].color", "totalAmount"}, fieldNames(he))

	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newOrderFixture()
	now := time.Now()

	f.tx.On("WithinTx", mock.Anything).Return()
	f.products.On("FindByID", mock.Anything, int64(1)).Return(tshirt(), nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.UserID == 7 && o.TotalAmount == 10000 && o.Status == model.OrderStatusPending && o.IdempotencyKey == nil
	})).Return(model.Order{ID: 10, UserID: 7, TotalAmount: 10000, Status: model.OrderStatusPending, CreatedAt: now}, nil)
	f.orderItems.On("CreateBulk", mock.Anything, int64(10), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 1 && items[0].Quantity == 2 && items[0].ProductID == 1
	})).Return([]model.OrderItem{{ID: 100, OrderID: 10, ProductID: 1, Quantity: 2, Size: "M", Color: "Black", PersonalizationMethod: "Screen Printing"}}, nil)
	f.events.On("Publish", mock.Anything, mock.MatchedBy(func(evt notify.OrderCreated) bool {
		return evt.OrderID == 10 && evt.UserID == 7 && evt.ItemCount == 1 && evt.TotalAmount == 10000 && evt.EventID != ""
	})).Return(nil).Once()

	out, err := f.uc.PlaceOrder(context.Background(), 7, usecase.PlaceOrderInput{
		Items:       []usecase.OrderItemInput{blackM(2)},
		TotalAmount: int64Ptr(10000),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10), out.ID)
	assert.Equal(t, int64(10000), out.TotalAmount)
	assert.Equal(t, model.OrderStatusPending, out.Status)
	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(10), out.Items[0].OrderID)

	f.orders.AssertExpectations(t)
	f.orderItems.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestPlaceOrder_TotalOmittedUsesCatalog(t *testing.T) {
	f := newOrderFixture()

	f.tx.On("WithinTx", mock.Anything).Return()
	f.products.On("FindByID", mock.Anything, int64(1)).Return(tshirt(), nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool { return o.TotalAmount == 15000 })).
		Return(model.Order{ID: 1, UserID: 1, TotalAmount: 15000, Status: model.OrderStatusPending}, nil)
	f.orderItems.On("CreateBulk", mock.Anything, int64(1), mock.Anything).Return([]model.OrderItem{{ID: 1, OrderID: 1}}, nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{Items: []usecase.OrderItemInput{blackM(3)}})
	require.NoError(t, err)
	assert.Equal(t, int64(15000), out.TotalAmount)
}

func TestPlaceOrder_TotalMismatchRejected(t *testing.T) {
	f := newOrderFixture()

	f.tx.On("WithinTx", mock.Anything).Return()
	f.products.On("FindByID", mock.Anything, int64(1)).Return(tshirt(), nil)

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		Items:       []usecase.OrderItemInput{blackM(2)},
		TotalAmount: int64Ptr(1),
	})
	he := requireHTTPError(t, err, http.StatusBadRequest)
	assert.Equal(t, []string{"totalAmount"}, fieldNames(he))

	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestPlaceOrder_CatalogChecks(t *testing.T) {
	f := newOrderFixture()

	f.tx.On("WithinTx", mock.Anything).Return()
	f.products.On("FindByID", mock.Anything, int64(1)).Return(tshirt(), nil)
	f.products.On("FindByID", mock.Anything, int64(404)).Return(model.Product{}, repo.ErrNotFound)

	wrong := blackM(1)
	wrong.Size = "XXL"
	wrong.PersonalizationMethod = "Embroidery"
	missing := blackM(1)
	missing.ProductID = 404

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		Items: []usecase.OrderItemInput{wrong, missing},
	})
	he := requireHTTPError(t, err, http.StatusBadRequest)
	assert.ElementsMatch(t, []string{"items[0].size", "items[0].personalizationMethod", "items[1].productId"}, fieldNames(he))

	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_ItemInsertFailure(t *testing.T) {
	f := newOrderFixture()

	f.tx.On("WithinTx", mock.Anything).Return()
	f.products.On("FindByID", mock.Anything, int64(1)).Return(tshirt(), nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(model.Order{ID: 5, UserID: 1}, nil)
	f.orderItems.On("CreateBulk", mock.Anything, int64(5), mock.Anything).Return(nil, errors.New("constraint failed"))

	_, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{Items: []usecase.OrderItemInput{blackM(1)}})
	requireHTTPError(t, err, http.StatusInternalServerError)

	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestPlaceOrder_PublishFailureIsSwallowed(t *testing.T) {
	f := newOrderFixture()

	f.tx.On("WithinTx", mock.Anything).Return()
	f.products.On("FindByID", mock.Anything, int64(1)).Return(tshirt(), nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(model.Order{ID: 3, UserID: 1, TotalAmount: 5000}, nil)
	f.orderItems.On("CreateBulk", mock.Anything, int64(3), mock.Anything).Return([]model.OrderItem{{ID: 1, OrderID: 3}}, nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(notify.ErrQueueFull)

	out, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{Items: []usecase.OrderItemInput{blackM(1)}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.ID)
	f.events.AssertNumberOfCalls(t, "Publish", 1)
}

func TestPlaceOrder_IdempotentReplay(t *testing.T) {
	f := newOrderFixture()
	existing := model.Order{ID: 8, UserID: 1, TotalAmount: 5000, Status: model.OrderStatusPending}

	f.tx.On("WithinTx", mock.Anything).Return()
	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "checkout-1").Return(existing, true, nil)
	f.orderItems.On("ListByOrderID", mock.Anything, int64(8)).Return([]model.OrderItem{{ID: 80, OrderID: 8, Quantity: 1}}, nil)

	out, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		Items:          []usecase.OrderItemInput{blackM(1)},
		IdempotencyKey: " checkout-1 ",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), out.ID)
	require.Len(t, out.Items, 1)

	f.products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestPlaceOrder_ConcurrentKeyReturnsWinner(t *testing.T) {
	f := newOrderFixture()
	winner := model.Order{ID: 11, UserID: 1, TotalAmount: 5000, Status: model.OrderStatusPending}

	f.tx.On("WithinTx", mock.Anything).Return()
	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "k").Return(model.Order{}, false, nil).Once()
	f.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "k").Return(winner, true, nil).Once()
	f.products.On("FindByID", mock.Anything, int64(1)).Return(tshirt(), nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.IdempotencyKey != nil && *o.IdempotencyKey == "k"
	})).Return(model.Order{}, repo.ErrDuplicateIdempotencyKey)
	f.orderItems.On("ListByOrderID", mock.Anything, int64(11)).Return([]model.OrderItem{{ID: 1, OrderID: 11}}, nil)

	out, err := f.uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{
		Items:          []usecase.OrderItemInput{blackM(1)},
		IdempotencyKey: "k",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), out.ID)

	f.tx.AssertNumberOfCalls(t, "WithinTx", 2)
	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestListMyOrders(t *testing.T) {
	f := newOrderFixture()

	_, err := f.uc.ListMyOrders(context.Background(), 0)
	requireHTTPError(t, err, http.StatusUnauthorized)

	f.tx.On("WithinTx", mock.Anything).Return()
	f.orders.On("ListByUserID", mock.Anything, int64(2)).Return([]model.Order{{ID: 4, UserID: 2}, {ID: 3, UserID: 2}}, nil)

	out, err := f.uc.ListMyOrders(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, int64(4), out[0].ID)
	assert.Nil(t, out[0].Items)
	f.orderItems.AssertNotCalled(t, "ListByOrderID", mock.Anything, mock.Anything)
}

func TestGetMyOrderDetail(t *testing.T) {
	f := newOrderFixture()

	f.tx.On("WithinTx", mock.Anything).Return()
	f.orders.On("FindByID", mock.Anything, int64(5)).Return(model.Order{ID: 5, UserID: 1}, nil)
	f.orders.On("FindByID", mock.Anything, int64(6)).Return(model.Order{}, repo.ErrNotFound)
	f.orderItems.On("ListByOrderID", mock.Anything, int64(5)).Return([]model.OrderItem{{ID: 50, OrderID: 5}}, nil)

	out, err := f.uc.GetMyOrderDetail(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)

	//他人の注文は404
	_, err = f.uc.GetMyOrderDetail(context.Background(), 2, 5)
	requireHTTPError(t, err, http.StatusNotFound)

	_, err = f.uc.GetMyOrderDetail(context.Background(), 1, 6)
	requireHTTPError(t, err, http.StatusNotFound)

	_, err = f.uc.GetMyOrderDetail(context.Background(), 1, 0)
	requireHTTPError(t, err, http.StatusBadRequest)
}
