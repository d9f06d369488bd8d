package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"crm/internal/domain"
	"crm/internal/dto"
	apperrors "crm/internal/errors"
	"crm/internal/order/repository"
)

type mockOrderUseCase struct {
	CreateOrderFunc         func(ctx context.Context, customerID int64, productIDs []int64, orderDate *time.Time) (*domain.Order, error)
	UpdateOrderProductsFunc func(ctx context.Context, orderID int64, productIDs []int64) (*domain.Order, error)
	ListOrdersFunc          func(ctx context.Context, f repository.Filter) ([]domain.Order, error)
}

func (m *mockOrderUseCase) CreateOrder(ctx context.Context, customerID int64, productIDs []int64, orderDate *time.Time) (*domain.Order, error) {
	return m.CreateOrderFunc(ctx, customerID, productIDs, orderDate)
}

func (m *mockOrderUseCase) UpdateOrderProducts(ctx context.Context, orderID int64, productIDs []int64) (*domain.Order, error) {
	return m.UpdateOrderProductsFunc(ctx, orderID, productIDs)
}

func (m *mockOrderUseCase) ListOrders(ctx context.Context, f repository.Filter) ([]domain.Order, error) {
	return m.ListOrdersFunc(ctx, f)
}

func newRouter(ctrl *OrderController) http.Handler {
	r := chi.NewRouter()
	r.Post("/orders", ctrl.Create)
	r.Put("/orders/{orderId}/products", ctrl.UpdateProducts)
	r.Get("/orders", ctrl.List)
	return r
}

func TestCreate_Success(t *testing.T) {
	uc := &mockOrderUseCase{
		CreateOrderFunc: func(ctx context.Context, customerID int64, productIDs []int64, orderDate *time.Time) (*domain.Order, error) {
			assert.Equal(t, int64(1), customerID)
			assert.Equal(t, []int64{1, 2}, productIDs)
			assert.Nil(t, orderDate)
			return &domain.Order{
				ID:            10,
				CustomerID:    customerID,
				CustomerEmail: "john@example.com",
				ProductIDs:    productIDs,
				TotalAmount:   decimal.RequireFromString("10.01"),
			}, nil
		},
	}
	router := newRouter(NewOrderController(uc, zap.NewNop()))

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"customerId":1,"productIds":[1,2]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var body dto.OrderEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, int64(10), body.Order.ID)
	assert.Equal(t, "10.01", body.Order.TotalAmount)
	assert.Equal(t, "john@example.com", body.Order.CustomerEmail)
	assert.Equal(t, "Order created successfully", body.Message)
}

func TestCreate_OrderDateParsed(t *testing.T) {
	uc := &mockOrderUseCase{
		CreateOrderFunc: func(ctx context.Context, customerID int64, productIDs []int64, orderDate *time.Time) (*domain.Order, error) {
			require.NotNil(t, orderDate)
			assert.True(t, time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC).Equal(*orderDate))
			return &domain.Order{ID: 1, OrderDate: *orderDate}, nil
		},
	}
	router := newRouter(NewOrderController(uc, zap.NewNop()))

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"customerId":1,"productIds":[1],"orderDate":"2026-04-02T10:00:00Z"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreate_MissingProducts(t *testing.T) {
	uc := &mockOrderUseCase{
		CreateOrderFunc: func(ctx context.Context, customerID int64, productIDs []int64, orderDate *time.Time) (*domain.Order, error) {
			return nil, apperrors.NewMissingIDsError("product", []int64{7, 9})
		},
	}
	router := newRouter(NewOrderController(uc, zap.NewNop()))

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"customerId":1,"productIds":[1,7,9]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND", body.Code)
	assert.Equal(t, []int64{7, 9}, body.MissingIDs)
	assert.Equal(t, "invalid product ids: 7, 9", body.Message)
}

func TestCreate_EmptyProducts(t *testing.T) {
	uc := &mockOrderUseCase{
		CreateOrderFunc: func(ctx context.Context, customerID int64, productIDs []int64, orderDate *time.Time) (*domain.Order, error) {
			return nil, apperrors.NewEmptyInputError("productIds", "at least one product is required")
		},
	}
	router := newRouter(NewOrderController(uc, zap.NewNop()))

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"customerId":1,"productIds":[]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "EMPTY_INPUT", body.Code)
}

func TestCreate_InvalidJSON(t *testing.T) {
	router := newRouter(NewOrderController(&mockOrderUseCase{}, zap.NewNop()))

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"customerId":`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreate_RetriesExhausted(t *testing.T) {
	uc := &mockOrderUseCase{
		CreateOrderFunc: func(ctx context.Context, customerID int64, productIDs []int64, orderDate *time.Time) (*domain.Order, error) {
			return nil, apperrors.NewTransientIOError("create order: max retries exceeded", errors.New("deadlock"))
		},
	}
	router := newRouter(NewOrderController(uc, zap.NewNop()))

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"customerId":1,"productIds":[1]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "deadlock")
}

func TestUpdateProducts_Success(t *testing.T) {
	uc := &mockOrderUseCase{
		UpdateOrderProductsFunc: func(ctx context.Context, orderID int64, productIDs []int64) (*domain.Order, error) {
			assert.Equal(t, int64(5), orderID)
			return &domain.Order{ID: orderID, ProductIDs: productIDs, TotalAmount: decimal.RequireFromString("2.5")}, nil
		},
	}
	router := newRouter(NewOrderController(uc, zap.NewNop()))

	req := httptest.NewRequest(http.MethodPut, "/orders/5/products", strings.NewReader(`{"productIds":[3]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body dto.OrderEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, []int64{3}, body.Order.ProductIDs)
	assert.Equal(t, "2.50", body.Order.TotalAmount)
}

func TestUpdateProducts_InvalidID(t *testing.T) {
	router := newRouter(NewOrderController(&mockOrderUseCase{}, zap.NewNop()))

	req := httptest.NewRequest(http.MethodPut, "/orders/abc/products", strings.NewReader(`{"productIds":[3]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestList_Filters(t *testing.T) {
	uc := &mockOrderUseCase{
		ListOrdersFunc: func(ctx context.Context, f repository.Filter) ([]domain.Order, error) {
			require.NotNil(t, f.CustomerID)
			assert.Equal(t, int64(3), *f.CustomerID)
			require.NotNil(t, f.OrderDateFrom)
			assert.True(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Equal(*f.OrderDateFrom))
			assert.Equal(t, 10, f.Limit)
			assert.Equal(t, 20, f.Offset)
			return []domain.Order{{ID: 1}, {ID: 2}}, nil
		},
	}
	router := newRouter(NewOrderController(uc, zap.NewNop()))

	req := httptest.NewRequest(http.MethodGet, "/orders?customer_id=3&order_date_gte=2026-01-01&limit=10&offset=20", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body dto.OrderListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, []int64{}, body.Orders[0].ProductIDs)
}

func TestList_InvalidCustomerID(t *testing.T) {
	router := newRouter(NewOrderController(&mockOrderUseCase{}, zap.NewNop()))

	req := httptest.NewRequest(http.MethodGet, "/orders?customer_id=x", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
