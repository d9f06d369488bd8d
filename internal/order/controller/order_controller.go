package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"crm/internal/api"
	"crm/internal/domain"
	"crm/internal/dto"
	apperrors "crm/internal/errors"
	"crm/internal/order/repository"
)

type OrderUseCase interface {
	CreateOrder(ctx context.Context, customerID int64, productIDs []int64, orderDate *time.Time) (*domain.Order, error)
	UpdateOrderProducts(ctx context.Context, orderID int64, productIDs []int64) (*domain.Order, error)
	ListOrders(ctx context.Context, f repository.Filter) ([]domain.Order, error)
}

type OrderController struct {
	useCase OrderUseCase
	logger  *zap.Logger
}

func NewOrderController(useCase OrderUseCase, logger *zap.Logger) *OrderController {
	return &OrderController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	traceID, logger := api.Trace(c.logger)

	var req dto.CreateOrderRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	order, err := c.useCase.CreateOrder(r.Context(), req.CustomerID, req.ProductIDs, req.OrderDate)
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	api.WriteJSON(w, http.StatusCreated, dto.OrderEnvelope{
		Order:   dto.NewOrderResponse(*order),
		Message: "Order created successfully",
	}, logger)
}

func (c *OrderController) UpdateProducts(w http.ResponseWriter, r *http.Request) {
	traceID, logger := api.Trace(c.logger)

	orderID, err := api.PathID(chi.URLParam(r, "orderId"), "orderId")
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	var req dto.UpdateOrderProductsRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	order, err := c.useCase.UpdateOrderProducts(r.Context(), orderID, req.ProductIDs)
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, dto.OrderEnvelope{
		Order:   dto.NewOrderResponse(*order),
		Message: "Order products updated successfully",
	}, logger)
}

func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	traceID, logger := api.Trace(c.logger)

	filter, err := parseListFilter(r)
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	orders, err := c.useCase.ListOrders(r.Context(), filter)
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, dto.OrderListResponse{
		Orders: dto.NewOrderResponses(orders),
		Count:  len(orders),
	}, logger)
}

func parseListFilter(r *http.Request) (repository.Filter, error) {
	var f repository.Filter

	if raw := r.URL.Query().Get("customer_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return f, apperrors.NewValidationError("invalid customer_id", apperrors.ValidationDetail{
				Field:   "customer_id",
				Message: "customer_id must be a positive integer",
			})
		}
		f.CustomerID = &id
	}

	from, err := api.QueryTime(r, "order_date_gte")
	if err != nil {
		return f, err
	}
	f.OrderDateFrom = from

	if f.Limit, err = api.QueryInt(r, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = api.QueryInt(r, "offset"); err != nil {
		return f, err
	}

	return f, nil
}
