package dto

import (
	"time"

	"crm/internal/domain"
	"crm/internal/money"
)

type CreateOrderRequest struct {
	CustomerID int64      `json:"customerId"`
	ProductIDs []int64    `json:"productIds"`
	OrderDate  *time.Time `json:"orderDate"`
}

type UpdateOrderProductsRequest struct {
	ProductIDs []int64 `json:"productIds"`
}

type OrderResponse struct {
	ID            int64     `json:"id"`
	CustomerID    int64     `json:"customerId"`
	CustomerEmail string    `json:"customerEmail"`
	ProductIDs    []int64   `json:"productIds"`
	OrderDate     time.Time `json:"orderDate"`
	TotalAmount   string    `json:"totalAmount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type OrderEnvelope struct {
	Order   OrderResponse `json:"order"`
	Message string        `json:"message"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Count  int             `json:"count"`
}

func NewOrderResponse(o domain.Order) OrderResponse {
	ids := o.ProductIDs
	if ids == nil {
		ids = []int64{}
	}
	return OrderResponse{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		CustomerEmail: o.CustomerEmail,
		ProductIDs:    ids,
		OrderDate:     o.OrderDate,
		TotalAmount:   money.Format(o.TotalAmount),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func NewOrderResponses(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = NewOrderResponse(o)
	}
	return out
}
