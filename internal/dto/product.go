package dto

import (
	"time"

	"crm/internal/domain"
	"crm/internal/money"
)

type CreateProductRequest struct {
	Name  string       `json:"name"`
	Price DecimalInput `json:"price"`
	Stock *int         `json:"stock"`
}

type BulkCreateProductsRequest struct {
	Products []CreateProductRequest `json:"products"`
}

// ProductResponse renders price with exactly two decimals as a string.
type ProductResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ProductEnvelope struct {
	Product ProductResponse `json:"product"`
	Message string          `json:"message"`
}

type BulkCreateProductsResponse struct {
	Products []ProductResponse `json:"products"`
	Errors   []BulkItemError   `json:"errors"`
	Message  string            `json:"message"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Count    int               `json:"count"`
}

type RestockResponse struct {
	Success         bool              `json:"success"`
	Message         string            `json:"message"`
	UpdatedProducts []ProductResponse `json:"updatedProducts"`
}

func NewProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     money.Format(p.Price),
		Stock:     p.Stock,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func NewProductResponses(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = NewProductResponse(p)
	}
	return out
}
