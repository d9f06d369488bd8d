package controller

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"crm/internal/api"
	"crm/internal/bulk"
	"crm/internal/domain"
	"crm/internal/dto"
	"crm/internal/product/repository"
	"crm/internal/validation"
)

type ProductService interface {
	Create(ctx context.Context, in validation.ProductInput) (*domain.Product, error)
	BulkCreate(ctx context.Context, in []validation.ProductInput) (*bulk.Result[domain.Product], error)
	Restock(ctx context.Context) ([]domain.Product, error)
	List(ctx context.Context, f repository.Filter) ([]domain.Product, error)
}

type ProductController struct {
	service ProductService
	logger  *zap.Logger
}

func NewProductController(service ProductService, logger *zap.Logger) *ProductController {
	return &ProductController{
		service: service,
		logger:  logger,
	}
}

func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	traceID, logger := api.Trace(c.logger)

	var req dto.CreateProductRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	product, err := c.service.Create(r.Context(), toInput(req))
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	api.WriteJSON(w, http.StatusCreated, dto.ProductEnvelope{
		Product: dto.NewProductResponse(*product),
		Message: "Product created successfully",
	}, logger)
}

func (c *ProductController) BulkCreate(w http.ResponseWriter, r *http.Request) {
	traceID, logger := api.Trace(c.logger)

	var req dto.BulkCreateProductsRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	inputs := make([]validation.ProductInput, len(req.Products))
	for i, item := range req.Products {
		inputs[i] = toInput(item)
	}

	result, err := c.service.BulkCreate(r.Context(), inputs)
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, dto.BulkCreateProductsResponse{
		Products: dto.NewProductResponses(result.Committed),
		Errors:   dto.NewBulkItemErrors(result.Failures),
		Message:  fmt.Sprintf("%d products created, %d failed", len(result.Committed), len(result.Failures)),
	}, logger)
}

func (c *ProductController) Restock(w http.ResponseWriter, r *http.Request) {
	traceID, logger := api.Trace(c.logger)

	updated, err := c.service.Restock(r.Context())
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	message := fmt.Sprintf("%d products restocked", len(updated))
	if len(updated) == 0 {
		message = "no products below the restock threshold"
	}

	api.WriteJSON(w, http.StatusOK, dto.RestockResponse{
		Success:         true,
		Message:         message,
		UpdatedProducts: dto.NewProductResponses(updated),
	}, logger)
}

func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	traceID, logger := api.Trace(c.logger)

	limit, err := api.QueryInt(r, "limit")
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}
	offset, err := api.QueryInt(r, "offset")
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	filter := repository.Filter{
		Name:   r.URL.Query().Get("name"),
		Limit:  limit,
		Offset: offset,
	}
	if r.URL.Query().Has("stock_lt") {
		stockLT, err := api.QueryInt(r, "stock_lt")
		if err != nil {
			api.WriteError(w, traceID, err, logger)
			return
		}
		filter.StockBelow = &stockLT
	}

	products, err := c.service.List(r.Context(), filter)
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, dto.ProductListResponse{
		Products: dto.NewProductResponses(products),
		Count:    len(products),
	}, logger)
}

func toInput(req dto.CreateProductRequest) validation.ProductInput {
	return validation.ProductInput{
		Name:  req.Name,
		Price: req.Price.String(),
		Stock: req.Stock,
	}
}
