package controller

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"crm/internal/api"
	"crm/internal/bulk"
	"crm/internal/customer/repository"
	"crm/internal/customer/service"
	"crm/internal/domain"
	"crm/internal/dto"
	"crm/internal/validation"
)

type CustomerService interface {
	Create(ctx context.Context, in validation.CustomerInput) (*domain.Customer, error)
	BulkCreate(ctx context.Context, in []validation.CustomerInput) (*bulk.Result[domain.Customer], error)
	Update(ctx context.Context, id int64, p service.Patch) (*domain.Customer, error)
	List(ctx context.Context, f repository.Filter) ([]domain.Customer, error)
}

type CustomerController struct {
	service CustomerService
	logger  *zap.Logger
}

func NewCustomerController(service CustomerService, logger *zap.Logger) *CustomerController {
	return &CustomerController{
		service: service,
		logger:  logger,
	}
}

func (c *CustomerController) Create(w http.ResponseWriter, r *http.Request) {
	traceID, logger := api.Trace(c.logger)

	var req dto.CreateCustomerRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	customer, err := c.service.Create(r.Context(), toInput(req))
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	api.WriteJSON(w, http.StatusCreated, dto.CustomerEnvelope{
		Customer: dto.NewCustomerResponse(*customer),
		Message:  "Customer created successfully",
	}, logger)
}

func (c *CustomerController) BulkCreate(w http.ResponseWriter, r *http.Request) {
	traceID, logger := api.Trace(c.logger)

	var req dto.BulkCreateCustomersRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	inputs := make([]validation.CustomerInput, len(req.Customers))
	for i, item := range req.Customers {
		inputs[i] = toInput(item)
	}

	result, err := c.service.BulkCreate(r.Context(), inputs)
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	logger.Info("bulk customers processed", zap.Int("committed", len(result.Committed)), zap.Int("failed", len(result.Failures)))

	api.WriteJSON(w, http.StatusOK, dto.BulkCreateCustomersResponse{
		Customers: dto.NewCustomerResponses(result.Committed),
		Errors:    dto.NewBulkItemErrors(result.Failures),
		Message:   fmt.Sprintf("%d customers created, %d failed", len(result.Committed), len(result.Failures)),
	}, logger)
}

func (c *CustomerController) Update(w http.ResponseWriter, r *http.Request) {
	traceID, logger := api.Trace(c.logger)

	id, err := api.PathID(chi.URLParam(r, "customerId"), "customerId")
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	var req dto.UpdateCustomerRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	customer, err := c.service.Update(r.Context(), id, service.Patch{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, dto.CustomerEnvelope{
		Customer: dto.NewCustomerResponse(*customer),
		Message:  "Customer updated successfully",
	}, logger)
}

func (c *CustomerController) List(w http.ResponseWriter, r *http.Request) {
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

	customers, err := c.service.List(r.Context(), repository.Filter{
		Name:   r.URL.Query().Get("name"),
		Email:  r.URL.Query().Get("email"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		api.WriteError(w, traceID, err, logger)
		return
	}

	api.WriteJSON(w, http.StatusOK, dto.CustomerListResponse{
		Customers: dto.NewCustomerResponses(customers),
		Count:     len(customers),
	}, logger)
}

func toInput(req dto.CreateCustomerRequest) validation.CustomerInput {
	return validation.CustomerInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
}
