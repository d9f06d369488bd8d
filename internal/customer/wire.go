package customer

import (
	"database/sql"

	"go.uber.org/zap"

	"crm/internal/bulk"
	"crm/internal/customer/controller"
	"crm/internal/customer/repository"
	"crm/internal/customer/service"
	"crm/internal/infrastructure/database"
	"crm/internal/validation"
)

func NewModule(
	db *sql.DB,
	txCfg database.TxConfig,
	validator *validation.Validator,
	coordinator *bulk.Coordinator,
	logger *zap.Logger,
) *controller.CustomerController {
	repo := repository.NewSQLCustomerRepository(db)
	svc := service.NewCustomerService(db, txCfg, repo, validator, coordinator, logger)
	return controller.NewCustomerController(svc, logger)
}
