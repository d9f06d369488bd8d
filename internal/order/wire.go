package order

import (
	"database/sql"

	"go.uber.org/zap"

	"crm/internal/config"
	customerrepo "crm/internal/customer/repository"
	"crm/internal/infrastructure/database"
	"crm/internal/order/controller"
	orderrepo "crm/internal/order/repository"
	"crm/internal/order/service"
	"crm/internal/order/usecase"
	productrepo "crm/internal/product/repository"
)

func NewModule(db *sql.DB, cfg *config.Config, txCfg database.TxConfig, logger *zap.Logger) *controller.OrderController {
	orderRepo := orderrepo.NewSQLOrderRepository(db)
	orderProductRepo := orderrepo.NewSQLOrderProductRepository(db)
	customerRepo := customerrepo.NewSQLCustomerRepository(db)
	productRepo := productrepo.NewSQLProductRepository(db)

	orderSvc := service.NewOrderService(
		db,
		txCfg,
		customerRepo,
		productRepo,
		orderRepo,
		orderProductRepo,
		logger,
	)

	uc := usecase.NewOrderUseCase(orderSvc, logger, cfg.Order.MaxRetryAttempts)

	return controller.NewOrderController(uc, logger)
}
