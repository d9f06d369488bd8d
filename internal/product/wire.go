package product

import (
	"database/sql"

	"go.uber.org/zap"

	"crm/internal/bulk"
	"crm/internal/config"
	"crm/internal/infrastructure/database"
	"crm/internal/product/controller"
	"crm/internal/product/repository"
	"crm/internal/product/service"
	"crm/internal/validation"
)

func NewModule(
	db *sql.DB,
	cfg *config.Config,
	txCfg database.TxConfig,
	validator *validation.Validator,
	coordinator *bulk.Coordinator,
	logger *zap.Logger,
) *controller.ProductController {
	repo := repository.NewSQLProductRepository(db)
	svc := service.NewProductService(
		db,
		txCfg,
		repo,
		validator,
		coordinator,
		logger,
		cfg.Restock.Threshold,
		cfg.Restock.Target,
	)
	return controller.NewProductController(svc, logger)
}
