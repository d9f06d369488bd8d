package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"crm/internal/bulk"
	"crm/internal/config"
	"crm/internal/customer"
	"crm/internal/infrastructure/database"
	"crm/internal/infrastructure/logger"
	"crm/internal/order"
	"crm/internal/product"
	"crm/internal/server"
	"crm/internal/validation"
)

func main() {
	configPath := flag.String("config", "", "optional config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.NewConnection(context.Background(), cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected", zap.String("driver", cfg.Database.Driver))

	txCfg := database.NewTxConfig(cfg.Database.Driver, cfg.Order.TxTimeout)
	validator := validation.New()
	coordinator := bulk.NewCoordinator(db, txCfg, logger.Component(zapLogger, "bulk"), cfg.Bulk.MaxItems)

	customerCtrl := customer.NewModule(db, txCfg, validator, coordinator, logger.Component(zapLogger, "customer"))
	productCtrl := product.NewModule(db, cfg, txCfg, validator, coordinator, logger.Component(zapLogger, "product"))
	orderCtrl := order.NewModule(db, cfg, txCfg, logger.Component(zapLogger, "order"))

	router := server.NewRouter(customerCtrl, productCtrl, orderCtrl, zapLogger)

	srv := server.New(cfg.Server.Port, router, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		zapLogger.Fatal("server error", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
