package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	customerctrl "crm/internal/customer/controller"
	orderctrl "crm/internal/order/controller"
	productctrl "crm/internal/product/controller"
)

func NewRouter(
	customerCtrl *customerctrl.CustomerController,
	productCtrl *productctrl.ProductController,
	orderCtrl *orderctrl.OrderController,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", health)

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", customerCtrl.List)
		r.Post("/", customerCtrl.Create)
		r.Post("/bulk", customerCtrl.BulkCreate)
		r.Patch("/{customerId}", customerCtrl.Update)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", productCtrl.List)
		r.Post("/", productCtrl.Create)
		r.Post("/bulk", productCtrl.BulkCreate)
		r.Post("/restock", productCtrl.Restock)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", orderCtrl.List)
		r.Post("/", orderCtrl.Create)
		r.Put("/{orderId}/products", orderCtrl.UpdateProducts)
	})

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestId", middleware.GetReqID(r.Context())),
			)
		})
	}
}
