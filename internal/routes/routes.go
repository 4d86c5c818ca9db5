// Package routes defines the API routing configuration and wires the
// dependency graph behind each handler.
package routes

import (
	"donare/internal/config"
	"donare/internal/handlers"
	"donare/internal/repositories"
	"donare/internal/repositories/cache"
	"donare/internal/services/checkout"
	"donare/internal/services/notification"
	"donare/internal/services/processor"
	"donare/internal/services/schedule"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB, cacheSvc *cache.CacheService, cfg *config.Config) {
	donorRepo := repositories.NewDonorRepository(db, cacheSvc)
	transactionRepo := repositories.NewTransactionRepository(db)

	gateway := processor.NewStripeGateway(cfg.StripeKey)
	reconciler := schedule.NewReconciler(transactionRepo)
	notifier := notification.NewService(cfg.Alerts)

	checkoutService := checkout.NewService(
		gateway,
		donorRepo,
		transactionRepo,
		reconciler,
		notifier,
		checkout.Config{
			CardFeeRate:   cfg.CardFeeRate,
			ReturnURL:     cfg.ReturnURL,
			InvoicePrefix: cfg.InvoicePrefix,
		},
	)

	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	healthHandler := handlers.NewHealthHandler(db, cacheSvc)

	app.Get("/health", healthHandler.Check)
	app.Post("/checkout/process-payment", checkoutHandler.ProcessPayment)
}
