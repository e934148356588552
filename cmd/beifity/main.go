package main

import (
	"context"
	"log"
	"net/http"

	"github.com/beifitycom/backend/config"
	"github.com/beifitycom/backend/internal/auth"
	"github.com/beifitycom/backend/internal/fee"
	"github.com/beifitycom/backend/internal/gateway"
	handler "github.com/beifitycom/backend/internal/handler/http"
	"github.com/beifitycom/backend/internal/logger"
	"github.com/beifitycom/backend/internal/middleware"
	"github.com/beifitycom/backend/internal/repository"
	"github.com/beifitycom/backend/internal/repository/postgres"
	"github.com/beifitycom/backend/internal/service"
	"github.com/beifitycom/backend/internal/worker"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {

	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Log.Sync()

	// create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// initialize database
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Log.Fatal("Error initializing database", zap.Error(err))
	}
	defer db.Close()

	// migrate database
	if err := db.Migrate(); err != nil {
		logger.Log.Fatal("Error migrating database", zap.Error(err))
	}

	token := auth.NewAuthToken([]byte(cfg.AuthTokenKey))

	gw := gateway.NewClient(cfg.SwiftBaseURL, cfg.SwiftAPIKey, cfg.SwiftChannelID, cfg.CallbackURL)

	// dependency injection
	orderRepo := repository.NewOrderRepository(db)
	txRepo := repository.NewTransactionRepository(db, fee.Default().Fee, cfg.CommissionRate)
	walletRepo := repository.NewWalletRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	payoutService := service.NewPayoutService(db, orderRepo, txRepo, walletRepo, outboxRepo, cfg.PlatformAccountID)
	checkoutService := service.NewCheckoutService(db, orderRepo, txRepo, inventoryRepo, outboxRepo, gw, payoutService)
	reconcileService := service.NewReconcileService(db, orderRepo, txRepo, walletRepo, inventoryRepo, outboxRepo, gw, cfg.PlatformAccountID)
	walletService := service.NewWalletService(walletRepo)

	orderHandler := handler.NewOrderHandler(checkoutService)
	paymentHandler := handler.NewPaymentHandler(reconcileService, cfg.SwiftWebhookKey)
	walletHandler := handler.NewWalletHandler(walletService)
	adminHandler := handler.NewAdminHandler(payoutService)

	router := chi.NewRouter()

	router.Use(middleware.Logging(logger.Log))

	// gateway callbacks are authenticated by signature, not bearer token
	router.Post("/api/payments/webhook", paymentHandler.Webhook())
	router.Get("/api/payments/verify/{reference}", paymentHandler.Verify())

	// routes that require authentication
	router.Group(func(group chi.Router) {
		group.Use(middleware.Auth(token))
		group.Post("/api/orders", orderHandler.PlaceOrder())
		group.Get("/api/orders", orderHandler.ListOrders())
		group.Get("/api/orders/{orderID}", orderHandler.GetOrder())
		group.Post("/api/orders/{orderID}/retry-payment", orderHandler.RetryPayment())
		group.Post("/api/orders/{orderID}/items/{itemID}/cancel", orderHandler.CancelItem())
		group.Post("/api/orders/{orderID}/items/{itemID}/ship", orderHandler.ItemStatusAction("ship"))
		group.Post("/api/orders/{orderID}/items/{itemID}/deliver", orderHandler.ItemStatusAction("deliver"))
		group.Post("/api/orders/{orderID}/items/{itemID}/accept", orderHandler.ItemStatusAction("accept"))
		group.Post("/api/orders/{orderID}/items/{itemID}/reject", orderHandler.ItemStatusAction("reject"))
		group.Get("/api/wallet/balance", walletHandler.GetBalance())
		group.Get("/api/wallet/payouts", walletHandler.GetPayoutHistory())
	})

	// manual settlement operations
	router.Group(func(group chi.Router) {
		group.Use(middleware.Auth(token))
		group.Use(middleware.RequireAdmin)
		group.Post("/api/admin/refunds", adminHandler.Refund())
		group.Post("/api/admin/payouts", adminHandler.Payout())
		group.Post("/api/admin/reversals", adminHandler.Reverse())
	})

	// deliver committed notifications after the fact
	outboxProcessor := worker.NewOutboxProcessor(outboxRepo, worker.LogSender{})
	go outboxProcessor.Run(ctx)

	logger.Log.Info("Running server", zap.String("addr", cfg.ServerAddr))

	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		logger.Log.Fatal("Error starting server", zap.Error(err))
	}
}
