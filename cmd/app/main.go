// File: cmd/app/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"corpdata-commerce/internal/config"
	"corpdata-commerce/internal/domain/ports/adapter"
	"corpdata-commerce/internal/infra/accounting"
	"corpdata-commerce/internal/infra/api"
	"corpdata-commerce/internal/infra/audience"
	pg "corpdata-commerce/internal/infra/db/postgres"
	"corpdata-commerce/internal/infra/logging"
	"corpdata-commerce/internal/infra/metrics"
	"corpdata-commerce/internal/infra/notify"
	"corpdata-commerce/internal/infra/payment"
	red "corpdata-commerce/internal/infra/redis"
	"corpdata-commerce/internal/infra/sched"
	"corpdata-commerce/internal/infra/worker"
	"corpdata-commerce/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	logger.Info().Str("version", version).Bool("dev", cfg.Runtime.Dev).Msg("starting")

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	instanceID := uuid.NewString()
	lock := red.NewLock(redisClient, instanceID, cfg.Redis.LockTTL)
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	catalogRepo := pg.NewCatalogRepo(pool)
	couponRepo := pg.NewCouponRepo(pool)
	orderRepo := pg.NewOrderRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	creditRepo := pg.NewCreditRepo(pool)
	unlockRepo := pg.NewUnlockRepo(pool)
	outboxRepo := pg.NewOutboxRepo(pool)

	// ---- Gateway ----
	var gateway adapter.PaymentGateway
	switch cfg.Gateway.Provider {
	case "razorpay":
		gateway = payment.NewRazorpayGateway(cfg.Gateway.Razorpay.KeyID, cfg.Gateway.Razorpay.KeySecret)
	default:
		gateway = payment.NewCashfreeGateway(cfg.Gateway.Cashfree.ClientID, cfg.Gateway.Cashfree.ClientSecret, cfg.Gateway.Cashfree.Sandbox)
	}
	logger.Info().Str("provider", gateway.Name()).Msg("payment gateway configured")

	// ---- External adapters ----
	mailer := notify.NewHTTPMailer(cfg.Notify.Email.BaseURL, cfg.Notify.Email.APIKey, cfg.Notify.Email.From)
	whatsapp := notify.NewWhatsAppClient(cfg.Notify.WhatsApp.BaseURL, cfg.Notify.WhatsApp.APIKey)
	audienceClient := audience.NewMailchimpClient(cfg.Audience.APIKey, cfg.Audience.Server, cfg.Audience.ListID)
	books := accounting.NewZohoBooksClient(cfg.Accounting.BaseURL, cfg.Accounting.OrganizationID,
		cfg.Accounting.RefreshToken, cfg.Accounting.ClientID, cfg.Accounting.ClientSecret)

	// ---- Use cases ----
	pricing := usecase.NewPricingEngine()
	couponVerifier := usecase.NewCouponVerifier(couponRepo, orderRepo)
	cart := usecase.NewCartCalculator(catalogRepo, pricing, couponVerifier)
	checkout := usecase.NewCheckoutUseCase(cart, orderRepo, gateway, logger)
	confirm := usecase.NewPaymentConfirmUseCase(orderRepo, subRepo, creditRepo, unlockRepo,
		couponRepo, outboxRepo, gateway, tm, logger)
	dispatcher := usecase.NewOutboxDispatcher(outboxRepo, mailer, whatsapp, audienceClient, logger)
	accountingSync := usecase.NewAccountingSyncUseCase(orderRepo, books, logger)
	audienceSync := usecase.NewAudienceSyncUseCase(subRepo, orderRepo, audienceClient, logger)
	admin := usecase.NewAdminUseCase(catalogRepo, couponRepo, logger)

	// ---- Workers ----
	pool2 := worker.NewPool(cfg.Scheduler.Workers, logger)
	pool2.Start(ctx)
	defer pool2.Stop()

	reconciler := sched.NewReconcileWorker(cfg.Scheduler.ReconcileInterval, cfg.Scheduler.ReconcileAfter,
		orderRepo, confirm, lock, logger)
	outboxWorker := sched.NewOutboxWorker(cfg.Scheduler.OutboxInterval, cfg.Scheduler.OutboxBatch,
		dispatcher, lock, pool2, logger)
	accountingWorker := sched.NewAccountingWorker(cfg.Scheduler.AccountingCron, accountingSync, lock, logger)
	audienceWorker := sched.NewAudienceWorker(cfg.Scheduler.AudienceCron, audienceSync, lock, logger)

	go func() { _ = reconciler.Run(ctx) }()
	go func() { _ = outboxWorker.Run(ctx) }()
	go func() { _ = accountingWorker.Run(ctx) }()
	go func() { _ = audienceWorker.Run(ctx) }()

	// ---- HTTP API ----
	auth := api.NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.JWTIssuer, 30*time.Minute)
	srv := api.NewServer(cart, checkout, confirm, admin, orderRepo, auth, rateLimiter,
		cfg.API.RateLimit, cfg.API.RateWindow, cfg.API.RequestTimeout, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.API.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Int("port", cfg.API.Port).Msg("http api listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
	cancel()
}
