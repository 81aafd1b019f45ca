package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habitflow-payments/internal/client"
	"habitflow-payments/internal/config"
	"habitflow-payments/internal/repository"
	"habitflow-payments/internal/server"
	"habitflow-payments/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	setupLogger(&cfg.Log)

	db := client.InitMysqlClient(cfg.DatabaseURL)
	authClient := client.NewAuthClient(&cfg.Auth)
	stripeClient := client.NewStripeClient(&cfg.Stripe)
	marketingClient := client.NewMarketingClient(&cfg.Marketing)

	profileRepo := repository.NewProfileRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	ruleRepo := repository.NewAutoEnrollRuleRepository(db)
	stateRepo := repository.NewSubscriptionStateRepository(db)
	productRepo := repository.NewProductRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	if err := productRepo.Seed(context.Background()); err != nil {
		log.Error().Err(err).Msg("seed product catalog")
	}

	reconciler := service.NewReconcilerService(
		profileRepo,
		orderRepo,
		enrollmentRepo,
		ruleRepo,
		stateRepo,
		productRepo,
		webhookEventRepo,
		authClient,
		stripeClient,
		marketingClient,
		cfg.Auth.PageSize,
		cfg.Auth.MaxPages,
	)
	adminService := service.NewAdminService(orderRepo, enrollmentRepo)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(reconciler, adminService, cfg.Stripe.WebhookSecret, cfg.Admin.ServiceToken)

	log.Info().Str("addr", serverAddr).Msg("starting HTTP server")
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info().Msg("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("HTTP server shutdown error")
	}
}

func setupLogger(cfg *config.Log) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
