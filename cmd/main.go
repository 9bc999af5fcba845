/**
 * @description
 * This is the main entry point for the core-connector. It is responsible for
 * initializing all components of the service, including configuration,
 * logging, external API clients, the optional Redis token cache and RabbitMQ
 * alert producer, the orchestration service, and the HTTP server. It wires
 * everything together and starts the service.
 *
 * @dependencies
 * - net/http, os/signal: Standard Go libraries for the HTTP server lifecycle.
 * - github.com/go-chi/chi/v5: For HTTP routing.
 * - github.com/redis/go-redis/v9: Optional access-token cache.
 * - go.uber.org/zap: Structured logging.
 * - internal/api, internal/app, internal/config, internal/logging: Internal packages.
 * - pkg/momoclient, pkg/corebankclient, pkg/sdkclient, pkg/rabbitmq: External system clients.
 */

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/paystream/core-connector/internal/api"
	"github.com/paystream/core-connector/internal/app"
	"github.com/paystream/core-connector/internal/config"
	"github.com/paystream/core-connector/internal/logging"
	"github.com/paystream/core-connector/pkg/corebankclient"
	"github.com/paystream/core-connector/pkg/momoclient"
	"github.com/paystream/core-connector/pkg/rabbitmq"
	"github.com/paystream/core-connector/pkg/sdkclient"
)

func main() {
	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	logger := logging.MustNewLogger("core-connector", cfg.Environment)
	defer logger.Sync()

	logger.Info("starting core-connector", zap.String("port", cfg.ServerPort))

	// Validated during load; parse cannot fail here.
	serviceCharge, err := decimal.NewFromString(cfg.ServiceCharge)
	if err != nil {
		logger.Fatal("invalid service charge", zap.String("value", cfg.ServiceCharge), zap.Error(err))
	}

	// Optional Redis-backed cache for the mobile-money access token. A missing
	// or unreachable Redis degrades to a fresh token per request.
	var tokenCache momoclient.TokenCache
	if strings.TrimSpace(cfg.RedisURL) == "" {
		logger.Warn("redis url missing; access-token caching disabled")
	} else {
		redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
		if parseErr != nil {
			logger.Warn("redis url parse failed; access-token caching disabled", zap.Error(parseErr))
		} else {
			redisClient := redis.NewClient(redisOptions)
			pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelPing()
			if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
				logger.Warn("redis ping failed; access-token caching disabled", zap.Error(pingErr))
				redisClient.Close()
			} else {
				defer redisClient.Close()
				tokenCache = momoclient.NewRedisTokenCache(redisClient, cfg.RedisKeyPrefix)
				logger.Info("redis connected")
			}
		}
	}

	// Initialize the RabbitMQ producer for refund-failure alerts. The service
	// only publishes, so a missing broker degrades to log-only alerting.
	var alerts rabbitmq.Publisher
	if strings.TrimSpace(cfg.RabbitMQURL) == "" {
		logger.Warn("rabbitmq url missing; refund alerts will be log-only")
		alerts = rabbitmq.NewAlertProducerFallback(logger)
	} else {
		producer, prodErr := rabbitmq.NewAlertProducer(cfg.RabbitMQURL, logger)
		if prodErr != nil {
			logger.Warn("rabbitmq producer unavailable; using fallback", zap.Error(prodErr))
			alerts = rabbitmq.NewAlertProducerFallback(logger)
		} else {
			defer producer.Close()
			alerts = producer
			logger.Info("rabbitmq producer connected")
		}
	}

	// Initialize the external system clients.
	momoClient := momoclient.NewClient(momoclient.Config{
		BaseURL:      cfg.MomoBaseURL,
		ClientID:     cfg.MomoClientID,
		ClientSecret: cfg.MomoClientSecret,
		GrantType:    cfg.MomoGrantType,
		Country:      cfg.MomoCountry,
		Currency:     cfg.MomoCurrency,
	}, tokenCache, logger)

	coreBankClient := corebankclient.NewClient(corebankclient.Config{
		BaseURL:  cfg.CoreBankBaseURL,
		TenantID: cfg.CoreBankTenantID,
		Username: cfg.CoreBankUsername,
		Password: cfg.CoreBankPassword,
	})

	sdkClient := sdkclient.NewClient(cfg.SDKBaseURL)

	// Initialize the orchestration service with its dependencies.
	service := app.NewService(
		app.Settings{
			SupportedIDType: cfg.SupportedIDType,
			Currency:        cfg.SupportedCurrency,
			ServiceCharge:   serviceCharge,
			QuoteExpiry:     time.Duration(cfg.QuoteExpirationHours) * time.Hour,
			DisbursementPIN: cfg.MomoDisbursementPIN,
			Locale:          cfg.CoreBankLocale,
			DateFormat:      cfg.CoreBankDateFormat,
			PaymentTypeID:   cfg.CoreBankPaymentTypeID,
			BankCountryCode: cfg.BankCountryCode,
			CheckDigits:     cfg.CheckDigits,
			BankID:          cfg.BankID,
			AccountPrefix:   cfg.AccountPrefix,
			AlertExchange:   cfg.RefundAlertExchange,
		},
		momoClient,
		coreBankClient,
		sdkClient,
		nil,
		alerts,
		logger,
	)

	// Initialize the API handlers and router.
	handlers := api.NewConnectorHandlers(service, logger)
	router := api.ConnectorRoutes(handlers, api.AuthConfig{
		JWKSURL:  cfg.JWKSURL,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		APIKey:   cfg.InternalAPIKey,
	})

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server stopped unexpectedly", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutdown started")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
