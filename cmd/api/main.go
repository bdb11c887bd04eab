package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/grandpine/hotel-concierge/internal/api/router"
	"github.com/grandpine/hotel-concierge/internal/booking"
	appconfig "github.com/grandpine/hotel-concierge/internal/config"
	"github.com/grandpine/hotel-concierge/internal/llm"
	"github.com/grandpine/hotel-concierge/internal/observability/metrics"
	"github.com/grandpine/hotel-concierge/internal/pms"
	"github.com/grandpine/hotel-concierge/internal/session"
	"github.com/grandpine/hotel-concierge/internal/transcript"
	"github.com/grandpine/hotel-concierge/internal/voice"
	"github.com/grandpine/hotel-concierge/internal/whatsapp"
	"github.com/grandpine/hotel-concierge/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting hotel-concierge API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"hotel", cfg.HotelName,
	)

	ctx := context.Background()

	redisClient := newRedisClient(cfg)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err, "addr", cfg.RedisAddr)
		os.Exit(1)
	}
	sessions := session.NewStore(redisClient, cfg.SessionTTL)

	var transcripts *transcript.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		if err := db.PingContext(ctx); err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		transcripts = transcript.NewStore(db)
		logger.Info("transcript persistence enabled")
	}

	gateway, err := buildGateway(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize PMS gateway", "error", err)
		os.Exit(1)
	}

	llmClient, model, err := buildLLMClient(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize LLM client", "error", err)
		os.Exit(1)
	}

	metricsHandler, convMetrics, webhookMetrics := setupMetrics()

	responder := llm.NewResponder(llmClient, model,
		llm.WithMaxTokens(int32(cfg.LLMMaxTokens)),
		llm.WithTemperature(float32(cfg.LLMTemperature)),
	)
	controller := booking.NewController(gateway, responder,
		booking.WithHotelName(cfg.HotelName),
		booking.WithLogger(logger),
		booking.WithMetrics(convMetrics),
	)

	waHandler := whatsapp.NewHandler(controller, sessions, cfg.HotelName,
		whatsapp.WithAuthToken(cfg.TwilioAuthToken),
		whatsapp.WithTranscripts(transcripts),
		whatsapp.WithMetrics(webhookMetrics),
		whatsapp.WithLogger(logger),
	)
	voiceHandler := voice.NewHandler(controller, sessions, transcripts, logger)

	r := router.New(&router.Config{
		Logger:          logger,
		WhatsAppHandler: waHandler,
		VoiceHandler:    voiceHandler,
		RedisPing: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
		MetricsHandler:   metricsHandler,
		AdminJWTSecret:   cfg.AdminJWTSecret,
		WebhookRateLimit: 10,
		WebhookBurst:     20,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func newRedisClient(cfg *appconfig.Config) *redis.Client {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts)
}

// buildGateway selects the PMS backend: canned inventory for development, the
// QloApps REST API otherwise.
func buildGateway(cfg *appconfig.Config, logger *logging.Logger) (pms.Gateway, error) {
	if cfg.PMSMockMode || cfg.PMSBaseURL == "" {
		logger.Info("using mock PMS gateway")
		return pms.NewMockGateway(logger), nil
	}
	return pms.NewClient(pms.Config{
		BaseURL: cfg.PMSBaseURL,
		APIKey:  cfg.PMSAPIKey,
		Timeout: cfg.PMSTimeout,
		Logger:  logger,
	})
}

// buildLLMClient wires the configured provider as primary with the other as
// fallback when its credentials are present.
func buildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (llm.Client, string, error) {
	var gemini llm.Client
	if cfg.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, "", err
		}
		gemini = client
	}

	var bedrock llm.Client
	if cfg.LLMProvider == "bedrock" || cfg.AWSAccessKeyID != "" {
		awsCfg, err := loadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, "", err
		}
		bedrock = llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg))
	}

	switch {
	case cfg.LLMProvider == "bedrock" && bedrock != nil:
		if gemini != nil {
			logger.Info("LLM provider: bedrock with gemini fallback")
			return llm.NewFallbackClient(bedrock, gemini, logger), cfg.BedrockModelID, nil
		}
		logger.Info("LLM provider: bedrock")
		return bedrock, cfg.BedrockModelID, nil
	case gemini != nil:
		if bedrock != nil {
			logger.Info("LLM provider: gemini with bedrock fallback")
			return llm.NewFallbackClient(gemini, bedrock, logger), cfg.GeminiModel, nil
		}
		logger.Info("LLM provider: gemini")
		return gemini, cfg.GeminiModel, nil
	default:
		return nil, "", fmt.Errorf("no LLM provider configured: set GEMINI_API_KEY or LLM_PROVIDER=bedrock")
	}
}

func loadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	return awsconfig.LoadDefaultConfig(ctx, loaders...)
}

func setupMetrics() (http.Handler, *metrics.ConversationMetrics, *metrics.WebhookMetrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	convMetrics := metrics.NewConversationMetrics(registry)
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return handler, convMetrics, webhookMetrics
}
