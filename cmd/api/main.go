package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"clinic-relay/internal/config"
	"clinic-relay/internal/db"
	apihttp "clinic-relay/internal/http"
	"clinic-relay/internal/repository"
	"clinic-relay/internal/service"
	"clinic-relay/internal/webhook"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	messageRepo := repository.NewPgMessageRepository(pool)
	patientRepo := repository.NewPgPatientRepository(pool)
	apptRepo := repository.NewPgAppointmentRepository(pool)

	notifier := webhook.NewHTTPClient(
		cfg.WebhookURL,
		time.Duration(cfg.WebhookTimeoutSeconds)*time.Second,
		logger,
	)

	var sequencer service.SessionSequencer
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, messages will carry seq 0", zap.Error(err))
		} else {
			sequencer = service.NewRedisSessionSequencer(redisClient)
		}
		cancel()
	}

	relaySvc := service.NewRelayService(logger, messageRepo, notifier, sequencer)
	patientSvc := service.NewPatientService(patientRepo)
	apptSvc := service.NewAppointmentService(logger, apptRepo, notifier)

	chatHandler := apihttp.NewChatHandler(logger, relaySvc)
	patientHandler := apihttp.NewPatientHandler(logger, patientSvc)
	apptHandler := apihttp.NewAppointmentHandler(logger, apptSvc)
	healthHandler := apihttp.NewHealthHandler(logger, pool)
	router := apihttp.NewRouter(logger, chatHandler, patientHandler, apptHandler, healthHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("webhook", cfg.WebhookURL))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
