package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-registration/internal/config"
	"ms-registration/internal/discount"
	discountdb "ms-registration/internal/discount/db"
	"ms-registration/internal/events"
	eventsdb "ms-registration/internal/events/db"
	"ms-registration/internal/kafka"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"
	"ms-registration/internal/registration"
	"ms-registration/internal/registration/db"
	regkafka "ms-registration/internal/registration/kafka"
	rediswrap "ms-registration/internal/registration/redis"
	"ms-registration/internal/registration_api"
)

func verifyConnections(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Connecting to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err == nil {
			err = sqldb.Ping()
			if err == nil {
				break
			}
		}
		logger.Error("DATABASE", fmt.Sprintf("PostgreSQL connection failed: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)
	bunDB := bun.NewDB(sqldb, pgdialect.New())
	logger.Info("DATABASE", "PostgreSQL connection successful")

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}

	if _, err := redisClient.ConfigSet(ctx, "notify-keyspace-events", "Ex").Result(); err != nil {
		logger.Warn("REDIS", fmt.Sprintf("Failed to enable keyspace notifications: %v", err))
	}
	logger.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

// subscribeSessionExpiry cancels draft orders whose session index entry
// expired without the order ever reaching checkout.
func subscribeSessionExpiry(rdb *redis.Client, orderService *registration.OrderService, store *db.DB, logger *logger.Logger) {
	ctx := context.Background()

	pubsub := rdb.PSubscribe(ctx, "__keyevent@0__:expired")
	logger.Info("REDIS", "Subscribed to keyevent expired notifications")

	go func() {
		for msg := range pubsub.Channel() {
			if !strings.HasPrefix(msg.Payload, rediswrap.KeyPrefix) {
				continue
			}
			sessionID := strings.TrimPrefix(msg.Payload, rediswrap.KeyPrefix)
			logger.Info("REAPER", fmt.Sprintf("Session expired: %s", sessionID))

			order, err := store.GetOrderBySessionID(ctx, sessionID)
			if err != nil {
				logger.Warn("REAPER", fmt.Sprintf("No order for expired session %s: %v", sessionID, err))
				continue
			}
			if order.Status != models.StatusDraft {
				logger.Info("REAPER", fmt.Sprintf("Order %s is %s, leaving it alone", order.OrderID, order.Status))
				continue
			}
			if err := orderService.CancelOrder(ctx, order.OrderID); err != nil {
				logger.Error("REAPER", fmt.Sprintf("Failed to cancel abandoned order %s: %v", order.OrderID, err))
			} else {
				logger.Info("REAPER", fmt.Sprintf("Cancelled abandoned draft %s", order.OrderID))
			}
		}
	}()
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting Registration Service initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	ctx := context.Background()
	bunDB, redisClient := verifyConnections(ctx, cfg, logger)
	defer bunDB.Close()
	defer redisClient.Close()

	if err := db.Migrate(ctx, bunDB); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
	}

	var publisher registration.EventPublisher
	if cfg.Kafka.Enabled {
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, cfg.Kafka.Topics.All()); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		publisher = regkafka.NewPublisher(producer, cfg.Kafka.Topics)
		logger.Info("KAFKA", "Kafka producer initialized")
	} else {
		publisher = regkafka.NoopPublisher{}
		logger.Warn("KAFKA", "Kafka disabled, order events will be dropped")
	}

	registration.InitStripe(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)

	orderStore := &db.DB{Bun: bunDB}
	eventService := events.NewService(&eventsdb.DB{Bun: bunDB})
	discountService := discount.NewService(&discountdb.DB{Bun: bunDB})
	sessionIndex := rediswrap.NewSessionIndex(redisClient, cfg.Redis.SessionTTL)

	orderService := registration.NewOrderService(orderStore, eventService, sessionIndex, publisher)

	handler := registration_api.NewHandler(orderService, eventService, discountService, logger)

	logger.Info("HTTP", "Setting up router")
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", handler.CreateOrder)
			r.Get("/{orderId}", handler.GetOrder)
			r.Put("/{orderRef}", handler.UpdateOrder)
			r.Delete("/{orderRef}", handler.CancelOrder)
			r.Put("/{orderRef}/participants/{participantNumber}", handler.UpsertParticipant)
			r.Post("/{orderId}/checkout", handler.Checkout)
			r.Get("/{orderId}/passes", handler.CheckinPasses)
		})
		r.Route("/events", func(r chi.Router) {
			r.Get("/", handler.ListEvents)
			r.Get("/slug/{slug}", handler.GetEventBySlug)
			r.Get("/{eventId}", handler.GetEvent)
		})
		r.Get("/discounts/validate", handler.ValidateDiscount)
		r.Post("/stripe/webhook", handler.StripeWebhook)
	})
	logger.Info("ROUTER", "Routes registered under /api")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	subscribeSessionExpiry(redisClient, orderService, orderStore, logger)

	go func() {
		logger.Info("HTTP", fmt.Sprintf("Registration Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		logger.Info("HTTP", "Registration Service shutdown complete")
	}
}
