package main

import (
	"log"
	"time"

	"payment-service/internal/config"
	httpctrl "payment-service/internal/controllers/http"
	mmysql "payment-service/internal/infra/mysql"
	"payment-service/internal/infra/rabbitmq"
	"payment-service/internal/notify"
	"payment-service/internal/payment"
	mysqlrepo "payment-service/internal/repository/mysql"
	"payment-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	cfg := config.Load()

	db, err := mmysql.NewMySQL(cfg)
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	store := mysqlrepo.NewStore(db)

	publisher, err := rabbitmq.NewPublisher(cfg.AMQPURL, "orders.exchange")
	if err != nil {
		log.Fatalf("failed to init publisher: %v", err)
	}
	defer publisher.Close()

	mailer := notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.FromEmail)
	dispatcher := notify.NewDispatcher(mailer, cfg.AdminEmail)

	// A missing secret keeps the webhook route failing closed instead of
	// skipping verification.
	var verifier payment.Verifier
	if v, err := payment.NewStripeVerifier(cfg.StripeWebhookSecret); err != nil {
		log.Printf("webhook verification disabled: %v", err)
	} else {
		verifier = v
	}

	reconciler := services.NewReconciliationService(store, publisher, dispatcher, cfg.LowStockThreshold)
	analytics := services.NewAnalyticsService(store)
	orders := services.NewOrderService(store, publisher, cfg.ShippingFee, cfg.Currency)

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		DB:           0,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	handler := httpctrl.NewHandler(verifier, reconciler, analytics, orders, redisClient)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	handler.RegisterRoutes(r, httpctrl.AuthRequired(cfg.JWTSecret, store.Users()))

	log.Printf("Starting payment reconciliation service on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server run: %v", err)
	}
}
