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

	"sales-service/config"
	"sales-service/internal/api"
	"sales-service/internal/broker"
	"sales-service/internal/domain"
	"sales-service/internal/mailer"
	"sales-service/internal/redisclient"
	"sales-service/internal/service"
	"sales-service/internal/store"
	"sales-service/internal/util"
	"sales-service/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting sales service")

	tp, err := util.InitTracer("sales-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicSales)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	// committed domain events fan out to kafka and the audit log
	dispatcher := broker.NewDispatcher()
	relay := broker.NewKafkaRelay(producer)
	auditLog := broker.SubscriberFunc{
		SubscriberName: "audit-log",
		Fn: func(ctx context.Context, e domain.Event) error {
			logger.Info("Domain event",
				zap.String("event_type", e.EventName()),
				zap.String("aggregate_id", e.AggregateID().String()))
			return nil
		},
	}
	for _, eventName := range []string{
		domain.EventTypeProductCreated,
		domain.EventTypeCategoryCreated,
		domain.EventTypeCustomerCreated,
		domain.EventTypeSaleCreated,
		domain.EventTypeSaleCompleted,
	} {
		dispatcher.Subscribe(eventName, relay)
		dispatcher.Subscribe(eventName, auditLog)
	}

	productRepo := store.NewProductRepo(db)
	categoryRepo := store.NewCategoryRepo(db)
	customerRepo := store.NewCustomerRepo(db)
	saleRepo := store.NewSaleRepo(db)
	uowFactory := store.NewFactory(db)

	mailSender := mailer.NewLogSender(cfg.Mail.FromAddress)

	productService := service.NewProductService(productRepo, categoryRepo, uowFactory, dispatcher, redisClient)
	categoryService := service.NewCategoryService(categoryRepo, uowFactory, dispatcher)
	customerService := service.NewCustomerService(customerRepo, uowFactory, dispatcher)
	saleService := service.NewSaleService(saleRepo, productRepo, customerRepo, uowFactory, dispatcher, mailSender, redisClient)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	auditConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicSales, cfg.Kafka.ConsumerGroup)
	auditWorker := worker.NewAuditWorker(auditConsumer, db)
	go func() {
		if err := auditWorker.Start(workerCtx); err != nil {
			log.Printf("Audit worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(productService, categoryService, customerService, saleService)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	auditWorker.Stop()

	log.Println("Server exited")
}
