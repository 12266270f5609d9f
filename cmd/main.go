package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sh1vam31/Food-Inventory-Backend/internal/adapter/logger"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/adapter/postgres"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/adapter/rabbitmq"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/app/catalog"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/app/inventory"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/app/order"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/config"

	amqpAdapter "github.com/sh1vam31/Food-Inventory-Backend/internal/adapter/amqp"
	httpAdapter "github.com/sh1vam31/Food-Inventory-Backend/internal/adapter/http"
)

func main() {
	mode := flag.String("mode", "api", "Service mode: api, stock-alert-subscriber")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	prefetch := flag.Int("prefetch", 1, "RabbitMQ prefetch count")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lgr := logger.New(*mode)

	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mqConn.Close()

	lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
		"host": cfg.RabbitMQ.Host,
	})

	switch *mode {
	case "api":
		db, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()

		lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
			"host": cfg.Database.Host,
			"db":   cfg.Database.Database,
		})

		runAPI(ctx, db, mqConn, lgr, cfg.HTTP.Port)

	case "stock-alert-subscriber":
		runAlertSubscriber(ctx, mqConn, lgr, *prefetch)

	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}
}

func runAPI(ctx context.Context, db postgres.DB, mqConn rabbitmq.Connection, lgr logger.Logger, port int) {
	materialRepo := postgres.NewMaterialRepository(db)
	foodItemRepo := postgres.NewFoodItemRepository(db)
	orderRepo := postgres.NewOrderRepository(db)

	publisher := rabbitmq.NewPublisher(mqConn)

	inventoryService := inventory.NewService(materialRepo, lgr)
	catalogService := catalog.NewService(foodItemRepo, lgr)
	orderService := order.NewService(orderRepo, foodItemRepo, materialRepo, publisher, lgr)

	materialHandler := httpAdapter.NewMaterialHandler(inventoryService, lgr)
	foodItemHandler := httpAdapter.NewFoodItemHandler(catalogService, lgr)
	orderHandler := httpAdapter.NewOrderHandler(orderService, lgr)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /raw-materials", materialHandler.Create)
	mux.HandleFunc("GET /raw-materials", materialHandler.List)
	mux.HandleFunc("GET /raw-materials/low-stock", materialHandler.ListLowStock)
	mux.HandleFunc("GET /raw-materials/{id}", materialHandler.Get)
	mux.HandleFunc("PUT /raw-materials/{id}", materialHandler.Update)
	mux.HandleFunc("DELETE /raw-materials/{id}", materialHandler.Delete)
	mux.HandleFunc("GET /raw-materials/{id}/usage", materialHandler.Usage)
	mux.HandleFunc("POST /raw-materials/{id}/restock", materialHandler.Restock)

	mux.HandleFunc("POST /food-items", foodItemHandler.Create)
	mux.HandleFunc("GET /food-items", foodItemHandler.List)
	mux.HandleFunc("GET /food-items/{id}", foodItemHandler.Get)
	mux.HandleFunc("PUT /food-items/{id}", foodItemHandler.Update)
	mux.HandleFunc("DELETE /food-items/{id}", foodItemHandler.Delete)

	mux.HandleFunc("POST /orders/check", orderHandler.CheckAvailability)
	mux.HandleFunc("POST /orders", orderHandler.Create)
	mux.HandleFunc("GET /orders", orderHandler.List)
	mux.HandleFunc("GET /orders/{id}", orderHandler.Get)
	mux.HandleFunc("POST /orders/{id}/cancel", orderHandler.Cancel)
	mux.HandleFunc("POST /orders/{id}/complete", orderHandler.Complete)

	handler := httpAdapter.LoggingMiddleware(lgr)(mux)
	handler = httpAdapter.RecoveryMiddleware(lgr)(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lgr.Info("service_started", fmt.Sprintf("API started on port %d", port), "startup", map[string]interface{}{
			"port": port,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		lgr.Error("shutdown_failed", "Graceful shutdown failed", "shutdown", nil, err)
	}
	lgr.Info("service_stopped", "API stopped", "shutdown", nil)
}

func runAlertSubscriber(ctx context.Context, mqConn rabbitmq.Connection, lgr logger.Logger, prefetch int) {
	consumer := rabbitmq.NewConsumer(mqConn, prefetch)
	handler := amqpAdapter.NewAlertHandler(lgr)

	lgr.Info("service_started", "Stock alert subscriber started", "startup", nil)

	if err := consumer.ConsumeLowStockAlerts(ctx, handler.HandleAlert); err != nil && ctx.Err() == nil {
		log.Fatalf("Alert subscriber failed: %v", err)
	}

	lgr.Info("service_stopped", "Stock alert subscriber stopped", "shutdown", nil)
}
