package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"textile-backoffice/internal/auth"
	"textile-backoffice/internal/catalog"
	"textile-backoffice/internal/config"
	"textile-backoffice/internal/db"
	"textile-backoffice/internal/logger"
	"textile-backoffice/internal/media"
	"textile-backoffice/internal/middleware"
	"textile-backoffice/internal/party"
	"textile-backoffice/internal/report"
	"textile-backoffice/internal/repository"
	"textile-backoffice/internal/sales"
)

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		appLogger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	if err := db.RunMigrations(cfg.Database, "./migrations"); err != nil {
		appLogger.Fatal("failed to run migrations", zap.Error(err))
	}

	blobStore, err := media.NewDiskBlobStore(cfg.Blob.Dir, []byte(cfg.Blob.Secret))
	if err != nil {
		appLogger.Fatal("failed to open blob store", zap.Error(err))
	}
	resolver := media.NewResolver(blobStore, appLogger,
		media.WithURLTTL(cfg.Blob.URLTTL),
		media.WithFanout(cfg.Blob.Fanout))

	addressRepo := repository.NewAddressRepository(conn.Pool)
	areaRepo := repository.NewAreaRepository(conn.Pool)
	partyRepo := repository.NewPartyRepository(conn.Pool, addressRepo)
	orderRepo := repository.NewOrderRepository(conn.Pool)
	productRepo := repository.NewProductRepository(conn.Pool)
	salesRepo := repository.NewSalesRepository(conn.Pool)

	partyService := party.NewService(conn, partyRepo, addressRepo, areaRepo, productRepo, resolver, appLogger)
	catalogService := catalog.NewService(orderRepo, productRepo, resolver, appLogger)
	salesService := sales.NewService(salesRepo, addressRepo, appLogger)
	reportService := report.NewService(partyRepo, salesService, appLogger)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	authMiddleware := auth.Middleware(cfg.Auth.Token)
	loaderMiddleware := middleware.DataLoaderMiddleware(addressRepo)
	logging := middleware.LoggingMiddleware(appLogger)

	wrap := func(h http.Handler) http.Handler {
		return corsHandler.Handler(
			middleware.MetricsMiddleware(
				logging(
					authMiddleware(
						loaderMiddleware(h)))))
	}

	mux := http.NewServeMux()
	mux.Handle("/api/parties", wrap(party.NewHTTPHandler(partyService)))
	mux.Handle("/api/parties/", wrap(party.NewHTTPHandler(partyService)))
	mux.Handle("/api/orders", wrap(catalog.NewHTTPHandler(catalogService)))
	mux.Handle("/api/orders/", wrap(catalog.NewHTTPHandler(catalogService)))
	mux.Handle("/api/products", wrap(catalog.NewHTTPHandler(catalogService)))
	mux.Handle("/api/products/", wrap(catalog.NewHTTPHandler(catalogService)))
	mux.Handle("/api/sales", wrap(sales.NewHTTPHandler(salesService)))
	mux.Handle("/api/reports/", wrap(report.NewHTTPHandler(reportService)))
	mux.Handle("/media/files/", corsHandler.Handler(middleware.MetricsMiddleware(logging(media.NewHTTPHandler(blobStore)))))
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("starting server", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("server forced to shutdown", zap.Error(err))
	}

	appLogger.Info("server exited")
}
