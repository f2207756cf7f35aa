package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/config"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.MustLoad()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		p, err := events.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		publisher = p
	}

	r := &repo.GormRepo{DB: db}

	var index search.Index = search.DB{Repo: r}
	if cfg.ESURL != "" {
		es, err := search.NewElastic(search.Config{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := es.Ping(pingCtx); err != nil {
			logger.Warn("search_fallback_sql", "reason", "elasticsearch unreachable", "error", err)
		} else {
			index = es
		}
		pingCancel()
	}

	catalog := service.NewCatalogService(r, index, publisher, cfg.ListingCacheTTL)
	orders := &service.OrderService{Repo: r, Publisher: publisher}
	checkout := &service.CheckoutService{Products: r, Orders: r, Publisher: publisher}

	if cfg.AdminEmail == "" || cfg.AdminPasswordHash == "" {
		logger.Warn("admin_login_disabled", "reason", "ADMIN_EMAIL or ADMIN_PASSWORD_HASH not set")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler:  &httpserver.CatalogHTTP{Svc: catalog},
		CartHandler:     &httpserver.CartHTTP{Catalog: catalog},
		CheckoutHandler: &httpserver.CheckoutHTTP{Svc: checkout, Orders: orders},
		OrderHandler:    &httpserver.OrderHTTP{Svc: orders},
		AdminHandler: &httpserver.AdminHTTP{
			Auth: &service.AdminAuth{
				Email:        cfg.AdminEmail,
				PasswordHash: cfg.AdminPasswordHash,
				JWTSecret:    cfg.JWTAccessSecret,
			},
			Metrics: &service.DashboardService{Repo: r, LowStockThreshold: cfg.LowStockThreshold},
		},
		JWTSecret: cfg.JWTAccessSecret,
		Ready:     func(ctx context.Context) error { return pkgdb.Ping(ctx, db) },
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	if err := publisher.Close(); err != nil {
		logger.Warn("kafka_close_error", "error", err)
	}
	_ = pkgdb.Close(db)

	logger.Info("server_stopped")
}
