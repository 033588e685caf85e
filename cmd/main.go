package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillov6/marketplace-service/internal/app"
	"github.com/kirillov6/marketplace-service/internal/config"
	"github.com/kirillov6/marketplace-service/internal/events"
	"github.com/kirillov6/marketplace-service/internal/gateway"
	"github.com/kirillov6/marketplace-service/internal/handler"
	"github.com/kirillov6/marketplace-service/internal/postgres"
	"github.com/kirillov6/marketplace-service/internal/repo"
	"github.com/kirillov6/marketplace-service/internal/service"
	"github.com/kirillov6/marketplace-service/pkg/cache"
	"github.com/kirillov6/marketplace-service/pkg/trm"

	"github.com/joho/godotenv"
)

func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	db, err := postgres.New(conf.Postgres)
	panicIfErr("failed to connect to db", err)
	defer db.Close()
	logger.Info("postgres connected")

	userRepo := repo.NewUserRepo(db)
	profileRepo := repo.NewProfileRepo(db)
	categoryRepo := repo.NewCategoryRepo(db)
	productRepo := repo.NewProductRepo(db)
	cartRepo := repo.NewCartRepo(db)
	addressRepo := repo.NewAddressRepo(db)
	orderRepo := repo.NewOrderRepo(db)
	paymentRepo := repo.NewPaymentRepo(db)
	deliveryRepo := repo.NewDeliveryRepo(db)
	analyticsRepo := repo.NewAnalyticsRepo(db)

	txManager := trm.NewManager(db)
	actorCache := cache.NewLRUCache(conf.Cache.Capacity, conf.Cache.TTL)
	publisher := events.NewPublisher(conf.Kafka)
	gatewayClient := gateway.NewClient(conf.Gateway)

	authService := service.NewAuthService(logger, txManager, userRepo, profileRepo, actorCache, conf.JWT.Secret, conf.JWT.TTL)
	catalogService := service.NewCatalogService(logger, productRepo, categoryRepo)
	cartService := service.NewCartService(logger, txManager, cartRepo, productRepo, profileRepo)
	addressService := service.NewAddressService(logger, txManager, addressRepo)
	orderService := service.NewOrderService(logger, txManager, orderRepo, productRepo, cartRepo, paymentRepo, deliveryRepo, profileRepo, profileRepo, publisher)
	deliveryService := service.NewDeliveryService(logger, txManager, deliveryRepo, orderRepo, publisher)
	paymentService := service.NewPaymentService(logger, txManager, orderRepo, paymentRepo, productRepo, cartRepo, profileRepo, gatewayClient, publisher, conf.Gateway)
	adminService := service.NewAdminService(logger, profileRepo, userRepo, actorCache)
	analyticsService := service.NewAnalyticsService(logger, analyticsRepo)

	handler.RegisterMetrics()

	application := app.New(logger, conf)
	application.SetupRoutes(authService, app.Handlers{
		Auth:       handler.NewAuthHandler(logger, authService),
		Catalog:    handler.NewCatalogHandler(logger, catalogService),
		Cart:       handler.NewCartHandler(logger, cartService),
		Addresses:  handler.NewAddressHandler(logger, addressService),
		Orders:     handler.NewOrderHandler(logger, orderService),
		Deliveries: handler.NewDeliveryHandler(logger, deliveryService),
		Payments:   handler.NewPaymentHandler(logger, paymentService),
		Admin:      handler.NewAdminHandler(logger, adminService, analyticsService),
	})
	application.SetStarters(actorCache)
	application.SetClosers(publisher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	panicIfErr("failed to start app", application.Start(ctx))
	<-ctx.Done()
	panicIfErr("failed to stop app", application.Stop())
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}
