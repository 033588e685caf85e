package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/kirillov6/marketplace-service/internal/config"
	"github.com/kirillov6/marketplace-service/internal/entities"
	"github.com/kirillov6/marketplace-service/internal/handler"
	"github.com/kirillov6/marketplace-service/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type application struct {
	logger *slog.Logger

	router   chi.Router
	httpSrv  *http.Server
	starters []Starter
	closers  []io.Closer
}

func New(logger *slog.Logger, cfg config.Config) *application {
	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(chimw.Recoverer)
	router.Use(middleware.Metrics)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Cors.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	httpSrv := &http.Server{
		Handler: router,
		Addr:    net.JoinHostPort(cfg.Http.Host, cfg.Http.Port),
	}

	return &application{
		logger:  logger,
		router:  router,
		httpSrv: httpSrv,
	}
}

// Handlers groups everything the router mounts; auth scoping happens
// here, capability checks stay in the services.
type Handlers struct {
	Auth       *handler.AuthHandler
	Catalog    *handler.CatalogHandler
	Cart       *handler.CartHandler
	Addresses  *handler.AddressHandler
	Orders     *handler.OrderHandler
	Deliveries *handler.DeliveryHandler
	Payments   *handler.PaymentHandler
	Admin      *handler.AdminHandler
}

func (a *application) SetupRoutes(resolver middleware.ActorResolver, h Handlers) {
	a.router.Handle("/metrics", promhttp.Handler())
	a.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	a.router.Route("/api", func(r chi.Router) {
		h.Auth.Init(r)
		h.Catalog.InitPublic(r)
		// webhook authenticates with the gateway signature, not a token
		h.Payments.InitWebhook(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(resolver))

			h.Cart.Init(r)
			h.Addresses.Init(r)
			h.Orders.Init(r)
			h.Payments.Init(r)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(entities.RoleSeller, entities.RoleAdmin))
				h.Catalog.InitSeller(r)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(entities.RoleDeliverer, entities.RoleAdmin))
				h.Deliveries.Init(r)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(entities.RoleAdmin))
				h.Catalog.InitAdmin(r)
				h.Admin.Init(r)
			})
		})
	})
}

type Starter interface {
	Start(ctx context.Context) error
}

func (a *application) SetStarters(starters ...Starter) {
	a.starters = starters
}

func (a *application) SetClosers(closers ...io.Closer) {
	a.closers = closers
}

func (a *application) Start(ctx context.Context) error {
	for _, s := range a.starters {
		if err := s.Start(ctx); err != nil {
			return err
		}
	}

	go a.startServer()

	a.logger.Info("application started")
	return nil
}

func (a *application) startServer() {
	a.logger.Info("starting http server", slog.String("addr", a.httpSrv.Addr))
	if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.logger.Error("http server stopped", slog.Any("error", err))
	}
}

const gracefulShutdownTimeout = 5 * time.Second

func (a *application) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	if err := a.httpSrv.Shutdown(ctx); err != nil {
		return err
	}

	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Error("failed to close resource", slog.Any("error", err))
		}
	}

	a.logger.Info("application stopped")
	return nil
}
