package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	handlers "github.com/lingora/payment-service/internal/adapter/handler/http"
	"github.com/lingora/payment-service/internal/config"
	"github.com/lingora/payment-service/internal/domain/plan"
	"github.com/lingora/payment-service/internal/infrastructure/billing/paypal"
	"github.com/lingora/payment-service/internal/infrastructure/billing/stripe"
	"github.com/lingora/payment-service/internal/usecase"
)

type Server struct {
	config *config.Config
	logger *zap.Logger
	echo   *echo.Echo
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{echo.GET, echo.POST},
	}))

	return &Server{
		config: cfg,
		logger: logger,
		echo:   e,
	}
}

func (s *Server) Start() error {
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	svc := s.config.Service
	timeout := svc.ProviderTimeout()

	catalog := buildCatalog(svc.Plans)

	stripeClient := stripe.New(svc.Stripe.SecretKey, timeout, s.logger)
	subscriptionService := usecase.NewSubscriptionService(stripeClient, catalog, s.logger)
	subscriptionHandler := handlers.NewSubscriptionHandler(
		subscriptionService, svc.Stripe.SecretKey != "", s.logger)

	paypalClient := paypal.New(svc.PayPal.ClientID, svc.PayPal.ClientSecret,
		svc.PayPal.Environment, timeout, s.logger)
	paypalHandler := handlers.NewPayPalHandler(paypalClient, catalog, s.logger)

	mediaHandler := handlers.NewMediaHandler(
		&http.Client{Timeout: timeout}, svc.Media.AllowedHosts, s.logger)

	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": "payment",
		})
	})

	api := s.echo.Group("/api")

	payments := api.Group("/payments")
	payments.POST("/:provider/create-subscription", subscriptionHandler.CreateSubscription)
	payments.POST("/paypal/create-order", paypalHandler.CreateOrder)
	payments.POST("/paypal/capture-order", paypalHandler.CaptureOrder)

	api.GET("/media/proxy", mediaHandler.Proxy)
}

func buildCatalog(plans map[string]config.PlanConfig) *plan.Catalog {
	out := make([]plan.Plan, 0, len(plans))
	for key, p := range plans {
		out = append(out, plan.Plan{
			Key:         key,
			ProductName: p.ProductName,
			Amount:      p.Amount.Decimal,
			Currency:    p.Currency,
			Interval:    plan.Interval(p.Interval),
		})
	}
	return plan.NewCatalog(out...)
}
