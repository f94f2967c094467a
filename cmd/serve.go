package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Eursukkul/event-registration/internal/consumer"
	"github.com/Eursukkul/event-registration/internal/handler"
	"github.com/Eursukkul/event-registration/internal/middleware"
	"github.com/Eursukkul/event-registration/internal/repository"
	"github.com/Eursukkul/event-registration/internal/service"
	"github.com/Eursukkul/event-registration/pkg/database"
	"github.com/Eursukkul/event-registration/pkg/rabbitmq"
	"github.com/Eursukkul/event-registration/pkg/tracing"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const serviceName = "event-registration"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the notification consumer",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "HTTP listen port")
	_ = viper.BindPFlag("SERVER_PORT", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		ServiceName:  serviceName,
	})
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			slog.Warn("tracing shutdown", "error", err)
		}
	}()

	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		return err
	}

	eventRepo := repository.NewEventRepository(db)
	regRepo := repository.NewRegistrationRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	txr := repository.NewTransactor(db)

	// Notices are best effort: without a broker the API still runs.
	var notifier service.Notifier
	if cfg.RabbitURL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			slog.Warn("rabbitmq publisher unavailable, notices disabled", "error", err)
		} else {
			defer publisher.Close()
			notifier = publisher

			if err := startConsumer(ctx, cfg.RabbitURL, notifRepo, regRepo); err != nil {
				slog.Warn("rabbitmq consumer unavailable", "error", err)
			}
		}
	}

	regSvc := service.NewRegistrationService(txr, eventRepo, regRepo, notifier)
	eventSvc := service.NewEventService(txr, eventRepo, regRepo, notifier)
	notifSvc := service.NewNotificationService(notifRepo)

	e := newServer([]byte(cfg.JWTSecret), regSvc, eventSvc, notifSvc)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("event registration service starting", "port", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(sctx)
}

func startConsumer(ctx context.Context, url string, notifRepo repository.NotificationRepository, regRepo repository.RegistrationRepository) error {
	mq, err := rabbitmq.NewConsumer(url)
	if err != nil {
		return err
	}
	msgs, err := mq.Consume()
	if err != nil {
		mq.Close()
		return err
	}
	consumer.NewNotificationConsumer(notifRepo, regRepo).Start(ctx, msgs)
	go func() {
		<-ctx.Done()
		mq.Close()
	}()
	return nil
}

func newServer(
	secret []byte,
	regSvc service.RegistrationService,
	eventSvc service.EventService,
	notifSvc service.NotificationService,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Validator = middleware.NewValidator()

	e.Use(echoMw.RequestID())
	e.Use(middleware.RequestLogger(slog.Default()))
	e.Use(echoMw.Recover())
	e.Use(echoMw.CORSWithConfig(echoMw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": serviceName})
	})

	api := e.Group("/api/v1", middleware.JWTAuth(secret))
	handler.NewRegistrationHandler(regSvc).RegisterRoutes(api)
	handler.NewEventHandler(eventSvc).RegisterRoutes(api)
	handler.NewAdminHandler(eventSvc, regSvc).RegisterRoutes(api)
	handler.NewNotificationHandler(notifSvc).RegisterRoutes(api)

	return e
}
