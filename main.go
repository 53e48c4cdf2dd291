package main

import (
	"log"
	"net/http"

	"github.com/calbook/booking-engine/config"
	"github.com/calbook/booking-engine/internal/consumer"
	"github.com/calbook/booking-engine/internal/handler"
	"github.com/calbook/booking-engine/internal/middleware"
	"github.com/calbook/booking-engine/internal/notifier"
	"github.com/calbook/booking-engine/internal/repository"
	"github.com/calbook/booking-engine/internal/service"
	"github.com/calbook/booking-engine/pkg/database"
	"github.com/calbook/booking-engine/pkg/rabbitmq"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	rdb, err := database.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	// Development-only delivery sink; a real dispatch service binds the
	// same queue in production.
	if cfg.ConsumeNotifications {
		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect notification consumer: %v", err)
		}
		defer mqConsumer.Close()
		msgs, err := mqConsumer.Consume()
		if err != nil {
			log.Fatalf("failed to start consuming: %v", err)
		}
		consumer.NewNotificationConsumer().Start(msgs)
	}

	// Repositories
	bookingRepo := repository.NewBookingRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	calendarRepo := repository.NewCalendarRepository(rdb)

	// Services
	availabilitySvc := service.NewAvailabilityService(ruleRepo, bookingRepo, nil)
	bookingSvc := service.NewBookingService(bookingRepo, ruleRepo, notifier.NewAMQPNotifier(publisher), cfg.BaseURL, nil)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Validator = &requestValidator{validate: validator.New()}
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "booking-engine"})
	})

	handler.NewBookingHandler(availabilitySvc, bookingSvc, calendarRepo).RegisterRoutes(e)
	handler.NewAdminHandler(calendarRepo, ruleRepo, bookingSvc, nil).RegisterRoutes(e)

	log.Printf("Booking Engine starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
