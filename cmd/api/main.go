package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/api"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/api/handler"
	apimiddleware "github.com/sanosuguru/go-airline-seat-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/application"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/config"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/infrastructure/kafka"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-airline-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/pkg/metrics"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/worker"
)

func main() {
	// .envがあれば読み込む（ローカル開発用）
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.NewLogger(os.Getenv("APP_ENV"))
	logger.Set(log)
	defer log.Sync()

	m := metrics.Init()

	// PostgreSQL接続とマイグレーション
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		log.Fatal("マイグレーション実行に失敗", zap.Error(err))
	}

	// Redis接続
	redisClient := redisinfra.NewClient(&cfg.Redis)
	defer redisClient.Close()

	lockManager := redisinfra.NewLockManager(redisClient)
	seatCache := redisinfra.NewSeatCache(redisClient)

	// Kafkaプロデューサー（無効時はnilのままイベント配信をスキップ）
	var publisher application.EventPublisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = producer
		log.Info("Kafkaイベント配信を有効化",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic))
	}

	// リポジトリとサービス
	txManager := postgres.NewTxManager(db)
	seatRepo := postgres.NewSeatRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	flightRepo := postgres.NewFlightRepository(db)

	seatService := application.NewSeatService(seatRepo, flightRepo, seatCache, cfg.Reservation.HoldTTL)
	flightService := application.NewFlightService(flightRepo, seatRepo)
	bookingService := application.NewBookingService(
		txManager, bookingRepo, seatRepo, flightRepo,
		lockManager, seatCache, publisher,
		cfg.Reservation.PaymentWindow, cfg.Reservation.CancelLeadTime,
	)

	// 期限切れスイーパー
	sweeper := worker.NewExpirationSweeper(bookingService, cfg.Reservation.SweepInterval)
	sweeperCtx, sweeperCancel := context.WithCancel(context.Background())
	go sweeper.Start(sweeperCtx)

	// Echoサーバー
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	apimiddleware.SetupMiddleware(e)
	e.Use(apimiddleware.PrometheusMiddleware(m))

	registerRoutes(e, seatService, bookingService, flightService)

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("サーバーをシャットダウンしています...")

	sweeperCancel()
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	log.Info("サーバーが正常にシャットダウンしました")
}

func registerRoutes(
	e *echo.Echo,
	seatService *application.SeatService,
	bookingService *application.BookingService,
	flightService *application.FlightService,
) {
	healthHandler := handler.NewHealthHandler()
	seatHandler := handler.NewSeatHandler(seatService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	staffHandler := handler.NewStaffHandler(bookingService)
	flightHandler := handler.NewFlightHandler(flightService)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), apimiddleware.MetricsBasicAuth())

	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)

	v1.POST("/airplanes", flightHandler.CreateAirplane)
	v1.GET("/airplanes/:id/seats", flightHandler.GetAirplaneSeats)

	v1.POST("/flights", flightHandler.Create)
	v1.GET("/flights", flightHandler.List)
	v1.GET("/flights/:id", flightHandler.GetByID)
	v1.GET("/flights/:id/seats", seatHandler.GetSeatMap)
	v1.GET("/flights/:id/seats/free-count", seatHandler.CountFree)

	v1.POST("/seats/:id/hold", seatHandler.Hold)
	v1.DELETE("/seats/:id/hold", seatHandler.Release)

	v1.POST("/bookings", bookingHandler.Create)
	v1.GET("/bookings", bookingHandler.GetUserBookings)
	v1.GET("/bookings/:id", bookingHandler.GetByID)
	v1.POST("/bookings/:id/pay", bookingHandler.Pay)
	v1.POST("/bookings/:id/cancel", bookingHandler.Cancel)

	v1.POST("/tickets/:id/cancel", bookingHandler.CancelTicket)
	v1.POST("/tickets/:id/check-in", bookingHandler.CheckIn)

	staff := v1.Group("/staff")
	staff.GET("/bookings/pnr/:code", staffHandler.SearchByPNR)
	staff.POST("/bookings/:id/cancel", staffHandler.CancelBooking)
	staff.POST("/bookings/:id/reassign", staffHandler.ReassignSeat)
}
