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

	"pricewatch/internal/app/pricewatch/config"
	"pricewatch/internal/app/pricewatch/entity"
	"pricewatch/internal/app/pricewatch/handler"
	"pricewatch/internal/app/pricewatch/processor"
	"pricewatch/internal/app/pricewatch/repository"
	"pricewatch/internal/app/pricewatch/service"
	"pricewatch/internal/app/pricewatch/util"

	"pricewatch/pkg/logger"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// .env если есть; отсутствие файла не фатально
	_ = godotenv.Load()

	// === ИНИЦИАЛИЗАЦИЯ КОНФИГУРАЦИИ ===
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init("pricewatch", cfg.LogLevel)
	logger.Info().Msg("Starting Pricewatch...")

	// Базовый контекст приложения: отменяется по SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === ПОДКЛЮЧЕНИЕ К POSTGRESQL ===
	db, err := connectDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Info().Msg("Successfully connected to PostgreSQL")

	if err := db.AutoMigrate(&entity.Product{}, &entity.PriceHistory{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// === ПОДКЛЮЧЕНИЕ К REDIS ===
	// Redis кеширует список отслеживаемых товаров
	redisClient, err := util.NewRedisClient(
		cfg.Redis.Address(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.CacheTTL,
	)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	logger.Info().Msg("Successfully connected to Redis")

	// === ИНИЦИАЛИЗАЦИЯ KAFKA PRODUCER ===
	// События PRICE_CHANGED уходят в топик price_events
	kafkaProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().Str("topic", cfg.Kafka.Topic).Msg("Kafka producer initialized")

	// === РЕПОЗИТОРИИ И СЕРВИСЫ ===
	productRepo := repository.NewProductRepository(db)

	scraper := service.NewScraperClient(cfg.Scraper.UserAgent, cfg.Scraper.TimeoutSec)

	productService := service.NewProductService(productRepo, scraper, redisClient)

	monitorService := service.NewMonitorService(
		productRepo,
		scraper,
		redisClient,
		kafkaProducer,
		cfg.Monitor.Concurrency,
		cfg.Scraper.TimeoutSec,
	)

	// === ПЛАНИРОВЩИК ПРОВЕРОК ===
	// Невалидное cron-выражение - фатальная ошибка старта
	scheduler := processor.NewScheduler(monitorService)
	if err := scheduler.Start(ctx, cfg.Monitor.CronSchedule); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()
	logger.Info().Str("schedule", cfg.Monitor.CronSchedule).Msg("Price check scheduler started")

	// === HTTP СЕРВЕР ===
	productHandler := handler.NewProductHandler(productService, scheduler)
	router := handler.SetupRoutes(productHandler)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Address()).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// === GRACEFUL SHUTDOWN ===
	<-ctx.Done()
	logger.Info().Msg("Shutting down Pricewatch...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
		os.Exit(1)
	}

	logger.Info().Msg("Pricewatch stopped gracefully")
}

// connectDB устанавливает соединение с PostgreSQL используя GORM.
// Retry logic для устойчивости при запуске в Docker.
func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		// Нарушения ограничений приходят как gorm.Err*, а не коды драйвера
		TranslateError: true,
	}

	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else if pingErr := sqlDB.Ping(); pingErr != nil {
				err = pingErr
			} else {
				sqlDB.SetMaxOpenConns(10)
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
				sqlDB.SetConnMaxIdleTime(1 * time.Minute)
				return db, nil
			}
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to database, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}
