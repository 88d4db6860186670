package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config содержит все настройки приложения Pricewatch
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Scraper  ScraperConfig
	Monitor  MonitorConfig
	LogLevel string
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig - настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig - настройки Redis для кеша списка товаров
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	CacheTTL time.Duration // TTL кеша списка товаров
}

// KafkaConfig - настройки Kafka producer для событий PRICE_CHANGED
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// ScraperConfig - настройки загрузки страниц товаров
type ScraperConfig struct {
	UserAgent  string
	TimeoutSec int // Таймаут одной загрузки; кривой таргет не должен вешать весь проход
}

// MonitorConfig - настройки периодической проверки цен
type MonitorConfig struct {
	// Cron-выражение регулярной проверки (раз в час, в 0 минут).
	// Невалидное выражение - фатальная ошибка старта.
	CronSchedule string
	// Максимум одновременных загрузок в одном проходе
	Concurrency int
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	concurrency := getEnvInt("MONITOR_CONCURRENCY", 5)
	if concurrency < 1 {
		return nil, fmt.Errorf("MONITOR_CONCURRENCY must be positive, got %d", concurrency)
	}

	cacheTTLMinutes := getEnvInt("REDIS_CACHE_TTL_MINUTES", 5)

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "pricewatch"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			CacheTTL: time.Duration(cacheTTLMinutes) * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC", "price_events"),
		},
		Scraper: ScraperConfig{
			UserAgent: getEnv("SCRAPER_USER_AGENT",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36"),
			TimeoutSec: getEnvInt("SCRAPER_TIMEOUT_SEC", 15),
		},
		Monitor: MonitorConfig{
			CronSchedule: getEnv("MONITOR_CRON", "0 * * * *"),
			Concurrency:  concurrency,
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Address возвращает адрес Redis в формате host:port
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес HTTP сервера в формате host:port
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// getEnv получает значение переменной окружения или значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает значение переменной окружения как int
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
