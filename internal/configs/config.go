package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит всю конфигурацию приложения.
type Config struct {
	AppName string

	Backend      BackendConfig
	Search       SearchConfig
	CLI          CLIConfig
	DevServer    DevServerConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

type BackendConfig struct {
	URL string
	// AuthURL - адрес сервиса аутентификации, по умолчанию совпадает с URL.
	AuthURL string
	Timeout time.Duration
}

type SearchConfig struct {
	PageSize int
	Debounce time.Duration
}

type CLIConfig struct {
	HistoryFile string
	// AuthToken - сохраненный токен для восстановления сессии при запуске.
	AuthToken string
}

type DevServerConfig struct {
	Port           string
	DatabaseURL    string // пусто - избранное хранится в памяти
	AllowedOrigins []string
	OTPCode        string
	JWTSecret      string
	TokenTTL       time.Duration
	// RabbitMQURL - брокер для доменных событий. Пусто - события не публикуются.
	RabbitMQURL    string
	EventsExchange string
}

type StdoutLogConfig struct {
	Level string
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// LoadConfig загружает конфигурацию из переменных окружения.
// .env файл необязателен: без него используются переменные окружения и значения по умолчанию.
func LoadConfig(envPath ...string) (*Config, error) {
	var err error
	if len(envPath) > 0 && envPath[0] != "" {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath, err)
		}
		log.Println("No .env file found, using environment variables")
	}

	backendURL := getEnvAsString("BACKEND_URL", "http://localhost:8080")
	cfg := &Config{
		AppName: getEnvAsString("APP_NAME", "real-estate-web"),
		Backend: BackendConfig{
			URL:     backendURL,
			AuthURL: getEnvAsString("AUTH_URL", backendURL),
			Timeout: getEnvAsDuration("BACKEND_TIMEOUT", 10*time.Second),
		},
		Search: SearchConfig{
			PageSize: getEnvAsInt("SEARCH_PAGE_SIZE", 9),
			Debounce: getEnvAsDuration("SEARCH_DEBOUNCE", 500*time.Millisecond),
		},
		CLI: CLIConfig{
			HistoryFile: getEnvAsString("CLI_HISTORY_FILE", ""),
			AuthToken:   getEnvAsString("AUTH_TOKEN", ""),
		},
		DevServer: DevServerConfig{
			Port:           getEnvAsString("PORT", "8080"),
			DatabaseURL:    getEnvAsString("DATABASE_URL", ""),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			OTPCode:        getEnvAsString("DEV_OTP_CODE", "1234"),
			JWTSecret:      getEnvAsString("JWT_SECRET", "dev-only-secret"),
			TokenTTL:       getEnvAsDuration("TOKEN_TTL", 24*time.Hour),
			RabbitMQURL:    getEnvAsString("RABBITMQ_URL", ""),
			EventsExchange: getEnvAsString("EVENTS_EXCHANGE", "real_estate_events"),
		},
	}

	if cfg.Search.PageSize <= 0 {
		return nil, fmt.Errorf("SEARCH_PAGE_SIZE must be positive, got %d", cfg.Search.PageSize)
	}
	if cfg.Search.Debounce < 0 {
		return nil, fmt.Errorf("SEARCH_DEBOUNCE must not be negative, got %s", cfg.Search.Debounce)
	}

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "info")

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

// getEnvAsBool читает переменную окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsDuration принимает формат time.ParseDuration ("500ms", "10s").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return d
}

func getEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valStr) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
