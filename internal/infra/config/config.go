package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	Port        int    `envconfig:"PORT" default:"8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	// RequestTimeout ограничивает обработку одного HTTP запроса.
	RequestTimeout time.Duration `envconfig:"HTTP_REQUEST_TIMEOUT" default:"3m"`

	PGDSN     string `envconfig:"PG_DSN"`
	PGMigrate bool   `envconfig:"PG_MIGRATE" default:"true"`

	// Без RedisAddr история контента хранится в памяти процесса.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	LLM struct {
		Provider      string        `envconfig:"LLM_PROVIDER" default:"gemini"`
		GeminiAPIKey  string        `envconfig:"GOOGLE_API_KEY"`
		GeminiModel   string        `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
		OpenAIAPIKey  string        `envconfig:"OPENAI_API_KEY"`
		OpenAIBaseURL string        `envconfig:"OPENAI_BASE_URL"`
		OpenAIModel   string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
		Timeout       time.Duration `envconfig:"LLM_TIMEOUT" default:"45s"`
		Temperature   float64       `envconfig:"LLM_TEMPERATURE" default:"1.5"`
	} `envconfig:""`

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
	} `envconfig:""`

	Razorpay struct {
		KeyID     string        `envconfig:"RAZORPAY_KEY_ID"`
		KeySecret string        `envconfig:"RAZORPAY_KEY_SECRET"`
		BaseURL   string        `envconfig:"RAZORPAY_BASE_URL"`
		Timeout   time.Duration `envconfig:"RAZORPAY_TIMEOUT" default:"15s"`
	} `envconfig:""`

	Limits struct {
		GenerationPerMinute int `envconfig:"GENERATION_RATE_PER_MINUTE" default:"20"`
		GenerationBurst     int `envconfig:"GENERATION_RATE_BURST" default:"5"`
	} `envconfig:""`

	Scheduler struct {
		Interval time.Duration `envconfig:"EXPIRY_SWEEP_INTERVAL" default:"1m"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения. Файл .env необязателен.
func Load() AppConfig {
	_ = godotenv.Load()
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
