package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string           `yaml:"env" env-default:"development"` // environment
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	Database   DatabaseConfig   `yaml:"database"`
	Session    SessionConfig    `yaml:"session"`
	Payment    PaymentConfig    `yaml:"payment"`
	Redis      RedisConfig      `yaml:"redis"`
	Admin      AdminConfig      `yaml:"admin"`
	Migrations MigrationsConfig `yaml:"migrations"`
}

// HTTPServerConfig структура http сервера
type HTTPServerConfig struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// DatabaseConfig структура по работе с БД
type DatabaseConfig struct {
	Host     string `yaml:"host" env-default:"localhost"`
	Port     int    `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env-required:"true"`
	Password string `yaml:"-" env:"DB_PASSWORD" env-required:"true"`
	Name     string `yaml:"name" env-required:"true"`
}

// SessionConfig — настройки cookie-сессии корзины
type SessionConfig struct {
	Secret   string `yaml:"-" env:"SESSION_SECRET" env-required:"true"`
	TokenTTL int    `yaml:"token_ttl" env-default:"1440"` // в минутах
}

// PaymentConfig — настройки платежного провайдера (Stripe).
// Секретные ключи только из окружения
type PaymentConfig struct {
	SecretKey     string        `yaml:"-" env:"STRIPE_SECRET_KEY" env-required:"true"`
	WebhookSecret string        `yaml:"-" env:"STRIPE_WEBHOOK_SECRET"` // пустой — подпись webhook не проверяется
	Currency      string        `yaml:"currency" env-default:"usd"`
	SuccessURL    string        `yaml:"success_url" env-required:"true"`
	CancelURL     string        `yaml:"cancel_url" env-required:"true"`
	Timeout       time.Duration `yaml:"timeout" env-default:"10s"`
}

// RedisConfig — хранилище корзин; пустой адрес означает хранение в памяти процесса
type RedisConfig struct {
	Addr    string        `yaml:"addr"`
	CartTTL time.Duration `yaml:"cart_ttl" env-default:"24h"`
}

// AdminConfig — доступ к операторским эндпоинтам
type AdminConfig struct {
	Username     string `yaml:"username" env-default:"admin"`
	PasswordHash string `yaml:"-" env:"ADMIN_PASSWORD_HASH" env-required:"true"`
}

type MigrationsConfig struct {
	Path string `yaml:"path" env-default:"./migrations"`
}

// MustLoad - если не загружаем - паникуем
func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("CONFIG_PATH not exists")
	}
	return MustLoadByPath(configPath)
}

func fetchConfigPath() string {
	var path string

	flag.StringVar(&path, "config", "", "path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file not found: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("can't read config file %s", configPath)
	}

	return &cfg
}
