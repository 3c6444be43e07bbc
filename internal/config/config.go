package config

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata" // рабочий часовой пояс должен грузиться и в distroless-образе

	"github.com/spf13/viper"
)

// Config — вся конфигурация сервиса.
type Config struct {
	DB     *DBConfig
	App    AppConfig
	Stripe StripeConfig
	Zoom   ZoomConfig
	Brevo  BrevoConfig
	Redis  RedisConfig
	Auth   AuthConfig
}

type AppConfig struct {
	Env      string
	LogLevel string
	GRPCAddr string

	// Часовой пояс, в котором интерпретируются даты и время записей.
	OperatingTimeZone string
	// pending — нужна явная отмашка психолога; confirmed — запись сразу подтверждена.
	InitialStatus     string
	SlotHorizonDays   int
	SweepInterval     time.Duration
	SweepOnRead       bool
	CancelStepTimeout time.Duration
}

func (c AppConfig) IsProduction() bool { return c.Env == "production" }

// Location загружает рабочий часовой пояс.
func (c AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.OperatingTimeZone)
	if err != nil {
		return nil, fmt.Errorf("load operating timezone %q: %w", c.OperatingTimeZone, err)
	}
	return loc, nil
}

type StripeConfig struct {
	SecretKey string

	// Переопределение адреса API (stripe-mock, тесты).
	APIURL string

	// Платёжный метод для серверного подтверждения списания.
	PaymentMethod string
}

func (c StripeConfig) Enabled() bool { return c.SecretKey != "" }

type ZoomConfig struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	APIURL       string
	OAuthURL     string
	RatePerSec   float64
}

func (c ZoomConfig) Enabled() bool {
	return c.AccountID != "" && c.ClientID != "" && c.ClientSecret != ""
}

type BrevoConfig struct {
	APIKey      string
	APIURL      string
	SenderEmail string
	SenderName  string
}

func (c BrevoConfig) Enabled() bool { return c.APIKey != "" && c.SenderEmail != "" }

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool { return c.Addr != "" }

type AuthConfig struct {
	JWTSecret string
}

// Load читает конфигурацию: переменные окружения, опционально config.yaml в . или ./config.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	setDefaults(v)

	// Файл конфигурации не обязателен.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return FromViper(v)
}

func setDefaults(v *viper.Viper) {
	setDBDefaults(v)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("GRPC_ADDR", ":50051")
	v.SetDefault("OPERATING_TIMEZONE", "America/New_York")
	v.SetDefault("BOOKING_INITIAL_STATUS", "pending")
	v.SetDefault("SLOT_HORIZON_DAYS", 30)
	v.SetDefault("SWEEP_INTERVAL", "5m")
	v.SetDefault("SWEEP_ON_READ", true)
	v.SetDefault("CANCEL_STEP_TIMEOUT", "10s")
	v.SetDefault("STRIPE_PAYMENT_METHOD", "pm_card_visa")
	v.SetDefault("ZOOM_API_URL", "https://api.zoom.us/v2")
	v.SetDefault("ZOOM_OAUTH_URL", "https://zoom.us/oauth/token")
	v.SetDefault("ZOOM_RATE_PER_SEC", 10)
	v.SetDefault("BREVO_API_URL", "https://api.brevo.com/v3")
	v.SetDefault("BREVO_SENDER_NAME", "Psychology Portal")
	v.SetDefault("REDIS_DB", 0)
}

// FromViper собирает Config из уже настроенного viper (удобно в тестах).
func FromViper(v *viper.Viper) (*Config, error) {
	dbCfg, err := LoadDBConfig(v)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DB: dbCfg,
		App: AppConfig{
			Env:               v.GetString("APP_ENV"),
			LogLevel:          v.GetString("LOG_LEVEL"),
			GRPCAddr:          v.GetString("GRPC_ADDR"),
			OperatingTimeZone: v.GetString("OPERATING_TIMEZONE"),
			InitialStatus:     v.GetString("BOOKING_INITIAL_STATUS"),
			SlotHorizonDays:   v.GetInt("SLOT_HORIZON_DAYS"),
			SweepInterval:     v.GetDuration("SWEEP_INTERVAL"),
			SweepOnRead:       v.GetBool("SWEEP_ON_READ"),
			CancelStepTimeout: v.GetDuration("CANCEL_STEP_TIMEOUT"),
		},
		Stripe: StripeConfig{
			SecretKey:     v.GetString("STRIPE_SECRET_KEY"),
			APIURL:        v.GetString("STRIPE_API_URL"),
			PaymentMethod: v.GetString("STRIPE_PAYMENT_METHOD"),
		},
		Zoom: ZoomConfig{
			AccountID:    v.GetString("ZOOM_ACCOUNT_ID"),
			ClientID:     v.GetString("ZOOM_CLIENT_ID"),
			ClientSecret: v.GetString("ZOOM_CLIENT_SECRET"),
			APIURL:       v.GetString("ZOOM_API_URL"),
			OAuthURL:     v.GetString("ZOOM_OAUTH_URL"),
			RatePerSec:   v.GetFloat64("ZOOM_RATE_PER_SEC"),
		},
		Brevo: BrevoConfig{
			APIKey:      v.GetString("BREVO_API_KEY"),
			APIURL:      v.GetString("BREVO_API_URL"),
			SenderEmail: v.GetString("BREVO_SENDER_EMAIL"),
			SenderName:  v.GetString("BREVO_SENDER_NAME"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
		},
	}

	switch cfg.App.InitialStatus {
	case "pending", "confirmed":
	default:
		return nil, fmt.Errorf("invalid BOOKING_INITIAL_STATUS %q: want pending or confirmed", cfg.App.InitialStatus)
	}
	if cfg.App.SlotHorizonDays <= 0 {
		return nil, fmt.Errorf("invalid SLOT_HORIZON_DAYS %d", cfg.App.SlotHorizonDays)
	}
	if _, err := cfg.App.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}
