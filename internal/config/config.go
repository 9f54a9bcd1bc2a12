package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	AppEnv   string
	Port     string
	TimeZone *time.Location

	DB          DB
	RedisAddr   string
	KafkaBroker string
	MaxRetries  int

	JWTSecret string
	JWTTTL    time.Duration

	PublicDir     string
	PublicBaseURL string

	Memo Memo

	UploadMaxBytes     int64
	CORSAllowedOrigins []string

	SMTP SMTP

	OutboxPollInterval time.Duration
	OutboxRetention    time.Duration
}

type DB struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

type Memo struct {
	Layout      string
	LogoLeft    string
	LogoRight   string
	Institution string
	SignerName  string
	SignerTitle string
}

type SMTP struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (s SMTP) Enabled() bool {
	return s.Host != "" && s.From != ""
}

func (c Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// Load reads the process environment. Callers load .env beforehand with
// godotenv so that real environment variables still win.
func Load() (Config, error) {
	var errs []error

	cfg := Config{
		AppEnv:      getEnv("APP_ENV", EnvDevelopment),
		Port:        getEnv("PORT", "3000"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBroker: getEnv("KAFKA_BROKER", "localhost:9092"),
		DB: DB{
			Host:     getEnv("DB_HOST", "localhost"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "sigead"),
			Port:     getEnv("DB_PORT", "5432"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWTSecret:     os.Getenv("JWT_SECRET"),
		PublicDir:     getEnv("PUBLIC_DIR", "public"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		Memo: Memo{
			Layout:      strings.ToLower(getEnv("MEMO_LAYOUT", "office")),
			LogoLeft:    os.Getenv("MEMO_LOGO_LEFT"),
			LogoRight:   os.Getenv("MEMO_LOGO_RIGHT"),
			Institution: getEnv("MEMO_INSTITUTION", "Unidad de Gestión Educativa Local"),
			SignerName:  os.Getenv("MEMO_SIGNER_NAME"),
			SignerTitle: getEnv("MEMO_SIGNER_TITLE", "Jefe de Recursos Humanos"),
		},
		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}

	switch cfg.Memo.Layout {
	case "plain", "letter", "office":
	default:
		errs = append(errs, fmt.Errorf("MEMO_LAYOUT must be plain, letter or office, got %q", cfg.Memo.Layout))
	}

	var err error
	if cfg.MaxRetries, err = getInt("DB_MAX_RETRIES", 5); err != nil {
		errs = append(errs, err)
	}
	if cfg.SMTP.Port, err = getInt("SMTP_PORT", 587); err != nil {
		errs = append(errs, err)
	}
	maxBytes, err := getInt("UPLOAD_MAX_BYTES", 10<<20)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.UploadMaxBytes = int64(maxBytes)

	if cfg.JWTTTL, err = getDuration("JWT_TTL", 24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.OutboxPollInterval, err = getDuration("OUTBOX_POLL_INTERVAL", 3*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.OutboxRetention, err = getDuration("OUTBOX_RETENTION", 7*24*time.Hour); err != nil {
		errs = append(errs, err)
	}

	tz := getEnv("APP_TIMEZONE", "America/Lima")
	if cfg.TimeZone, err = time.LoadLocation(tz); err != nil {
		errs = append(errs, fmt.Errorf("APP_TIMEZONE: %w", err))
	}

	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost:" + cfg.Port
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration", key)
	}
	return d, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
