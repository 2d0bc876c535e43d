package config

import (
	"os"
	"strings"
	"time"

	"tvcatalog/internal/core/paging"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AppCfg struct{ Env, Host, Port, BaseURL string }

type DBCfg struct {
	DSN      string
	MaxConns int32
}

type RedisCfg struct{ Addr, Password string }

type SecurityCfg struct {
	JWTSecret           string
	TokenLifetime       time.Duration
	BcryptCost          int
	LoginAttemptsPerMin int
}

// ImagesCfg points at the remote asset host uploads are passed through to.
type ImagesCfg struct {
	UploadURL string
	APIKey    string
	Folder    string
	Timeout   time.Duration
}

type LogCfg struct{ Level, Format string }

type Cfg struct {
	App    AppCfg
	DB     DBCfg
	Redis  RedisCfg
	Sec    SecurityCfg
	Images ImagesCfg
	Log    LogCfg
}

// Load reads the process environment (and .env when present) into a Cfg.
// Missing DATABASE_URL or JWT_SECRET is fatal.
func Load() Cfg {
	// 1) Load .env into process env (if file exists)
	_ = godotenv.Load()

	cfg := Read(viper.New())

	// 2) Fail fast on required settings
	if cfg.DB.DSN == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}
	if cfg.Sec.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}
	return cfg
}

// Read builds a Cfg from v after binding the environment and defaults. It
// never fails; Load is where required settings are enforced.
func Read(v *viper.Viper) Cfg {
	v.AutomaticEnv()
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HOST", "127.0.0.1")
	v.SetDefault("PORT", "3000")
	v.SetDefault("DATABASE_MAX_CONNS", 10)
	v.SetDefault("JWT_TOKEN_LIFETIME", "1h")
	v.SetDefault("BCRYPT_COST", 11)
	v.SetDefault("LOGIN_ATTEMPTS_PER_MIN", 10)
	v.SetDefault("IMAGES_FOLDER", "tvcatalog")
	v.SetDefault("IMAGES_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	return Cfg{
		App: AppCfg{
			Env:     v.GetString("APP_ENV"),
			Host:    v.GetString("HOST"),
			Port:    v.GetString("PORT"),
			BaseURL: strings.TrimRight(v.GetString("BASE_URL"), "/"),
		},
		DB: DBCfg{
			DSN:      v.GetString("DATABASE_URL"),
			MaxConns: v.GetInt32("DATABASE_MAX_CONNS"),
		},
		Redis: RedisCfg{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		Sec: SecurityCfg{
			JWTSecret:           strings.TrimSpace(v.GetString("JWT_SECRET")),
			TokenLifetime:       v.GetDuration("JWT_TOKEN_LIFETIME"),
			BcryptCost:          v.GetInt("BCRYPT_COST"),
			LoginAttemptsPerMin: v.GetInt("LOGIN_ATTEMPTS_PER_MIN"),
		},
		Images: ImagesCfg{
			UploadURL: v.GetString("IMAGES_UPLOAD_URL"),
			APIKey:    v.GetString("IMAGES_API_KEY"),
			Folder:    v.GetString("IMAGES_FOLDER"),
			Timeout:   v.GetDuration("IMAGES_TIMEOUT"),
		},
		Log: LogCfg{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
	}
}

// Paging returns the base URL configuration list links are built from.
func (c Cfg) Paging() paging.Config {
	return paging.Config{BaseURL: c.App.BaseURL, Host: c.App.Host, Port: c.App.Port}
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c Cfg) IsProduction() bool { return c.App.Env == "production" }

// SetupLogging configures the global zerolog logger.
func (c Cfg) SetupLogging() {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil || c.Log.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if c.Log.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}
