package shared

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config is loaded from environment variables, with a .env file as a
// development convenience.
type Config struct {
	AppEnv         string   `envconfig:"APP_ENV" default:"prod"`
	HTTPAddr       string   `envconfig:"HTTP_ADDR" default:":8080"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`

	MySQLDSN string `envconfig:"MYSQL_DSN" default:"root:root@tcp(localhost:3306)/toplist?parseTime=true&charset=utf8mb4,utf8&loc=UTC"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPass string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`

	BkvBaseURL string        `envconfig:"BKV_BASE_URL" default:"https://www.bookerville.com/api"`
	BkvAccount string        `envconfig:"BKV_ACCOUNT" default:""`
	BkvSecret  string        `envconfig:"BKV_SECRET" default:""`
	BkvTimeout time.Duration `envconfig:"BKV_TIMEOUT" default:"20s"`
	BkvRetries int           `envconfig:"BKV_MAX_RETRIES" default:"3"`
	BkvRPS     int           `envconfig:"BKV_RPS" default:"5"`

	SyncWorkers  int           `envconfig:"SYNC_WORKERS" default:"4"`
	ClientMaxAge time.Duration `envconfig:"CLIENT_PROPERTY_MAX_AGE" default:"168h"`
	FixFile      string        `envconfig:"FIX_CATEGORIES_FILE" default:""`

	StoreTTL time.Duration `envconfig:"CACHE_STORE_TTL" default:"15m"`
	LiveTTL  time.Duration `envconfig:"CACHE_LIVE_TTL" default:"5m"`
	TokenTTL time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
}

func Load() Config {
	_ = godotenv.Load()

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if c.BkvAccount == "" || c.BkvSecret == "" {
		log.Warn().Msg("BKV_ACCOUNT / BKV_SECRET are empty, upstream calls will fail")
	}
	return c
}
