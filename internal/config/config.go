package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	ServerPort  string `envconfig:"PORT" default:"5000"`
	SwaggerHost string `envconfig:"SWAGGER_HOST"`

	MongoURI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"bistroDB"`

	// MySQLDSN enables the settlement audit table; empty disables it.
	MySQLDSN string `envconfig:"MYSQL_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`
	RedisPass string `envconfig:"REDIS_PASSWORD"`

	JWTSecret string `envconfig:"ACCESS_TOKEN" required:"true"`

	StripeSecretKey string `envconfig:"STRIPE_SECRET_KEY"`
	PaymentCurrency string `envconfig:"PAYMENT_CURRENCY" default:"usd"`

	RabbitURL       string `envconfig:"RABBIT_URL"`
	PaymentExchange string `envconfig:"PAYMENT_EXCHANGE" default:"payment.exchange"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	Payment PaymentConfig
}

// PaymentConfig toggles settlement behaviors beyond the baseline
// insert-then-delete flow. All default to off. Keys are prefixed with
// PAYMENT_ by the parent field name.
type PaymentConfig struct {
	Idempotency     bool          `envconfig:"IDEMPOTENCY" default:"false"`
	IdempotencyTTL  time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
	Transactional   bool          `envconfig:"TRANSACTIONAL" default:"false"`
	VerifyCartOwner bool          `envconfig:"VERIFY_CART_OWNER" default:"false"`
}

// Load builds Config from environment with sensible defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}
