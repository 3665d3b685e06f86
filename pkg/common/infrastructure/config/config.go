package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type Config struct {
	Port          string `envconfig:"port" default:"8080"`
	ServerURL     string `envconfig:"server_url" default:"http://localhost:8080"`
	DatabaseDSN   string `envconfig:"database_dsn" required:"true"`
	MigrationsDir string `envconfig:"migrations_dir" default:"data/migrations"`

	Currency string `envconfig:"currency" default:"aud"`

	AuthTokenSecret string `envconfig:"auth_token_secret" required:"true"`

	StripeSecretKey     string `envconfig:"stripe_secret_key"`
	StripeWebhookSecret string `envconfig:"stripe_webhook_secret"`

	ResendAPIKey     string `envconfig:"resend_api_key"`
	EmailFromAddress string `envconfig:"email_from_address" default:"orders@alshami.com"`

	SupabaseURL        string `envconfig:"supabase_url"`
	SupabaseServiceKey string `envconfig:"supabase_service_role_key"`
	SupabaseBucket     string `envconfig:"supabase_bucket" default:"product-images"`
}

func Parse() (*Config, error) {
	c := new(Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	return c, nil
}
