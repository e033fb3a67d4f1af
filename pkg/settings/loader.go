package settings

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "TRIPWISE"

// Load reads the configuration file at path and overlays environment
// variables (TRIPWISE_SERVER_PORT overrides server.port, and so on).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10)

	v.SetDefault("logger.log_level", "info")

	v.SetDefault("rate_limit.shards", 64)
	v.SetDefault("rate_limit.form.limit", 5)
	v.SetDefault("rate_limit.form.window", 300)
	v.SetDefault("rate_limit.newsletter.limit", 10)
	v.SetDefault("rate_limit.newsletter.window", 300)
	v.SetDefault("rate_limit.lookup.limit", 60)
	v.SetDefault("rate_limit.lookup.window", 300)

	v.SetDefault("upstream.base_url", "https://api.geoapify.com")
	v.SetDefault("upstream.timeout", 5000)
	v.SetDefault("upstream.max_retries", 2)
	v.SetDefault("upstream.backoff_base", 200)
	v.SetDefault("upstream.geocode_ttl", 86400)
	v.SetDefault("upstream.places_ttl", 3600)
	v.SetDefault("upstream.places_limit", 20)

	v.SetDefault("turnstile.verify_url", "https://challenges.cloudflare.com/turnstile/v0/siteverify")
	v.SetDefault("turnstile.timeout", 5000)
}
