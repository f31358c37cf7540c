package server

import "github.com/caarlos0/env/v11"

type Config struct {
	Port string `env:"NFEEDD_PORT" envDefault:"8037"`

	// Token is the static bearer token clients must present. Empty
	// disables auth, which is only sensible for local development.
	Token string `env:"NFEEDD_TOKEN"`

	// RedisURL selects the redis-backed store. Empty falls back to the
	// in-memory store.
	RedisURL string `env:"NFEEDD_REDIS_URL"`
}

func ReadConfig() (Config, error) {
	return env.ParseAs[Config]()
}
