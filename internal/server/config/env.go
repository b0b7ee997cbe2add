package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig is an intermediate DTO for environment variables. Only
// variables that are actually set override the current Config values.
type envConfig struct {
	EndpointAddr            string        `env:"ADDRESS"`
	DatabaseDSN             string        `env:"DATABASE_DSN"`
	StorageRoot             string        `env:"STORAGE_ROOT"`
	SessionValidityDuration time.Duration `env:"SESSION_VALIDITY_DURATION"`
}

// parseEnv overlays Config fields with values from the environment.
// Unset variables leave the corresponding fields untouched.
func parseEnv(config *Config) {
	c := envConfig{}
	if err := env.Parse(&c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.StorageRoot != "" {
		config.StorageRoot = c.StorageRoot
	}
	if c.SessionValidityDuration != 0 {
		config.SessionValidityDuration = c.SessionValidityDuration
	}
}
