package config

import (
	"github.com/caarlos0/env/v11"
)

// parseEnv overlays variables that are set in the process environment.
// Unset or empty variables leave the current value untouched.
func parseEnv(config *Config) {
	if err := env.Parse(config); err != nil {
		panic(err)
	}
}

// parseEnvFrom is parseEnv with an explicit environment, for tests.
func parseEnvFrom(config *Config, environ map[string]string) error {
	return env.ParseWithOptions(config, env.Options{Environment: environ})
}
