package config

import (
	"fmt"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv   string `env:"APP_ENV" envDefault:"production"`

	// NotifyBufferSize bounds the in-flight notification queue; events
	// beyond it are dropped rather than blocking a transfer.
	NotifyBufferSize int `env:"NOTIFY_BUFFER_SIZE" envDefault:"256"`

	ShutdownTimeoutS int `env:"SHUTDOWN_TIMEOUT_S" envDefault:"30"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}
