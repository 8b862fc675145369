package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type RefreshConfig struct {
	PollMin          time.Duration `env:"POLL_MIN" envDefault:"1s"`
	PollMax          time.Duration `env:"POLL_MAX" envDefault:"10s"`
	PollAfterRebuild time.Duration `env:"POLL_AFTER_REBUILD" envDefault:"25s"`
	PollResetEvery   int           `env:"POLL_RESET_EVERY" envDefault:"100"`
}

func LoadRefresh() (RefreshConfig, error) {
	var cfg RefreshConfig
	err := env.Parse(&cfg)
	return cfg, err
}
