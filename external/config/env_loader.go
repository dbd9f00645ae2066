package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/saluslab/escriba/internal/config"
)

type envConfig struct {
	Env               string `env:"ENV" envDefault:"production"`
	APIBaseURL        string `env:"API_BASE_URL,required"`
	APIAccessToken    string `env:"API_ACCESS_TOKEN,required"`
	DatabaseURL       string `env:"DATABASE_URL,required"`
	AudioInputDevice  string `env:"AUDIO_INPUT_DEVICE" envDefault:"default"`
	AudioInputFormat  string `env:"AUDIO_INPUT_FORMAT" envDefault:"pulse"`
	AutoStructure     bool   `env:"AUTO_STRUCTURE" envDefault:"false"`
	RequestTimeoutSec int    `env:"REQUEST_TIMEOUT_SEC" envDefault:"120"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:               raw.Env,
		APIBaseURL:        raw.APIBaseURL,
		APIAccessToken:    raw.APIAccessToken,
		DatabaseURL:       raw.DatabaseURL,
		AudioInputDevice:  raw.AudioInputDevice,
		AudioInputFormat:  raw.AudioInputFormat,
		AutoStructure:     raw.AutoStructure,
		RequestTimeoutSec: raw.RequestTimeoutSec,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
