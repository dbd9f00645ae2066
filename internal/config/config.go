package config

import (
	"fmt"
	"strings"
)

type Config struct {
	Env               string
	APIBaseURL        string
	APIAccessToken    string
	DatabaseURL       string
	AudioInputDevice  string
	AudioInputFormat  string
	AutoStructure     bool
	RequestTimeoutSec int
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("API_BASE_URL must start with http:// or https://, got %q", c.APIBaseURL)
	}
	if c.RequestTimeoutSec <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SEC must be positive, got %d", c.RequestTimeoutSec)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "API_BASE_URL", value: c.APIBaseURL},
		{name: "API_ACCESS_TOKEN", value: c.APIAccessToken},
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "AUDIO_INPUT_DEVICE", value: c.AudioInputDevice},
		{name: "AUDIO_INPUT_FORMAT", value: c.AudioInputFormat},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
