package api

import (
	"time"

	"github.com/saluslab/escriba/internal/api"
	"github.com/saluslab/escriba/internal/config"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (api.Client, error) {
		c := do.MustInvoke[*config.Config](i)
		timeout := time.Duration(c.RequestTimeoutSec) * time.Second
		return NewHTTPClient(c.APIBaseURL, c.APIAccessToken, timeout), nil
	})
}
