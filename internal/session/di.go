package session

import (
	"github.com/saluslab/escriba/internal/api"
	"github.com/saluslab/escriba/internal/archive"
	"github.com/saluslab/escriba/internal/capture"
	"github.com/saluslab/escriba/internal/config"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		cfg := do.MustInvoke[*config.Config](i)
		client := do.MustInvoke[api.Client](i)
		arc := do.MustInvoke[archive.Archive](i)
		mic := do.MustInvoke[capture.Microphone](i)
		return NewManager(cfg, client, arc, mic), nil
	})
}
