package capture

import (
	"github.com/saluslab/escriba/internal/capture"
	"github.com/saluslab/escriba/internal/config"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (capture.Microphone, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewFFmpegMicrophone(cfg.AudioInputDevice, cfg.AudioInputFormat), nil
	})
}
