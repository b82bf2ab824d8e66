package stats

import (
	"fmt"
	"time"

	"github.com/foxseedlab/vclog/internal/config"
	"github.com/foxseedlab/vclog/internal/eventlog"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.ProvideValue[Clock](injector, RealClock{})
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		store := do.MustInvoke[eventlog.Store](i)
		clock := do.MustInvoke[Clock](i)
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
		}
		return NewService(store, clock, loc), nil
	})
}
