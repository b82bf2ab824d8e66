package tracker

import (
	"github.com/foxseedlab/vclog/internal/config"
	"github.com/foxseedlab/vclog/internal/eventlog"
	"github.com/foxseedlab/vclog/internal/stats"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		cfg := do.MustInvoke[*config.Config](i)
		store := do.MustInvoke[eventlog.Store](i)
		svc := do.MustInvoke[*stats.Service](i)
		clock := do.MustInvoke[stats.Clock](i)
		return NewManager(cfg, store, svc, clock), nil
	})
}
