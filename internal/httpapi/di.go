package httpapi

import (
	"net/http"

	"github.com/foxseedlab/vclog/internal/config"
	"github.com/foxseedlab/vclog/internal/stats"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*http.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		svc := do.MustInvoke[*stats.Service](i)
		return NewServer(cfg.HTTPAddr, NewRouter(cfg, svc)), nil
	})
}
