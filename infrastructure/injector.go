package infrastructure

import (
	"github.com/minthotspot/hotspot-agent/internal/domains/apdaemon"
	"github.com/minthotspot/hotspot-agent/internal/domains/inventory"
	"github.com/minthotspot/hotspot-agent/internal/domains/preflight"
	"github.com/minthotspot/hotspot-agent/internal/domains/session"
	"github.com/minthotspot/hotspot-agent/internal/environment"
)

type IInjector interface {
	InjectSessionService() *session.Service
	InjectInventoryService() *inventory.Service
	InjectPreflightService() *preflight.Service
	InjectAPDaemonService() *apdaemon.Service
}

type Kernel struct {
	env environment.Environment
}

func Inject(env environment.Environment) (k *Kernel, err error) {
	k = &Kernel{
		env: env,
	}

	return k, nil
}
