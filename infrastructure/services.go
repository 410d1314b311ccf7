package infrastructure

import (
	"sync"

	"github.com/minthotspot/hotspot-agent/internal/constants"
	"github.com/minthotspot/hotspot-agent/internal/domains/apdaemon"
	"github.com/minthotspot/hotspot-agent/internal/domains/firewall"
	"github.com/minthotspot/hotspot-agent/internal/domains/instance"
	"github.com/minthotspot/hotspot-agent/internal/domains/inventory"
	"github.com/minthotspot/hotspot-agent/internal/domains/netman"
	"github.com/minthotspot/hotspot-agent/internal/domains/orchestrator"
	"github.com/minthotspot/hotspot-agent/internal/domains/preflight"
	"github.com/minthotspot/hotspot-agent/internal/domains/radio"
	"github.com/minthotspot/hotspot-agent/internal/domains/selector"
	"github.com/minthotspot/hotspot-agent/internal/domains/session"
	"github.com/minthotspot/hotspot-agent/internal/domains/shell"
	"github.com/minthotspot/hotspot-agent/internal/domains/status"
	"github.com/minthotspot/hotspot-agent/internal/domains/upstream"
)

var (
	shellService     *shell.Service
	shellServiceOnce sync.Once
)

func (k *Kernel) InjectShellService() *shell.Service {
	shellServiceOnce.Do(func() {
		shellService = shell.NewService(constants.CmdTimeout)
	})

	return shellService
}

var (
	statusService     *status.Service
	statusServiceOnce sync.Once
)

func (k *Kernel) InjectStatusService() *status.Service {
	statusServiceOnce.Do(func() {
		statusService = status.NewService(k.env.Agent.StatusFilePath)
	})

	return statusService
}

var (
	instanceService     *instance.Service
	instanceServiceOnce sync.Once
)

func (k *Kernel) InjectInstanceService() *instance.Service {
	instanceServiceOnce.Do(func() {
		instanceService = instance.NewService(k.env.Agent.PIDFilePath)
	})

	return instanceService
}

var (
	netmanService     *netman.Service
	netmanServiceOnce sync.Once
)

func (k *Kernel) InjectNetmanService() *netman.Service {
	netmanServiceOnce.Do(func() {
		netmanService = netman.NewService(
			k.InjectShellService(),
		)
	})

	return netmanService
}

var (
	radioService     *radio.Service
	radioServiceOnce sync.Once
)

func (k *Kernel) InjectRadioService() *radio.Service {
	radioServiceOnce.Do(func() {
		radioService = radio.NewService(
			k.InjectShellService(),
		)
	})

	return radioService
}

var (
	upstreamService     *upstream.Service
	upstreamServiceOnce sync.Once
)

func (k *Kernel) InjectUpstreamService() *upstream.Service {
	upstreamServiceOnce.Do(func() {
		upstreamService = upstream.NewService(
			k.InjectShellService(),
		)
	})

	return upstreamService
}

var (
	inventoryService     *inventory.Service
	inventoryServiceOnce sync.Once
)

func (k *Kernel) InjectInventoryService() *inventory.Service {
	inventoryServiceOnce.Do(func() {
		inventoryService = inventory.NewService(
			k.InjectShellService(),
			k.InjectNetmanService(),
			k.InjectRadioService(),
			k.InjectUpstreamService(),
			constants.SysClassNetPath,
		)
	})

	return inventoryService
}

var (
	selectorService     *selector.Service
	selectorServiceOnce sync.Once
)

func (k *Kernel) InjectSelectorService() *selector.Service {
	selectorServiceOnce.Do(func() {
		selectorService = selector.NewService(
			k.InjectInventoryService(),
		)
	})

	return selectorService
}

var (
	preflightService     *preflight.Service
	preflightServiceOnce sync.Once
)

func (k *Kernel) InjectPreflightService() *preflight.Service {
	preflightServiceOnce.Do(func() {
		preflightService = preflight.NewService(
			k.InjectShellService(),
			k.InjectNetmanService(),
			k.InjectRadioService(),
			k.InjectInventoryService(),
			k.InjectSelectorService(),
			k.InjectUpstreamService(),
			k.InjectInstanceService(),
		)
	})

	return preflightService
}

var (
	firewallService     *firewall.Service
	firewallServiceOnce sync.Once
)

func (k *Kernel) InjectFirewallService() *firewall.Service {
	firewallServiceOnce.Do(func() {
		firewallService = firewall.NewService(
			k.InjectShellService(),
		)
	})

	return firewallService
}

var (
	apDaemonService     *apdaemon.Service
	apDaemonServiceOnce sync.Once
)

func (k *Kernel) InjectAPDaemonService() *apdaemon.Service {
	apDaemonServiceOnce.Do(func() {
		apDaemonService = apdaemon.NewService(
			k.InjectShellService(),
			k.env.Agent.CountryCode,
			constants.DnsmasqLeasePath,
		)
	})

	return apDaemonService
}

var (
	orchestratorService     *orchestrator.Service
	orchestratorServiceOnce sync.Once
)

func (k *Kernel) InjectOrchestratorService() *orchestrator.Service {
	orchestratorServiceOnce.Do(func() {
		orchestratorService = orchestrator.NewService(
			k.InjectShellService(),
			k.InjectNetmanService(),
			k.InjectRadioService(),
			k.InjectFirewallService(),
			k.InjectAPDaemonService(),
			k.env.Agent.CountryCode,
		)
	})

	return orchestratorService
}

var (
	sessionService     *session.Service
	sessionServiceOnce sync.Once
)

func (k *Kernel) InjectSessionService() *session.Service {
	sessionServiceOnce.Do(func() {
		sessionService = session.NewService(
			k.InjectPreflightService(),
			k.InjectInventoryService(),
			k.InjectUpstreamService(),
			k.InjectOrchestratorService(),
			k.InjectFirewallService(),
			k.InjectNetmanService(),
			k.InjectRadioService(),
			k.InjectAPDaemonService(),
			k.InjectInstanceService(),
			k.InjectStatusService(),
		)
	})

	return sessionService
}
