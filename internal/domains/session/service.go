package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/minthotspot/hotspot-agent/internal/constants"
	"github.com/minthotspot/hotspot-agent/internal/entities"
	"github.com/minthotspot/hotspot-agent/internal/errs"
)

type (
	IPreflightService interface {
		Validate(ctx context.Context, options entities.HotspotOptions) (report entities.PreflightReport)
	}

	IInventoryService interface {
		ListInterfaces(ctx context.Context, excludeVPN bool) (interfaces entities.Interfaces, err error)
	}

	IUpstreamService interface {
		Resolve(ctx context.Context, excludeVPN bool) string
	}

	IOrchestratorService interface {
		StartSession(ctx context.Context, target entities.Interface, interfaces entities.Interfaces,
			upstreamIface string, options entities.HotspotOptions) (session *entities.RuntimeSession, err error)
		Teardown(ctx context.Context, session *entities.RuntimeSession)
	}

	IFirewallService interface {
		Apply(ctx context.Context, apIface, upstreamIface string, policy entities.MACPolicy)
		Teardown(ctx context.Context)
	}

	INetmanService interface {
		DeleteProfile(ctx context.Context, name string)
	}

	IRadioService interface {
		CountStations(ctx context.Context, iface string) int
		DeleteVirtualInterface(ctx context.Context, virtualIface string)
	}

	IAPDaemonService interface {
		CountClients() int
		Stop()
	}

	IInstanceService interface {
		TerminateConflicting()
		Acquire() (err error)
		Release()
	}

	IStatusService interface {
		PublishActive(message string)
		PublishError(message string)
	}
)

// Service owns the RuntimeSession for the process lifetime. The
// monitor loop is the sole writer of session state; teardown runs on
// every exit path, normal, error or cancellation.
type Service struct {
	preflightService    IPreflightService
	inventoryService    IInventoryService
	upstreamService     IUpstreamService
	orchestratorService IOrchestratorService
	firewallService     IFirewallService
	netmanService       INetmanService
	radioService        IRadioService
	apDaemonService     IAPDaemonService
	instanceService     IInstanceService
	statusService       IStatusService

	validate *validator.Validate
}

func NewService(preflightService IPreflightService, inventoryService IInventoryService,
	upstreamService IUpstreamService, orchestratorService IOrchestratorService,
	firewallService IFirewallService, netmanService INetmanService,
	radioService IRadioService, apDaemonService IAPDaemonService,
	instanceService IInstanceService, statusService IStatusService) *Service {
	return &Service{
		preflightService:    preflightService,
		inventoryService:    inventoryService,
		upstreamService:     upstreamService,
		orchestratorService: orchestratorService,
		firewallService:     firewallService,
		netmanService:       netmanService,
		radioService:        radioService,
		apDaemonService:     apDaemonService,
		instanceService:     instanceService,
		statusService:       statusService,

		validate: validator.New(),
	}
}

// Run validates, starts the hotspot and blocks in the monitor loop
// until cancellation or auto-off. The returned error is fatal; the
// caller maps it to a non-zero exit.
func (s *Service) Run(ctx context.Context, options entities.HotspotOptions) (err error) {
	if err = s.validate.Struct(options); err != nil {
		return fmt.Errorf("Run: invalid options: %w", err)
	}

	report := s.preflightService.Validate(ctx, options)
	for _, warning := range report.Warnings {
		log.Warn().Msgf("Run: preflight: %s", warning)
	}

	if !report.OK() {
		for _, preflightErr := range report.Errors {
			log.Error().Msgf("Run: preflight: %s", preflightErr)
		}

		s.statusService.PublishError(joinLines(report.Errors))

		return fmt.Errorf("Run: %w", errs.ErrPreflightFailed)
	}

	// at most one session per host; a conflicting instance was already
	// announced as a preflight warning
	s.instanceService.TerminateConflicting()
	if err = s.instanceService.Acquire(); err != nil {
		return fmt.Errorf("Run: %w", err)
	}
	defer s.instanceService.Release()

	interfaces, err := s.inventoryService.ListInterfaces(ctx, options.ExcludeVPN)
	if err != nil {
		return fmt.Errorf("Run: %w", err)
	}

	target, found := interfaces.Find(report.TargetInterface)
	if !found {
		return fmt.Errorf("Run: %w: %s", errs.ErrInterfaceNotFound, report.TargetInterface)
	}

	upstreamIface := s.upstreamService.Resolve(ctx, options.ExcludeVPN)

	session, err := s.orchestratorService.StartSession(ctx, target, interfaces, upstreamIface, options)
	if err != nil {
		s.statusService.PublishError(err.Error())
		return fmt.Errorf("Run: %w", err)
	}
	defer s.orchestratorService.Teardown(context.WithoutCancel(ctx), session)

	log.Info().
		Str("interface", session.APInterface()).
		Str("mode", session.Mode.String()).
		Msg("Run: hotspot active")
	s.statusService.PublishActive(fmt.Sprintf("Hotspot %q is now active on %s", options.SSID, session.APInterface()))

	s.monitor(ctx, session, options)

	return nil
}

// monitor is the 1-second cadence loop: re-resolve the upstream and
// reprogram rules on change, and sample connected clients every fifth
// iteration for the auto-off timer.
func (s *Service) monitor(ctx context.Context, session *entities.RuntimeSession, options entities.HotspotOptions) {
	ticker := time.NewTicker(constants.MonitorInterval)
	defer ticker.Stop()

	var sampleCounter int
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("monitor: stop requested")
			return
		case <-ticker.C:
		}

		newUpstream := s.upstreamService.Resolve(ctx, options.ExcludeVPN)
		if newUpstream != "" && newUpstream != session.CurrentUpstream && newUpstream != session.HotspotInterface {
			s.firewallService.Apply(ctx, session.APInterface(), newUpstream, session.MACPolicy)
			session.CurrentUpstream = newUpstream
		}

		if session.AutoOffMinutes <= 0 {
			continue
		}

		sampleCounter++
		if sampleCounter < constants.ClientSampleEvery {
			continue
		}
		sampleCounter = 0

		clients := s.countClients(ctx, session)
		if registerClientSample(session, clients) {
			log.Info().
				Int("idle_seconds", session.IdleSeconds).
				Msg("monitor: auto-off triggered, no clients connected")
			return
		}
	}
}

// countClients uses the station list for managed and dual-adapter
// modes, and the DHCP lease count in concurrent mode where the station
// dump reflects the virtual interface the helper owns.
func (s *Service) countClients(ctx context.Context, session *entities.RuntimeSession) int {
	if session.Mode == entities.SessionModeConcurrent {
		return s.apDaemonService.CountClients()
	}

	return s.radioService.CountStations(ctx, session.HotspotInterface)
}

// registerClientSample folds one 5-second client sample into the idle
// accumulator. Any non-zero sample resets it; reaching the configured
// threshold requests shutdown.
func registerClientSample(session *entities.RuntimeSession, clients int) (shouldStop bool) {
	if clients > 0 {
		session.IdleSeconds = 0
		return false
	}

	session.IdleSeconds += constants.ClientSampleEvery

	return session.IdleSeconds >= session.AutoOffMinutes*60
}

func joinLines(lines []string) (joined string) {
	for i, line := range lines {
		if i > 0 {
			joined += "\n"
		}
		joined += line
	}

	return joined
}
