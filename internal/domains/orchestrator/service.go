package orchestrator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/minthotspot/hotspot-agent/internal/constants"
	"github.com/minthotspot/hotspot-agent/internal/entities"
	"github.com/minthotspot/hotspot-agent/internal/errs"
)

type (
	IExecService interface {
		Run(ctx context.Context, name string, args ...string) (err error)
	}

	INetmanService interface {
		EnableRadio(ctx context.Context, iface string) (ready bool)
		Disconnect(ctx context.Context, iface string)
		SetUnmanaged(ctx context.Context, iface string) (err error)
		DeleteProfile(ctx context.Context, name string)
		CreateAPProfile(ctx context.Context, iface string, options entities.HotspotOptions) (err error)
		ActivateProfile(ctx context.Context, iface string) (err error)
	}

	IRadioService interface {
		CurrentChannel(ctx context.Context, iface string) int
		ChannelRestricted(ctx context.Context, iface string, channel int) bool
		SetRegulatoryDomain(ctx context.Context, country string) (err error)
		AddVirtualAPInterface(ctx context.Context, iface, virtualIface string) (err error)
		DeleteVirtualInterface(ctx context.Context, virtualIface string)
	}

	IFirewallService interface {
		Apply(ctx context.Context, apIface, upstreamIface string, policy entities.MACPolicy)
		EnsureMSSClamp(ctx context.Context)
		Teardown(ctx context.Context)
	}

	IAPDaemonService interface {
		Available() bool
		Start(ctx context.Context, iface string, channel int, options entities.HotspotOptions) (err error)
		Stop()
	}
)

// default AP channels per band, used when multi-channel concurrency
// frees the AP from the STA's channel
const (
	defaultChannel24 = 6
	defaultChannel5  = 36
)

// Service decides among the three operating modes and drives setup and
// teardown. The mode is chosen once at session start and never
// re-evaluated mid-session.
type Service struct {
	execService     IExecService
	netmanService   INetmanService
	radioService    IRadioService
	firewallService IFirewallService
	apDaemonService IAPDaemonService
	countryCode     string
}

func NewService(execService IExecService, netmanService INetmanService, radioService IRadioService,
	firewallService IFirewallService, apDaemonService IAPDaemonService, countryCode string) *Service {
	return &Service{
		execService:     execService,
		netmanService:   netmanService,
		radioService:    radioService,
		firewallService: firewallService,
		apDaemonService: apDaemonService,
		countryCode:     countryCode,
	}
}

// DecideMode selects the session mode for the target radio, or refuses
// outright. A connected single radio without concurrency is never
// silently disconnected here; the force flag is the only way past the
// refusal, and it degrades the session to the managed path.
func (s *Service) DecideMode(target entities.Interface, interfaces entities.Interfaces,
	upstreamIface string, options entities.HotspotOptions) (mode entities.SessionMode, err error) {
	if target.Connected && target.SupportsConcurrency && s.apDaemonService.Available() {
		return entities.SessionModeConcurrent, nil
	}

	if physicallyDistinctUpstream(target, interfaces, upstreamIface) {
		return entities.SessionModeDualAdapter, nil
	}

	if !target.Connected {
		return entities.SessionModeManaged, nil
	}

	if options.ForceSingleInterface {
		log.Warn().
			Str("interface", target.Name).
			Msg("DecideMode: forced start on the sole uplink radio, connectivity will be lost")
		return entities.SessionModeManaged, nil
	}

	return mode, fmt.Errorf("DecideMode: %w: %s is connected, cannot do STA+AP, and no second uplink exists",
		errs.ErrSingleRadioConflict, target.Name)
}

// physicallyDistinctUpstream reports whether the upstream runs on
// separate hardware from the target radio. Virtual and VPN interfaces
// never count as distinct hardware.
func physicallyDistinctUpstream(target entities.Interface, interfaces entities.Interfaces, upstreamIface string) bool {
	if upstreamIface == "" || upstreamIface == target.Name {
		return false
	}

	upstream, found := interfaces.Find(upstreamIface)
	if !found {
		return false
	}

	return upstream.Type != entities.InterfaceTypeVPN
}

// StartSession brings the access point up in the decided mode and
// returns the live session. Any failure leaves no partial state
// engaged.
func (s *Service) StartSession(ctx context.Context, target entities.Interface,
	interfaces entities.Interfaces, upstreamIface string, options entities.HotspotOptions) (session *entities.RuntimeSession, err error) {
	mode, err := s.DecideMode(target, interfaces, upstreamIface, options)
	if err != nil {
		return nil, fmt.Errorf("StartSession: %w", err)
	}

	session = &entities.RuntimeSession{
		HotspotInterface: target.Name,
		Mode:             mode,
		AutoOffMinutes:   options.AutoOffMinutes,
		SSID:             options.SSID,
		MACPolicy: entities.MACPolicy{
			Mode:      options.MACMode,
			Addresses: options.MACList,
		},
	}

	log.Info().
		Str("interface", target.Name).
		Str("mode", mode.String()).
		Msg("StartSession: starting access point")

	switch mode {
	case entities.SessionModeConcurrent:
		err = s.startConcurrent(ctx, target, upstreamIface, options, session)
	default:
		err = s.startStandard(ctx, target.Name, options)
	}

	if err != nil {
		return nil, fmt.Errorf("StartSession: %w", err)
	}

	return session, nil
}

// startConcurrent creates a virtual AP sub-interface next to the live
// client association. The connectivity-preservation guarantee is
// absolute: no failure path below may disconnect the physical radio.
func (s *Service) startConcurrent(ctx context.Context, target entities.Interface,
	upstreamIface string, options entities.HotspotOptions, session *entities.RuntimeSession) (err error) {
	session.VirtualInterface = constants.VirtualAPInterface
	session.Channel = s.concurrentChannel(ctx, target, options)

	// a stale virtual interface from a crashed session would make the
	// add fail
	s.radioService.DeleteVirtualInterface(ctx, session.VirtualInterface)

	if err = s.radioService.AddVirtualAPInterface(ctx, target.Name, session.VirtualInterface); err != nil {
		return fmt.Errorf("startConcurrent: %w", err)
	}

	if err = s.netmanService.SetUnmanaged(ctx, session.VirtualInterface); err != nil {
		s.radioService.DeleteVirtualInterface(ctx, session.VirtualInterface)
		return fmt.Errorf("startConcurrent: %w", err)
	}

	if s.radioService.ChannelRestricted(ctx, target.Name, session.Channel) {
		log.Warn().
			Int("channel", session.Channel).
			Msg("startConcurrent: channel carries a no-IR restriction, adjusting regulatory domain")
		if regErr := s.radioService.SetRegulatoryDomain(ctx, s.countryCode); regErr != nil {
			log.Warn().Err(regErr).Msg("startConcurrent: regulatory adjustment failed, proceeding anyway")
		}
	}

	if err = s.execService.Run(ctx, constants.IPExecutable,
		"addr", "add", constants.GatewayCIDR, "dev", session.VirtualInterface); err != nil {
		log.Debug().Err(err).Msg("startConcurrent: address may already be assigned")
	}

	if err = s.execService.Run(ctx, constants.IPExecutable,
		"link", "set", session.VirtualInterface, "up"); err != nil {
		s.teardownVirtual(ctx, session)
		return fmt.Errorf("startConcurrent: %w", err)
	}

	s.firewallService.Apply(ctx, session.VirtualInterface, upstreamIface, session.MACPolicy)
	session.CurrentUpstream = upstreamIface

	if err = s.apDaemonService.Start(ctx, session.VirtualInterface, session.Channel, options); err != nil {
		// full teardown of the virtual side only; the physical radio's
		// association stays untouched
		s.teardownVirtual(ctx, session)
		s.firewallService.Teardown(ctx)
		return fmt.Errorf("startConcurrent: %w", err)
	}

	return nil
}

// concurrentChannel computes the AP operating channel. Single-channel
// concurrency pins the AP to the STA's live channel. Multi-channel
// concurrency tries the requested band's default first; this does not
// verify true dual-band separation from the STA's channel and is a
// known approximation that may still conflict.
func (s *Service) concurrentChannel(ctx context.Context, target entities.Interface, options entities.HotspotOptions) int {
	staChannel := s.radioService.CurrentChannel(ctx, target.Name)
	if target.ConcurrencyChannels <= 1 {
		return staChannel
	}

	if options.Band == constants.BandA {
		log.Info().
			Int("sta_channel", staChannel).
			Int("ap_channel", defaultChannel5).
			Msg("concurrentChannel: multi-channel concurrency, using requested band without verifying band separation")
		return defaultChannel5
	}

	return defaultChannel24
}

// startStandard is the managed / dual-adapter path through the
// connection manager.
func (s *Service) startStandard(ctx context.Context, iface string, options entities.HotspotOptions) (err error) {
	if !s.netmanService.EnableRadio(ctx, iface) {
		log.Warn().Str("interface", iface).Msg("startStandard: interface still not fully ready, proceeding")
	}

	s.netmanService.Disconnect(ctx, iface)
	s.netmanService.DeleteProfile(ctx, constants.ConnectionName)

	if err = s.netmanService.CreateAPProfile(ctx, iface, options); err != nil {
		s.netmanService.DeleteProfile(ctx, constants.ConnectionName)
		return fmt.Errorf("startStandard: %w", err)
	}

	if err = s.netmanService.ActivateProfile(ctx, iface); err != nil {
		s.netmanService.DeleteProfile(ctx, constants.ConnectionName)
		return fmt.Errorf("startStandard: %w", err)
	}

	s.firewallService.EnsureMSSClamp(ctx)

	return nil
}

// Teardown reverses everything a session may have set up. Idempotent,
// and safe after a partially completed startup: each step tolerates
// its subject already being gone.
func (s *Service) Teardown(ctx context.Context, session *entities.RuntimeSession) {
	if session == nil {
		return
	}

	log.Info().Str("interface", session.HotspotInterface).Msg("Teardown: stopping hotspot")

	s.apDaemonService.Stop()
	s.teardownVirtual(ctx, session)
	s.firewallService.Teardown(ctx)
	s.netmanService.DeleteProfile(ctx, constants.ConnectionName)
}

func (s *Service) teardownVirtual(ctx context.Context, session *entities.RuntimeSession) {
	if session.VirtualInterface == "" {
		return
	}

	s.radioService.DeleteVirtualInterface(ctx, session.VirtualInterface)
}
