package radio

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/minthotspot/hotspot-agent/internal/constants"
)

type (
	IExecService interface {
		Output(ctx context.Context, name string, args ...string) (output []byte, err error)
		Run(ctx context.Context, name string, args ...string) (err error)
	}
)

// Capabilities is one radio's probed feature set. Failed probes degrade
// to per-field defaults chosen to bias away from unsafe outcomes: AP
// and 5 GHz checks default optimistic (a false negative only narrows
// choice), concurrency defaults pessimistic (a false positive risks
// disconnecting the only uplink).
type Capabilities struct {
	APSupport           bool
	Supports5GHz        bool
	SupportsConcurrency bool
	ConcurrencyChannels int
	InMonitorMode       bool
}

type Service struct {
	execService IExecService
}

func NewService(execService IExecService) *Service {
	return &Service{
		execService: execService,
	}
}

// Probe collects the full capability set for one wifi interface. It
// never returns an error: every probe failure is absorbed into its
// documented default.
func (s *Service) Probe(ctx context.Context, iface string) (caps Capabilities) {
	caps = Capabilities{
		APSupport:           true, // optimistic default
		Supports5GHz:        false,
		SupportsConcurrency: false,
		ConcurrencyChannels: 1,
	}

	devInfo, err := s.execService.Output(ctx, constants.IWExecutable, "dev", iface, "info")
	if err != nil {
		log.Debug().Err(err).Str("interface", iface).Msg("Probe: dev info query failed, using defaults")
		return caps
	}

	caps.InMonitorMode = parseInterfaceMode(string(devInfo)) == "monitor"

	phyName := parsePhyName(string(devInfo))
	if lo.IsEmpty(phyName) {
		return caps
	}

	phyInfo, err := s.execService.Output(ctx, constants.IWExecutable, "phy", phyName, "info")
	if err != nil {
		log.Debug().Err(err).Str("phy", phyName).Msg("Probe: phy info query failed, using defaults")
		return caps
	}

	caps.APSupport = parseAPModeSupport(string(phyInfo))
	caps.Supports5GHz = parse5GHzSupport(string(phyInfo))
	caps.SupportsConcurrency, caps.ConcurrencyChannels = parseCombinations(string(phyInfo))

	return caps
}

// CurrentChannel returns the interface's live operating channel,
// defaulting to channel 6 (2.4 GHz) when undeterminable.
func (s *Service) CurrentChannel(ctx context.Context, iface string) int {
	devInfo, err := s.execService.Output(ctx, constants.IWExecutable, "dev", iface, "info")
	if err != nil {
		return constants.DefaultChannel
	}

	if channel := parseChannel(string(devInfo)); channel > 0 {
		return channel
	}

	return constants.DefaultChannel
}

// ChannelRestricted reports whether the channel carries a no-IR
// regulatory restriction on the interface's radio. Probe failure means
// "not restricted": the AP helper will surface a real restriction
// itself, this check only enables the pre-emptive regulatory fix.
func (s *Service) ChannelRestricted(ctx context.Context, iface string, channel int) bool {
	devInfo, err := s.execService.Output(ctx, constants.IWExecutable, "dev", iface, "info")
	if err != nil {
		return false
	}

	phyName := parsePhyName(string(devInfo))
	if lo.IsEmpty(phyName) {
		return false
	}

	channels, err := s.execService.Output(ctx, constants.IWExecutable, "phy", phyName, "channels")
	if err != nil {
		return false
	}

	return parseChannelNoIR(string(channels), channel)
}

// SetRegulatoryDomain adjusts the regulatory domain, best effort.
func (s *Service) SetRegulatoryDomain(ctx context.Context, country string) (err error) {
	if lo.IsEmpty(country) {
		return nil
	}

	if err = s.execService.Run(ctx, constants.IWExecutable, "reg", "set", strings.ToUpper(country)); err != nil {
		return fmt.Errorf("SetRegulatoryDomain: %w", err)
	}

	return nil
}

// CountStations returns the number of associated clients on the
// interface. Failure counts as zero clients, which at worst delays
// auto-off by one sample.
func (s *Service) CountStations(ctx context.Context, iface string) int {
	output, err := s.execService.Output(ctx, constants.IWExecutable, "dev", iface, "station", "dump")
	if err != nil {
		return 0
	}

	return parseStationCount(string(output))
}

// AddVirtualAPInterface creates an AP-type sub-interface bound to the
// same physical radio as iface.
func (s *Service) AddVirtualAPInterface(ctx context.Context, iface, virtualIface string) (err error) {
	if err = s.execService.Run(ctx, constants.IWExecutable,
		"dev", iface, "interface", "add", virtualIface, "type", "__ap"); err != nil {
		return fmt.Errorf("AddVirtualAPInterface: %w", err)
	}

	return nil
}

// DeleteVirtualInterface removes a virtual sub-interface. Used on
// teardown, so an already-missing interface is not an error.
func (s *Service) DeleteVirtualInterface(ctx context.Context, virtualIface string) {
	if err := s.execService.Run(ctx, constants.IWExecutable, "dev", virtualIface, "del"); err != nil {
		log.Debug().Err(err).Str("interface", virtualIface).Msg("DeleteVirtualInterface: delete failed")
	}
}

// IsBlocked checks the hardware/software kill switch. An unreadable
// rfkill state counts as unblocked so a missing tool cannot block
// valid hardware.
func (s *Service) IsBlocked(ctx context.Context) (blocked bool, reason string) {
	output, err := s.execService.Output(ctx, constants.RfkillExecutable, "list", "wifi")
	if err != nil {
		return false, ""
	}

	lower := strings.ToLower(string(output))
	switch {
	case strings.Contains(lower, "hard blocked: yes"):
		return true, "Wi-Fi is HARDWARE BLOCKED. Check the physical Wi-Fi switch on your machine."
	case strings.Contains(lower, "soft blocked: yes"):
		return true, "Wi-Fi is SOFTWARE BLOCKED. Run: sudo rfkill unblock wifi"
	}

	return false, ""
}
