package preflight

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/minthotspot/hotspot-agent/internal/constants"
	"github.com/minthotspot/hotspot-agent/internal/entities"
)

type (
	IExecService interface {
		Output(ctx context.Context, name string, args ...string) (output []byte, err error)
		Run(ctx context.Context, name string, args ...string) (err error)
	}

	INetmanService interface {
		IsServiceActive(ctx context.Context) (active bool, err error)
	}

	IRadioService interface {
		IsBlocked(ctx context.Context) (blocked bool, reason string)
	}

	IInventoryService interface {
		ListInterfaces(ctx context.Context, excludeVPN bool) (interfaces entities.Interfaces, err error)
	}

	ISelectorService interface {
		SelectFrom(interfaces entities.Interfaces, manualInternet string) (result entities.SelectionResult)
	}

	IUpstreamService interface {
		Resolve(ctx context.Context, excludeVPN bool) string
	}

	IInstanceService interface {
		RunningInstance() (pid int, running bool)
	}
)

// Service runs the ordered preflight checklist. Checks are independent
// and evaluation continues past errors, except where a finding makes
// every later check meaningless (no Wi-Fi hardware, radio kill-switch).
// This is the only layer besides the orchestrator allowed to produce
// fatal outcomes; everything below it returns best-effort values.
type Service struct {
	execService      IExecService
	netmanService    INetmanService
	radioService     IRadioService
	inventoryService IInventoryService
	selectorService  ISelectorService
	upstreamService  IUpstreamService
	instanceService  IInstanceService
}

func NewService(execService IExecService, netmanService INetmanService, radioService IRadioService,
	inventoryService IInventoryService, selectorService ISelectorService,
	upstreamService IUpstreamService, instanceService IInstanceService) *Service {
	return &Service{
		execService:      execService,
		netmanService:    netmanService,
		radioService:     radioService,
		inventoryService: inventoryService,
		selectorService:  selectorService,
		upstreamService:  upstreamService,
		instanceService:  instanceService,
	}
}

// Validate runs the full checklist against the requested options.
func (s *Service) Validate(ctx context.Context, options entities.HotspotOptions) (report entities.PreflightReport) {
	// management service
	active, err := s.netmanService.IsServiceActive(ctx)
	switch {
	case err != nil:
		report.AddWarning("could not verify NetworkManager status")
	case !active:
		report.AddError("NetworkManager is not running. Start it with: sudo systemctl start NetworkManager")
	}

	// kill switch; nothing below is meaningful while blocked
	if blocked, reason := s.radioService.IsBlocked(ctx); blocked {
		report.AddError(reason)
		return report
	}

	interfaces, err := s.inventoryService.ListInterfaces(ctx, options.ExcludeVPN)
	if err != nil {
		report.AddError(fmt.Sprintf("could not enumerate network interfaces: %v", err))
		return report
	}

	wifi := interfaces.Wifi()
	if len(wifi) == 0 {
		report.AddError("no Wi-Fi interfaces found. Ensure your Wi-Fi adapter is connected and recognized.")
		return report
	}

	for _, iface := range wifi {
		if iface.InMonitorMode && iface.Name != options.Interface {
			report.AddWarning(fmt.Sprintf("%s is in monitor mode and cannot host an access point", iface.Name))
		}
	}

	target := s.resolveTarget(interfaces, options)
	report.TargetInterface = target
	if target == "" {
		if lo.IsNotEmpty(options.Interface) {
			report.AddError(fmt.Sprintf("interface %q not found. Available: %s",
				options.Interface, strings.Join(wifiNames(wifi), ", ")))
		} else {
			report.AddError("no Wi-Fi adapter with AP support found.")
		}
		return report
	}

	targetIface, _ := interfaces.Find(target)
	if targetIface.InMonitorMode {
		report.AddError(fmt.Sprintf(
			"interface %s is in monitor mode. Return it to managed mode first: sudo iw dev %s set type managed",
			target, target))
	}

	s.checkOperationalState(ctx, target, &report)
	s.checkAPSupport(targetIface, wifi, &report)

	upstreamIface := s.upstreamService.Resolve(ctx, options.ExcludeVPN)
	s.checkBusyConflict(targetIface, wifi, interfaces, upstreamIface, options, &report)

	if upstreamIface == "" {
		report.AddWarning("no active internet connection detected. Hotspot clients will not have internet access unless you connect later.")
	}

	if options.Band == constants.BandA && !targetIface.Supports5GHz {
		report.AddError(fmt.Sprintf("%s does not support the 5GHz band. Use 2.4GHz instead.", target))
	}

	validateSSID(options.SSID, &report)
	validatePassword(options.Password, &report)

	if pid, running := s.instanceService.RunningInstance(); running {
		report.AddWarning(fmt.Sprintf("another hotspot instance is running (PID %d). It will be terminated.", pid))
	}

	return report
}

// resolveTarget returns the effective hotspot interface: the manual
// choice when given, the selector's otherwise. "" means the manual
// choice does not exist, or no candidate could be derived.
func (s *Service) resolveTarget(interfaces entities.Interfaces, options entities.HotspotOptions) (target string) {
	if lo.IsNotEmpty(options.Interface) {
		if _, found := interfaces.Find(options.Interface); !found {
			return ""
		}

		return options.Interface
	}

	return s.selectorService.SelectFrom(interfaces, "").HotspotInterface
}

// checkOperationalState remediates an administratively-down interface
// with a bounded up-and-recheck loop, degrading to a warning if it
// stays down. A missing interface is fatal.
func (s *Service) checkOperationalState(ctx context.Context, target string, report *entities.PreflightReport) {
	state, err := s.linkState(ctx, target)
	if err != nil {
		report.AddError(fmt.Sprintf("interface %s not found in system", target))
		return
	}

	if !strings.Contains(state, "state DOWN") {
		if strings.Contains(state, "NO-CARRIER") && !strings.Contains(state, "state UP") {
			report.AddWarning(fmt.Sprintf("interface %s has no carrier (normal for Wi-Fi before connection)", target))
		}
		return
	}

	for range constants.LinkUpRetries {
		if err = s.execService.Run(ctx, constants.IPExecutable, "link", "set", target, "up"); err != nil {
			log.Debug().Err(err).Str("interface", target).Msg("checkOperationalState: link up failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}

		if state, err = s.linkState(ctx, target); err == nil && !strings.Contains(state, "state DOWN") {
			return
		}
	}

	report.AddWarning(fmt.Sprintf("interface %s is DOWN and could not be brought up. It may be disabled or have driver issues.", target))
}

func (s *Service) linkState(ctx context.Context, iface string) (state string, err error) {
	output, err := s.execService.Output(ctx, constants.IPExecutable, "link", "show", iface)
	if err != nil {
		return "", fmt.Errorf("linkState: %w", err)
	}

	return string(output), nil
}

func (s *Service) checkAPSupport(target entities.Interface, wifi entities.Interfaces, report *entities.PreflightReport) {
	if target.APSupport {
		return
	}

	msg := fmt.Sprintf("%s does not support AP (Access Point) mode.", target.Name)
	if alt := alternateAPRadio(wifi, target.Name); alt != "" {
		msg += fmt.Sprintf(" Try %s instead.", alt)
	}

	report.AddError(msg)
}

// checkBusyConflict is the critical safety analysis: decide whether
// starting the hotspot on the target disconnects the operator's only
// uplink, and whether that is survivable.
func (s *Service) checkBusyConflict(target entities.Interface, wifi entities.Interfaces,
	interfaces entities.Interfaces, upstreamIface string,
	options entities.HotspotOptions, report *entities.PreflightReport) {
	busy := target.Connected && target.ConnectionName != "" && target.ConnectionName != constants.ConnectionName
	if !busy {
		return
	}

	if target.Name != upstreamIface {
		// harmless disconnect: the uplink lives elsewhere
		report.AddWarning(fmt.Sprintf(
			"interface %s is connected to %q. It will be disconnected to start the hotspot.",
			target.Name, target.ConnectionName))
		return
	}

	if target.SupportsConcurrency {
		report.AddWarning(fmt.Sprintf(
			"interface %s supports STA+AP concurrency: the connection to %q will be preserved.",
			target.Name, target.ConnectionName))
		return
	}

	alternate := alternateUpstream(interfaces, target.Name)
	if alternate != "" {
		report.AddWarning(fmt.Sprintf(
			"your Wi-Fi (%s) will disconnect from %q. Internet will continue via %s.",
			target.Name, target.ConnectionName, alternate))
		return
	}

	if alt := alternateAPRadio(wifi, target.Name); alt != "" {
		report.AddWarning(fmt.Sprintf(
			"interface %s carries your uplink; consider using %s for the hotspot instead.",
			target.Name, alt))
		return
	}

	// maximal risk: sole radio, sole uplink, nothing to fall back on
	if options.ForceSingleInterface {
		report.AddWarning(fmt.Sprintf(
			"FORCED: your only Wi-Fi interface (%s) will disconnect from %q. You will lose internet connectivity.",
			target.Name, target.ConnectionName))
		return
	}

	report.AddError(fmt.Sprintf(
		"BLOCKED: your only Wi-Fi interface (%s) is currently providing your internet connection via %q. "+
			"Starting a hotspot will disconnect you completely.\n"+
			"Solutions:\n"+
			"  1. Connect to the internet via Ethernet cable first\n"+
			"  2. Add a second USB Wi-Fi adapter for the hotspot\n"+
			"  3. Tether a phone over USB\n"+
			"  4. Use --force-single-interface if you understand the risk",
		target.Name, target.ConnectionName))
}

// alternateUpstream finds a non-wifi connected source (Ethernet,
// mobile, tethering) that keeps the host online after the target
// radio disconnects.
func alternateUpstream(interfaces entities.Interfaces, targetName string) string {
	for _, iface := range interfaces {
		if iface.Name == targetName {
			continue
		}

		switch iface.Type {
		case entities.InterfaceTypeEthernet, entities.InterfaceTypeMobile, entities.InterfaceTypeTethered:
			if iface.Connected && iface.HasIP {
				return iface.Name
			}
		default:
		}
	}

	return ""
}

func alternateAPRadio(wifi entities.Interfaces, targetName string) string {
	for _, iface := range wifi {
		if iface.Name != targetName && iface.APSupport && !iface.InMonitorMode {
			return iface.Name
		}
	}

	return ""
}

func validateSSID(ssid string, report *entities.PreflightReport) {
	if len(ssid) < 1 || len(ssid) > 32 {
		report.AddError("SSID must be between 1 and 32 characters.")
		return
	}

	// control characters would end up verbatim inside generated helper
	// configuration files
	if strings.ContainsFunc(ssid, unicode.IsControl) {
		report.AddError("SSID must not contain control characters.")
		return
	}

	for _, r := range ssid {
		if r > 127 {
			report.AddWarning("SSID contains non-ASCII characters. Some devices may not display it correctly.")
			break
		}
	}
}

func validatePassword(password string, report *entities.PreflightReport) {
	switch {
	case len(password) < 8:
		report.AddError("password must be at least 8 characters for WPA2 security.")
	case len(password) > 63:
		report.AddError("password must not exceed 63 characters.")
	case strings.ContainsFunc(password, unicode.IsControl):
		report.AddError("password must not contain control characters.")
	}
}

func wifiNames(wifi entities.Interfaces) []string {
	return lo.Map(wifi, func(iface entities.Interface, _ int) string {
		return iface.Name
	})
}
