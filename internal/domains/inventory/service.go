package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"

	"github.com/minthotspot/hotspot-agent/internal/constants"
	"github.com/minthotspot/hotspot-agent/internal/domains/netman"
	"github.com/minthotspot/hotspot-agent/internal/domains/radio"
	"github.com/minthotspot/hotspot-agent/internal/entities"
)

type (
	IExecService interface {
		Output(ctx context.Context, name string, args ...string) (output []byte, err error)
	}

	INetmanService interface {
		ListDevices(ctx context.Context) (devices []netman.Device, err error)
	}

	IRadioService interface {
		Probe(ctx context.Context, iface string) (caps radio.Capabilities)
	}

	IUpstreamService interface {
		Resolve(ctx context.Context, excludeVPN bool) string
	}
)

// pseudo-interfaces that never participate in hotspot decisions
var excludedNamePrefixes = []string{"lo", "docker", "br-", "veth", "virbr", "p2p-"}

var (
	vpnNamePrefixes    = []string{"tun", "tap", "wg", "ppp"}
	mobileNamePrefixes = []string{"wwan", "wwp", "cdc", "mbim"}
	tetherNamePrefixes = []string{"usb"}
)

// Service enumerates and classifies host network interfaces. Every
// call re-derives the full inventory: interface existence, state and
// addressing are all volatile, so there is nothing safe to cache.
type Service struct {
	execService     IExecService
	netmanService   INetmanService
	radioService    IRadioService
	upstreamService IUpstreamService
	sysfsRoot       string
}

func NewService(execService IExecService, netmanService INetmanService,
	radioService IRadioService, upstreamService IUpstreamService, sysfsRoot string) *Service {
	return &Service{
		execService:     execService,
		netmanService:   netmanService,
		radioService:    radioService,
		upstreamService: upstreamService,
		sysfsRoot:       sysfsRoot,
	}
}

// ListInterfaces returns fresh snapshots of all relevant interfaces.
func (s *Service) ListInterfaces(ctx context.Context, excludeVPN bool) (interfaces entities.Interfaces, err error) {
	devices, err := s.netmanService.ListDevices(ctx)
	if err != nil {
		return interfaces, fmt.Errorf("ListInterfaces: %w", err)
	}

	addresses := s.fetchAddresses(ctx)
	upstreamIface := s.upstreamService.Resolve(ctx, excludeVPN)

	for _, device := range devices {
		if isExcludedDevice(device) {
			continue
		}

		iface := entities.Interface{
			Name:           device.Name,
			Type:           classifyDevice(device),
			State:          device.State,
			Connected:      device.State == "connected",
			ConnectionName: device.Connection,
		}

		s.fillHardwarePath(&iface)

		if addr, ok := addresses[device.Name]; ok {
			iface.HasIP = true
			iface.IPAddress = addr
		}

		iface.IsInternetSource = iface.Connected && iface.Name == upstreamIface

		interfaces = append(interfaces, iface)
	}

	s.probeWifiCapabilities(ctx, interfaces)

	for i := range interfaces {
		interfaces[i].Label = renderLabel(interfaces[i])
	}

	return interfaces, nil
}

// probeWifiCapabilities fans the per-radio probes out concurrently;
// each probe is already bounded by the exec timeout and degrades to
// safe defaults on failure.
func (s *Service) probeWifiCapabilities(ctx context.Context, interfaces entities.Interfaces) {
	wifiIndexes := make([]int, 0, len(interfaces))
	for i := range interfaces {
		if interfaces[i].Type == entities.InterfaceTypeWifi {
			wifiIndexes = append(wifiIndexes, i)
		}
	}

	if len(wifiIndexes) == 0 {
		return
	}

	p := pool.New().WithMaxGoroutines(len(wifiIndexes))
	for _, i := range wifiIndexes {
		p.Go(func() {
			caps := s.radioService.Probe(ctx, interfaces[i].Name)
			interfaces[i].APSupport = caps.APSupport
			interfaces[i].Supports5GHz = caps.Supports5GHz
			interfaces[i].SupportsConcurrency = caps.SupportsConcurrency
			interfaces[i].ConcurrencyChannels = caps.ConcurrencyChannels
			interfaces[i].InMonitorMode = caps.InMonitorMode

			if !caps.APSupport {
				interfaces[i].Issues = append(interfaces[i].Issues, "no AP mode support")
			}
			if caps.InMonitorMode {
				interfaces[i].Issues = append(interfaces[i].Issues, "in monitor mode")
			}
		})
	}
	p.Wait()
}

// fetchAddresses maps interface name to its first IPv4 address.
func (s *Service) fetchAddresses(ctx context.Context) map[string]string {
	addresses := make(map[string]string)

	output, err := s.execService.Output(ctx, constants.IPExecutable, "--json", "address", "show")
	if err != nil {
		log.Warn().Err(err).Msg("fetchAddresses: address query failed")
		return addresses
	}

	var links linuxInterfaces
	if err = json.Unmarshal(output, &links); err != nil {
		log.Warn().Err(err).Msg("fetchAddresses: parse error")
		return addresses
	}

	for _, link := range links {
		for _, addr := range link.AddrInfo {
			if addr.Family == "inet" && lo.IsNotEmpty(addr.Addr) {
				addresses[link.Name] = fmt.Sprintf("%s/%d", addr.Addr, addr.Prefix)
				break
			}
		}
	}

	return addresses
}

// fillHardwarePath resolves the device's sysfs hardware path to decide
// its bus attachment. An unresolvable path leaves both flags false:
// unknown, not "internal by default".
func (s *Service) fillHardwarePath(iface *entities.Interface) {
	devicePath, err := filepath.EvalSymlinks(filepath.Join(s.sysfsRoot, iface.Name, "device"))
	if err == nil {
		iface.IsUSB = strings.Contains(devicePath, "/usb")
		iface.IsInternal = strings.Contains(devicePath, "/pci") && !iface.IsUSB
	}

	driverPath, err := filepath.EvalSymlinks(filepath.Join(s.sysfsRoot, iface.Name, "device", "driver"))
	if err == nil {
		iface.Driver = filepath.Base(driverPath)
	}
}

func isExcludedDevice(device netman.Device) bool {
	if device.Type == "wifi-p2p" {
		return true
	}

	return lo.SomeBy(excludedNamePrefixes, func(prefix string) bool {
		return strings.HasPrefix(device.Name, prefix)
	})
}

// classifyDevice assigns the interface type. The vpn/mobile/tethered
// classes come from a name-prefix table and are best-effort hints:
// exotic naming can misclassify and callers must tolerate that.
func classifyDevice(device netman.Device) entities.InterfaceType {
	name := device.Name
	switch {
	case hasAnyPrefix(name, vpnNamePrefixes):
		return entities.InterfaceTypeVPN
	case hasAnyPrefix(name, mobileNamePrefixes):
		return entities.InterfaceTypeMobile
	case hasAnyPrefix(name, tetherNamePrefixes):
		return entities.InterfaceTypeTethered
	}

	switch device.Type {
	case "wifi":
		return entities.InterfaceTypeWifi
	case "ethernet":
		return entities.InterfaceTypeEthernet
	case "bridge":
		return entities.InterfaceTypeBridge
	case "tun", "vpn", "wireguard":
		return entities.InterfaceTypeVPN
	case "gsm":
		return entities.InterfaceTypeMobile
	default:
		return entities.InterfaceTypeOther
	}
}

func hasAnyPrefix(name string, prefixes []string) bool {
	return lo.SomeBy(prefixes, func(prefix string) bool {
		return strings.HasPrefix(name, prefix)
	})
}
