package upstream

import (
	"bufio"
	"context"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/minthotspot/hotspot-agent/internal/constants"
)

type (
	IExecService interface {
		Output(ctx context.Context, name string, args ...string) (output []byte, err error)
	}
)

// probeAddresses are well-known public addresses used to ask the kernel
// for its outbound device. The first responsive answer wins.
var probeAddresses = []string{"1.1.1.1", "8.8.8.8"}

var vpnPrefixes = []string{"tun", "tap", "wg", "ppp"}

var deviceRe = regexp.MustCompile(`dev\s+(\S+)`)

// Service resolves which interface currently carries the default
// internet route. It is called every second by the monitor loop, so it
// holds no state and opens no persistent handles.
type Service struct {
	execService IExecService
}

func NewService(execService IExecService) *Service {
	return &Service{
		execService: execService,
	}
}

// Resolve returns the current upstream interface name, or "" when no
// default route exists. In standard mode the kernel's routing decision
// is trusted as-is, VPN devices included: an active VPN may well be the
// desired path. With excludeVPN the default-route table is read
// directly and VPN-named devices are filtered out, falling back to the
// first unfiltered candidate if filtering empties the set.
func (s *Service) Resolve(ctx context.Context, excludeVPN bool) string {
	if !excludeVPN {
		for _, addr := range probeAddresses {
			output, err := s.execService.Output(ctx, constants.IPExecutable, "route", "get", addr)
			if err != nil {
				continue
			}

			if device := parseRouteDevice(string(output)); lo.IsNotEmpty(device) {
				return device
			}
		}

		// fall back to the default-route table, still unfiltered
		candidates := s.defaultRouteDevices(ctx)
		if len(candidates) > 0 {
			return candidates[0]
		}

		return ""
	}

	candidates := s.defaultRouteDevices(ctx)
	if len(candidates) == 0 {
		return ""
	}

	filtered := lo.Filter(candidates, func(device string, _ int) bool {
		return !isVPNDevice(device)
	})
	if len(filtered) > 0 {
		return filtered[0]
	}

	return candidates[0]
}

func (s *Service) defaultRouteDevices(ctx context.Context) (devices []string) {
	output, err := s.execService.Output(ctx, constants.IPExecutable, "-4", "route", "show", "default")
	if err != nil {
		return devices
	}

	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	for scanner.Scan() {
		if device := parseRouteDevice(scanner.Text()); lo.IsNotEmpty(device) {
			devices = append(devices, device)
		}
	}

	return devices
}

// parseRouteDevice extracts the device name from an `ip route` line
// such as "1.1.1.1 via 192.168.1.1 dev enp3s0 src 192.168.1.15".
func parseRouteDevice(line string) string {
	match := deviceRe.FindStringSubmatch(line)
	if len(match) < 2 {
		return ""
	}

	return match[1]
}

func isVPNDevice(device string) bool {
	return lo.SomeBy(vpnPrefixes, func(prefix string) bool {
		return strings.HasPrefix(device, prefix)
	})
}
