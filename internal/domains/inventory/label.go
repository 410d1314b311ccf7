package inventory

import (
	"fmt"
	"strings"

	"github.com/minthotspot/hotspot-agent/internal/entities"
)

// renderLabel builds the display summary for an interface. Output-only:
// nothing downstream decides on it.
func renderLabel(iface entities.Interface) string {
	var parts []string

	switch iface.Type {
	case entities.InterfaceTypeWifi:
		switch {
		case iface.IsUSB:
			parts = append(parts, "USB Wi-Fi Adapter")
		case iface.IsInternal:
			parts = append(parts, "Built-in Wi-Fi")
		default:
			parts = append(parts, "Wi-Fi")
		}
	case entities.InterfaceTypeEthernet:
		if iface.IsUSB {
			parts = append(parts, "USB Ethernet")
		} else {
			parts = append(parts, "Ethernet")
		}
	case entities.InterfaceTypeBridge:
		parts = append(parts, "Bridge")
	case entities.InterfaceTypeVPN:
		parts = append(parts, "VPN")
	case entities.InterfaceTypeMobile:
		parts = append(parts, "Mobile Broadband")
	case entities.InterfaceTypeTethered:
		parts = append(parts, "USB Tethering")
	default:
		parts = append(parts, strings.Title(iface.Type.String())) //nolint:staticcheck // ASCII type names only
	}

	if iface.Type == entities.InterfaceTypeWifi {
		var caps []string
		if iface.APSupport {
			caps = append(caps, "AP")
		}
		if iface.Supports5GHz {
			caps = append(caps, "5GHz")
		}
		if iface.SupportsConcurrency {
			caps = append(caps, "STA+AP")
		}
		if len(caps) > 0 {
			parts = append(parts, fmt.Sprintf("[%s]", strings.Join(caps, ", ")))
		}
	}

	if iface.Connected && iface.ConnectionName != "" {
		parts = append(parts, fmt.Sprintf("-> %s", iface.ConnectionName))
	}

	parts = append(parts, fmt.Sprintf("(%s)", iface.Name))

	return strings.Join(parts, " ")
}
