package apdaemon

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/minthotspot/hotspot-agent/internal/constants"
	"github.com/minthotspot/hotspot-agent/internal/entities"
)

// formatHostapdConfig renders the hostapd configuration for the
// virtual AP interface. WPA2-PSK only, matching the password bounds
// the preflight enforces.
func formatHostapdConfig(iface string, channel int, options entities.HotspotOptions, countryCode string) string {
	var b strings.Builder

	hwMode := "g"
	if options.Band == constants.BandA {
		hwMode = "a"
	}

	fmt.Fprintf(&b, "interface=%s\n", iface)
	fmt.Fprintf(&b, "driver=nl80211\n")
	fmt.Fprintf(&b, "ssid=%s\n", options.SSID)
	fmt.Fprintf(&b, "hw_mode=%s\n", hwMode)
	fmt.Fprintf(&b, "channel=%d\n", channel)
	if lo.IsNotEmpty(countryCode) {
		fmt.Fprintf(&b, "country_code=%s\n", strings.ToUpper(countryCode))
	}
	if options.Hidden {
		fmt.Fprintf(&b, "ignore_broadcast_ssid=1\n")
	}
	fmt.Fprintf(&b, "auth_algs=1\n")
	fmt.Fprintf(&b, "wpa=2\n")
	fmt.Fprintf(&b, "wpa_passphrase=%s\n", options.Password)
	fmt.Fprintf(&b, "wpa_key_mgmt=WPA-PSK\n")
	fmt.Fprintf(&b, "rsn_pairwise=CCMP\n")

	return b.String()
}

// formatDnsmasqConfig renders the DHCP helper configuration scoped to
// the virtual AP interface only.
func formatDnsmasqConfig(iface string, options entities.HotspotOptions) string {
	var b strings.Builder

	dns := options.DNS
	if lo.IsEmpty(dns) {
		dns = constants.GatewayAddress
	}

	fmt.Fprintf(&b, "interface=%s\n", iface)
	fmt.Fprintf(&b, "bind-interfaces\n")
	fmt.Fprintf(&b, "except-interface=lo\n")
	fmt.Fprintf(&b, "dhcp-range=%s,%s,12h\n", constants.DHCPRangeStart, constants.DHCPRangeEnd)
	fmt.Fprintf(&b, "dhcp-option=option:router,%s\n", constants.GatewayAddress)
	fmt.Fprintf(&b, "dhcp-option=option:dns-server,%s\n", dns)
	fmt.Fprintf(&b, "dhcp-leasefile=%s\n", constants.DnsmasqLeasePath)
	fmt.Fprintf(&b, "pid-file=%s\n", constants.DnsmasqPIDPath)

	return b.String()
}
