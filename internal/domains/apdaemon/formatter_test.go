package apdaemon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minthotspot/hotspot-agent/internal/entities"
)

func TestFormatHostapdConfig(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name        string
		channel     int
		options     entities.HotspotOptions
		countryCode string
		contains    []string
		notContains []string
	}{
		{
			name:    "2.4GHz defaults",
			channel: 6,
			options: entities.HotspotOptions{
				SSID:     "MintHotspot",
				Password: "password123",
				Band:     "bg",
			},
			contains: []string{
				"interface=ap0",
				"driver=nl80211",
				"ssid=MintHotspot",
				"hw_mode=g",
				"channel=6",
				"auth_algs=1",
				"wpa=2",
				"wpa_passphrase=password123",
				"wpa_key_mgmt=WPA-PSK",
				"rsn_pairwise=CCMP",
			},
			notContains: []string{
				"country_code",
				"ignore_broadcast_ssid",
			},
		},
		{
			name:    "5GHz band with country code",
			channel: 36,
			options: entities.HotspotOptions{
				SSID:     "Upstairs",
				Password: "longsecret",
				Band:     "a",
			},
			countryCode: "de",
			contains: []string{
				"hw_mode=a",
				"channel=36",
				"country_code=DE",
			},
		},
		{
			name:    "hidden network",
			channel: 6,
			options: entities.HotspotOptions{
				SSID:     "Covert",
				Password: "password123",
				Band:     "bg",
				Hidden:   true,
			},
			contains: []string{"ignore_broadcast_ssid=1"},
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			config := formatHostapdConfig("ap0", testCase.channel, testCase.options, testCase.countryCode)
			for _, line := range testCase.contains {
				assert.Contains(t, config, line+"\n")
			}
			for _, line := range testCase.notContains {
				assert.NotContains(t, config, line)
			}
		})
	}
}

func TestFormatDnsmasqConfig(t *testing.T) {
	t.Parallel()

	config := formatDnsmasqConfig("ap0", entities.HotspotOptions{})
	assert.Contains(t, config, "interface=ap0\n")
	assert.Contains(t, config, "bind-interfaces\n")
	assert.Contains(t, config, "except-interface=lo\n")
	assert.Contains(t, config, "dhcp-range=192.168.73.50,192.168.73.150,12h\n")
	assert.Contains(t, config, "dhcp-option=option:router,192.168.73.1\n")
	assert.Contains(t, config, "dhcp-option=option:dns-server,192.168.73.1\n")

	override := formatDnsmasqConfig("ap0", entities.HotspotOptions{DNS: "9.9.9.9"})
	assert.Contains(t, override, "dhcp-option=option:dns-server,9.9.9.9\n")
	assert.NotContains(t, override, "dns-server,192.168.73.1")
}

func TestCountLeases(t *testing.T) {
	t.Parallel()

	const leases = `1756500000 aa:bb:cc:dd:ee:ff 192.168.73.51 phone-of-sam 01:aa:bb:cc:dd:ee:ff
1756500120 11:22:33:44:55:66 192.168.73.52 * *
`

	assert.Equal(t, 2, countLeases(leases))
	assert.Equal(t, 0, countLeases(""))
	assert.Equal(t, 0, countLeases("\n\n"))
	assert.Equal(t, 0, countLeases("garbage line"))
}

func TestFormatLeasesToTable(t *testing.T) {
	t.Parallel()

	const leases = `1756500000 aa:bb:cc:dd:ee:ff 192.168.73.51 phone-of-sam 01:aa:bb:cc:dd:ee:ff
1756500120 11:22:33:44:55:66 192.168.73.52
`

	rendered := formatLeasesToTable(leases)
	assert.Contains(t, rendered, "aa:bb:cc:dd:ee:ff")
	assert.Contains(t, rendered, "192.168.73.51")
	assert.Contains(t, rendered, "phone-of-sam")
	// entry without a hostname renders a placeholder
	assert.Contains(t, rendered, "11:22:33:44:55:66")

	lines := strings.Split(rendered, "\n")
	assert.GreaterOrEqual(t, len(lines), 3)
}
