package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minthotspot/hotspot-agent/internal/domains/netman"
	"github.com/minthotspot/hotspot-agent/internal/domains/radio"
	"github.com/minthotspot/hotspot-agent/internal/entities"
)

var errTestError = errors.New("test error")

type execStub struct {
	output string
	err    error
}

func (s *execStub) Output(context.Context, string, ...string) ([]byte, error) {
	return []byte(s.output), s.err
}

type netmanStub struct {
	devices []netman.Device
	err     error
}

func (s *netmanStub) ListDevices(context.Context) ([]netman.Device, error) {
	return s.devices, s.err
}

type radioStub struct {
	caps map[string]radio.Capabilities
}

func (s *radioStub) Probe(_ context.Context, iface string) radio.Capabilities {
	return s.caps[iface]
}

type upstreamStub struct {
	device string
}

func (s *upstreamStub) Resolve(context.Context, bool) string {
	return s.device
}

func TestClassifyDevice(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name     string
		device   netman.Device
		expected entities.InterfaceType
	}{
		{name: "wifi", device: netman.Device{Name: "wlan0", Type: "wifi"}, expected: entities.InterfaceTypeWifi},
		{name: "ethernet", device: netman.Device{Name: "enp3s0", Type: "ethernet"}, expected: entities.InterfaceTypeEthernet},
		{name: "bridge", device: netman.Device{Name: "br0", Type: "bridge"}, expected: entities.InterfaceTypeBridge},
		{name: "openvpn tunnel by name", device: netman.Device{Name: "tun0", Type: "tun"}, expected: entities.InterfaceTypeVPN},
		{name: "wireguard by type", device: netman.Device{Name: "home", Type: "wireguard"}, expected: entities.InterfaceTypeVPN},
		{name: "modem by name", device: netman.Device{Name: "wwan0", Type: "ethernet"}, expected: entities.InterfaceTypeMobile},
		{name: "gsm by type", device: netman.Device{Name: "ttyUSB-modem", Type: "gsm"}, expected: entities.InterfaceTypeMobile},
		{name: "phone tethering", device: netman.Device{Name: "usb0", Type: "ethernet"}, expected: entities.InterfaceTypeTethered},
		{name: "unknown", device: netman.Device{Name: "weird0", Type: "dummy"}, expected: entities.InterfaceTypeOther},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, classifyDevice(testCase.device))
		})
	}
}

func TestIsExcludedDevice(t *testing.T) {
	t.Parallel()

	excluded := []netman.Device{
		{Name: "lo", Type: "loopback"},
		{Name: "docker0", Type: "bridge"},
		{Name: "br-4fa2", Type: "bridge"},
		{Name: "veth12ab", Type: "ethernet"},
		{Name: "virbr0", Type: "bridge"},
		{Name: "p2p-dev-wlan0", Type: "wifi-p2p"},
	}
	for _, device := range excluded {
		assert.True(t, isExcludedDevice(device), device.Name)
	}

	kept := []netman.Device{
		{Name: "wlan0", Type: "wifi"},
		{Name: "enp3s0", Type: "ethernet"},
		{Name: "tun0", Type: "tun"},
	}
	for _, device := range kept {
		assert.False(t, isExcludedDevice(device), device.Name)
	}
}

func TestService_ListInterfaces(t *testing.T) {
	t.Parallel()

	const addressJSON = `[
		{"ifname":"enp3s0","operstate":"UP","addr_info":[
			{"family":"inet","local":"192.168.1.15","prefixlen":24}]},
		{"ifname":"wlan0","operstate":"UP","addr_info":[
			{"family":"inet6","local":"fe80::1","prefixlen":64}]}
	]`

	exec := &execStub{output: addressJSON}
	devices := &netmanStub{devices: []netman.Device{
		{Name: "enp3s0", Type: "ethernet", State: "connected", Connection: "Wired connection 1"},
		{Name: "wlan0", Type: "wifi", State: "disconnected"},
		{Name: "docker0", Type: "bridge", State: "unmanaged"},
	}}
	radios := &radioStub{caps: map[string]radio.Capabilities{
		"wlan0": {APSupport: true, Supports5GHz: true, ConcurrencyChannels: 1},
	}}

	service := NewService(exec, devices, radios, &upstreamStub{device: "enp3s0"}, t.TempDir())

	interfaces, err := service.ListInterfaces(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, interfaces, 2)

	eth, found := interfaces.Find("enp3s0")
	require.True(t, found)
	assert.Equal(t, entities.InterfaceTypeEthernet, eth.Type)
	assert.True(t, eth.Connected)
	assert.True(t, eth.HasIP)
	assert.Equal(t, "192.168.1.15/24", eth.IPAddress)
	assert.True(t, eth.IsInternetSource)
	assert.NotEmpty(t, eth.Label)

	wifi, found := interfaces.Find("wlan0")
	require.True(t, found)
	assert.Equal(t, entities.InterfaceTypeWifi, wifi.Type)
	assert.False(t, wifi.Connected)
	// only IPv4 addresses count as addressing
	assert.False(t, wifi.HasIP)
	assert.True(t, wifi.APSupport)
	assert.True(t, wifi.Supports5GHz)
	assert.False(t, wifi.IsInternetSource)
	assert.Empty(t, wifi.Issues)
}

func TestService_ListInterfaces_ProbeIssues(t *testing.T) {
	t.Parallel()

	exec := &execStub{err: errTestError}
	devices := &netmanStub{devices: []netman.Device{
		{Name: "wlan0", Type: "wifi", State: "disconnected"},
	}}
	radios := &radioStub{caps: map[string]radio.Capabilities{
		"wlan0": {APSupport: false, InMonitorMode: true},
	}}

	service := NewService(exec, devices, radios, &upstreamStub{}, t.TempDir())

	interfaces, err := service.ListInterfaces(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, interfaces, 1)

	assert.Contains(t, interfaces[0].Issues, "no AP mode support")
	assert.Contains(t, interfaces[0].Issues, "in monitor mode")
	assert.True(t, interfaces[0].InMonitorMode)
}

func TestService_ListInterfaces_DeviceQueryError(t *testing.T) {
	t.Parallel()

	service := NewService(&execStub{}, &netmanStub{err: errTestError}, &radioStub{}, &upstreamStub{}, t.TempDir())

	_, err := service.ListInterfaces(context.Background(), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, errTestError)
}
