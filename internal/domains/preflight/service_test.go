package preflight_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minthotspot/hotspot-agent/internal/domains/preflight"
	"github.com/minthotspot/hotspot-agent/internal/domains/selector"
	"github.com/minthotspot/hotspot-agent/internal/entities"
)

var errTestError = errors.New("test error")

const linkUp = "3: wlan0: <BROADCAST,MULTICAST,UP,LOWER_UP> mtu 1500 qdisc noqueue state UP mode DORMANT group default qlen 1000"

type execStub struct {
	outputs map[string]string
}

func (s *execStub) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	output, known := s.outputs[strings.Join(append([]string{name}, args...), " ")]
	if !known {
		return nil, errTestError
	}

	return []byte(output), nil
}

func (s *execStub) Run(context.Context, string, ...string) error {
	return nil
}

type netmanStub struct {
	active bool
	err    error
}

func (s *netmanStub) IsServiceActive(context.Context) (bool, error) {
	return s.active, s.err
}

type radioStub struct {
	blocked bool
	reason  string
}

func (s *radioStub) IsBlocked(context.Context) (bool, string) {
	return s.blocked, s.reason
}

type inventoryStub struct {
	interfaces entities.Interfaces
	err        error
}

func (s *inventoryStub) ListInterfaces(context.Context, bool) (entities.Interfaces, error) {
	return s.interfaces, s.err
}

type upstreamStub struct {
	device string
}

func (s *upstreamStub) Resolve(context.Context, bool) string {
	return s.device
}

type instanceStub struct {
	pid     int
	running bool
}

func (s *instanceStub) RunningInstance() (int, bool) {
	return s.pid, s.running
}

// serviceFields bundles everything Validate consults; prepare hooks
// mutate the happy-path baseline per test case.
type serviceFields struct {
	exec      *execStub
	netman    *netmanStub
	radio     *radioStub
	inventory *inventoryStub
	upstream  *upstreamStub
	instance  *instanceStub
}

func newServiceFields() *serviceFields {
	return &serviceFields{
		exec: &execStub{outputs: map[string]string{
			"ip link show wlan0": linkUp,
		}},
		netman: &netmanStub{active: true},
		radio:  &radioStub{},
		inventory: &inventoryStub{interfaces: entities.Interfaces{
			{
				Name:      "enp3s0",
				Type:      entities.InterfaceTypeEthernet,
				State:     "connected",
				Connected: true,
				HasIP:     true,
			},
			{
				Name:       "wlan0",
				Type:       entities.InterfaceTypeWifi,
				State:      "disconnected",
				IsInternal: true,
				APSupport:  true,
			},
		}},
		upstream: &upstreamStub{device: "enp3s0"},
		instance: &instanceStub{},
	}
}

func newService(f *serviceFields) *preflight.Service {
	return preflight.NewService(
		f.exec,
		f.netman,
		f.radio,
		f.inventory,
		selector.NewService(nil),
		f.upstream,
		f.instance,
	)
}

func defaultOptions() entities.HotspotOptions {
	return entities.HotspotOptions{
		SSID:     "MintHotspot",
		Password: "password123",
		Band:     "bg",
		MACMode:  "block",
	}
}

func TestService_Validate(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name             string
		prepare          func(f *serviceFields)
		mutateOptions    func(options *entities.HotspotOptions)
		expectedOK       bool
		expectedTarget   string
		errorContains    string
		warningContains  string
		expectedErrors   int
		expectedWarnings int
	}{
		{
			name:           "ethernet uplink with idle internal radio passes clean",
			expectedOK:     true,
			expectedTarget: "wlan0",
		},
		{
			name: "network manager inactive",
			prepare: func(f *serviceFields) {
				f.netman.active = false
			},
			expectedErrors: 1,
			errorContains:  "systemctl start NetworkManager",
		},
		{
			name: "network manager status unknown degrades to warning",
			prepare: func(f *serviceFields) {
				f.netman.err = errTestError
			},
			expectedOK:       true,
			expectedTarget:   "wlan0",
			expectedWarnings: 1,
			warningContains:  "could not verify NetworkManager",
		},
		{
			name: "radio kill switch short-circuits",
			prepare: func(f *serviceFields) {
				f.radio.blocked = true
				f.radio.reason = "Wi-Fi is SOFTWARE BLOCKED. Run: sudo rfkill unblock wifi"
			},
			expectedErrors: 1,
			errorContains:  "rfkill unblock wifi",
		},
		{
			name: "no wifi hardware",
			prepare: func(f *serviceFields) {
				f.inventory.interfaces = entities.Interfaces{
					{Name: "enp3s0", Type: entities.InterfaceTypeEthernet, Connected: true, HasIP: true},
				}
			},
			expectedErrors: 1,
			errorContains:  "no Wi-Fi interfaces found",
		},
		{
			name: "manual interface does not exist",
			mutateOptions: func(options *entities.HotspotOptions) {
				options.Interface = "wlan9"
			},
			expectedErrors: 1,
			errorContains:  `"wlan9" not found`,
		},
		{
			name: "target in monitor mode",
			prepare: func(f *serviceFields) {
				f.inventory.interfaces[1].InMonitorMode = true
			},
			mutateOptions: func(options *entities.HotspotOptions) {
				options.Interface = "wlan0"
			},
			errorContains: "set type managed",
		},
		{
			name: "sole connected radio without concurrency is blocked",
			prepare: func(f *serviceFields) {
				f.inventory.interfaces = entities.Interfaces{
					{
						Name:           "wlan0",
						Type:           entities.InterfaceTypeWifi,
						State:          "connected",
						Connected:      true,
						HasIP:          true,
						IsInternal:     true,
						APSupport:      true,
						ConnectionName: "HomeNetwork",
					},
				}
				f.upstream.device = "wlan0"
			},
			expectedErrors: 1,
			errorContains:  "BLOCKED",
		},
		{
			name: "sole connected radio forced through",
			prepare: func(f *serviceFields) {
				f.inventory.interfaces = entities.Interfaces{
					{
						Name:           "wlan0",
						Type:           entities.InterfaceTypeWifi,
						State:          "connected",
						Connected:      true,
						HasIP:          true,
						IsInternal:     true,
						APSupport:      true,
						ConnectionName: "HomeNetwork",
					},
				}
				f.upstream.device = "wlan0"
			},
			mutateOptions: func(options *entities.HotspotOptions) {
				options.ForceSingleInterface = true
			},
			expectedOK:      true,
			expectedTarget:  "wlan0",
			warningContains: "FORCED",
		},
		{
			name: "connected radio with concurrency keeps the uplink",
			prepare: func(f *serviceFields) {
				f.inventory.interfaces = entities.Interfaces{
					{
						Name:                "wlan0",
						Type:                entities.InterfaceTypeWifi,
						State:               "connected",
						Connected:           true,
						HasIP:               true,
						IsInternal:          true,
						APSupport:           true,
						SupportsConcurrency: true,
						ConnectionName:      "HomeNetwork",
					},
				}
				f.upstream.device = "wlan0"
			},
			expectedOK:      true,
			expectedTarget:  "wlan0",
			warningContains: "will be preserved",
		},
		{
			name: "5GHz requested on a 2.4GHz-only radio",
			mutateOptions: func(options *entities.HotspotOptions) {
				options.Band = "a"
			},
			expectedErrors: 1,
			errorContains:  "does not support the 5GHz band",
		},
		{
			name: "password below WPA2 minimum",
			mutateOptions: func(options *entities.HotspotOptions) {
				options.Password = "seven77"
			},
			expectedErrors: 1,
			errorContains:  "at least 8 characters",
		},
		{
			name: "password at WPA2 minimum passes",
			mutateOptions: func(options *entities.HotspotOptions) {
				options.Password = "eight888"
			},
			expectedOK:     true,
			expectedTarget: "wlan0",
		},
		{
			name: "ssid with embedded newline is rejected",
			mutateOptions: func(options *entities.HotspotOptions) {
				options.SSID = "Mint\nwps_state=1"
			},
			expectedErrors: 1,
			errorContains:  "control characters",
		},
		{
			name: "password with embedded newline is rejected",
			mutateOptions: func(options *entities.HotspotOptions) {
				options.Password = "pass\nword123"
			},
			expectedErrors: 1,
			errorContains:  "control characters",
		},
		{
			name: "no upstream is a warning not an error",
			prepare: func(f *serviceFields) {
				f.upstream.device = ""
				f.inventory.interfaces[0].Connected = false
				f.inventory.interfaces[0].HasIP = false
			},
			expectedOK:      true,
			expectedTarget:  "wlan0",
			warningContains: "no active internet connection",
		},
		{
			name: "running instance announced",
			prepare: func(f *serviceFields) {
				f.instance.pid = 4242
				f.instance.running = true
			},
			expectedOK:       true,
			expectedTarget:   "wlan0",
			expectedWarnings: 1,
			warningContains:  "will be terminated",
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			f := newServiceFields()
			if testCase.prepare != nil {
				testCase.prepare(f)
			}

			options := defaultOptions()
			if testCase.mutateOptions != nil {
				testCase.mutateOptions(&options)
			}

			report := newService(f).Validate(context.Background(), options)

			assert.Equal(t, testCase.expectedOK, report.OK())
			if testCase.expectedTarget != "" {
				assert.Equal(t, testCase.expectedTarget, report.TargetInterface)
			}
			if testCase.expectedErrors > 0 {
				assert.Len(t, report.Errors, testCase.expectedErrors)
			}
			if testCase.expectedWarnings > 0 {
				assert.Len(t, report.Warnings, testCase.expectedWarnings)
			}
			if testCase.errorContains != "" {
				require.NotEmpty(t, report.Errors)
				assert.Contains(t, strings.Join(report.Errors, "\n"), testCase.errorContains)
			}
			if testCase.warningContains != "" {
				require.NotEmpty(t, report.Warnings)
				assert.Contains(t, strings.Join(report.Warnings, "\n"), testCase.warningContains)
			}
		})
	}
}

// OK must be equivalent to "zero errors" regardless of warnings.
func TestPreflightReport_OK(t *testing.T) {
	t.Parallel()

	var report entities.PreflightReport
	assert.True(t, report.OK())

	report.AddWarning("advisory")
	assert.True(t, report.OK())

	report.AddError("fatal")
	assert.False(t, report.OK())
}
