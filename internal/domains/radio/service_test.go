package radio

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errTestError = errors.New("test error")

// execStub answers canned output per joined command line and records
// every invocation.
type execStub struct {
	outputs  map[string]string
	failures map[string]error
	commands []string
}

func (s *execStub) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	command := strings.Join(append([]string{name}, args...), " ")
	s.commands = append(s.commands, command)

	if err, failed := s.failures[command]; failed {
		return nil, err
	}

	output, known := s.outputs[command]
	if !known {
		return nil, errTestError
	}

	return []byte(output), nil
}

func (s *execStub) Run(_ context.Context, name string, args ...string) error {
	command := strings.Join(append([]string{name}, args...), " ")
	s.commands = append(s.commands, command)

	if err, failed := s.failures[command]; failed {
		return err
	}

	return nil
}

func TestService_Probe(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name     string
		stub     *execStub
		expected Capabilities
	}{
		{
			name: "dev info query fails, safe defaults",
			stub: &execStub{},
			expected: Capabilities{
				APSupport:           true,
				Supports5GHz:        false,
				SupportsConcurrency: false,
				ConcurrencyChannels: 1,
			},
		},
		{
			name: "phy info query fails, defaults kept",
			stub: &execStub{
				outputs: map[string]string{
					"iw dev wlan0 info": devInfoConnected,
				},
			},
			expected: Capabilities{
				APSupport:           true,
				Supports5GHz:        false,
				SupportsConcurrency: false,
				ConcurrencyChannels: 1,
			},
		},
		{
			name: "full probe of concurrency capable radio",
			stub: &execStub{
				outputs: map[string]string{
					"iw dev wlan0 info": devInfoConnected,
					"iw phy phy0 info":  phyInfoAPCapable,
				},
			},
			expected: Capabilities{
				APSupport:           true,
				Supports5GHz:        false,
				SupportsConcurrency: true,
				ConcurrencyChannels: 2,
			},
		},
		{
			name: "station only radio loses optimistic AP default",
			stub: &execStub{
				outputs: map[string]string{
					"iw dev wlan0 info": strings.ReplaceAll(devInfoConnected, "wiphy 0", "wiphy 1"),
					"iw phy phy1 info":  phyInfoStationOnly,
				},
			},
			expected: Capabilities{
				APSupport:           false,
				Supports5GHz:        false,
				SupportsConcurrency: false,
				ConcurrencyChannels: 0,
			},
		},
		{
			name: "monitor mode detected",
			stub: &execStub{
				outputs: map[string]string{
					"iw dev wlan0 info": devInfoMonitor,
				},
			},
			expected: Capabilities{
				APSupport:           true,
				Supports5GHz:        false,
				SupportsConcurrency: false,
				ConcurrencyChannels: 1,
				InMonitorMode:       true,
			},
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			service := NewService(testCase.stub)
			assert.Equal(t, testCase.expected, service.Probe(context.Background(), "wlan0"))
		})
	}
}

func TestService_IsBlocked(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name            string
		stub            *execStub
		expectedBlocked bool
		reasonContains  string
	}{
		{
			name: "unblocked",
			stub: &execStub{
				outputs: map[string]string{
					"rfkill list wifi": "0: phy0: Wireless LAN\n\tSoft blocked: no\n\tHard blocked: no\n",
				},
			},
		},
		{
			name: "soft blocked",
			stub: &execStub{
				outputs: map[string]string{
					"rfkill list wifi": "0: phy0: Wireless LAN\n\tSoft blocked: yes\n\tHard blocked: no\n",
				},
			},
			expectedBlocked: true,
			reasonContains:  "rfkill unblock wifi",
		},
		{
			name: "hard blocked",
			stub: &execStub{
				outputs: map[string]string{
					"rfkill list wifi": "0: phy0: Wireless LAN\n\tSoft blocked: no\n\tHard blocked: yes\n",
				},
			},
			expectedBlocked: true,
			reasonContains:  "HARDWARE BLOCKED",
		},
		{
			name: "rfkill unavailable counts as unblocked",
			stub: &execStub{},
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			service := NewService(testCase.stub)

			blocked, reason := service.IsBlocked(context.Background())
			assert.Equal(t, testCase.expectedBlocked, blocked)
			assert.Contains(t, reason, testCase.reasonContains)
		})
	}
}

func TestService_CountStations(t *testing.T) {
	t.Parallel()

	stub := &execStub{
		outputs: map[string]string{
			"iw dev ap0 station dump": "Station aa:bb:cc:dd:ee:ff (on ap0)\n\tinactive time: 10 ms\n",
		},
	}

	service := NewService(stub)
	assert.Equal(t, 1, service.CountStations(context.Background(), "ap0"))
	assert.Equal(t, 0, service.CountStations(context.Background(), "wlan9"))
}
