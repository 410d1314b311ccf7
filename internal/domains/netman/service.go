package netman

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

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
)

// Device is one row of the connection manager's device table.
type Device struct {
	Name       string
	Type       string
	State      string
	Connection string
}

// Service is the connection-manager (nmcli) boundary.
type Service struct {
	execService IExecService
}

func NewService(execService IExecService) *Service {
	return &Service{
		execService: execService,
	}
}

// IsServiceActive reports whether the management service itself is
// running. The error distinguishes "inactive" from "could not check".
func (s *Service) IsServiceActive(ctx context.Context) (active bool, err error) {
	output, err := s.execService.Output(ctx, constants.SystemctlExecutable, "is-active", "NetworkManager")
	if err != nil {
		// is-active exits non-zero for inactive units and prints the
		// state; an empty output means the check itself failed
		if lo.IsEmpty(strings.TrimSpace(string(output))) {
			return false, fmt.Errorf("IsServiceActive: %w", err)
		}

		return false, nil
	}

	return strings.TrimSpace(string(output)) == "active", nil
}

// ListDevices returns the device table. A refresh is requested first,
// best effort, so stale driver state does not leak into decisions.
func (s *Service) ListDevices(ctx context.Context) (devices []Device, err error) {
	if refreshErr := s.execService.Run(ctx, constants.NetworkManagerExecutable, "device", "refresh"); refreshErr != nil {
		log.Debug().Err(refreshErr).Msg("ListDevices: device refresh failed")
	}

	output, err := s.execService.Output(ctx, constants.NetworkManagerExecutable,
		"-t", "-f", "DEVICE,TYPE,STATE,CONNECTION", "device")
	if err != nil {
		return devices, fmt.Errorf("ListDevices: %w", err)
	}

	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if lo.IsEmpty(line) {
			continue
		}

		parts := strings.Split(line, ":")
		if len(parts) < 3 {
			continue
		}

		device := Device{
			Name:  parts[0],
			Type:  parts[1],
			State: parts[2],
		}
		if len(parts) > 3 && parts[3] != "--" {
			device.Connection = parts[3]
		}

		devices = append(devices, device)
	}

	return devices, nil
}

// EnableRadio turns the Wi-Fi radio on and waits, bounded, for the
// interface to settle into a usable state. A still-unready interface
// degrades to a warning at the caller, never an error here.
func (s *Service) EnableRadio(ctx context.Context, iface string) (ready bool) {
	if err := s.execService.Run(ctx, constants.NetworkManagerExecutable, "radio", "wifi", "on"); err != nil {
		log.Warn().Err(err).Msg("EnableRadio: radio on failed")
	}

	for range constants.RadioReadyRetries {
		devices, err := s.ListDevices(ctx)
		if err == nil {
			for _, device := range devices {
				if device.Name == iface &&
					(device.State == "connected" || device.State == "disconnected") {
					return true
				}
			}
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(time.Second):
		}
	}

	return false
}

// Disconnect drops the device's current association, best effort.
func (s *Service) Disconnect(ctx context.Context, iface string) {
	if err := s.execService.Run(ctx, constants.NetworkManagerExecutable, "device", "disconnect", iface); err != nil {
		log.Debug().Err(err).Str("interface", iface).Msg("Disconnect: disconnect failed")
	}
}

// SetUnmanaged excludes a device from the connection manager's control.
// Required for the virtual AP interface so the manager does not fight
// the AP helper for it.
func (s *Service) SetUnmanaged(ctx context.Context, iface string) (err error) {
	if err = s.execService.Run(ctx, constants.NetworkManagerExecutable,
		"device", "set", iface, "managed", "no"); err != nil {
		return fmt.Errorf("SetUnmanaged: %w", err)
	}

	return nil
}

// DeleteProfile removes a stale access-point profile, best effort.
func (s *Service) DeleteProfile(ctx context.Context, name string) {
	if err := s.execService.Run(ctx, constants.NetworkManagerExecutable, "con", "delete", name); err != nil {
		log.Debug().Err(err).Str("profile", name).Msg("DeleteProfile: delete failed")
	}
}

// CreateAPProfile creates and configures the access-point profile for
// the standard (managed / dual-adapter) workflow.
func (s *Service) CreateAPProfile(ctx context.Context, iface string, options entities.HotspotOptions) (err error) {
	if err = s.execService.Run(ctx, constants.NetworkManagerExecutable,
		"con", "add", "type", "wifi", "ifname", iface,
		"con-name", constants.ConnectionName, "autoconnect", "no",
		"ssid", options.SSID, "mode", "ap", "802-11-wireless.band", options.Band); err != nil {
		return fmt.Errorf("CreateAPProfile: %w", err)
	}

	modifications := [][]string{
		{"wifi-sec.key-mgmt", "wpa-psk"},
		{"wifi-sec.psk", options.Password},
		{"ipv4.method", "shared"},
	}
	if options.Hidden {
		modifications = append(modifications, []string{"802-11-wireless.hidden", "yes"})
	}
	if lo.IsNotEmpty(options.DNS) {
		modifications = append(modifications,
			[]string{"ipv4.dns", options.DNS},
			[]string{"ipv4.ignore-auto-dns", "yes"})
	}

	for _, modification := range modifications {
		args := append([]string{"con", "modify", constants.ConnectionName}, modification...)
		if err = s.execService.Run(ctx, constants.NetworkManagerExecutable, args...); err != nil {
			return fmt.Errorf("CreateAPProfile: %w", err)
		}
	}

	return nil
}

// ActivateProfile brings the access-point profile up on the interface.
func (s *Service) ActivateProfile(ctx context.Context, iface string) (err error) {
	if err = s.execService.Run(ctx, constants.NetworkManagerExecutable,
		"con", "up", constants.ConnectionName, "ifname", iface); err != nil {
		return fmt.Errorf("ActivateProfile: %w", err)
	}

	return nil
}
