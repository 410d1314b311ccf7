package apdaemon

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/minthotspot/hotspot-agent/internal/constants"
	"github.com/minthotspot/hotspot-agent/internal/entities"
	"github.com/minthotspot/hotspot-agent/internal/errs"
)

type (
	IExecService interface {
		Run(ctx context.Context, name string, args ...string) (err error)
	}
)

// Service drives the AP and DHCP helper daemons (hostapd, dnsmasq)
// through generated plaintext configuration and the PID-file
// convention. Only the concurrent mode uses these helpers; the other
// modes go through the connection manager.
type Service struct {
	execService IExecService
	countryCode string
	leasePath   string
}

func NewService(execService IExecService, countryCode, leasePath string) *Service {
	return &Service{
		execService: execService,
		countryCode: countryCode,
		leasePath:   leasePath,
	}
}

// Available reports whether both helper daemons are installed.
func (s *Service) Available() bool {
	for _, executable := range []string{constants.HostapdExecutable, constants.DnsmasqExecutable} {
		if _, err := exec.LookPath(executable); err != nil {
			return false
		}
	}

	return true
}

// Start generates both configurations and launches the helpers. The
// daemons background themselves and record their PIDs; Stop reverses
// everything. On hostapd failure nothing stays running.
func (s *Service) Start(ctx context.Context, iface string, channel int, options entities.HotspotOptions) (err error) {
	hostapdConfig := formatHostapdConfig(iface, channel, options, s.countryCode)
	if err = os.WriteFile(constants.HostapdConfigPath, []byte(hostapdConfig), 0600); err != nil {
		return fmt.Errorf("Start: %w", err)
	}

	dnsmasqConfig := formatDnsmasqConfig(iface, options)
	if err = os.WriteFile(constants.DnsmasqConfigPath, []byte(dnsmasqConfig), 0600); err != nil {
		return fmt.Errorf("Start: %w", err)
	}

	if err = s.execService.Run(ctx, constants.HostapdExecutable,
		"-B", "-P", constants.HostapdPIDPath, constants.HostapdConfigPath); err != nil {
		s.removeGeneratedFiles()
		return fmt.Errorf("Start: %w: %w", errs.ErrAPStartFailed, err)
	}

	if err = s.execService.Run(ctx, constants.DnsmasqExecutable,
		"-C", constants.DnsmasqConfigPath); err != nil {
		s.stopDaemon(constants.HostapdPIDPath)
		s.removeGeneratedFiles()
		return fmt.Errorf("Start: dhcp helper: %w", err)
	}

	return nil
}

// Stop terminates both helpers and removes the generated files.
// Idempotent: already-stopped daemons and missing files are fine.
func (s *Service) Stop() {
	s.stopDaemon(constants.DnsmasqPIDPath)
	s.stopDaemon(constants.HostapdPIDPath)
	s.removeGeneratedFiles()
}

// CountClients returns the number of DHCP leases currently held, the
// concurrent-mode equivalent of a station dump.
func (s *Service) CountClients() int {
	data, err := os.ReadFile(s.leasePath)
	if err != nil {
		return 0
	}

	return countLeases(string(data))
}

// RenderLeases renders the current lease table for display. A missing
// lease file means no hotspot has handed out addresses, reported as
// ErrSessionNotActive so callers can phrase it for the operator.
func (s *Service) RenderLeases() (output string, err error) {
	data, err := os.ReadFile(s.leasePath)
	if err != nil {
		return "", fmt.Errorf("RenderLeases: %w: %w", errs.ErrSessionNotActive, err)
	}

	return formatLeasesToTable(string(data)), nil
}

func (s *Service) stopDaemon(pidFilePath string) {
	data, err := os.ReadFile(pidFilePath)
	if err != nil {
		return
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return
	}

	if err = syscall.Kill(pid, syscall.SIGTERM); err != nil {
		log.Debug().Err(err).Int("pid", pid).Msg("stopDaemon: signal failed")
	}
}

func (s *Service) removeGeneratedFiles() {
	for _, path := range []string{
		constants.HostapdConfigPath,
		constants.HostapdPIDPath,
		constants.DnsmasqConfigPath,
		constants.DnsmasqPIDPath,
		s.leasePath,
	} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Debug().Err(err).Str("path", path).Msg("removeGeneratedFiles: remove error")
		}
	}
}
