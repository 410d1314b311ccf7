package session

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/minthotspot/hotspot-agent/internal/constants"
)

// StopRunning terminates a hotspot started by another process of this
// binary and sweeps the residue a crashed instance may have left:
// helper daemons, the virtual interface, the connection profile and
// firewall rules. Every step is idempotent, so running it against a
// clean host is harmless.
func (s *Service) StopRunning(ctx context.Context) {
	s.instanceService.TerminateConflicting()

	s.apDaemonService.Stop()
	s.radioService.DeleteVirtualInterface(ctx, constants.VirtualAPInterface)
	s.netmanService.DeleteProfile(ctx, constants.ConnectionName)
	s.firewallService.Teardown(ctx)

	log.Info().Msg("StopRunning: hotspot stopped and residual state cleaned")
}
