package firewall

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/minthotspot/hotspot-agent/internal/constants"
	"github.com/minthotspot/hotspot-agent/internal/entities"
)

type (
	IExecService interface {
		Run(ctx context.Context, name string, args ...string) (err error)
	}
)

// Service owns the NAT/forwarding/MSS-clamp/MAC-filter rule set. Rules
// are reprogrammed flush-then-reinstall, never additively, so repeated
// upstream flips (a VPN bouncing, for example) cannot accumulate
// rules. Individual iptables failures are logged and skipped: a
// partially applied set is repaired on the next monitor iteration.
type Service struct {
	execService IExecService
}

func NewService(execService IExecService) *Service {
	return &Service{
		execService: execService,
	}
}

// Apply programs the full rule set for the given AP-side interface and
// upstream. Idempotent: applying the same pair twice equals applying
// it once.
func (s *Service) Apply(ctx context.Context, apIface, upstreamIface string, policy entities.MACPolicy) {
	log.Info().
		Str("hotspot", apIface).
		Str("upstream", upstreamIface).
		Msg("Apply: reprogramming NAT and forwarding rules")

	s.run(ctx, constants.SysctlExecutable, "-w", "net.ipv4.ip_forward=1")

	// flush before reinstall
	s.run(ctx, constants.IPTablesExecutable, "-t", "nat", "-F", "POSTROUTING")
	s.run(ctx, constants.IPTablesExecutable, "-F", "FORWARD")

	s.run(ctx, constants.IPTablesExecutable,
		"-t", "nat", "-I", "POSTROUTING", "-o", upstreamIface, "-j", "MASQUERADE")

	// an ACCEPT policy keeps other packet filters (docker, firewalld)
	// from silently eating forwarded hotspot traffic
	s.run(ctx, constants.IPTablesExecutable, "-P", "FORWARD", "ACCEPT")

	s.run(ctx, constants.IPTablesExecutable,
		"-I", "FORWARD", "1", "-p", "tcp", "--tcp-flags", "SYN,RST", "SYN",
		"-j", "TCPMSS", "--clamp-mss-to-pmtu")

	s.run(ctx, constants.IPTablesExecutable,
		"-I", "FORWARD", "1", "-m", "state", "--state", "RELATED,ESTABLISHED", "-j", "ACCEPT")

	s.run(ctx, constants.IPTablesExecutable,
		"-I", "FORWARD", "1", "-i", upstreamIface, "-o", apIface, "-j", "ACCEPT")

	s.applyMACPolicy(ctx, apIface, upstreamIface, policy)
}

// applyMACPolicy installs the client filter. Explicit per-address
// decisions are inserted above the default so they are evaluated
// first: Allow mode is default-drop with per-address accepts, Block
// mode default-allow with per-address drops.
func (s *Service) applyMACPolicy(ctx context.Context, apIface, upstreamIface string, policy entities.MACPolicy) {
	switch policy.Mode {
	case constants.MACModeAllow:
		s.run(ctx, constants.IPTablesExecutable, "-A", "FORWARD", "-i", apIface, "-j", "DROP")
		for _, mac := range policy.Addresses {
			s.run(ctx, constants.IPTablesExecutable,
				"-I", "FORWARD", "1", "-i", apIface, "-o", upstreamIface,
				"-m", "mac", "--mac-source", mac, "-j", "ACCEPT")
		}

	case constants.MACModeBlock:
		s.run(ctx, constants.IPTablesExecutable,
			"-I", "FORWARD", "1", "-i", apIface, "-o", upstreamIface, "-j", "ACCEPT")
		for _, mac := range policy.Addresses {
			s.run(ctx, constants.IPTablesExecutable,
				"-I", "FORWARD", "1", "-i", apIface, "-o", upstreamIface,
				"-m", "mac", "--mac-source", mac, "-j", "DROP")
		}
	}
}

// EnsureMSSClamp installs only the MSS-clamp forwarding rule. Used by
// the standard startup sequence before the first upstream resolution
// programs the full set.
func (s *Service) EnsureMSSClamp(ctx context.Context) {
	s.run(ctx, constants.IPTablesExecutable,
		"-D", "FORWARD", "-p", "tcp", "--tcp-flags", "SYN,RST", "SYN",
		"-j", "TCPMSS", "--clamp-mss-to-pmtu")
	s.run(ctx, constants.IPTablesExecutable,
		"-I", "FORWARD", "1", "-p", "tcp", "--tcp-flags", "SYN,RST", "SYN",
		"-j", "TCPMSS", "--clamp-mss-to-pmtu")
}

// Teardown reverses the session's rules. Idempotent and safe to call
// after a partially completed startup.
func (s *Service) Teardown(ctx context.Context) {
	s.run(ctx, constants.IPTablesExecutable, "-t", "nat", "-F", "POSTROUTING")
	s.run(ctx, constants.IPTablesExecutable,
		"-D", "FORWARD", "-p", "tcp", "--tcp-flags", "SYN,RST", "SYN",
		"-j", "TCPMSS", "--clamp-mss-to-pmtu")
	s.run(ctx, constants.IPTablesExecutable,
		"-D", "FORWARD", "-m", "state", "--state", "RELATED,ESTABLISHED", "-j", "ACCEPT")
}

func (s *Service) run(ctx context.Context, name string, args ...string) {
	if err := s.execService.Run(ctx, name, args...); err != nil {
		log.Debug().Err(err).Str("command", name).Strs("args", args).Msg("run: rule command failed")
	}
}
