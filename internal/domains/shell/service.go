package shell

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"
)

// Service is the process-execution boundary. Every external tool call
// goes through here so a single timeout policy bounds all of them.
type Service struct {
	timeout time.Duration
}

func NewService(timeout time.Duration) *Service {
	return &Service{
		timeout: timeout,
	}
}

// Output runs a command and returns its stdout. The call is bounded by
// the service timeout on top of any caller deadline.
func (s *Service) Output(ctx context.Context, name string, args ...string) (output []byte, err error) {
	execCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	execCmd := exec.CommandContext(execCtx, name, args...)
	if output, err = execCmd.Output(); err != nil {
		return output, fmt.Errorf("Output: %s: %w", name, err)
	}

	return output, nil
}

// Run runs a command discarding output, logging combined output on
// failure for diagnosis.
func (s *Service) Run(ctx context.Context, name string, args ...string) (err error) {
	execCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	execCmd := exec.CommandContext(execCtx, name, args...)
	if output, err := execCmd.CombinedOutput(); err != nil {
		log.Debug().
			Err(err).
			Str("command", name).
			Strs("args", args).
			Msgf("Run: exec error, output: %s", string(output))

		return fmt.Errorf("Run: %s: %w", name, err)
	}

	return nil
}
