package instance

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/minthotspot/hotspot-agent/internal/constants"
)

// Service manages the exclusive-run marker: an advisory PID file that
// keeps at most one hotspot session per host. Conflicting instances
// are terminated proactively rather than merely reported.
type Service struct {
	pidFilePath string
}

func NewService(pidFilePath string) *Service {
	return &Service{
		pidFilePath: pidFilePath,
	}
}

// RunningInstance returns the PID of a live conflicting instance, if
// any. A stale marker pointing at a dead or reused-by-self PID does
// not count.
func (s *Service) RunningInstance() (pid int, running bool) {
	data, err := os.ReadFile(s.pidFilePath)
	if err != nil {
		return 0, false
	}

	pid, err = strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid == os.Getpid() {
		return 0, false
	}

	return pid, processAlive(pid)
}

// TerminateConflicting stops a previously running instance and waits,
// bounded, for it to exit. Safe to call when nothing is running.
func (s *Service) TerminateConflicting() {
	pid, running := s.RunningInstance()
	if !running {
		return
	}

	log.Warn().Int("pid", pid).Msg("TerminateConflicting: stopping conflicting hotspot instance")

	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		log.Warn().Err(err).Int("pid", pid).Msg("TerminateConflicting: signal failed")
		return
	}

	for range constants.InstanceStopChecks {
		if !processAlive(pid) {
			return
		}

		time.Sleep(500 * time.Millisecond)
	}

	log.Warn().Int("pid", pid).Msg("TerminateConflicting: instance did not exit in time")
}

// Acquire writes the marker for the current process.
func (s *Service) Acquire() (err error) {
	pid := strconv.Itoa(os.Getpid())
	if err = os.WriteFile(s.pidFilePath, []byte(pid), constants.LogFilePerm); err != nil {
		return fmt.Errorf("Acquire: %w", err)
	}

	return nil
}

// Release removes the marker. Idempotent.
func (s *Service) Release() {
	if err := os.Remove(s.pidFilePath); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Release: remove pid file error")
	}
}

func processAlive(pid int) bool {
	// signal 0 performs the existence check only; EPERM still means the
	// process exists, just under another user
	err := syscall.Kill(pid, 0)
	if err == nil {
		return true
	}

	return errors.Is(err, syscall.EPERM)
}
