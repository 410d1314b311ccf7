package errs

import (
	"errors"
)

var (
	ErrInterfaceNotFound = errors.New("interface not found")
)

var (
	ErrSingleRadioConflict = errors.New("single radio carries the only uplink")
	ErrAPStartFailed       = errors.New("access point helper failed to start")
	ErrPreflightFailed     = errors.New("preflight checks failed")
)

var (
	ErrSessionNotActive = errors.New("no active hotspot session")
)
