package entities

type SessionMode string

const (
	SessionModeManaged     SessionMode = "managed"
	SessionModeConcurrent  SessionMode = "concurrent"
	SessionModeDualAdapter SessionMode = "dual_adapter"
)

func (m SessionMode) String() string {
	return string(m)
}

type MACPolicy struct {
	Mode      string // block | allow
	Addresses []string
}

// RuntimeSession is the single process-lifetime mutable value. It is
// owned by the monitor loop; no other writer exists.
type RuntimeSession struct {
	HotspotInterface string
	VirtualInterface string // present only in concurrent mode
	Mode             SessionMode
	CurrentUpstream  string
	MACPolicy        MACPolicy
	IdleSeconds      int
	AutoOffMinutes   int
	Channel          int
	SSID             string
}

// APInterface returns the interface the access point actually runs on:
// the virtual sub-interface in concurrent mode, the physical radio
// otherwise.
func (s *RuntimeSession) APInterface() string {
	if s.VirtualInterface != "" {
		return s.VirtualInterface
	}

	return s.HotspotInterface
}
