package entities

type InterfaceType string

const (
	InterfaceTypeWifi     InterfaceType = "wifi"
	InterfaceTypeEthernet InterfaceType = "ethernet"
	InterfaceTypeVPN      InterfaceType = "vpn"
	InterfaceTypeMobile   InterfaceType = "mobile"
	InterfaceTypeTethered InterfaceType = "tethered"
	InterfaceTypeBridge   InterfaceType = "bridge"
	InterfaceTypeOther    InterfaceType = "other"
)

func (t InterfaceType) String() string {
	return string(t)
}

// Interface is an immutable snapshot of one host network interface.
// The inventory re-derives snapshots on every call instead of mutating
// them, since device state can change between calls.
type Interface struct {
	Name           string
	Type           InterfaceType
	Driver         string
	IsUSB          bool
	IsInternal     bool
	State          string
	Connected      bool
	ConnectionName string
	HasIP          bool
	IPAddress      string

	// radio capability, wifi only
	APSupport           bool
	Supports5GHz        bool
	SupportsConcurrency bool
	ConcurrencyChannels int
	InMonitorMode       bool

	IsInternetSource bool
	Issues           []string
	Label            string
}

type Interfaces []Interface

func (i Interfaces) Find(name string) (iface Interface, found bool) {
	for _, candidate := range i {
		if candidate.Name == name {
			return candidate, true
		}
	}

	return iface, false
}

func (i Interfaces) Wifi() Interfaces {
	wifi := make(Interfaces, 0, len(i))
	for _, iface := range i {
		if iface.Type == InterfaceTypeWifi {
			wifi = append(wifi, iface)
		}
	}

	return wifi
}
