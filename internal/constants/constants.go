package constants

import "time"

const (
	DefaultSSID     = "MintHotspot"
	DefaultPassword = "password123"
	ConnectionName  = "temp_hotspot_con"
)

const (
	VirtualAPInterface = "ap0"
	GatewayAddress     = "192.168.73.1"
	GatewayCIDR        = "192.168.73.1/24"
	DHCPRangeStart     = "192.168.73.50"
	DHCPRangeEnd       = "192.168.73.150"
	DefaultChannel     = 6
)

const (
	BandBG = "bg"
	BandA  = "a"
)

const (
	MACModeBlock = "block"
	MACModeAllow = "allow"
)

const (
	// CmdTimeout bounds every external tool invocation so a hung
	// process cannot stall the monitor loop.
	CmdTimeout = 5 * time.Second

	MonitorInterval    = time.Second
	ClientSampleEvery  = 5
	RadioReadyRetries  = 5
	LinkUpRetries      = 3
	InstanceStopChecks = 10
)

const (
	NetworkManagerExecutable = "nmcli"
	IWExecutable             = "iw"
	IPTablesExecutable       = "iptables"
	IPExecutable             = "ip"
	RfkillExecutable         = "rfkill"
	SysctlExecutable         = "sysctl"
	SystemctlExecutable      = "systemctl"
	HostapdExecutable        = "hostapd"
	DnsmasqExecutable        = "dnsmasq"
)

const (
	FilePerm    = 0755
	LogFilePerm = 0644
)
