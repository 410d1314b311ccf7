package constants

const (
	DefaultLogfilePath = "/var/log/hotspot/hotspot_agent.log"
	PIDFilePath        = "/tmp/hotspot_agent.pid"
	StatusFilePath     = "/tmp/hotspot_status.json"
)

const (
	HostapdConfigPath = "/tmp/hotspot_hostapd.conf"
	HostapdPIDPath    = "/tmp/hotspot_hostapd.pid"
	DnsmasqConfigPath = "/tmp/hotspot_dnsmasq.conf"
	DnsmasqPIDPath    = "/tmp/hotspot_dnsmasq.pid"
	DnsmasqLeasePath  = "/tmp/hotspot_dnsmasq.leases"
)

const (
	SysClassNetPath = "/sys/class/net"
)
