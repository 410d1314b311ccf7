package inventory

// linuxInterface mirrors one entry of `ip --json address show`.
type linuxInterface struct {
	Name     string               `json:"ifname"`
	State    string               `json:"operstate"`
	AddrInfo []linuxInterfaceAddr `json:"addr_info"` //nolint:tagliatelle // linux api
}

type linuxInterfaceAddr struct {
	Family string `json:"family"`
	Addr   string `json:"local"`
	Prefix int    `json:"prefixlen"`
}

type linuxInterfaces []linuxInterface
