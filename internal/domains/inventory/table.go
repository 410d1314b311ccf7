package inventory

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/minthotspot/hotspot-agent/internal/entities"
)

// FormatInterfacesTable renders the inventory as a display table.
func FormatInterfacesTable(interfaces entities.Interfaces) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"NAME", "TYPE", "STATE", "IP", "UPSTREAM", "DESCRIPTION"})

	for _, iface := range interfaces {
		state := iface.State
		if iface.Connected {
			state = "connected"
		}

		ip := iface.IPAddress
		if ip == "" {
			ip = "-"
		}

		upstream := ""
		if iface.IsInternetSource {
			upstream = "*"
		}

		description := iface.Label
		if len(iface.Issues) > 0 {
			description += " !! " + strings.Join(iface.Issues, "; ")
		}

		t.AppendRow(table.Row{iface.Name, iface.Type.String(), state, ip, upstream, description})
	}

	return t.Render()
}
