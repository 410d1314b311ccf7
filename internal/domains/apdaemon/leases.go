package apdaemon

import (
	"bufio"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
)

// countLeases counts entries in a dnsmasq lease file. Each live lease
// is one line: "<expiry> <mac> <ip> <hostname> <client-id>".
func countLeases(content string) (count int) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if lo.IsEmpty(line) {
			continue
		}

		if len(strings.Fields(line)) >= 3 {
			count++
		}
	}

	return count
}

// formatLeasesToTable renders the lease file as a display table.
func formatLeasesToTable(content string) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "MAC", "IP", "HOSTNAME"})

	var rowNumber = 1
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		fields := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(fields) < 3 {
			continue
		}

		hostname := "-"
		if len(fields) > 3 {
			hostname = fields[3]
		}

		t.AppendRow(table.Row{rowNumber, fields[1], fields[2], hostname})
		rowNumber++
	}

	return t.Render()
}
