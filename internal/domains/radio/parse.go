package radio

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Parsers for iw textual output. Each parser documents its
// failure-to-default mapping; callers never see a parse failure as an
// error, only as the documented safe default.

// parsePhyName extracts the radio name ("phyN") from `iw dev <iface>
// info` output. Returns "" when the wiphy index cannot be found.
func parsePhyName(output string) string {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "wiphy ") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		if _, err := strconv.Atoi(fields[1]); err == nil {
			return "phy" + fields[1]
		}
	}

	return ""
}

// parseAPModeSupport reports whether the "Supported interface modes"
// block of `iw phy <phy> info` lists AP. The block ends at the first
// non-bullet line.
func parseAPModeSupport(output string) bool {
	var inModes bool
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "Supported interface modes:") {
			inModes = true
			continue
		}

		if !inModes {
			continue
		}

		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "*") {
			inModes = false
			continue
		}

		mode := strings.TrimSpace(strings.TrimPrefix(trimmed, "*"))
		if mode == "AP" {
			return true
		}
	}

	return false
}

// representative 5 GHz channel center frequencies (ch 36, 48, 149)
var fiveGHzMarkers = []string{"5180", "5240", "5745"}

// parse5GHzSupport reports whether any representative 5 GHz frequency
// appears in `iw phy <phy> info` output.
func parse5GHzSupport(output string) bool {
	return lo.SomeBy(fiveGHzMarkers, func(marker string) bool {
		return strings.Contains(output, marker)
	})
}

// parseCombinations inspects the "valid interface combinations" block
// of `iw phy <phy> info`. Concurrency is concluded only when a single
// combination permits a managed role and an AP role with a total role
// count of at least two; any ambiguity yields supported=false because
// a false positive here risks dropping the operator's uplink.
func parseCombinations(output string) (supported bool, channels int) {
	var (
		inBlock bool
		entry   string
	)

	evaluate := func() (bool, int) {
		if entry == "" {
			return false, 0
		}

		ok, chans := parseCombinationLine(entry)
		entry = ""

		return ok, chans
	}

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "valid interface combinations:") {
			inBlock = true
			continue
		}

		if !inBlock {
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "*"):
			if ok, chans := evaluate(); ok {
				return true, chans
			}

			entry = strings.TrimPrefix(trimmed, "*")
		case strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "total"):
			// continuation of a wrapped combination entry
			entry += " " + trimmed
		default:
			if ok, chans := evaluate(); ok {
				return true, chans
			}

			inBlock = false
		}
	}

	if ok, chans := evaluate(); ok {
		return true, chans
	}

	return false, 0
}

// parseCombinationLine parses one combination entry such as
//
//	#{ managed } <= 1, #{ AP, P2P-client } <= 1, total <= 3, #channels <= 2
func parseCombinationLine(line string) (ok bool, channels int) {
	channels = 1

	var total int
	for _, part := range strings.Split(line, ",") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "total <="):
			total = parseTrailingInt(part)
		case strings.HasPrefix(part, "#channels <="):
			channels = parseTrailingInt(part)
		}
	}

	var (
		hasManaged bool
		hasAP      bool
	)
	for _, group := range extractRoleGroups(line) {
		if lo.Contains(group, "managed") {
			hasManaged = true
		}
		if lo.Contains(group, "AP") {
			hasAP = true
		}
	}

	if channels < 1 {
		channels = 1
	}

	return hasManaged && hasAP && total >= 2, channels
}

// extractRoleGroups returns the role names inside each #{ ... } group.
func extractRoleGroups(line string) (groups [][]string) {
	rest := line
	for {
		start := strings.Index(rest, "#{")
		if start < 0 {
			return groups
		}

		end := strings.Index(rest[start:], "}")
		if end < 0 {
			return groups
		}

		inner := rest[start+2 : start+end]
		roles := lo.Map(strings.Split(inner, ","), func(role string, _ int) string {
			return strings.TrimSpace(role)
		})
		groups = append(groups, roles)

		rest = rest[start+end+1:]
	}
}

func parseTrailingInt(part string) int {
	fields := strings.Fields(part)
	if len(fields) == 0 {
		return 0
	}

	value, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0
	}

	return value
}

// parseChannel extracts the live operating channel from `iw dev <iface>
// info`, e.g. "channel 36 (5180 MHz), width: 80 MHz". Returns 0 when
// the interface reports no channel.
func parseChannel(output string) int {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "channel ") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		channel, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}

		return channel
	}

	return 0
}

// parseInterfaceMode extracts the operating mode ("managed", "AP",
// "monitor", ...) from `iw dev <iface> info`.
func parseInterfaceMode(output string) string {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if rest, found := strings.CutPrefix(line, "type "); found {
			return strings.TrimSpace(rest)
		}
	}

	return ""
}

// parseChannelNoIR reports whether the given channel carries a
// no-initiate-radiation restriction in `iw phy <phy> channels` output.
// Channel entries look like "* 5260 MHz [52]" followed by indented
// attribute lines such as "No IR" until the next entry.
func parseChannelNoIR(output string, channel int) bool {
	var (
		marker    = fmt.Sprintf("[%d]", channel)
		inChannel bool
	)
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "*") {
			inChannel = strings.Contains(line, marker)
			continue
		}

		if inChannel && strings.Contains(line, "No IR") {
			return true
		}
	}

	return false
}

// parseStationCount counts associated stations in `iw dev <iface>
// station dump` output.
func parseStationCount(output string) (count int) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		if strings.HasPrefix(strings.TrimSpace(scanner.Text()), "Station ") {
			count++
		}
	}

	return count
}
