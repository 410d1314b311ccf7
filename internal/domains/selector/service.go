package selector

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/minthotspot/hotspot-agent/internal/entities"
)

type (
	IInventoryService interface {
		ListInterfaces(ctx context.Context, excludeVPN bool) (interfaces entities.Interfaces, err error)
	}
)

// Service picks the (internet, hotspot) interface pair with a fixed
// top-down priority policy. Selection is pure over the inventory
// snapshot: identical snapshots and override yield identical results.
type Service struct {
	inventoryService IInventoryService
}

func NewService(inventoryService IInventoryService) *Service {
	return &Service{
		inventoryService: inventoryService,
	}
}

// Select resolves the interface pair. manualInternet, when non-empty,
// overrides internet-side selection entirely.
func (s *Service) Select(ctx context.Context, manualInternet string, excludeVPN bool) (result entities.SelectionResult, err error) {
	interfaces, err := s.inventoryService.ListInterfaces(ctx, excludeVPN)
	if err != nil {
		return result, fmt.Errorf("Select: %w", err)
	}

	return s.SelectFrom(interfaces, manualInternet), nil
}

// SelectFrom applies the priority policy to an existing snapshot.
func (s *Service) SelectFrom(interfaces entities.Interfaces, manualInternet string) (result entities.SelectionResult) {
	result.InternetInterface = pickInternet(interfaces, manualInternet, &result)
	result.HotspotInterface = pickHotspot(interfaces, result.InternetInterface, &result)

	if result.HotspotInterface == "" {
		result.Warnings = append(result.Warnings, "no Wi-Fi adapter with AP support found")
		return result
	}

	flagSingleRadioRisk(interfaces, &result)

	return result
}

// pickInternet walks the internet-source priority ladder:
// manual override, connected Ethernet with an IP, mobile broadband
// with an IP, USB tethering with an IP, connected Wi-Fi.
func pickInternet(interfaces entities.Interfaces, manualInternet string, result *entities.SelectionResult) string {
	if lo.IsNotEmpty(manualInternet) {
		result.Rationale = append(result.Rationale,
			fmt.Sprintf("internet: manual override %s", manualInternet))
		return manualInternet
	}

	ladder := []struct {
		match  func(iface entities.Interface) bool
		reason string
	}{
		{
			match: func(i entities.Interface) bool {
				return i.Type == entities.InterfaceTypeEthernet && i.Connected && i.HasIP
			},
			reason: "connected Ethernet",
		},
		{
			match: func(i entities.Interface) bool {
				return i.Type == entities.InterfaceTypeMobile && i.HasIP
			},
			reason: "mobile broadband",
		},
		{
			match: func(i entities.Interface) bool {
				return i.Type == entities.InterfaceTypeTethered && i.HasIP
			},
			reason: "USB tethering",
		},
		{
			match: func(i entities.Interface) bool {
				return i.Type == entities.InterfaceTypeWifi && i.Connected
			},
			reason: "connected Wi-Fi",
		},
	}

	for _, rung := range ladder {
		for _, iface := range interfaces {
			if rung.match(iface) {
				result.Rationale = append(result.Rationale,
					fmt.Sprintf("internet: %s (%s)", rung.reason, iface.Name))
				return iface.Name
			}
		}
	}

	result.Rationale = append(result.Rationale, "internet: no source found")
	result.Warnings = append(result.Warnings, "no active internet source detected")

	return ""
}

// pickHotspot walks the hotspot priority ladder. Radios in monitor
// mode are excluded from candidacy unconditionally.
func pickHotspot(interfaces entities.Interfaces, internetIface string, result *entities.SelectionResult) string {
	candidates := lo.Filter(interfaces, func(iface entities.Interface, _ int) bool {
		if iface.Type != entities.InterfaceTypeWifi {
			return false
		}
		if iface.InMonitorMode {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s is in monitor mode and was excluded from hotspot candidates", iface.Name))
			return false
		}
		return true
	})

	// dedicated USB radio first: it can never conflict with the uplink
	for _, iface := range candidates {
		if iface.IsUSB && iface.APSupport {
			result.Rationale = append(result.Rationale,
				fmt.Sprintf("hotspot: dedicated USB adapter %s", iface.Name))
			return iface.Name
		}
	}

	// concurrency-capable radio, preferring the internet source itself
	// so a single radio can serve both roles
	concurrent := lo.Filter(candidates, func(iface entities.Interface, _ int) bool {
		return iface.SupportsConcurrency && iface.APSupport
	})
	for _, iface := range concurrent {
		if iface.Name == internetIface {
			result.Rationale = append(result.Rationale,
				fmt.Sprintf("hotspot: %s supports STA+AP concurrency alongside its own uplink", iface.Name))
			return iface.Name
		}
	}
	if len(concurrent) > 0 {
		result.Rationale = append(result.Rationale,
			fmt.Sprintf("hotspot: concurrency-capable radio %s", concurrent[0].Name))
		return concurrent[0].Name
	}

	// internal AP-capable radio not already claimed for the uplink
	for _, iface := range candidates {
		if iface.IsInternal && iface.APSupport && iface.Name != internetIface {
			result.Rationale = append(result.Rationale,
				fmt.Sprintf("hotspot: internal radio %s", iface.Name))
			return iface.Name
		}
	}

	for _, iface := range candidates {
		if iface.APSupport {
			result.Rationale = append(result.Rationale,
				fmt.Sprintf("hotspot: remaining AP-capable radio %s", iface.Name))
			return iface.Name
		}
	}

	return ""
}

// flagSingleRadioRisk marks the maximal-risk shape: the chosen hotspot
// radio is the sole internet source, cannot do STA+AP, and no other
// uplink or radio exists. Flagged loudly instead of silently chosen.
func flagSingleRadioRisk(interfaces entities.Interfaces, result *entities.SelectionResult) {
	if result.HotspotInterface != result.InternetInterface || result.InternetInterface == "" {
		return
	}

	hotspot, found := interfaces.Find(result.HotspotInterface)
	if !found || hotspot.SupportsConcurrency {
		return
	}

	for _, iface := range interfaces {
		if iface.Name == hotspot.Name {
			continue
		}

		// any alternate uplink or usable second radio defuses the risk
		if iface.Connected && iface.HasIP && iface.Type != entities.InterfaceTypeVPN {
			return
		}
		if iface.Type == entities.InterfaceTypeWifi && iface.APSupport && !iface.InMonitorMode {
			return
		}
	}

	result.HighRisk = true
	result.Warnings = append(result.Warnings,
		fmt.Sprintf("%s is the only AP-capable radio and the sole internet source: starting the hotspot will disconnect the uplink", hotspot.Name))
}
