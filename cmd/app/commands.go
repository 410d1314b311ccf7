package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/minthotspot/hotspot-agent/infrastructure"
	"github.com/minthotspot/hotspot-agent/internal/constants"
	"github.com/minthotspot/hotspot-agent/internal/domains/inventory"
	"github.com/minthotspot/hotspot-agent/internal/entities"
	"github.com/minthotspot/hotspot-agent/internal/errs"
)

var options entities.HotspotOptions

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "hotspot-agent",
		Short:         "Wi-Fi hotspot manager for Linux",
		Long:          "Turns a Linux machine into a Wi-Fi hotspot, sharing the current internet connection.",
		Version:       serviceVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runStart,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&options.Interface, "interface", "i", "", "Wi-Fi interface to host the hotspot (auto-selected when empty)")
	flags.StringVar(&options.SSID, "ssid", constants.DefaultSSID, "network name")
	flags.StringVarP(&options.Password, "password", "p", constants.DefaultPassword, "WPA2 passphrase, 8 to 63 characters")
	flags.StringVar(&options.Band, "band", constants.BandBG, "radio band: bg (2.4GHz) or a (5GHz)")
	flags.BoolVar(&options.Hidden, "hidden", false, "do not broadcast the SSID")
	flags.StringVar(&options.DNS, "dns", "", "DNS server handed to clients (defaults to the gateway)")
	flags.StringVar(&options.MACMode, "mac-mode", constants.MACModeBlock, "MAC filter mode: block or allow")
	flags.StringArrayVar(&options.MACList, "mac", nil, "MAC address for the filter list, repeatable")
	flags.IntVar(&options.AutoOffMinutes, "auto-off", 0, "stop after this many minutes without clients, 0 disables")
	flags.BoolVar(&options.ExcludeVPN, "exclude-vpn", false, "never route hotspot traffic through VPN interfaces")
	flags.BoolVar(&options.ForceSingleInterface, "force-single-interface", false, "start even when it disconnects the only internet link")

	root.AddCommand(stopCommand(), interfacesCommand(), preflightCommand(), clientsCommand())

	return root
}

func runStart(cmd *cobra.Command, _ []string) (err error) {
	kernel, err := infrastructure.Inject(env)
	if err != nil {
		return fmt.Errorf("runStart: %w", err)
	}

	if err = kernel.InjectSessionService().Run(cmd.Context(), options); err != nil {
		if errors.Is(err, errs.ErrPreflightFailed) {
			return errors.New("preflight checks failed, see log for remediation steps")
		}

		return err
	}

	return nil
}

func stopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a running hotspot and clean up residual state",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			kernel, err := infrastructure.Inject(env)
			if err != nil {
				return fmt.Errorf("stop: %w", err)
			}

			kernel.InjectSessionService().StopRunning(cmd.Context())
			fmt.Fprintln(os.Stdout, "Hotspot stopped.")

			return nil
		},
	}
}

func interfacesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "interfaces",
		Short: "List network interfaces with hotspot capabilities",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			kernel, err := infrastructure.Inject(env)
			if err != nil {
				return fmt.Errorf("interfaces: %w", err)
			}

			interfaces, err := kernel.InjectInventoryService().ListInterfaces(cmd.Context(), options.ExcludeVPN)
			if err != nil {
				return fmt.Errorf("interfaces: %w", err)
			}

			fmt.Fprintln(os.Stdout, inventory.FormatInterfacesTable(interfaces))

			return nil
		},
	}
}

func preflightCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Validate the host without starting a hotspot",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			kernel, err := infrastructure.Inject(env)
			if err != nil {
				return fmt.Errorf("preflight: %w", err)
			}

			report := kernel.InjectPreflightService().Validate(cmd.Context(), options)
			for _, warning := range report.Warnings {
				fmt.Fprintln(os.Stdout, "WARNING:", warning)
			}

			for _, reportErr := range report.Errors {
				fmt.Fprintln(os.Stdout, "ERROR:", reportErr)
			}

			if !report.OK() {
				return fmt.Errorf("preflight: %w", errs.ErrPreflightFailed)
			}

			fmt.Fprintf(os.Stdout, "All checks passed, target interface: %s\n", report.TargetInterface)

			return nil
		},
	}
}

func clientsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clients",
		Short: "Show DHCP leases of the running hotspot",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			kernel, err := infrastructure.Inject(env)
			if err != nil {
				return fmt.Errorf("clients: %w", err)
			}

			leases, err := kernel.InjectAPDaemonService().RenderLeases()
			if err != nil {
				if errors.Is(err, errs.ErrSessionNotActive) {
					return errors.New("no active hotspot found")
				}

				return fmt.Errorf("clients: %w", err)
			}

			fmt.Fprintln(os.Stdout, leases)

			return nil
		},
	}
}
