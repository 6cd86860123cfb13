package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dnswitch/dnswitch/internal/diag"
	"github.com/dnswitch/dnswitch/internal/nmcli"
	"github.com/dnswitch/dnswitch/internal/provider"
	"github.com/dnswitch/dnswitch/internal/session"
)

const defaultProbeDomain = "example.com"

func newRootCmd() *cobra.Command {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)

	newClient := func() *nmcli.Client {
		return nmcli.New(nmcli.NewRunner(log), nmcli.NewSudoRunner(log))
	}

	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "dnswitch",
		Short: "Change DNS servers on the active NetworkManager connection",
		Long: `An interactive tool that points the active NetworkManager connection at a
chosen DNS provider, a custom resolver pair, or back to the router's DNS.

Run without arguments for the interactive menu, or use the subcommands for
scripted, non-interactive use.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.New(newClient(), session.NewPrompter(), os.Stdout, os.Stderr)
			if err != nil {
				return fmt.Errorf("cannot determine active connection: %w", err)
			}
			return s.Run()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every external command invocation")

	// Apply command - set static DNS without the menu
	applyCmd := &cobra.Command{
		Use:   "apply <provider-name | primary secondary>",
		Short: "Set DNS servers on the active connection",
		Long: `Set static DNS servers on the active connection.

Pass either the name of a built-in provider (see "dnswitch providers") or an
explicit primary and secondary IPv4 address.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var primary, secondary string
			if len(args) == 1 {
				p, ok := provider.Lookup(args[0])
				if !ok {
					return fmt.Errorf("unknown provider %q (see \"dnswitch providers\")", args[0])
				}
				primary, secondary = p.Primary, p.Secondary
			} else {
				primary, secondary = args[0], args[1]
				for _, addr := range []string{primary, secondary} {
					if err := provider.ValidateAddr(addr); err != nil {
						return err
					}
				}
			}

			nm := newClient()
			conn, err := nm.ActiveConnection()
			if err != nil {
				return err
			}
			if err := nm.SetDNS(conn, primary, secondary); err != nil {
				return err
			}
			fmt.Printf("DNS on %s set to %s %s\n", conn, primary, secondary)
			return nil
		},
	}

	// Auto command - revert to router/DHCP DNS
	autoCmd := &cobra.Command{
		Use:   "auto",
		Short: "Revert the active connection to automatic (router) DNS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nm := newClient()
			conn, err := nm.ActiveConnection()
			if err != nil {
				return err
			}
			if err := nm.SetAutomatic(conn); err != nil {
				return err
			}
			fmt.Printf("DNS on %s reverted to automatic\n", conn)
			return nil
		},
	}

	// Show command - current DNS settings plus resolver status
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the active connection's DNS settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nm := newClient()
			conn, err := nm.ActiveConnection()
			if err != nil {
				return err
			}
			lines, err := nm.ShowDNS(conn)
			if err != nil {
				return err
			}
			for _, line := range lines {
				fmt.Println(line)
			}
			fmt.Println("\nSystem DNS configuration:")
			diag.ResolverStatus(os.Stdout)
			return nil
		},
	}

	// Test command - one lookup against a resolver
	testCmd := &cobra.Command{
		Use:   "test <server> [domain]",
		Short: "Send one test query to a DNS server",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain := defaultProbeDomain
			if len(args) == 2 {
				domain = args[1]
			}

			result, err := diag.Probe(args[0], domain)
			if err != nil {
				return err
			}

			fmt.Printf("%s answered for %s in %s\n", result.Server, domain, result.RTT)
			for _, addr := range result.Addresses {
				fmt.Printf("  %s\n", addr)
			}
			return nil
		},
	}

	// Providers command - list the built-in catalog
	providersCmd := &cobra.Command{
		Use:   "providers",
		Short: "List the built-in DNS providers",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range provider.Catalog() {
				fmt.Printf("%-12s %-16s %-16s %s\n", p.Name, p.Primary, p.Secondary, p.Description)
			}
		},
	}

	rootCmd.AddCommand(applyCmd, autoCmd, showCmd, testCmd, providersCmd)
	return rootCmd
}
