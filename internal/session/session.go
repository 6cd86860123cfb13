// Package session drives the interactive menu against the single active
// NetworkManager connection discovered at startup.
package session

import (
	"errors"
	"fmt"
	"io"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/fatih/color"

	"github.com/dnswitch/dnswitch/internal/diag"
	"github.com/dnswitch/dnswitch/internal/nmcli"
	"github.com/dnswitch/dnswitch/internal/provider"
)

// errQuit flows from the Exit action back through the loop, which is the
// only place allowed to stop the session.
var errQuit = errors.New("quit")

var menuOptions = []string{
	"Select DNS Provider",
	"Custom DNS",
	"Automatic DNS (Router)",
	"Show Current DNS",
	"Exit",
}

// Session owns the provider catalog and the connection name captured at
// startup. The name is discovered once and trusted for the life of the
// process; it is not re-validated if the network topology changes mid-run.
type Session struct {
	providers  []provider.Provider
	connection string
	nm         *nmcli.Client
	prompt     Prompter
	out        io.Writer
	errOut     io.Writer

	// resolverStatus is swappable so tests don't shell out to resolvectl.
	resolverStatus func(io.Writer)
}

// New discovers the active connection and builds a ready-to-run session.
// The discovery error is fatal to the caller: without a target connection
// there is nothing the menu could do.
func New(nm *nmcli.Client, prompt Prompter, out, errOut io.Writer) (*Session, error) {
	conn, err := nm.ActiveConnection()
	if err != nil {
		return nil, err
	}

	return &Session{
		providers:      provider.Catalog(),
		connection:     conn,
		nm:             nm,
		prompt:         prompt,
		out:            out,
		errOut:         errOut,
		resolverStatus: diag.ResolverStatus,
	}, nil
}

// Connection returns the connection name the session targets.
func (s *Session) Connection() string {
	return s.connection
}

// Run shows the menu until the user picks Exit or interrupts the prompt.
// Action errors are printed to the error writer and the menu comes back;
// they never end the session.
func (s *Session) Run() error {
	for {
		s.printBanner()

		idx, err := s.prompt.Select("Choose an option", menuOptions)
		if err != nil {
			if errors.Is(err, terminal.InterruptErr) {
				return nil
			}
			return err
		}

		err = s.dispatch(idx)
		if errors.Is(err, errQuit) {
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		}
		if err != nil {
			fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}
		fmt.Fprintln(s.out)
	}
}

func (s *Session) dispatch(idx int) error {
	switch idx {
	case 0:
		return s.selectProvider()
	case 1:
		return s.customDNS()
	case 2:
		return s.automaticDNS()
	case 3:
		return s.showCurrentDNS()
	case 4:
		return errQuit
	}
	return nil
}

func (s *Session) printBanner() {
	fmt.Fprintln(s.out, "========================================")
	fmt.Fprintln(s.out, "            DNS Changer Tool")
	fmt.Fprintln(s.out, "========================================")
	fmt.Fprintf(s.out, "Current Connection: %s\n\n", s.connection)
}

// selectProvider applies one of the built-in providers.
func (s *Session) selectProvider() error {
	labels := make([]string, len(s.providers))
	for i, p := range s.providers {
		labels[i] = p.Label()
	}

	idx, err := s.prompt.Select("Select DNS Provider", labels)
	if err != nil {
		return err
	}

	p := s.providers[idx]
	if err := s.nm.SetDNS(s.connection, p.Primary, p.Secondary); err != nil {
		return err
	}

	s.success("DNS set to %s (%s, %s)", p.Name, p.Primary, p.Secondary)
	return nil
}

// customDNS applies a user-entered resolver pair. Addresses are validated
// at the prompt so a typo is caught before the privileged nmcli call.
func (s *Session) customDNS() error {
	primary, err := s.prompt.Input("Enter primary DNS", provider.ValidateAddr)
	if err != nil {
		return err
	}
	secondary, err := s.prompt.Input("Enter secondary DNS", provider.ValidateAddr)
	if err != nil {
		return err
	}

	if err := s.nm.SetDNS(s.connection, primary, secondary); err != nil {
		return err
	}

	s.success("DNS set to custom: %s, %s", primary, secondary)
	return nil
}

// automaticDNS reverts the connection to the router/DHCP-provided DNS.
func (s *Session) automaticDNS() error {
	if err := s.nm.SetAutomatic(s.connection); err != nil {
		return err
	}

	s.success("Switched to automatic DNS (Router)")
	return nil
}

// showCurrentDNS prints the connection's DNS settings and the system
// resolver state. Read-only.
func (s *Session) showCurrentDNS() error {
	lines, err := s.nm.ShowDNS(s.connection)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Fprintln(s.out, line)
	}

	fmt.Fprintln(s.out, "\nSystem DNS configuration:")
	s.resolverStatus(s.out)
	return nil
}

func (s *Session) success(format string, args ...interface{}) {
	fmt.Fprintln(s.out, color.GreenString("✔ "+format, args...))
}
