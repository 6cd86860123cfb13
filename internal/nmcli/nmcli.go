// Package nmcli wraps the NetworkManager command-line tool. All DNS changes
// in this program go through a Client; nothing else talks to nmcli.
package nmcli

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoActiveConnection is returned when NetworkManager reports no
// connection bound to a device.
var ErrNoActiveConnection = errors.New("no active connection found")

// Client issues nmcli commands. Queries run unprivileged, modifications run
// through the sudo runner.
type Client struct {
	run  Runner
	sudo Runner
}

// New builds a Client from an unprivileged and an elevated runner.
func New(run, sudo Runner) *Client {
	return &Client{run: run, sudo: sudo}
}

// ActiveConnection returns the name of the first active connection that is
// bound to a device. nmcli lists one NAME:DEVICE pair per line in terse
// mode; connections without a device (e.g. a lingering VPN profile) are
// skipped.
func (c *Client) ActiveConnection() (string, error) {
	out, err := c.run.Run("nmcli", "-t", "-f", "NAME,DEVICE", "connection", "show", "--active")
	if err != nil {
		return "", fmt.Errorf("listing active connections: %w", err)
	}

	name, ok := firstConnectedName(out)
	if !ok {
		return "", ErrNoActiveConnection
	}
	return name, nil
}

// firstConnectedName scans terse NAME:DEVICE lines and returns the NAME of
// the first line whose DEVICE field is non-empty.
func firstConnectedName(out string) (string, bool) {
	for _, line := range strings.Split(out, "\n") {
		parts := strings.Split(line, ":")
		if len(parts) >= 2 && parts[1] != "" {
			return parts[0], true
		}
	}
	return "", false
}

// SetDNS points conn at the given resolver pair and restarts it. The value
// handed to nmcli is "<primary> <secondary>" exactly.
func (c *Client) SetDNS(conn, primary, secondary string) error {
	servers := primary + " " + secondary
	_, err := c.sudo.Run("nmcli", "connection", "mod", conn,
		"ipv4.dns", servers,
		"ipv4.ignore-auto-dns", "yes")
	if err != nil {
		return fmt.Errorf("setting DNS on %q: %w", conn, err)
	}
	return c.Restart(conn)
}

// SetAutomatic clears the static override so conn goes back to the
// DHCP/router-advertised resolvers, then restarts it.
func (c *Client) SetAutomatic(conn string) error {
	_, err := c.sudo.Run("nmcli", "connection", "mod", conn,
		"ipv4.dns", "",
		"ipv4.ignore-auto-dns", "no",
		"ipv6.ignore-auto-dns", "no")
	if err != nil {
		return fmt.Errorf("reverting DNS on %q: %w", conn, err)
	}
	return c.Restart(conn)
}

// Restart cycles conn down and up; NetworkManager only applies a modified
// DNS configuration on activation. The down step is best-effort and its
// error is ignored: the connection may already be down, e.g. on first
// configuration.
func (c *Client) Restart(conn string) error {
	_, _ = c.sudo.Run("nmcli", "connection", "down", conn)

	if _, err := c.sudo.Run("nmcli", "connection", "up", conn); err != nil {
		return fmt.Errorf("bringing connection %q up: %w", conn, err)
	}
	return nil
}

// ShowDNS returns the DNS-related lines of "nmcli connection show": those
// mentioning ipv4.dns or ipv4.ignore-auto-dns.
func (c *Client) ShowDNS(conn string) ([]string, error) {
	out, err := c.run.Run("nmcli", "connection", "show", conn)
	if err != nil {
		return nil, fmt.Errorf("showing connection %q: %w", conn, err)
	}
	return filterDNSLines(out), nil
}

func filterDNSLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "ipv4.dns") || strings.Contains(line, "ipv4.ignore-auto-dns") {
			lines = append(lines, line)
		}
	}
	return lines
}
