// Package diag reports on the DNS configuration actually in effect on the
// system, independent of what NetworkManager was told.
package diag

import (
	"fmt"
	"io"
	"net"
	"os/exec"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// ResolverStatus streams the system resolver state (resolvectl status) to w
// verbatim. The exit status is ignored: resolvectl is absent on non-systemd
// machines and this output is informational only.
func ResolverStatus(w io.Writer) {
	cmd := exec.Command("resolvectl", "status")
	cmd.Stdout = w
	cmd.Stderr = w
	_ = cmd.Run()
}

// ProbeResult is the outcome of a single lookup against one server.
type ProbeResult struct {
	Server    string
	Addresses []string
	RTT       time.Duration
}

// Probe sends one A query for domain to the given server and reports the
// answers. server may omit the port; 53 is assumed.
func Probe(server, domain string) (*ProbeResult, error) {
	server = withDefaultPort(server)

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(domain), dns.TypeA)

	client := &dns.Client{
		Net:     "udp",
		Timeout: 5 * time.Second,
	}

	resp, rtt, err := client.Exchange(m, server)
	if err != nil {
		return nil, fmt.Errorf("querying %s via %s: %w", domain, server, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("querying %s via %s: %s", domain, server, dns.RcodeToString[resp.Rcode])
	}

	result := &ProbeResult{Server: server, RTT: rtt}
	for _, rr := range resp.Answer {
		if a, ok := rr.(*dns.A); ok {
			result.Addresses = append(result.Addresses, a.A.String())
		}
	}
	return result, nil
}

// withDefaultPort appends :53 unless server already carries a port.
func withDefaultPort(server string) string {
	if strings.Contains(server, ":") {
		return server
	}
	return net.JoinHostPort(server, "53")
}
