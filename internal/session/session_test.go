package session

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/dnswitch/dnswitch/internal/nmcli"
)

// fakeRunner records invocations and replays scripted results in order,
// returning empty success once the script is exhausted.
type fakeRunner struct {
	calls   [][]string
	results []fakeResult
}

type fakeResult struct {
	out string
	err error
}

func (f *fakeRunner) Run(name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if len(f.results) == 0 {
		return "", nil
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r.out, r.err
}

// fakePrompter replays scripted selections and inputs. Inputs run through
// the prompt's validator, like the terminal prompter would.
type fakePrompter struct {
	selections []int
	inputs     []string
}

func (f *fakePrompter) Select(message string, options []string) (int, error) {
	if len(f.selections) == 0 {
		return 0, errors.New("no scripted selection")
	}
	idx := f.selections[0]
	f.selections = f.selections[1:]
	if idx < 0 || idx >= len(options) {
		return 0, fmt.Errorf("scripted selection %d out of range", idx)
	}
	return idx, nil
}

func (f *fakePrompter) Input(message string, validate func(string) error) (string, error) {
	if len(f.inputs) == 0 {
		return "", errors.New("no scripted input")
	}
	answer := f.inputs[0]
	f.inputs = f.inputs[1:]
	if validate != nil {
		if err := validate(answer); err != nil {
			return "", err
		}
	}
	return answer, nil
}

const activeList = "Home WiFi:wlan0\nlo-profile:\n"

func newTestSession(t *testing.T, run, sudo *fakeRunner, prompt Prompter) (*Session, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	var out, errOut bytes.Buffer
	s, err := New(nmcli.New(run, sudo), prompt, &out, &errOut)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s.resolverStatus = func(io.Writer) {}
	return s, &out, &errOut
}

func TestNewDiscoversConnection(t *testing.T) {
	run := &fakeRunner{results: []fakeResult{{out: activeList}}}
	s, _, _ := newTestSession(t, run, &fakeRunner{}, &fakePrompter{})

	if s.Connection() != "Home WiFi" {
		t.Errorf("Connection() = %q, want %q", s.Connection(), "Home WiFi")
	}
}

func TestNewFailsWithoutActiveConnection(t *testing.T) {
	run := &fakeRunner{results: []fakeResult{{out: "conn1:\nconn2:\n"}}}

	_, err := New(nmcli.New(run, &fakeRunner{}), &fakePrompter{}, io.Discard, io.Discard)
	if !errors.Is(err, nmcli.ErrNoActiveConnection) {
		t.Fatalf("New() error = %v, want ErrNoActiveConnection", err)
	}
}

func TestRunExitImmediately(t *testing.T) {
	run := &fakeRunner{results: []fakeResult{{out: activeList}}}
	sudo := &fakeRunner{}
	s, out, _ := newTestSession(t, run, sudo, &fakePrompter{selections: []int{4}})

	if err := s.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Goodbye!") {
		t.Error("missing farewell on exit")
	}
	if len(sudo.calls) != 0 {
		t.Errorf("exit must not touch nmcli, got %v", sudo.calls)
	}
}

func TestProviderSelection(t *testing.T) {
	tests := []struct {
		name     string
		index    int
		wantDNS  string
		wantName string
	}{
		{name: "cloudflare", index: 0, wantDNS: "1.1.1.1 1.0.0.1", wantName: "Cloudflare"},
		{name: "google", index: 1, wantDNS: "8.8.8.8 8.8.4.4", wantName: "Google"},
		{name: "quad9", index: 2, wantDNS: "9.9.9.9 149.112.112.112", wantName: "Quad9"},
		{name: "opendns", index: 3, wantDNS: "208.67.222.222 208.67.220.220", wantName: "OpenDNS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &fakeRunner{results: []fakeResult{{out: activeList}}}
			sudo := &fakeRunner{}
			prompt := &fakePrompter{selections: []int{0, tt.index, 4}}
			s, out, _ := newTestSession(t, run, sudo, prompt)

			if err := s.Run(); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			modify := sudo.calls[0]
			if modify[5] != tt.wantDNS {
				t.Errorf("ipv4.dns = %q, want %q", modify[5], tt.wantDNS)
			}
			if modify[7] != "yes" {
				t.Errorf("ipv4.ignore-auto-dns = %q, want yes", modify[7])
			}
			if !strings.Contains(out.String(), tt.wantName) {
				t.Errorf("success message missing provider name %s", tt.wantName)
			}
		})
	}
}

func TestCustomDNSPassesInputThrough(t *testing.T) {
	run := &fakeRunner{results: []fakeResult{{out: activeList}}}
	sudo := &fakeRunner{}
	prompt := &fakePrompter{
		selections: []int{1, 4},
		inputs:     []string{"10.0.0.53", "10.0.0.54"},
	}
	s, _, _ := newTestSession(t, run, sudo, prompt)

	if err := s.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if sudo.calls[0][5] != "10.0.0.53 10.0.0.54" {
		t.Errorf("custom addresses not passed verbatim: %q", sudo.calls[0][5])
	}
}

func TestCustomDNSRejectsMalformedInput(t *testing.T) {
	run := &fakeRunner{results: []fakeResult{{out: activeList}}}
	sudo := &fakeRunner{}
	prompt := &fakePrompter{
		selections: []int{1, 4},
		inputs:     []string{"not-an-address"},
	}
	s, _, errOut := newTestSession(t, run, sudo, prompt)

	if err := s.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(sudo.calls) != 0 {
		t.Errorf("malformed address must not reach nmcli, got %v", sudo.calls)
	}
	if !strings.Contains(errOut.String(), "Error:") {
		t.Error("validation failure not reported on the error stream")
	}
}

func TestAutomaticDNS(t *testing.T) {
	run := &fakeRunner{results: []fakeResult{{out: activeList}}}
	sudo := &fakeRunner{}
	s, out, _ := newTestSession(t, run, sudo, &fakePrompter{selections: []int{2, 4}})

	if err := s.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	modify := sudo.calls[0]
	if modify[5] != "" {
		t.Errorf("ipv4.dns = %q, want empty", modify[5])
	}
	if modify[7] != "no" || modify[9] != "no" {
		t.Errorf("ignore-auto-dns flags = %q/%q, want no/no", modify[7], modify[9])
	}
	if !strings.Contains(out.String(), "automatic DNS") {
		t.Error("missing success message")
	}
}

func TestActionErrorKeepsLoopAlive(t *testing.T) {
	run := &fakeRunner{results: []fakeResult{{out: activeList}}}
	sudo := &fakeRunner{results: []fakeResult{
		{out: ""}, // modify
		{out: ""}, // down
		{err: &nmcli.CommandError{Args: []string{"nmcli", "connection", "up"}, Stderr: "no device available"}},
	}}
	prompt := &fakePrompter{selections: []int{2, 4}}
	s, out, errOut := newTestSession(t, run, sudo, prompt)

	if err := s.Run(); err != nil {
		t.Fatalf("Run() error = %v, action failures must not end the session", err)
	}

	if !strings.Contains(errOut.String(), "Error:") || !strings.Contains(errOut.String(), "no device available") {
		t.Errorf("error stream missing diagnostic, got %q", errOut.String())
	}
	if !strings.Contains(out.String(), "Goodbye!") {
		t.Error("loop did not reach the scripted exit after the failure")
	}
}

func TestShowCurrentDNS(t *testing.T) {
	dump := strings.Join([]string{
		"connection.id:                          Home WiFi",
		"ipv4.dns:                               1.1.1.1,1.0.0.1",
		"ipv4.ignore-auto-dns:                   yes",
		"ipv6.method:                            auto",
	}, "\n")

	run := &fakeRunner{results: []fakeResult{
		{out: activeList},
		{out: dump},
	}}
	s, out, _ := newTestSession(t, run, &fakeRunner{}, &fakePrompter{selections: []int{3, 4}})

	resolverCalled := false
	s.resolverStatus = func(w io.Writer) {
		resolverCalled = true
		fmt.Fprintln(w, "Global: resolvectl output")
	}

	if err := s.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "ipv4.dns:") || !strings.Contains(got, "ipv4.ignore-auto-dns:") {
		t.Error("filtered DNS lines missing from output")
	}
	if strings.Contains(got, "ipv6.method") || strings.Contains(got, "connection.id") {
		t.Error("unrelated settings leaked into output")
	}
	if !resolverCalled || !strings.Contains(got, "resolvectl output") {
		t.Error("resolver status was not streamed")
	}
}

func TestBannerShowsConnection(t *testing.T) {
	run := &fakeRunner{results: []fakeResult{{out: activeList}}}
	s, out, _ := newTestSession(t, run, &fakeRunner{}, &fakePrompter{selections: []int{4}})

	if err := s.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Current Connection: Home WiFi") {
		t.Error("banner missing current connection")
	}
}
