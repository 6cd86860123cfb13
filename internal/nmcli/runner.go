package nmcli

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Runner executes an external command and returns its stdout. A non-zero
// exit (or a failure to start) is reported as a *CommandError carrying the
// captured stderr.
type Runner interface {
	Run(name string, args ...string) (string, error)
}

// CommandError describes a failed external command, including whatever the
// tool printed on stderr.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s failed", strings.Join(e.Args, " "))
	if e.Stderr != "" {
		return msg + ": " + e.Stderr
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// execRunner runs commands directly via os/exec.
type execRunner struct {
	log *logrus.Logger
}

// NewRunner returns a Runner backed by os/exec. Used for read-only nmcli
// queries that need no elevation.
func NewRunner(log *logrus.Logger) Runner {
	return &execRunner{log: log}
}

func (r *execRunner) Run(name string, args ...string) (string, error) {
	r.log.WithField("cmd", name+" "+strings.Join(args, " ")).Debug("running external command")

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &CommandError{
			Args:   append([]string{name}, args...),
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return stdout.String(), nil
}

// sudoRunner elevates every command through sudo. nmcli refuses connection
// modifications from unprivileged users, so all mutating calls go through
// this runner.
type sudoRunner struct {
	inner Runner
}

// NewSudoRunner returns a Runner that prefixes every command with sudo.
func NewSudoRunner(log *logrus.Logger) Runner {
	return &sudoRunner{inner: NewRunner(log)}
}

func (r *sudoRunner) Run(name string, args ...string) (string, error) {
	return r.inner.Run("sudo", append([]string{name}, args...)...)
}
