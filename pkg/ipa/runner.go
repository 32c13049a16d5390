package ipa

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/apex/log"
)

// Runner runs an external command and reports whether it exited cleanly.
// A non-zero exit is returned as an error, never as a panic.
type Runner interface {
	Run(name string, args ...string) error
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// Run implements Runner
func (ExecRunner) Run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	log.WithField("cmd", cmd.String()).Debug("Running")
	out, err := cmd.CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			log.Debugf("%s: %s", name, strings.TrimSpace(string(out)))
		}
		return fmt.Errorf("failed to run '%s %s': %w", name, strings.Join(args, " "), err)
	}
	return nil
}
