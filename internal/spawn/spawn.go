// Package spawn is the core's process-execution collaborator (spec.md
// §6): it fires off a child process for Execute(cmd) actions without
// observing its exit status.
package spawn

import (
	"os"
	"os/exec"
)

// Run starts cmdLine as a shell command and returns once the process has
// started; it does not wait for completion and does not observe the exit
// status, per spec.md §6's spawn(command_line) → nothing contract. Stdout
// and stderr are inherited from this process so a spawned terminal's own
// diagnostics remain visible.
func Run(cmdLine string) error {
	cmd := exec.Command("sh", "-c", cmdLine)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Start()
}
