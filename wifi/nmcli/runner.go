package nmcli

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"

	"github.com/wifiproxy/wifiproxy/wifi"
)

// Result is the outcome of a command that was started successfully.
type Result struct {
	Success bool // Exited with status 0
	Stdout  []byte
	Stderr  []byte
}

// Runner executes an external command and waits for it to finish.
//
// A non-zero exit status is not an error: it is reported through
// Result.Success for the caller to interpret. Run only fails when the
// command could not be started at all.
type Runner interface {
	Run(name string, args ...string) (Result, error)
}

// ExecRunner is a Runner backed by os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(name string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer
	c := exec.Command(name, args...)
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return Result{}, fmt.Errorf("%s: %w: %s", c.String(), wifi.ErrExecution, err)
	}

	return Result{
		Success: err == nil,
		Stdout:  stdout.Bytes(),
		Stderr:  stderr.Bytes(),
	}, nil
}
