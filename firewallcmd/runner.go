package firewallcmd

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const (
	defaultCommandName = "firewall-cmd"
)

// IRunner runs the firewall-cmd tool with the given arguments and returns its stdout.
// A non-zero exit is reported as *ExecError.
type IRunner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// ExecError carries the output of a failed firewall-cmd invocation.
type ExecError struct {
	Args   []string
	Stdout []byte
	Stderr []byte
	Err    error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("exec firewall-cmd failed, args:%s, err:%v, debug:%s",
		strings.Join(e.Args, " "), e.Err, strings.TrimSpace(string(e.Stderr)))
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

type execRunner struct {
	path string
}

// NewExecRunner returns a runner backed by os/exec. An empty path looks firewall-cmd up in PATH.
func NewExecRunner(path string) (IRunner, error) {
	if len(path) == 0 {
		path = defaultCommandName
	}
	realPath, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("lookup firewall-cmd command failed, err:%w", err)
	}
	return &execRunner{path: realPath}, nil
}

func (r *execRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.path, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &ExecError{
			Args:   args,
			Stdout: stdout.Bytes(),
			Stderr: stderr.Bytes(),
			Err:    err,
		}
	}
	return stdout.Bytes(), nil
}
