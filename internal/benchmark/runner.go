package benchmark

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// Command is one external process invocation.
type Command struct {
	Action string
	Name   string
	Args   []string
	Env    []string
	Dir    string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner executes external commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands with os/exec. Output is discarded unless Output is
// set, in which case stdout and stderr are streamed to it.
type ExecRunner struct {
	Output io.Writer
}

func NewExecRunner(output io.Writer) *ExecRunner {
	return &ExecRunner{Output: output}
}

func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	slog.Debug("running command", "action", c.Action, "cmd", c.String(), "dir", c.Dir)

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = c.Env
	}

	// Keep the tail of the output for the error even when not streaming.
	var tail bytes.Buffer
	if r.Output != nil {
		cmd.Stdout = io.MultiWriter(r.Output, &tail)
		cmd.Stderr = io.MultiWriter(r.Output, &tail)
	} else {
		cmd.Stdout = &tail
		cmd.Stderr = &tail
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w\n%s", c.Action, err, lastLines(tail.String(), 20))
	}
	return nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
