package generator

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Environment variables passed to the generator command.
const (
	EnvFile        = "DOCWATCH_FILE"
	EnvDetailLevel = "DOCWATCH_DETAIL_LEVEL"
	EnvGuidance    = "DOCWATCH_GUIDANCE"
)

// CommandGenerator runs an external program for each request. The program
// receives the path and detail level as arguments and in the environment.
// The last non-empty line it prints is taken as the output location; a
// non-zero exit is a failure.
type CommandGenerator struct {
	name    string
	args    []string
	timeout time.Duration
	dir     string
}

// NewCommandGenerator parses command into a program and leading arguments.
// Quoting is not interpreted; wrap the program in a script if needed.
func NewCommandGenerator(command string, timeout time.Duration, dir string) (*CommandGenerator, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("generator command is empty")
	}
	return &CommandGenerator{
		name:    fields[0],
		args:    fields[1:],
		timeout: timeout,
		dir:     dir,
	}, nil
}

// Generate runs the command for req.
func (g *CommandGenerator) Generate(ctx context.Context, req Request) (Response, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	args := append(append([]string{}, g.args...), req.Path, req.DetailLevel.String())
	cmd := exec.CommandContext(ctx, g.name, args...)
	cmd.Dir = g.dir
	// Children that inherit stdout must not hold Run open past cancellation.
	cmd.WaitDelay = time.Second
	cmd.Env = append(os.Environ(),
		EnvFile+"="+req.Path,
		EnvDetailLevel+"="+req.DetailLevel.String(),
		EnvGuidance+"="+req.Guidance,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return Response{Success: false, ErrorMessage: msg}, nil
	}

	return Response{Success: true, OutputLocation: lastLine(stdout.String())}, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
