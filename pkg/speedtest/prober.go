package speedtest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Prober obtains a fresh measurement. The decision logic depends only on this
// interface so it is testable without spawning real processes.
type Prober interface {
	Probe(ctx context.Context) (*Measurement, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context) (*Measurement, error)

func (f ProberFunc) Probe(ctx context.Context) (*Measurement, error) { return f(ctx) }

// CommandProber runs an external speed-test executable (resolved via PATH)
// and decodes its JSON stdout. Stdout and stderr are captured separately; a
// non-zero exit carries the trimmed stderr in the error.
type CommandProber struct {
	Command string
	Args    []string

	// Timeout bounds the child process via the context deadline.
	// Zero means unbounded.
	Timeout time.Duration
}

func (p *CommandProber) Probe(ctx context.Context) (*Measurement, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, p.Command, p.Args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = exitErr.Error()
			}
			if cerr := ctx.Err(); cerr != nil {
				return nil, fmt.Errorf("%w: %s: %v: %s", ErrCommandFailed, p.Command, cerr, msg)
			}
			return nil, fmt.Errorf("%w: %s: %s", ErrCommandFailed, p.Command, msg)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrSpawn, p.Command, err)
	}

	return DecodeToolOutput(stdout.Bytes())
}
