package process

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
)

// DefaultPSCommand lists every process with owner, pid, %cpu and rss columns
const DefaultPSCommand = "ps aux"

// CommandRunner executes a shell command and returns its stdout
type CommandRunner func(ctx context.Context, command string) (string, error)

// PSSource takes snapshots by running `ps aux`
type PSSource struct {
	mu      sync.Mutex
	run     CommandRunner
	command string
	timeout time.Duration
	shell   *gosh.Service
}

// NewPSSource opens a local gosh shell session used for every listing
func NewPSSource(ctx context.Context, timeout time.Duration) (*PSSource, error) {
	shell, err := gosh.New(ctx, local.New())
	if err != nil {
		return nil, fmt.Errorf("open local shell: %w", err)
	}
	s := NewPSSourceWithRunner(goshRunner(shell, timeout), timeout)
	s.shell = shell
	return s, nil
}

// NewPSSourceWithRunner builds a source around an arbitrary command runner
func NewPSSourceWithRunner(run CommandRunner, timeout time.Duration) *PSSource {
	return &PSSource{
		run:     run,
		command: DefaultPSCommand,
		timeout: timeout,
	}
}

// Name implements Source
func (s *PSSource) Name() string {
	return "ps"
}

// Snapshot implements Source
// A shell session is a single stream, so concurrent callers are serialized
func (s *PSSource) Snapshot(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out, err := s.run(ctx, s.command)
	if err != nil {
		return Snapshot{}, fmt.Errorf("run %q: %w", s.command, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Snapshot{}, fmt.Errorf("run %q: %w", s.command, ctxErr)
	}

	snap, err := ParsePS(out)
	if err != nil {
		return Snapshot{}, err
	}
	snap.TakenAt = time.Now()
	return snap, nil
}

// Close releases the shell session
func (s *PSSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shell == nil {
		return nil
	}
	err := s.shell.Close()
	s.shell = nil
	return err
}

func goshRunner(shell *gosh.Service, timeout time.Duration) CommandRunner {
	return func(ctx context.Context, command string) (string, error) {
		var opts []runner.Option
		if timeout > 0 {
			opts = append(opts, runner.WithTimeout(int(timeout.Milliseconds())))
		}
		out, status, err := shell.Run(ctx, command, opts...)
		if err != nil {
			return "", err
		}
		if status != 0 {
			return "", fmt.Errorf("exit status %d: %s", status, firstLine(out))
		}
		return out, nil
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
