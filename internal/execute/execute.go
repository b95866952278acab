// Package execute runs an accepted command in the user's shell.
package execute

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

// DefaultMaxOutput caps how much combined output is kept for memory.
const DefaultMaxOutput = 1 << 20

// Outcome is what the shell reported back.
type Outcome struct {
	Success  bool
	ExitCode int
	// Output is stdout and stderr interleaved as written.
	Output string
}

// Runner executes commands with bash, or sh when bash is missing.
type Runner struct {
	Shell   string
	Dir     string
	Timeout time.Duration
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	// MaxOutput bounds the captured output; the tail is kept.
	MaxOutput int
}

// NewRunner returns a Runner attached to the process terminal.
func NewRunner() *Runner {
	return &Runner{
		Shell:     DetectShell(),
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		MaxOutput: DefaultMaxOutput,
	}
}

// DetectShell prefers bash.
func DetectShell() string {
	if path, err := exec.LookPath("bash"); err == nil {
		return path
	}
	return "sh"
}

// Run executes command and waits for it. Output is streamed to the runner's
// writers and captured at the same time.
func (r *Runner) Run(ctx context.Context, command string) Outcome {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	shell := r.Shell
	if shell == "" {
		shell = DetectShell()
	}

	buf := &tailBuffer{max: r.MaxOutput}
	cmd := exec.CommandContext(ctx, shell, "-c", command) // #nosec G204
	cmd.Dir = r.Dir
	cmd.Stdin = r.Stdin
	cmd.Stdout = tee(r.Stdout, buf)
	cmd.Stderr = tee(r.Stderr, buf)
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	out := Outcome{Success: err == nil, Output: buf.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case ctx.Err() == context.DeadlineExceeded:
		out.ExitCode = -1
		out.Output += "\n[command timed out]"
	case errors.As(err, &exitErr):
		out.ExitCode = exitErr.ExitCode()
	default:
		out.ExitCode = -1
		out.Output += fmt.Sprintf("\n[failed to start: %v]", err)
	}
	return out
}

func tee(w io.Writer, buf *tailBuffer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(w, buf)
}

// tailBuffer keeps the last max bytes written to it. Stdout and stderr copy
// goroutines share it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	b   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.b = append(t.b, p...)
	if t.max > 0 && len(t.b) > t.max {
		t.b = append(t.b[:0], t.b[len(t.b)-t.max:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.b)
}
