package provider

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// CLIProvider shells out to a local agent binary (claude, llm, ...) and
// treats its stdout as the completion.
type CLIProvider struct {
	binaryPath string
	args       []string
	timeout    time.Duration
}

func NewCLIProvider(binaryPath string, args []string) (*CLIProvider, error) {
	if binaryPath == "" {
		return nil, fmt.Errorf("binary path is required for CLI provider")
	}
	return &CLIProvider{
		binaryPath: binaryPath,
		args:       args,
		timeout:    2 * time.Minute,
	}, nil
}

func (p *CLIProvider) Name() string {
	return "cli-" + filepath.Base(p.binaryPath)
}

func (p *CLIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	prompt := req.User
	if req.System != "" {
		prompt = req.System + "\n\n" + req.User
	}

	fullArgs := append(append([]string{}, p.args...), prompt)

	execCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, p.binaryPath, fullArgs...) // #nosec G204
	output, err := cmd.Output()
	result := string(output)

	if err != nil {
		if execCtx.Err() == context.DeadlineExceeded {
			return nil, newError(p.Name(), KindNetwork, fmt.Errorf("cli agent timed out: %w", err))
		}
		return nil, newError(p.Name(), KindProvider, fmt.Errorf("cli agent failed: %w\nOutput: %s", err, result))
	}

	return &Response{
		Content: result,
		Usage: Usage{
			TotalTokens: len(strings.Fields(result)),
		},
	}, nil
}
