package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/felixgeelhaar/please/internal/execute"
	"github.com/felixgeelhaar/please/internal/guard"
	"github.com/felixgeelhaar/please/internal/observe"
	"github.com/felixgeelhaar/please/internal/pipeline"
	"github.com/felixgeelhaar/please/internal/ui"
	"github.com/felixgeelhaar/please/internal/ui/tui"
)

const confirmQuestion = "Execute this command?"

// Controller is the part of the pipeline the runner drives.
type Controller interface {
	Process(ctx context.Context, input string) (*pipeline.Display, error)
	RecordOutcome(success bool, output *string)
}

// Executor runs an accepted command.
type Executor interface {
	Run(ctx context.Context, command string) execute.Outcome
}

// Runner is one invocation: suggest, show, maybe execute, remember.
type Runner struct {
	Observer   *observe.Observer
	Controller Controller
	Executor   Executor

	In  io.Reader
	Out io.Writer
	Err io.Writer

	CI          bool
	AutoExecute bool
	// Interactive enables the spinner and the confirmation prompt.
	Interactive bool
	Timeout     time.Duration
	Status      string
}

// ciResult is printed in CI mode.
type ciResult struct {
	*pipeline.Display
	Executed bool `json:"executed"`
	Success  bool `json:"success,omitempty"`
	ExitCode int  `json:"exit_code,omitempty"`
}

func (r *Runner) Run(ctx context.Context, request string) error {
	d, err := r.process(ctx, request)
	if err != nil {
		return err
	}

	if r.CI {
		return r.runCI(ctx, d)
	}

	fmt.Fprint(r.Out, ui.Render(d))
	if d.Kind != pipeline.KindSuggestion || d.Command == "" {
		return nil
	}

	if v := guard.CheckSyntax(d.Command); v != nil {
		fmt.Fprintln(r.Out, ui.Warning(v))
	}
	r.Observer.Log().Debug().Str("programs", strings.Join(guard.Programs(d.Command), ",")).Msg("suggested command")

	if !r.AutoExecute {
		if !r.Interactive {
			return nil
		}
		ok, err := tui.Confirm(r.In, r.Out, confirmQuestion)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(r.Out, "Cancelled.")
			return nil
		}
	}

	outcome := r.Executor.Run(ctx, d.Command)
	r.Controller.RecordOutcome(outcome.Success, &outcome.Output)
	if !outcome.Success {
		fmt.Fprintf(r.Err, "Command exited with status %d\n", outcome.ExitCode)
	}
	return nil
}

func (r *Runner) runCI(ctx context.Context, d *pipeline.Display) error {
	res := ciResult{Display: d}
	if r.AutoExecute && d.Kind == pipeline.KindSuggestion && d.Command != "" {
		outcome := r.Executor.Run(ctx, d.Command)
		r.Controller.RecordOutcome(outcome.Success, &outcome.Output)
		res.Executed = true
		res.Success = outcome.Success
		res.ExitCode = outcome.ExitCode
	}
	return ui.WriteJSON(r.Out, res)
}

// process calls the controller under the configured timeout, with a spinner
// when attached to a terminal.
func (r *Runner) process(ctx context.Context, request string) (*pipeline.Display, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	if !r.Interactive {
		return r.ask(ctx, ui.SilentUI{}, request)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		d   *pipeline.Display
		err error
	)
	ok, tuiErr := tui.Wait(r.In, r.Err, r.Status, cancel, func(t *tui.TUI) {
		d, err = r.ask(ctx, t, request)
	})
	if tuiErr != nil {
		return nil, tuiErr
	}
	if !ok {
		return nil, context.Canceled
	}
	return d, err
}

func (r *Runner) ask(ctx context.Context, u ui.UI, request string) (*pipeline.Display, error) {
	u.UpdateStatus(r.Status)
	return r.Controller.Process(ctx, request)
}
