package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// ProgressDisplay shows one stage at a time. A nil *ProgressDisplay is valid
// and shows nothing.
type ProgressDisplay struct {
	capabilities TerminalCapabilities
	out          io.Writer
	spinner      *spinner.Spinner
	symbols      ProgressSymbols
	started      time.Time
}

// NewProgressDisplay creates a display writing to out
func NewProgressDisplay(caps TerminalCapabilities, out io.Writer) *ProgressDisplay {
	return &ProgressDisplay{
		capabilities: caps,
		out:          out,
		symbols:      SelectSymbols(caps),
	}
}

// StartStage begins displaying progress for a stage
func (p *ProgressDisplay) StartStage(stage StageInfo) error {
	if p == nil {
		return nil
	}
	if err := stage.Validate(); err != nil {
		return err
	}
	p.stopSpinner()
	p.started = time.Now()

	msg := buildStageMessage(stage, "Running")
	if p.capabilities.IsTTY {
		opt := spinner.WithWriter(p.out)
		if f, ok := p.out.(*os.File); ok {
			opt = spinner.WithWriterFile(f)
		}
		p.spinner = spinner.New(spinner.CharSets[p.symbols.SpinnerSet], 100*time.Millisecond, opt)
		p.spinner.Suffix = " " + msg
		p.spinner.Start()
	} else {
		fmt.Fprintln(p.out, msg)
	}
	return nil
}

// CompleteStage stops the spinner and prints the stage result. detail is a
// short count such as "120 records".
func (p *ProgressDisplay) CompleteStage(stage StageInfo, detail string) {
	if p == nil {
		return
	}
	p.stopSpinner()
	mark := checkmark(p.symbols, p.capabilities.SupportsColor)
	line := fmt.Sprintf("%s %s %s", mark, formatStageCounter(stage.Number, stage.TotalStages), capitalize(stage.Name))
	if detail != "" {
		line += ": " + detail
	}
	fmt.Fprintf(p.out, "%s (%s)\n", line, time.Since(p.started).Round(time.Millisecond))
}

// FailStage stops the spinner and prints the failure
func (p *ProgressDisplay) FailStage(stage StageInfo, err error) {
	if p == nil {
		return
	}
	p.stopSpinner()
	mark := failureMark(p.symbols, p.capabilities.SupportsColor)
	fmt.Fprintf(p.out, "%s %s %s failed: %v\n", mark, formatStageCounter(stage.Number, stage.TotalStages), capitalize(stage.Name), err)
}

// Stop stops the spinner without printing a result
func (p *ProgressDisplay) Stop() {
	if p == nil {
		return
	}
	p.stopSpinner()
}

func (p *ProgressDisplay) stopSpinner() {
	if p.spinner != nil {
		p.spinner.Stop()
		p.spinner = nil
	}
}
