// Package progress_test tests progress display rendering, stage counters, checkmarks, and spinner lifecycle.
// Related: internal/progress/display.go, internal/progress/formatter.go
// Tags: progress, display, rendering, stages, spinner, tty
package progress

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var plain = TerminalCapabilities{}

func TestProgressDisplay_NonTTY(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewProgressDisplay(plain, &buf)
	stage := StageInfo{Name: "migrate", Number: 2, TotalStages: 4}

	require.NoError(t, p.StartStage(stage))
	p.CompleteStage(stage, "12 records")
	p.FailStage(StageInfo{Name: "validate", Number: 4, TotalStages: 4}, errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "[2/4] Running migrate\n")
	assert.Contains(t, out, "[OK] [2/4] Migrate: 12 records (")
	assert.Contains(t, out, "[FAIL] [4/4] Validate failed: boom\n")
	assert.NotContains(t, out, "\033[")
}

func TestProgressDisplay_InvalidStage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewProgressDisplay(plain, &buf)
	assert.Error(t, p.StartStage(StageInfo{Name: "load", Number: 3, TotalStages: 2}))
	assert.Zero(t, buf.Len())
}

func TestProgressDisplay_NilIsSilent(t *testing.T) {
	t.Parallel()

	var p *ProgressDisplay
	stage := StageInfo{Name: "load", Number: 1, TotalStages: 1}
	assert.NoError(t, p.StartStage(stage))
	assert.NotPanics(t, func() {
		p.CompleteStage(stage, "")
		p.FailStage(stage, errors.New("x"))
		p.Stop()
	})
}

func TestStageInfo_Validate(t *testing.T) {
	tests := map[string]struct {
		stage   StageInfo
		wantErr bool
	}{
		"valid":           {stage: StageInfo{Name: "load", Number: 1, TotalStages: 3}},
		"empty name":      {stage: StageInfo{Number: 1, TotalStages: 3}, wantErr: true},
		"zero number":     {stage: StageInfo{Name: "load", TotalStages: 3}, wantErr: true},
		"zero total":      {stage: StageInfo{Name: "load", Number: 1}, wantErr: true},
		"number too high": {stage: StageInfo{Name: "load", Number: 4, TotalStages: 3}, wantErr: true},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := tc.stage.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSelectSymbols(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "✓", SelectSymbols(TerminalCapabilities{SupportsUnicode: true}).Checkmark)
	assert.Equal(t, "[OK]", SelectSymbols(plain).Checkmark)
	assert.Equal(t, 9, SelectSymbols(plain).SpinnerSet)
}

func TestCheckmarkColor(t *testing.T) {
	t.Parallel()

	symbols := SelectSymbols(TerminalCapabilities{SupportsUnicode: true})
	assert.Equal(t, "✓", checkmark(symbols, false))
	assert.Contains(t, checkmark(symbols, true), "\033[32m")
	assert.Contains(t, failureMark(symbols, true), "\033[31m")
}

func TestDetectTerminalCapabilities_RedirectedStream(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("PACKFORGE_ASCII", "")

	f, err := os.Create(filepath.Join(t.TempDir(), "stderr.log"))
	require.NoError(t, err)
	defer f.Close()

	caps := DetectTerminalCapabilities(f)
	assert.Equal(t, TerminalCapabilities{}, caps)
	assert.Equal(t, "[FAIL]", SelectSymbols(caps).Failure)
}
