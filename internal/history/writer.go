package history

import (
	"fmt"

	"go.uber.org/zap"
)

// Writer appends entries to the history file and prunes it.
type Writer struct {
	// StateDir is the directory containing the history file.
	StateDir string
	// MaxEntries is the maximum number of entries to retain; 0 keeps all.
	MaxEntries int

	log *zap.Logger
}

// NewWriter creates a new history writer.
func NewWriter(stateDir string, maxEntries int, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{StateDir: stateDir, MaxEntries: maxEntries, log: log}
}

// Log appends entry. Failures are logged as warnings and never fail the run.
func (w *Writer) Log(entry Entry) {
	if err := w.Append(entry); err != nil {
		w.log.Warn("failed to record history", zap.String("state_dir", w.StateDir), zap.Error(err))
	}
}

// Append adds entry, dropping the oldest entries beyond MaxEntries.
func (w *Writer) Append(entry Entry) error {
	history, err := Load(w.StateDir)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	history.Entries = append(history.Entries, entry)
	if w.MaxEntries > 0 && len(history.Entries) > w.MaxEntries {
		excess := len(history.Entries) - w.MaxEntries
		history.Entries = history.Entries[excess:]
	}

	if err := Save(w.StateDir, history); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}
