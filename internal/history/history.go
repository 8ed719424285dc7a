// Package history records every packforge run in a small YAML file under the
// state directory.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// HistoryFileName is the name of the history file.
	HistoryFileName = "history.yaml"
	// BackupSuffix is the suffix for backup files when corruption is detected.
	BackupSuffix = ".backup"
)

// Counts is the headline of a run's summary.
type Counts struct {
	Loaded      int `yaml:"loaded"`
	Rejected    int `yaml:"rejected,omitempty"`
	Modified    int `yaml:"modified,omitempty"`
	Written     int `yaml:"written,omitempty"`
	Groups      int `yaml:"groups,omitempty"`
	Errors      int `yaml:"errors,omitempty"`
	Warnings    int `yaml:"warnings,omitempty"`
	Diagnostics int `yaml:"diagnostics,omitempty"`
}

// Entry is one finished run.
type Entry struct {
	// ID is the run id printed in the run's report.
	ID        string    `yaml:"id"`
	Timestamp time.Time `yaml:"timestamp"`
	Command   string    `yaml:"command"`
	Directory string    `yaml:"directory"`
	DryRun    bool      `yaml:"dry_run,omitempty"`
	Status    string    `yaml:"status"`
	ExitCode  int       `yaml:"exit_code"`
	// Duration is in Go duration format (e.g., "1.234s").
	Duration string `yaml:"duration"`
	Counts   Counts `yaml:"counts"`
}

// File is the on-disk history, oldest entry first.
type File struct {
	Entries []Entry `yaml:"entries"`
}

// Load reads the history file from stateDir.
// Returns empty history if file doesn't exist.
// Handles corrupted files by backing them up and starting a fresh history.
func Load(stateDir string) (*File, error) {
	historyPath := filepath.Join(stateDir, HistoryFileName)

	data, err := os.ReadFile(historyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{Entries: []Entry{}}, nil
		}
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	var history File
	if err := yaml.Unmarshal(data, &history); err != nil {
		if backupErr := backupCorruptedFile(historyPath); backupErr != nil {
			return nil, fmt.Errorf("backing up corrupted history file: %w", backupErr)
		}
		return &File{Entries: []Entry{}}, nil
	}

	if history.Entries == nil {
		history.Entries = []Entry{}
	}
	return &history, nil
}

// backupCorruptedFile renames a corrupted file with a .backup suffix.
func backupCorruptedFile(path string) error {
	if err := os.Rename(path, path+BackupSuffix); err != nil {
		return fmt.Errorf("renaming corrupted file to backup: %w", err)
	}
	return nil
}

// Save writes the history file atomically, creating stateDir if needed.
func Save(stateDir string, history *File) error {
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := yaml.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}

	historyPath := filepath.Join(stateDir, HistoryFileName)
	tmpPath := historyPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("writing temp history file: %w", err)
	}
	if err := os.Rename(tmpPath, historyPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp history file: %w", err)
	}
	return nil
}

// Clear removes all entries from the history file.
func Clear(stateDir string) error {
	return Save(stateDir, &File{Entries: []Entry{}})
}

// Filter returns the newest entries first, optionally limited to one command.
// limit <= 0 returns every match.
func (f *File) Filter(command string, limit int) []Entry {
	var out []Entry
	for i := len(f.Entries) - 1; i >= 0; i-- {
		e := f.Entries[i]
		if command != "" && e.Command != command {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
