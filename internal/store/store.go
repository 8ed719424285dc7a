// Package store writes migrated and consolidated records back to disk.
package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grimdark-vtt/packforge/internal/record"
	"github.com/grimdark-vtt/packforge/internal/slug"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Store persists records under a content root.
type Store struct {
	root string
	log  *zap.Logger
}

// New returns a store rooted at dir.
func New(dir string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{root: dir, log: log}
}

// Root returns the content root.
func (s *Store) Root() string {
	return s.root
}

// FileName is the human-readable file name for a record: slug of the name
// plus the id. The name is only a hint; the embedded id is authoritative.
func FileName(rec *record.Record) string {
	base := slug.Make(rec.Name)
	if base == "" {
		return rec.ID + ".json"
	}
	return base + "_" + rec.ID + ".json"
}

// PathFor returns where rec is written: its own file, or a new file in dir
// (the root when dir is empty).
func (s *Store) PathFor(rec *record.Record, dir string) string {
	if rec.File != "" {
		return rec.File
	}
	if dir == "" {
		dir = s.root
	}
	return filepath.Join(dir, FileName(rec))
}

// Write encodes rec and replaces its file atomically. It reports false when
// the encoded bytes equal what is already stored, leaving the file untouched.
func (s *Store) Write(rec *record.Record, dir string) (bool, error) {
	data, err := rec.Encode()
	if err != nil {
		return false, fmt.Errorf("encoding %s: %w", rec.Label(), err)
	}
	path := s.PathFor(rec, dir)
	if rec.Raw != nil && bytes.Equal(rec.Raw, data) {
		return false, nil
	}
	if err := writeAtomic(path, data); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	rec.File = path
	rec.Raw = data
	s.log.Debug("record written", zap.String("id", rec.ID), zap.String("file", path))
	return true, nil
}

// Remove deletes a record's file. A file that is already gone is not an error.
func (s *Store) Remove(rec *record.Record) error {
	if rec.File == "" {
		return nil
	}
	if err := os.Remove(rec.File); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", rec.File, err)
	}
	s.log.Debug("record removed", zap.String("id", rec.ID), zap.String("file", rec.File))
	return nil
}

// WriteAll writes every record and returns how many files changed. Failures
// do not stop the remaining writes; they are combined into one error.
func (s *Store) WriteAll(recs []*record.Record) (int, error) {
	var errs error
	written := 0
	for _, rec := range recs {
		ok, err := s.Write(rec, "")
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if ok {
			written++
		}
	}
	return written, errs
}

// RemoveAll removes every record's file, combining failures.
func (s *Store) RemoveAll(recs []*record.Record) error {
	var errs error
	for _, rec := range recs {
		errs = multierr.Append(errs, s.Remove(rec))
	}
	return errs
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".packforge-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
