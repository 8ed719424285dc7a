// Package loader enumerates a content directory and parses every record file.
//
// Loading is fail-open: a file that cannot be read or parsed is reported as a
// ParseError diagnostic and excluded, and the rest of the directory still
// loads. Only a root directory that cannot be enumerated is fatal.
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/grimdark-vtt/packforge/internal/diag"
	"github.com/grimdark-vtt/packforge/internal/record"
	"go.uber.org/zap"
)

// Stage is the diagnostic stage name used by the loader.
const Stage = "loader"

// DefaultInclude matches every JSON file below the root.
var DefaultInclude = []string{"**/*.json"}

// Options narrows which files are loaded. Patterns use doublestar syntax and
// are matched against slash-separated paths relative to the root.
type Options struct {
	Include []string
	Exclude []string
	Logger  *zap.Logger
}

// Result is the outcome of loading one directory.
type Result struct {
	Root    string
	Records []*record.Record
	// Failures holds one ParseError diagnostic per excluded file.
	Failures []diag.Diagnostic
}

// Load reads every matching record below dir in lexical path order.
func Load(dir string, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	include := opts.Include
	if len(include) == 0 {
		include = DefaultInclude
	}
	if err := validatePatterns(include, opts.Exclude); err != nil {
		return nil, err
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening content directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content path %s is not a directory", dir)
	}
	if _, err := os.ReadDir(dir); err != nil {
		return nil, fmt.Errorf("enumerating content directory: %w", err)
	}

	res := &Result{Root: dir}
	seen := make(map[string]string)

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			res.fail(path, fmt.Sprintf("cannot read: %v", err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !matchesAny(include, rel) || matchesAny(opts.Exclude, rel) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			res.fail(path, fmt.Sprintf("cannot read: %v", err))
			return nil
		}
		rec, err := record.Parse(data)
		if err != nil {
			log.Debug("skipping unparseable record", zap.String("file", path), zap.Error(err))
			res.fail(path, err.Error())
			return nil
		}
		rec.File = path

		if first, dup := seen[rec.ID]; dup {
			res.Failures = append(res.Failures, diag.Diagnostic{
				Category: diag.ParseError,
				Stage:    Stage,
				File:     path,
				RecordID: rec.ID,
				Message:  fmt.Sprintf("duplicate id, already loaded from %s", first),
			})
			return nil
		}
		seen[rec.ID] = path
		res.Records = append(res.Records, rec)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("enumerating content directory: %w", walkErr)
	}

	log.Debug("content loaded",
		zap.String("dir", dir),
		zap.Int("records", len(res.Records)),
		zap.Int("failures", len(res.Failures)))
	return res, nil
}

func (r *Result) fail(path, msg string) {
	r.Failures = append(r.Failures, diag.Diagnostic{
		Category: diag.ParseError,
		Stage:    Stage,
		File:     path,
		Message:  msg,
	})
}

// ByKind returns the loaded records of one kind.
func (r *Result) ByKind(kind string) []*record.Record {
	var out []*record.Record
	for _, rec := range r.Records {
		if rec.Kind == kind {
			out = append(out, rec)
		}
	}
	return out
}

func validatePatterns(groups ...[]string) error {
	for _, g := range groups {
		for _, p := range g {
			if !doublestar.ValidatePattern(p) {
				return fmt.Errorf("invalid file pattern %q", p)
			}
		}
	}
	return nil
}

func matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
