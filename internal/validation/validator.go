// Package validation checks canonical records against declared rules.
//
// Validation is read-only. Rule violations are errors and mark the corpus
// invalid; legacy fields found next to their canonical replacement are
// warnings and do not.
package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/grimdark-vtt/packforge/internal/diag"
	"github.com/grimdark-vtt/packforge/internal/record"
	"go.uber.org/zap"
)

// Stage names the validator in diagnostics.
const Stage = "validate"

// DefaultMaxErrors caps the error detail kept in a report.
const DefaultMaxErrors = 50

// Report is the outcome of one validation pass.
type Report struct {
	Checked   int `json:"checked" yaml:"checked"`
	Valid     int `json:"valid" yaml:"valid"`
	Invalid   int `json:"invalid" yaml:"invalid"`
	Unchecked int `json:"unchecked" yaml:"unchecked"`
	// Errors holds at most the configured number of errors.
	Errors      []*ValidationError `json:"errors,omitempty" yaml:"errors,omitempty"`
	TotalErrors int                `json:"total_errors" yaml:"total_errors"`
	Truncated   bool               `json:"truncated" yaml:"truncated"`
	// Warnings counts legacy residue per "kind legacy-path".
	Warnings      map[string]int `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	TotalWarnings int            `json:"total_warnings" yaml:"total_warnings"`
	Passed        bool           `json:"passed" yaml:"passed"`

	diag diag.Log
}

// Diagnostics returns every error and warning, uncapped.
func (r *Report) Diagnostics() []diag.Diagnostic {
	return r.diag.Items()
}

func (r *Report) addError(e *ValidationError, max int) {
	r.TotalErrors++
	if max > 0 && len(r.Errors) >= max {
		r.Truncated = true
	} else {
		r.Errors = append(r.Errors, e)
	}
	r.diag.Add(diag.Diagnostic{
		Category: diag.ValidationError,
		Stage:    Stage,
		RecordID: e.RecordID,
		File:     e.File,
		Path:     e.Path,
		Value:    e.Actual,
		Message:  e.Message,
	})
}

// Validator applies rule sets by record kind.
type Validator struct {
	sets      map[string]RuleSet
	maxErrors int
	log       *zap.Logger
}

// New returns a validator. maxErrors <= 0 keeps every error.
func New(sets []RuleSet, maxErrors int, log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	v := &Validator{sets: make(map[string]RuleSet, len(sets)), maxErrors: maxErrors, log: log}
	for _, s := range sets {
		v.sets[s.Kind] = s
	}
	return v
}

// Kinds lists the kinds with a rule set, sorted.
func (v *Validator) Kinds() []string {
	out := make([]string, 0, len(v.sets))
	for k := range v.sets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Validate checks every record. Records of kinds without a rule set are
// counted as unchecked.
func (v *Validator) Validate(recs []*record.Record) *Report {
	r := &Report{Warnings: map[string]int{}}
	for _, rec := range recs {
		set, ok := v.sets[rec.Kind]
		if !ok {
			r.Unchecked++
			continue
		}
		r.Checked++
		errs := v.Check(set, rec)
		if len(errs) == 0 {
			r.Valid++
		} else {
			r.Invalid++
		}
		for _, e := range errs {
			r.addError(e, v.maxErrors)
		}
		for _, res := range set.Residue {
			if !res.Legacy.Present(rec.Doc) || !res.Canonical.Present(rec.Doc) {
				continue
			}
			r.Warnings[rec.Kind+" "+res.Legacy.String()]++
			r.TotalWarnings++
			r.diag.Add(diag.Diagnostic{
				Category: diag.ValidationWarning,
				Stage:    Stage,
				RecordID: rec.ID,
				File:     rec.File,
				Path:     res.Legacy.String(),
				Message:  fmt.Sprintf("legacy field remains next to %s", res.Canonical),
			})
		}
	}
	r.Passed = r.TotalErrors == 0
	v.log.Info("validation finished",
		zap.Int("checked", r.Checked),
		zap.Int("invalid", r.Invalid),
		zap.Int("errors", r.TotalErrors),
		zap.Int("warnings", r.TotalWarnings))
	return r
}

// Check applies one rule set to one record and returns every violation.
func (v *Validator) Check(set RuleSet, rec *record.Record) []*ValidationError {
	var errs []*ValidationError
	for _, rule := range set.Rules {
		if e := checkRule(rule, rec.Doc); len(e) > 0 {
			for _, err := range e {
				err.RecordID = rec.ID
				err.File = rec.File
				err.Kind = rec.Kind
				err.Rule = rule.Kind
				if err.Hint == "" {
					err.Hint = rule.Hint
				}
			}
			errs = append(errs, e...)
		}
	}
	return errs
}

func checkRule(rule Rule, doc *record.Object) []*ValidationError {
	val, err := rule.Path.Resolve(doc)
	missing := err != nil || val == nil

	switch rule.Kind {
	case RuleRequired:
		if !missing {
			return nil
		}
		msg := "required field is missing"
		var perr *record.PathError
		if errors.As(err, &perr) && errors.Is(err, record.ErrNotObject) {
			msg = fmt.Sprintf("required field is missing: %s is not an object", perr.Segment)
		} else if err == nil {
			msg = "required field is null"
		}
		return []*ValidationError{{Path: rule.Path.String(), Message: msg}}

	case RuleEnum:
		if missing {
			return nil
		}
		return checkEnum(rule, val)

	case RuleType:
		if missing {
			return nil
		}
		return checkType(rule, val)
	}
	return []*ValidationError{{Path: rule.Path.String(), Message: fmt.Sprintf("unknown rule kind %q", rule.Kind)}}
}

func checkEnum(rule Rule, val any) []*ValidationError {
	expected := strings.Join(rule.Domain, ", ")
	check := func(path string, v any) *ValidationError {
		s, ok := v.(string)
		if ok && contains(rule.Domain, s) {
			return nil
		}
		return &ValidationError{
			Path:     path,
			Message:  "value is not in the allowed set",
			Expected: "one of " + expected,
			Actual:   record.Text(v),
		}
	}

	if items, ok := val.([]any); ok {
		var errs []*ValidationError
		for i, item := range items {
			if e := check(fmt.Sprintf("%s[%d]", rule.Path, i), item); e != nil {
				errs = append(errs, e)
			}
		}
		return errs
	}
	if e := check(rule.Path.String(), val); e != nil {
		return []*ValidationError{e}
	}
	return nil
}

func checkType(rule Rule, val any) []*ValidationError {
	mismatch := func(msg string) []*ValidationError {
		return []*ValidationError{{
			Path:     rule.Path.String(),
			Message:  msg,
			Expected: string(rule.Type),
			Actual:   record.TypeName(val),
		}}
	}

	switch rule.Type {
	case FieldTypeString:
		if _, ok := val.(string); !ok {
			return mismatch("wrong type")
		}
	case FieldTypeNumber:
		if !record.IsNumber(val) {
			return mismatch("wrong type")
		}
	case FieldTypeBool:
		if _, ok := val.(bool); !ok {
			return mismatch("wrong type")
		}
	case FieldTypeArray:
		if _, ok := val.([]any); !ok {
			return mismatch("wrong type")
		}
	case FieldTypeObject:
		if _, ok := record.AsObject(val); !ok {
			return mismatch("wrong type")
		}
	case FieldTypeNumericObject:
		obj, ok := record.AsObject(val)
		if !ok {
			return mismatch("expected an object of numbers")
		}
		var errs []*ValidationError
		for _, f := range rule.Fields {
			if !obj.Has(f) {
				errs = append(errs, &ValidationError{
					Path:    rule.Path.Child(f).String(),
					Message: "numeric field is missing",
				})
			}
		}
		for _, k := range obj.Keys() {
			v, _ := obj.Get(k)
			if !record.IsNumber(v) {
				errs = append(errs, &ValidationError{
					Path:     rule.Path.Child(k).String(),
					Message:  "wrong type",
					Expected: string(FieldTypeNumber),
					Actual:   record.TypeName(v),
				})
			}
		}
		return errs
	default:
		return mismatch(fmt.Sprintf("unknown field type %q", rule.Type))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
