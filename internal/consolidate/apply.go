package consolidate

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/grimdark-vtt/packforge/internal/record"
	"github.com/grimdark-vtt/packforge/internal/store"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Outcome counts what Apply did.
type Outcome struct {
	Groups  int  `json:"groups" yaml:"groups"`
	Members int  `json:"members" yaml:"members"`
	Gaps    int  `json:"gaps" yaml:"gaps"`
	Written int  `json:"written" yaml:"written"`
	Removed int  `json:"removed" yaml:"removed"`
	DryRun  bool `json:"dry_run" yaml:"dry_run"`
}

// Apply writes each synthesized record and removes its members. A dry run
// writes and removes nothing. Members are only removed once their
// consolidated record is safely written; failures are collected per group.
func (e *Engine) Apply(plan *Plan, st *store.Store, dryRun bool) (*Outcome, error) {
	out := &Outcome{Groups: len(plan.Groups), Members: plan.Members(), Gaps: plan.Gaps(), DryRun: dryRun}
	if dryRun {
		return out, nil
	}

	var errs error
	for _, g := range plan.Groups {
		dir := ""
		if len(g.Members) > 0 && g.Members[0].File != "" {
			dir = filepath.Dir(g.Members[0].File)
		}
		wrote, err := st.Write(g.Record, dir)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("group %s: %w", g.Key, err))
			continue
		}
		if wrote {
			out.Written++
		}
		for _, m := range g.Members {
			if m.File == g.Record.File {
				continue
			}
			if err := st.Remove(m); err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			out.Removed++
		}
		e.log.Info("group consolidated",
			zap.String("kind", g.Spec.Kind),
			zap.String("group", g.Key.String()),
			zap.String("id", g.ID),
			zap.Int("members", len(g.Members)),
			zap.Strings("missing", g.Missing))
	}
	return out, errs
}

// Records returns recs as they stand once the plan is applied: each group's
// members and base give way to the consolidated record, which takes the
// position of the first of them. Other records keep their order.
func (p *Plan) Records(recs []*record.Record) []*record.Record {
	owner := map[*record.Record]*Group{}
	for _, g := range p.Groups {
		for _, m := range g.Members {
			owner[m] = g
		}
		if g.Base != nil {
			owner[g.Base] = g
		}
	}
	emitted := map[*Group]bool{}
	out := make([]*record.Record, 0, len(recs))
	for _, rec := range recs {
		g, ok := owner[rec]
		if !ok {
			out = append(out, rec)
			continue
		}
		if !emitted[g] {
			emitted[g] = true
			out = append(out, g.Record)
		}
	}
	return out
}

// Render writes the plan as text. The output depends only on the plan, so a
// dry run and a live run over the same corpus render identically.
func (p *Plan) Render(w io.Writer) error {
	var b strings.Builder
	for _, g := range p.Groups {
		fmt.Fprintf(&b, "%s %s -> %s %q\n", g.Spec.Kind, g.Key, g.ID, g.Name)
		fmt.Fprintf(&b, "  members:  %d\n", len(g.Members))
		fmt.Fprintf(&b, "  variants: %s\n", listOrNone(g.Variants))
		if !g.Checked {
			b.WriteString("  domain:   not declared\n")
		} else if len(g.Missing) > 0 {
			fmt.Fprintf(&b, "  missing:  %s\n", strings.Join(g.Missing, ", "))
		}
		if len(g.Extra) > 0 {
			fmt.Fprintf(&b, "  extra:    %s\n", strings.Join(g.Extra, ", "))
		}
		for _, d := range g.Duplicates {
			fmt.Fprintf(&b, "  duplicate: %s [%s]\n", d.File, d.ID)
		}
	}
	fmt.Fprintf(&b, "%d groups, %d members, %d incomplete\n", len(p.Groups), p.Members(), p.Gaps())
	_, err := io.WriteString(w, b.String())
	return err
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
