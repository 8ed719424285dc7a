package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "packforge"

// Registry builds a registry holding the summary as gauges. Every series
// carries the command as a constant label.
func Registry(s *Summary) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"command": s.Command}
	gaugeVec := func(name, help string, label string) *prometheus.GaugeVec {
		g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}, []string{label})
		reg.MustRegister(g)
		return g
	}
	gauge := func(name, help string) prometheus.Gauge {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
		reg.MustRegister(g)
		return g
	}

	records := gaugeVec("records", "Records by pipeline state.", "state")
	records.WithLabelValues("loaded").Set(float64(s.Loaded))
	records.WithLabelValues("rejected").Set(float64(s.ParseFailures))
	records.WithLabelValues("modified").Set(float64(s.Modified))
	records.WithLabelValues("unchanged").Set(float64(s.Unchanged))
	records.WithLabelValues("written").Set(float64(s.Written))
	records.WithLabelValues("discarded").Set(float64(s.Discarded))

	if len(s.Migrators) > 0 {
		applied := gaugeVec("migrator_applied", "Records each migrator rewrote.", "migrator")
		flagged := gaugeVec("migrator_flagged", "Ambiguities each migrator flagged.", "migrator")
		for name, st := range s.Migrators {
			applied.WithLabelValues(name).Set(float64(st.Applied))
			flagged.WithLabelValues(name).Set(float64(st.Flagged))
		}
	}
	if len(s.Tallies) > 0 {
		classified := gaugeVec("classification", "Classification labels by resolution.", "source")
		for label, n := range s.Tallies {
			classified.WithLabelValues(label).Set(float64(n))
		}
	}
	if len(s.Tiers) > 0 {
		tiers := gaugeVec("tier", "Rarity and craftsmanship labels by resolution.", "source")
		for label, n := range s.Tiers {
			tiers.WithLabelValues(label).Set(float64(n))
		}
	}
	if c := s.Consolidation; c != nil {
		cons := gaugeVec("consolidation", "Consolidation groups and members.", "state")
		cons.WithLabelValues("groups").Set(float64(c.Groups))
		cons.WithLabelValues("members").Set(float64(c.Members))
		cons.WithLabelValues("incomplete").Set(float64(c.Gaps))
		cons.WithLabelValues("written").Set(float64(c.Written))
		cons.WithLabelValues("removed").Set(float64(c.Removed))
	}
	if v := s.Validation; v != nil {
		val := gaugeVec("validation", "Validation results.", "state")
		val.WithLabelValues("checked").Set(float64(v.Checked))
		val.WithLabelValues("valid").Set(float64(v.Valid))
		val.WithLabelValues("invalid").Set(float64(v.Invalid))
		val.WithLabelValues("unchecked").Set(float64(v.Unchecked))
		val.WithLabelValues("errors").Set(float64(v.TotalErrors))
		val.WithLabelValues("warnings").Set(float64(v.TotalWarnings))
	}

	diags := gaugeVec("diagnostics", "Diagnostics raised by category.", "category")
	for name, n := range s.Counts {
		diags.WithLabelValues(name).Set(float64(n))
	}
	gauge("exit_code", "Exit code of the last run.").Set(float64(s.ExitCode))
	gauge("last_run_timestamp_seconds", "Start time of the last run.").Set(float64(s.StartedAt.Unix()))
	return reg
}

// WriteMetrics writes the summary to path in the Prometheus text format,
// replacing the file atomically.
func WriteMetrics(path string, s *Summary) error {
	if err := prometheus.WriteToTextfile(path, Registry(s)); err != nil {
		return fmt.Errorf("writing metrics file: %w", err)
	}
	return nil
}
