// Related: internal/consolidate/engine.go, internal/consolidate/apply.go
// Tags: consolidate, completeness, determinism, dry-run
package consolidate

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/grimdark-vtt/packforge/internal/diag"
	"github.com/grimdark-vtt/packforge/internal/loader"
	"github.com/grimdark-vtt/packforge/internal/record"
	"github.com/grimdark-vtt/packforge/internal/store"
	"github.com/grimdark-vtt/packforge/internal/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	tb, err := tables.Default()
	require.NoError(t, err)
	return New(tb.Consolidation, zaptest.NewLogger(t))
}

// writeCriticals writes one single-severity critical record per severity.
func writeCriticals(t *testing.T, dir, category, location string, severities ...int) {
	t.Helper()
	sub := filepath.Join(dir, "criticals")
	require.NoError(t, os.MkdirAll(sub, 0755))
	for _, s := range severities {
		doc := fmt.Sprintf(`{
  "_id": "%s%s%02d",
  "name": "%s %s %d",
  "type": "critical",
  "system": {
    "damageType": "%s",
    "location": "%s",
    "severity": %d,
    "effect": "Effect %d."
  }
}
`, category[:1], location[:1], s, category, location, s, category, location, s, s)
		name := fmt.Sprintf("%s_%s_%02d.json", category, location, s)
		require.NoError(t, os.WriteFile(filepath.Join(sub, name), []byte(doc), 0644))
	}
}

func load(t *testing.T, dir string) []*record.Record {
	t.Helper()
	res, err := loader.Load(dir, loader.Options{})
	require.NoError(t, err)
	require.Empty(t, res.Failures)
	return res.Records
}

func severities(from, to int) []int {
	var out []int
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func keys(from, to int) []string {
	var out []string
	for i := from; i <= to; i++ {
		out = append(out, fmt.Sprint(i))
	}
	return out
}

func TestPlan_ScenarioC_Complete(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCriticals(t, dir, "Impact", "Head", severities(1, 10)...)

	plan := newEngine(t).Plan(load(t, dir))
	require.Len(t, plan.Groups, 1)
	g := plan.Groups[0]

	assert.Equal(t, Key{Category: "impact", Subcategory: "head"}, g.Key)
	assert.Equal(t, keys(1, 10), g.Variants)
	assert.True(t, g.Complete())
	assert.Len(t, g.Members, 10)
	assert.Equal(t, "Impact Critical Effects - Head", g.Name)
	assert.Equal(t, GroupID("critical", "impact", "head"), g.ID)
	assert.Zero(t, plan.Gaps())
	assert.Zero(t, plan.Diag.Len())

	v, ok := record.MustPath("system.variants.3").Lookup(g.Record.Doc)
	require.True(t, ok)
	assert.Equal(t, `{"name":"Impact Head 3","effect":"Effect 3."}`, record.Text(v))
}

func TestPlan_ScenarioC_MissingKey(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCriticals(t, dir, "Impact", "Head", severities(1, 10)...)
	require.NoError(t, os.Remove(filepath.Join(dir, "criticals", "Impact_Head_07.json")))

	plan := newEngine(t).Plan(load(t, dir))
	require.Len(t, plan.Groups, 1)
	g := plan.Groups[0]

	assert.Equal(t, []string{"7"}, g.Missing)
	assert.Equal(t, 1, plan.Gaps())
	gaps := plan.Diag.Filter(diag.ConsolidationGap)
	require.Len(t, gaps, 1)
	assert.Equal(t, "7", gaps[0].Value)
	assert.Equal(t, g.ID, gaps[0].RecordID)
}

func TestPlan_GroupsByNormalizedKey(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCriticals(t, dir, "Energy", "Arm", 1, 2)
	writeCriticals(t, dir, "energy", "arm ", 3)
	writeCriticals(t, dir, "Rending", "Body", 1)

	plan := newEngine(t).Plan(load(t, dir))
	require.Len(t, plan.Groups, 2)
	assert.Equal(t, "energy", plan.Groups[0].Key.Category)
	assert.Equal(t, []string{"1", "2", "3"}, plan.Groups[0].Variants)
	assert.Equal(t, "rending", plan.Groups[1].Key.Category)
}

func TestPlan_DuplicateAndExtraKeys(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCriticals(t, dir, "Impact", "Leg", severities(1, 10)...)
	writeCriticals(t, dir, "Impact", "Leg", 11)
	dup := `{"_id":"dup3","name":"Impact Leg 3 (alt)","type":"critical","system":{"damageType":"Impact","location":"Leg","severity":3}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "criticals", "zz_dup.json"), []byte(dup), 0644))

	plan := newEngine(t).Plan(load(t, dir))
	require.Len(t, plan.Groups, 1)
	g := plan.Groups[0]

	assert.Equal(t, append(keys(1, 10), "11"), g.Variants)
	assert.Equal(t, []string{"11"}, g.Extra)
	require.Len(t, g.Duplicates, 1)
	assert.Equal(t, "dup3", g.Duplicates[0].ID)
	assert.Len(t, g.Members, 11)
	assert.Equal(t, 2, plan.Diag.Count(diag.MigrationAmbiguity))
	assert.True(t, g.Complete())
}

func TestPlan_MemberWithoutCategory(t *testing.T) {
	t.Parallel()

	rec, err := record.Parse([]byte(`{"_id":"x","type":"critical","system":{"severity":1}}`))
	require.NoError(t, err)

	plan := newEngine(t).Plan([]*record.Record{rec})
	assert.Empty(t, plan.Groups)
	assert.Equal(t, 1, plan.Diag.Count(diag.MigrationAmbiguity))
}

func TestApply_LiveRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCriticals(t, dir, "Impact", "Head", severities(1, 10)...)
	e := newEngine(t)
	st := store.New(dir, zaptest.NewLogger(t))

	plan := e.Plan(load(t, dir))
	out, err := e.Apply(plan, st, false)
	require.NoError(t, err)
	assert.Equal(t, &Outcome{Groups: 1, Members: 10, Written: 1, Removed: 10}, out)

	entries, err := os.ReadDir(filepath.Join(dir, "criticals"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	id := GroupID("critical", "impact", "head")
	assert.Equal(t, "impact-critical-effects-head_"+id+".json", entries[0].Name())

	// A second pass finds the consolidated record complete and rewrites nothing.
	again := e.Plan(load(t, dir))
	require.Len(t, again.Groups, 1)
	assert.True(t, again.Groups[0].Complete())
	assert.NotNil(t, again.Groups[0].Base)
	out, err = e.Apply(again, st, false)
	require.NoError(t, err)
	assert.Zero(t, out.Written)
	assert.Zero(t, out.Removed)
}

func TestApply_Deterministic(t *testing.T) {
	t.Parallel()

	run := func() (string, []byte) {
		dir := t.TempDir()
		writeCriticals(t, dir, "Explosive", "Body", severities(1, 10)...)
		e := newEngine(t)
		_, err := e.Apply(e.Plan(load(t, dir)), store.New(dir, nil), false)
		require.NoError(t, err)
		entries, err := os.ReadDir(filepath.Join(dir, "criticals"))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		data, err := os.ReadFile(filepath.Join(dir, "criticals", entries[0].Name()))
		require.NoError(t, err)
		return entries[0].Name(), data
	}

	name1, data1 := run()
	name2, data2 := run()
	assert.Equal(t, name1, name2)
	if diff := cmp.Diff(string(data1), string(data2)); diff != "" {
		t.Errorf("payload differs between runs (-first +second):\n%s", diff)
	}
}

func TestApply_DryRunMatchesLiveRendering(t *testing.T) {
	t.Parallel()

	dryDir, liveDir := t.TempDir(), t.TempDir()
	for _, dir := range []string{dryDir, liveDir} {
		writeCriticals(t, dir, "Impact", "Head", 1, 2, 3, 4, 5, 6, 8, 9, 10)
	}
	e := newEngine(t)

	render := func(dir string, dryRun bool) string {
		plan := e.Plan(load(t, dir))
		_, err := e.Apply(plan, store.New(dir, nil), dryRun)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, plan.Render(&buf))
		return buf.String()
	}

	dry := render(dryDir, true)
	live := render(liveDir, false)
	assert.Equal(t, dry, live)
	assert.Contains(t, dry, "missing:  7")

	entries, err := os.ReadDir(filepath.Join(dryDir, "criticals"))
	require.NoError(t, err)
	assert.Len(t, entries, 9, "dry run must not touch files")
}

func TestPlan_Records(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCriticals(t, dir, "Impact", "Head", 1, 2, 3)
	other := `{"_id":"g1","name":"Rope","type":"gear","system":{}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rope.json"), []byte(other), 0644))

	recs := load(t, dir)
	require.Len(t, recs, 4)
	plan := newEngine(t).Plan(recs)
	require.Len(t, plan.Groups, 1)

	out := plan.Records(recs)
	require.Len(t, out, 2)
	assert.Same(t, plan.Groups[0].Record, out[0])
	assert.Equal(t, "g1", out[1].ID)
}

func TestGroupID(t *testing.T) {
	t.Parallel()

	id := GroupID("critical", "impact", "head")
	assert.Len(t, id, IDLength)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-z]{16}$`), id)
	assert.Equal(t, id, GroupID("critical", "impact", "head"))
	assert.NotEqual(t, id, GroupID("critical", "impact", "body"))
	assert.NotEqual(t, id, GroupID("critical", "impacthead", ""))
}
