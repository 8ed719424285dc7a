// Related: internal/tables/tables.go, internal/tables/family.go
// Tags: tables, classification, lookup, domains
package tables

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Loads(t *testing.T) {
	t.Parallel()

	tb, err := Default()
	require.NoError(t, err)

	assert.NotEmpty(t, tb.FamiliesFor(ConcernClassification))
	assert.NotEmpty(t, tb.FamiliesFor(ConcernTier))
	_, ok := tb.Family("damage-type")
	assert.True(t, ok)
	require.Len(t, tb.Consolidation, 1)
	assert.Equal(t, "critical", tb.Consolidation[0].Kind)
}

func TestFamily_Resolve(t *testing.T) {
	tb, err := Default()
	require.NoError(t, err)
	weapon, ok := tb.Family("weapon-type")
	require.True(t, ok)

	tests := map[string]struct {
		label  string
		token  string
		source Source
	}{
		"direct exact":           {label: "Las", token: "las", source: SourceDirect},
		"direct case and spaces": {label: "  Solid   PROJECTILE ", token: "solidProjectile", source: SourceDirect},
		"keyword xenos":          {label: "Exotic - Ork", token: "xenos", source: SourceKeyword},
		"keyword before exotic":  {label: "Exotic (Eldar)", token: "xenos", source: SourceKeyword},
		"keyword whole word":     {label: "Hellgun pattern", token: "las", source: SourceKeyword},
		"keyword substring":      {label: "Plasmagun", token: "plasma", source: SourceKeyword},
		"ork does not match fork": {label: "Pitch fork", token: "", source: SourceUnresolved},
		"empty":                  {label: "", token: "", source: SourceUnresolved},
		"unknown":                {label: "Grav", token: "", source: SourceUnresolved},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			token, source := weapon.Resolve(tc.label)
			assert.Equal(t, tc.token, token)
			assert.Equal(t, tc.source, source)
		})
	}
}

func TestTables_Characteristic(t *testing.T) {
	tb, err := Default()
	require.NoError(t, err)

	tests := map[string]struct {
		label string
		token string
		ok    bool
	}{
		"abbreviation":  {label: "Ag", token: "agility", ok: true},
		"parenthesised": {label: "(WP)", token: "willpower", ok: true},
		"long name":     {label: "Ballistic Skill", token: "ballisticSkill", ok: true},
		"unknown":       {label: "Luck", ok: false},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			token, ok := tb.Characteristic(tc.label)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.token, token)
		})
	}
}

func TestDomain(t *testing.T) {
	t.Run("range", func(t *testing.T) {
		t.Parallel()
		from, to := 1, 3
		keys, err := Domain{From: &from, To: &to}.Expand()
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2", "3"}, keys)
	})

	t.Run("inverted range", func(t *testing.T) {
		t.Parallel()
		from, to := 5, 1
		_, err := Domain{From: &from, To: &to}.Expand()
		assert.Error(t, err)
	})

	t.Run("sequence shorthand", func(t *testing.T) {
		t.Parallel()
		tb, err := Parse([]byte(`
characteristics: {ag: agility}
skill_default: agility
consolidation:
  - kind: critical
    category: system.damageType
    subcategory: system.location
    variant: system.severity
    domains:
      psychic: [minor, major]
`), "inline")
		require.NoError(t, err)
		keys, ok := tb.Consolidation[0].DomainFor("Psychic")
		require.True(t, ok)
		assert.Equal(t, []string{"minor", "major"}, keys)
		_, ok = tb.Consolidation[0].DomainFor("impact")
		assert.False(t, ok)
	})
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"bad concern": `
characteristics: {ag: agility}
skill_default: agility
families:
  - {name: x, concern: colour, kinds: [weapon], legacy: system.a, canonical: system.b}
`,
		"bad path": `
characteristics: {ag: agility}
skill_default: agility
families:
  - {name: x, concern: tier, kinds: [weapon], legacy: "system..a", canonical: system.b}
`,
		"empty rule": `
characteristics: {ag: agility}
skill_default: agility
families:
  - name: x
    concern: tier
    kinds: [weapon]
    legacy: system.a
    canonical: system.b
    rules:
      - token: y
`,
		"missing skill default": `
characteristics: {ag: agility}
`,
		"duplicate family": `
characteristics: {ag: agility}
skill_default: agility
families:
  - {name: x, concern: tier, kinds: [weapon], legacy: system.a, canonical: system.b}
  - {name: x, concern: tier, kinds: [weapon], legacy: system.c, canonical: system.d}
`,
		"domains differing only in case": `
characteristics: {ag: agility}
skill_default: agility
consolidation:
  - kind: critical
    category: system.damageType
    subcategory: system.location
    variant: system.severity
    domains:
      Impact: [a, b]
      impact: {from: 1, to: 10}
`,
		"domains differing only in spacing": `
characteristics: {ag: agility}
skill_default: agility
consolidation:
  - kind: critical
    category: system.damageType
    subcategory: system.location
    variant: system.severity
    domains:
      "warp fire": [a]
      "Warp  Fire": [b]
`,
	}

	for name, doc := range tests {
		name, doc := name, doc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(doc), name)
			assert.Error(t, err)
		})
	}
}

func TestLoad_FromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
characteristics: {ag: agility}
skill_default: agility
`), 0644))

	tb, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "agility", tb.SkillDefault)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
