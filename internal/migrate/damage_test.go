// Related: internal/migrate/damage.go
// Tags: migrate, damage, weapon
package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDamageMigrator(t *testing.T) *damageMigrator {
	t.Helper()
	fam, ok := defaultTables(t).Family("damage-type")
	require.True(t, ok)
	return newDamageMigrator(fam)
}

func TestDamageMigrator(t *testing.T) {
	tests := map[string]struct {
		system  string
		damage  string
		flagged bool
	}{
		"spaced suffix": {
			system: `{"damage":"1d10+3 E","penetration":0}`,
			damage: `{"formula":"1d10+3","type":"energy"}`,
		},
		"compact suffix": {
			system: `{"damage":"2d10R"}`,
			damage: `{"formula":"2d10","type":"rending"}`,
		},
		"separate field": {
			system: `{"damage":"1d10+2","damageType":"Explosive"}`,
			damage: `{"formula":"1d10+2","type":"explosive"}`,
		},
		"word suffix": {
			system: `{"damage":"1d5 Impact"}`,
			damage: `{"formula":"1d5","type":"impact"}`,
		},
		"number without type defaults": {
			system:  `{"damage":5}`,
			damage:  `{"formula":"5","type":"impact"}`,
			flagged: true,
		},
		"unknown type defaults": {
			system:  `{"damage":"1d10","damageType":"Warp"}`,
			damage:  `{"formula":"1d10","type":"impact"}`,
			flagged: true,
		},
		"partial object completed": {
			system: `{"damage":{"formula":"1d10"},"damageType":"R"}`,
			damage: `{"formula":"1d10","type":"rending"}`,
		},
		"type only": {
			system:  `{"damageType":"E"}`,
			damage:  `{"formula":"","type":"energy"}`,
			flagged: true,
		},
		"suffix and field disagree": {
			system:  `{"damage":"1d10 E","damageType":"Rending"}`,
			damage:  `{"formula":"1d10","type":"rending"}`,
			flagged: true,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			rec := parseRecord(t, `{"_id":"w1","name":"Gun","type":"weapon","system":`+tc.system+`}`)
			out := apply(t, newTestDamageMigrator(t), rec)

			assert.Equal(t, tc.damage, field(t, rec, "system.damage"))
			assert.Equal(t, "<missing>", field(t, rec, "system.damageType"))
			assert.Equal(t, tc.flagged, len(out.Diagnostics()) > 0, messages(out.Diagnostics()))
		})
	}
}

func TestDamageMigrator_CanonicalNotPending(t *testing.T) {
	t.Parallel()

	rec := parseRecord(t, `{"_id":"w1","type":"weapon","system":{"damage":{"formula":"1d10","type":"energy"}}}`)
	assert.False(t, newTestDamageMigrator(t).Pending(rec.Doc))
}
