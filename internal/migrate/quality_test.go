// Related: internal/migrate/quality.go
// Tags: migrate, quality, slug, annotation
package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualityMigrator(t *testing.T) {
	tests := map[string]struct {
		name    string
		system  string
		want    string
		flagged bool
	}{
		"numeric rating": {
			name:   "Blast",
			system: `{"rating":3}`,
			want:   `{"level":3,"identifier":"blast","hasLevel":true}`,
		},
		"variable rating": {
			name:   "Felling (X)",
			system: `{"rating":"(X)"}`,
			want:   `{"level":null,"identifier":"felling-x","hasLevel":true}`,
		},
		"no rating": {
			name:   "Tearing",
			system: `{"description":"Rolls twice."}`,
			want:   `{"description":"Rolls twice.","identifier":"tearing"}`,
		},
		"empty rating": {
			name:   "Reliable",
			system: `{"rating":""}`,
			want:   `{"level":null,"identifier":"reliable","hasLevel":false}`,
		},
		"modifiers compressed": {
			name:   "Power Field",
			system: `{"notes":"Shatters weapons.","modifiers":{"damage":1,"penetration":2,"agility":-10,"range":0}}`,
			want:   `{"notes":"Shatters weapons. [Modifiers: damage +1, penetration +2, agility -10]","identifier":"power-field"}`,
		},
		"text rating kept": {
			name:    "Haywire",
			system:  `{"rating":"Special"}`,
			want:    `{"level":null,"identifier":"haywire","notes":"[Rating: Special]","hasLevel":true}`,
			flagged: true,
		},
		"infinite rating kept": {
			name:    "Haywire",
			system:  `{"rating":"inf"}`,
			want:    `{"level":null,"identifier":"haywire","notes":"[Rating: inf]","hasLevel":true}`,
			flagged: true,
		},
		"NaN rating kept": {
			name:    "Haywire",
			system:  `{"rating":"(NaN)"}`,
			want:    `{"level":null,"identifier":"haywire","notes":"[Rating: (NaN)]","hasLevel":true}`,
			flagged: true,
		},
		"empty slug uses id": {
			name:    "???",
			system:  `{}`,
			want:    `{"identifier":"q1"}`,
			flagged: true,
		},
		"identifier kept": {
			name:   "Accurate",
			system: `{"identifier":"accurate-custom","rating":1}`,
			want:   `{"identifier":"accurate-custom","level":1,"hasLevel":true}`,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			rec := parseRecord(t, `{"_id":"Q1","name":"`+tc.name+`","type":"quality","system":`+tc.system+`}`)
			out := apply(t, newQualityMigrator(), rec)

			assert.Equal(t, tc.want, field(t, rec, "system"))
			assert.Equal(t, tc.flagged, len(out.Diagnostics()) > 0, messages(out.Diagnostics()))
		})
	}
}

func TestModifiersNote(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", modifiersNote(nil))
	assert.Equal(t, "[Modifiers: +2 damage]", modifiersNote("+2 damage"))
}
