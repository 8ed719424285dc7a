// Related: internal/migrate/rating.go
// Tags: migrate, rating, armour, annotation
package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatingMigrator(t *testing.T) {
	tests := map[string]struct {
		system  string
		zones   string
		notes   string
		flagged bool
	}{
		"bare number broadcasts to all": {
			system: `{"ap":4}`,
			zones:  `{"head":4,"body":4,"leftArm":4,"rightArm":4,"leftLeg":4,"rightLeg":4}`,
			notes:  "<missing>",
		},
		"bare number respects canonical coverage": {
			system: `{"coverage":["body","leftArm","rightArm"],"ap":5}`,
			zones:  `{"head":0,"body":5,"leftArm":5,"rightArm":5,"leftLeg":0,"rightLeg":0}`,
			notes:  "<missing>",
		},
		"numeric string respects legacy coverage": {
			system: `{"locations":"Body","ap":"3"}`,
			zones:  `{"head":0,"body":3,"leftArm":0,"rightArm":0,"leftLeg":0,"rightLeg":0}`,
			notes:  "<missing>",
		},
		"four tuple": {
			system: `{"ap":"10/8/6/4"}`,
			zones:  `{"head":10,"body":8,"leftArm":6,"rightArm":6,"leftLeg":4,"rightLeg":4}`,
			notes:  "<missing>",
		},
		"six tuple": {
			system: `{"ap":"1/2/3/4/5/6"}`,
			zones:  `{"head":1,"body":2,"leftArm":3,"rightArm":4,"leftLeg":5,"rightLeg":6}`,
			notes:  "<missing>",
		},
		"array tuple": {
			system: `{"ap":[2,3,1,1]}`,
			zones:  `{"head":2,"body":3,"leftArm":1,"rightArm":1,"leftLeg":1,"rightLeg":1}`,
			notes:  "<missing>",
		},
		"partial object adopted": {
			system: `{"ap":{"head":2,"body":5,"arms":3}}`,
			zones:  `{"head":2,"body":5,"leftArm":3,"rightArm":3,"leftLeg":0,"rightLeg":0}`,
			notes:  "<missing>",
		},
		"percentage preserved": {
			system:  `{"ap":"75%"}`,
			zones:   `{"head":0,"body":0,"leftArm":0,"rightArm":0,"leftLeg":0,"rightLeg":0}`,
			notes:   "[AP: 75%]",
			flagged: true,
		},
		"sentinel appended to existing notes": {
			system:  `{"notes":"Force field.","ap":"Special"}`,
			zones:   `{"head":0,"body":0,"leftArm":0,"rightArm":0,"leftLeg":0,"rightLeg":0}`,
			notes:   "Force field. [AP: Special]",
			flagged: true,
		},
		"five tuple is ambiguous": {
			system:  `{"ap":"1/2/3/4/5"}`,
			zones:   `{"head":0,"body":0,"leftArm":0,"rightArm":0,"leftLeg":0,"rightLeg":0}`,
			notes:   "[AP: 1/2/3/4/5]",
			flagged: true,
		},
		"infinity text is ambiguous": {
			system:  `{"ap":"inf"}`,
			zones:   `{"head":0,"body":0,"leftArm":0,"rightArm":0,"leftLeg":0,"rightLeg":0}`,
			notes:   "[AP: inf]",
			flagged: true,
		},
		"NaN text is ambiguous": {
			system:  `{"ap":"NaN"}`,
			zones:   `{"head":0,"body":0,"leftArm":0,"rightArm":0,"leftLeg":0,"rightLeg":0}`,
			notes:   "[AP: NaN]",
			flagged: true,
		},
		"spelled infinity is ambiguous": {
			system:  `{"ap":"Infinity"}`,
			zones:   `{"head":0,"body":0,"leftArm":0,"rightArm":0,"leftLeg":0,"rightLeg":0}`,
			notes:   "[AP: Infinity]",
			flagged: true,
		},
		"infinity inside tuple is ambiguous": {
			system:  `{"ap":"1/Inf/2/3"}`,
			zones:   `{"head":0,"body":0,"leftArm":0,"rightArm":0,"leftLeg":0,"rightLeg":0}`,
			notes:   "[AP: 1/Inf/2/3]",
			flagged: true,
		},
		"bool is ambiguous": {
			system:  `{"ap":true}`,
			zones:   `{"head":0,"body":0,"leftArm":0,"rightArm":0,"leftLeg":0,"rightLeg":0}`,
			notes:   "[AP: true]",
			flagged: true,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			rec := parseRecord(t, `{"_id":"a1","name":"Test","type":"armour","system":`+tc.system+`}`)
			out := apply(t, newRatingMigrator(), rec)

			assert.Equal(t, tc.zones, field(t, rec, "system.armourPoints"))
			assert.Equal(t, "<missing>", field(t, rec, "system.ap"))
			assert.Equal(t, tc.notes, field(t, rec, "system.notes"))
			assert.Equal(t, tc.flagged, len(out.Diagnostics()) > 0, messages(out.Diagnostics()))
		})
	}
}

func TestRatingMigrator_NonFiniteTextStaysEncodable(t *testing.T) {
	for _, ap := range []string{"inf", "-Inf", "NaN", "infinity", "1e400"} {
		ap := ap
		t.Run(ap, func(t *testing.T) {
			t.Parallel()
			rec := parseRecord(t, `{"_id":"a1","name":"Test","type":"armour","system":{"ap":"`+ap+`"}}`)
			out := apply(t, newRatingMigrator(), rec)

			assert.NotEmpty(t, out.Diagnostics())
			assert.Contains(t, encoded(t, rec), `"[AP: `+ap+`]"`)
		})
	}
}

func TestRatingMigrator_NonTextNotes(t *testing.T) {
	t.Parallel()

	rec := parseRecord(t, `{"_id":"a1","type":"armour","system":{"notes":{"gm":"x"},"ap":"*"}}`)
	out := apply(t, newRatingMigrator(), rec)

	assert.Equal(t, `{"gm":"x"}`, field(t, rec, "system.notes"))
	assert.Equal(t, "[AP: *]", field(t, rec, "system.migrationNotes"))
	assert.Len(t, out.Diagnostics(), 2)
}
