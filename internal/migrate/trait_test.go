// Related: internal/migrate/trait.go
// Tags: migrate, trait
package migrate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraitMigrator(t *testing.T) {
	tests := map[string]struct {
		level   string
		rating  string
		flagged bool
	}{
		"number":           {level: `4`, rating: `{"value":4,"text":"4","variable":false}`},
		"numeric string":   {level: `"3"`, rating: `{"value":3,"text":"3","variable":false}`},
		"variable parens":  {level: `"(X)"`, rating: `{"value":null,"text":"X","variable":true}`},
		"variable bare":    {level: `"x"`, rating: `{"value":null,"text":"X","variable":true}`},
		"multiplier":       {level: `"x2"`, rating: `{"value":2,"text":"x2","variable":false}`},
		"free text":        {level: `"Half Strength Bonus"`, rating: `{"value":null,"text":"Half Strength Bonus","variable":false}`},
		"empty":            {level: `""`, rating: `{"value":null,"text":"","variable":false}`},
		"null":             {level: `null`, rating: `{"value":null,"text":"","variable":false}`},
		"infinity is text": {level: `"Infinity"`, rating: `{"value":null,"text":"Infinity","variable":false}`},
		"NaN is text":      {level: `"(NaN)"`, rating: `{"value":null,"text":"NaN","variable":false}`},
		"bool":             {level: `true`, rating: `{"value":null,"text":"true","variable":false}`, flagged: true},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			rec := parseRecord(t, `{"_id":"t1","name":"Brutal Charge","type":"trait","system":{"level":`+tc.level+`}}`)
			out := apply(t, newTraitMigrator(), rec)

			assert.Equal(t, tc.rating, field(t, rec, "system.rating"))
			assert.Equal(t, "<missing>", field(t, rec, "system.level"))
			assert.Equal(t, tc.flagged, len(out.Diagnostics()) > 0, messages(out.Diagnostics()))
		})
	}
}

func TestTraitMigrator_OverflowingMultiplierIsText(t *testing.T) {
	t.Parallel()

	level := "x" + strings.Repeat("9", 400)
	rec := parseRecord(t, `{"_id":"t1","name":"Swarm","type":"trait","system":{"level":"`+level+`"}}`)
	apply(t, newTraitMigrator(), rec)

	assert.Equal(t, `{"value":null,"text":"`+level+`","variable":false}`, field(t, rec, "system.rating"))
	assert.NotEmpty(t, encoded(t, rec))
}
