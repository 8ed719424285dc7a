// Related: internal/record/object.go
// Tags: record, json, ordering, encoding
package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_PreservesKeyOrder(t *testing.T) {
	t.Parallel()

	doc, err := Decode([]byte(`{"z":1,"a":{"y":true,"b":null},"m":[1,"x",{"k":2.50}]}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"z", "a", "m"}, doc.Keys())
	inner, ok := doc.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"y", "b"}, inner.(*Object).Keys())

	out, err := Encode(doc)
	require.NoError(t, err)
	assert.Equal(t, `{
  "z": 1,
  "a": {
    "y": true,
    "b": null
  },
  "m": [
    1,
    "x",
    {
      "k": 2.50
    }
  ]
}
`, string(out))
}

func TestDecode_Rejects(t *testing.T) {
	tests := map[string]string{
		"array top level": `[1,2]`,
		"empty":           ``,
		"truncated":       `{"a":`,
		"trailing data":   `{"a":1} {"b":2}`,
		"scalar":          `"text"`,
	}

	for name, input := range tests {
		input := input
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestEncode_DoesNotEscapeHTML(t *testing.T) {
	t.Parallel()

	doc := NewObject()
	doc.Set("text", "<b>Tearing</b> & Proven")
	out, err := Encode(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<b>Tearing</b> & Proven")
}

func TestObject_Replace(t *testing.T) {
	t.Run("keeps position", func(t *testing.T) {
		t.Parallel()
		o := NewObject()
		o.Set("a", 1)
		o.Set("legacy", "x")
		o.Set("c", 3)

		o.Replace("legacy", "canonical", "y")

		assert.Equal(t, []string{"a", "canonical", "c"}, o.Keys())
		v, _ := o.Get("canonical")
		assert.Equal(t, "y", v)
		assert.False(t, o.Has("legacy"))
	})

	t.Run("absent old key appends", func(t *testing.T) {
		t.Parallel()
		o := NewObject()
		o.Set("a", 1)
		o.Replace("legacy", "canonical", 2)
		assert.Equal(t, []string{"a", "canonical"}, o.Keys())
	})

	t.Run("existing new key is not duplicated", func(t *testing.T) {
		t.Parallel()
		o := NewObject()
		o.Set("canonical", 0)
		o.Set("legacy", 1)
		o.Set("z", 2)
		o.Replace("legacy", "canonical", 5)
		assert.Equal(t, []string{"canonical", "z"}, o.Keys())
		v, _ := o.Get("canonical")
		assert.Equal(t, 5, v)
	})
}

func TestObject_CloneIsDeep(t *testing.T) {
	t.Parallel()

	doc, err := Decode([]byte(`{"system":{"list":[{"a":1}]}}`))
	require.NoError(t, err)
	c := doc.Clone()

	require.NoError(t, MustPath("system.extra").Set(c, true))
	list, _ := MustPath("system.list").Lookup(c)
	list.([]any)[0].(*Object).Set("a", json.Number("9"))

	assert.False(t, MustPath("system.extra").Present(doc))
	v, _ := MustPath("system.list").Lookup(doc)
	inner, _ := v.([]any)[0].(*Object).Get("a")
	assert.Equal(t, json.Number("1"), inner)
}

func TestObject_Delete(t *testing.T) {
	t.Parallel()

	o := NewObject()
	o.Set("a", 1)
	o.Set("b", 2)
	assert.True(t, o.Delete("a"))
	assert.False(t, o.Delete("a"))
	assert.Equal(t, []string{"b"}, o.Keys())
}
