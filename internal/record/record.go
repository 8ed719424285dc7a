// Package record holds the in-memory form of a content record: an ordered
// JSON document plus the identity fields every record carries.
package record

import (
	"fmt"
	"strings"
)

// Top-level document keys.
const (
	KeyID   = "_id"
	KeyName = "name"
	KeyKind = "type"
)

// Record is one content document loaded from disk.
type Record struct {
	ID   string
	Name string
	Kind string
	// File is the path the record was read from; empty for synthesized records.
	File string
	// Raw is the exact content read from File.
	Raw []byte
	Doc *Object
}

// FromDocument builds a record from a decoded document. The id and kind must
// be non-empty strings; the name is optional.
func FromDocument(doc *Object) (*Record, error) {
	id, err := requiredString(doc, KeyID)
	if err != nil {
		return nil, err
	}
	kind, err := requiredString(doc, KeyKind)
	if err != nil {
		return nil, err
	}
	name, _ := doc.Get(KeyName)
	nameStr, _ := AsString(name)
	return &Record{ID: id, Name: nameStr, Kind: kind, Doc: doc}, nil
}

// Parse decodes raw bytes into a record.
func Parse(data []byte) (*Record, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}
	rec, err := FromDocument(doc)
	if err != nil {
		return nil, err
	}
	rec.Raw = data
	return rec, nil
}

func requiredString(doc *Object, key string) (string, error) {
	v, ok := doc.Get(key)
	if !ok || v == nil {
		return "", fmt.Errorf("missing %q", key)
	}
	s, ok := AsString(v)
	if !ok {
		return "", fmt.Errorf("%q is a %s, want string", key, TypeName(v))
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%q is empty", key)
	}
	return s, nil
}

// Clone returns a deep copy of the record. Raw is shared since it is never mutated.
func (r *Record) Clone() *Record {
	c := *r
	c.Doc = r.Doc.Clone()
	return &c
}

// Encode renders the record's document in on-disk form.
func (r *Record) Encode() ([]byte, error) {
	return Encode(r.Doc)
}

// Label identifies the record in messages.
func (r *Record) Label() string {
	if r.Name != "" {
		return fmt.Sprintf("%s (%s)", r.Name, r.ID)
	}
	return r.ID
}
