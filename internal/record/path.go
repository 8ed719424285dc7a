package record

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a path segment does not exist.
	ErrNotFound = errors.New("field not found")
	// ErrNotObject is returned when a path walks through a non-object value.
	ErrNotObject = errors.New("not an object")
)

// PathError reports which segment of a path failed to resolve.
type PathError struct {
	Path    string
	Segment string
	Err     error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: segment %q: %v", e.Path, e.Segment, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// Path is a dotted field path parsed once into its keys.
type Path struct {
	raw  string
	keys []string
}

// ParsePath parses a dotted path such as "system.armourPoints.head".
func ParsePath(s string) (Path, error) {
	if strings.TrimSpace(s) == "" {
		return Path{}, fmt.Errorf("empty path")
	}
	keys := strings.Split(s, ".")
	for i, k := range keys {
		if k == "" {
			return Path{}, fmt.Errorf("path %q: empty segment at position %d", s, i)
		}
	}
	return Path{raw: s, keys: keys}, nil
}

// MustPath is ParsePath for paths declared in code; it panics on a malformed path.
func MustPath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Path) String() string { return p.raw }

// IsZero reports whether p was never parsed.
func (p Path) IsZero() bool { return len(p.keys) == 0 }

// Keys returns the path segments.
func (p Path) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Base returns the last segment.
func (p Path) Base() string {
	if len(p.keys) == 0 {
		return ""
	}
	return p.keys[len(p.keys)-1]
}

// Parent returns the path without its last segment. The parent of a
// single-segment path is the zero Path.
func (p Path) Parent() Path {
	if len(p.keys) <= 1 {
		return Path{}
	}
	keys := p.keys[:len(p.keys)-1]
	return Path{raw: strings.Join(keys, "."), keys: keys}
}

// Child appends a segment.
func (p Path) Child(key string) Path {
	keys := append(p.Keys(), key)
	return Path{raw: strings.Join(keys, "."), keys: keys}
}

// Relative returns p with prefix removed, and whether p starts with prefix.
func (p Path) Relative(prefix Path) (Path, bool) {
	if len(prefix.keys) >= len(p.keys) {
		return Path{}, false
	}
	for i, k := range prefix.keys {
		if p.keys[i] != k {
			return Path{}, false
		}
	}
	keys := p.keys[len(prefix.keys):]
	return Path{raw: strings.Join(keys, "."), keys: keys}, true
}

// Resolve returns the value at p. The error wraps ErrNotFound or ErrNotObject.
func (p Path) Resolve(o *Object) (any, error) {
	var cur any = o
	for i, k := range p.keys {
		obj, ok := AsObject(cur)
		if !ok {
			seg := k
			if i > 0 {
				seg = p.keys[i-1]
			}
			return nil, &PathError{Path: p.raw, Segment: seg, Err: ErrNotObject}
		}
		v, ok := obj.Get(k)
		if !ok {
			return nil, &PathError{Path: p.raw, Segment: k, Err: ErrNotFound}
		}
		cur = v
	}
	return cur, nil
}

// Lookup returns the value at p and whether it exists.
func (p Path) Lookup(o *Object) (any, bool) {
	v, err := p.Resolve(o)
	return v, err == nil
}

// Present reports whether p exists and is not null.
func (p Path) Present(o *Object) bool {
	v, ok := p.Lookup(o)
	return ok && v != nil
}

// container returns the object holding the last segment, creating missing
// intermediate objects when create is set.
func (p Path) container(o *Object, create bool) (*Object, error) {
	if len(p.keys) == 0 {
		return nil, fmt.Errorf("empty path")
	}
	cur := o
	for _, k := range p.keys[:len(p.keys)-1] {
		v, ok := cur.Get(k)
		if !ok {
			if !create {
				return nil, &PathError{Path: p.raw, Segment: k, Err: ErrNotFound}
			}
			next := NewObject()
			cur.Set(k, next)
			cur = next
			continue
		}
		next, ok := AsObject(v)
		if !ok {
			return nil, &PathError{Path: p.raw, Segment: k, Err: ErrNotObject}
		}
		cur = next
	}
	return cur, nil
}

// Set stores v at p, creating intermediate objects as needed.
func (p Path) Set(o *Object, v any) error {
	c, err := p.container(o, true)
	if err != nil {
		return err
	}
	c.Set(p.Base(), v)
	return nil
}

// Delete removes p and reports whether anything was removed.
func (p Path) Delete(o *Object) bool {
	c, err := p.container(o, false)
	if err != nil {
		return false
	}
	return c.Delete(p.Base())
}

// Replace moves the entry at p to dst with value v. When both paths share a
// parent the new key takes the old key's position.
func (p Path) Replace(o *Object, dst Path, v any) error {
	if p.Parent().String() == dst.Parent().String() {
		c, err := dst.container(o, true)
		if err != nil {
			return err
		}
		c.Replace(p.Base(), dst.Base(), v)
		return nil
	}
	if err := dst.Set(o, v); err != nil {
		return err
	}
	p.Delete(o)
	return nil
}
