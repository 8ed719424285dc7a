// Package lookup provides the read-through skill catalogue cache used while
// migrating skill records. A cache lives for one run and is never persisted.
package lookup

import (
	"strings"
	"sync"

	"github.com/grimdark-vtt/packforge/internal/tables"
)

// Key identifies a skill by name and specialisation.
type Key struct {
	Name           string
	Specialisation string
}

func (k Key) normalized() Key {
	return Key{Name: tables.Normalize(k.Name), Specialisation: tables.Normalize(k.Specialisation)}
}

// Stats counts cache traffic.
type Stats struct {
	Hits   int `json:"hits" yaml:"hits"`
	Misses int `json:"misses" yaml:"misses"`
}

// SkillCache resolves a skill's characteristic from the catalogue, memoising
// every answer (including "not found"). Safe for concurrent use.
type SkillCache struct {
	catalogue map[Key]string

	mu      sync.Mutex
	entries map[Key]result
	stats   Stats
}

type result struct {
	characteristic string
	found          bool
}

// NewSkillCache indexes the catalogue. Later entries for the same key override earlier ones.
func NewSkillCache(skills []tables.Skill) *SkillCache {
	c := &SkillCache{
		catalogue: make(map[Key]string, len(skills)),
		entries:   make(map[Key]result),
	}
	for _, s := range skills {
		c.catalogue[Key{Name: s.Name, Specialisation: s.Specialisation}.normalized()] = s.Characteristic
	}
	return c
}

// Characteristic returns the catalogue characteristic for key. A specialised
// lookup falls back to the skill's generic entry.
func (c *SkillCache) Characteristic(key Key) (string, bool) {
	k := key.normalized()

	c.mu.Lock()
	defer c.mu.Unlock()

	if r, ok := c.entries[k]; ok {
		c.stats.Hits++
		return r.characteristic, r.found
	}
	c.stats.Misses++

	r := result{}
	if ch, ok := c.catalogue[k]; ok {
		r = result{characteristic: ch, found: true}
	} else if k.Specialisation != "" {
		if ch, ok := c.catalogue[Key{Name: k.Name}]; ok {
			r = result{characteristic: ch, found: true}
		}
	}
	c.entries[k] = r
	return r.characteristic, r.found
}

// Stats returns a snapshot of the hit and miss counters.
func (c *SkillCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// SplitName separates a trailing parenthesised specialisation from a skill
// name: "Common Lore (Imperium)" -> ("Common Lore", "Imperium").
func SplitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	open := strings.LastIndex(name, "(")
	if open <= 0 || !strings.HasSuffix(name, ")") {
		return name, ""
	}
	base := strings.TrimSpace(name[:open])
	spec := strings.TrimSpace(name[open+1 : len(name)-1])
	if base == "" {
		return name, ""
	}
	return base, spec
}
