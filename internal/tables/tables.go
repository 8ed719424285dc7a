// Package tables loads the declarative lookup tables the migrators and the
// consolidation engine read: label families, the characteristic table, the
// skill catalogue and the expected variant domains of consolidated kinds.
package tables

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/grimdark-vtt/packforge/internal/record"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultTables []byte

// Concerns a family can belong to.
const (
	ConcernClassification = "classification"
	ConcernTier           = "tier"
	ConcernDamage         = "damage"
)

// Tables is the full set of collaborator tables for one run.
type Tables struct {
	Families        []*Family         `yaml:"families" validate:"dive"`
	Characteristics map[string]string `yaml:"characteristics" validate:"required"`
	SkillDefault    string            `yaml:"skill_default" validate:"required"`
	Skills          []Skill           `yaml:"skills" validate:"dive"`
	Consolidation   []*GroupSpec      `yaml:"consolidation" validate:"dive"`

	characteristics map[string]string
}

// Skill is one skill catalogue entry. An empty Specialisation matches every
// specialisation not listed separately.
type Skill struct {
	Name           string `yaml:"name" validate:"required"`
	Specialisation string `yaml:"specialisation"`
	Characteristic string `yaml:"characteristic" validate:"required"`
}

// Default returns the tables embedded in the binary.
func Default() (*Tables, error) {
	return Parse(defaultTables, "defaults.yaml")
}

// Load reads tables from path, or the embedded defaults when path is empty.
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tables: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes, validates and compiles a tables document.
func Parse(data []byte, source string) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}
	if err := validator.New().Struct(&t); err != nil {
		return nil, fmt.Errorf("validating %s: %w", source, err)
	}
	if err := t.compile(); err != nil {
		return nil, fmt.Errorf("compiling %s: %w", source, err)
	}
	return &t, nil
}

func (t *Tables) compile() error {
	seen := map[string]bool{}
	for _, f := range t.Families {
		if seen[f.Name] {
			return fmt.Errorf("duplicate family %q", f.Name)
		}
		seen[f.Name] = true
		if err := f.compile(); err != nil {
			return fmt.Errorf("family %q: %w", f.Name, err)
		}
	}

	t.characteristics = make(map[string]string, len(t.Characteristics))
	for label, token := range t.Characteristics {
		t.characteristics[Normalize(label)] = token
	}

	for i, g := range t.Consolidation {
		if err := g.compile(); err != nil {
			return fmt.Errorf("consolidation[%d] (%s): %w", i, g.Kind, err)
		}
	}
	return nil
}

// Family returns the family called name.
func (t *Tables) Family(name string) (*Family, bool) {
	for _, f := range t.Families {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// FamiliesFor returns the families of one concern in declared order.
func (t *Tables) FamiliesFor(concern string) []*Family {
	var out []*Family
	for _, f := range t.Families {
		if f.Concern == concern {
			out = append(out, f)
		}
	}
	return out
}

// Characteristic maps an abbreviation or long name ("Ag", "(Ag)", "Agility")
// to its canonical token.
func (t *Tables) Characteristic(label string) (string, bool) {
	s := strings.Trim(strings.TrimSpace(label), "()[]")
	token, ok := t.characteristics[Normalize(s)]
	return token, ok
}

// CharacteristicTokens returns the canonical characteristic tokens, deduplicated.
func (t *Tables) CharacteristicTokens() []string {
	seen := map[string]bool{}
	var out []string
	for _, tok := range t.Characteristics {
		if !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	sort.Strings(out)
	return out
}

// GroupSpec declares how one record kind is consolidated.
type GroupSpec struct {
	Kind        string            `yaml:"kind" validate:"required"`
	Category    string            `yaml:"category" validate:"required"`
	Subcategory string            `yaml:"subcategory" validate:"required"`
	Variant     string            `yaml:"variant" validate:"required"`
	Name        string            `yaml:"name"`
	Domains     map[string]Domain `yaml:"domains"`

	CategoryPath    record.Path `yaml:"-"`
	SubcategoryPath record.Path `yaml:"-"`
	VariantPath     record.Path `yaml:"-"`

	// expanded domains keyed by normalized category
	domains map[string][]string
}

func (g *GroupSpec) compile() error {
	var err error
	if g.CategoryPath, err = record.ParsePath(g.Category); err != nil {
		return err
	}
	if g.SubcategoryPath, err = record.ParsePath(g.Subcategory); err != nil {
		return err
	}
	if g.VariantPath, err = record.ParsePath(g.Variant); err != nil {
		return err
	}
	names := make([]string, 0, len(g.Domains))
	for key := range g.Domains {
		names = append(names, key)
	}
	sort.Strings(names)

	g.domains = make(map[string][]string, len(g.Domains))
	seen := make(map[string]string, len(g.Domains))
	for _, key := range names {
		norm := Normalize(key)
		if prev, dup := seen[norm]; dup {
			return fmt.Errorf("domains %q and %q name the same category", prev, key)
		}
		seen[norm] = key
		keys, err := g.Domains[key].Expand()
		if err != nil {
			return fmt.Errorf("domain %q: %w", key, err)
		}
		g.domains[norm] = keys
	}
	return nil
}

// DomainFor returns the expected variant keys for a category, falling back to
// the "*" domain. ok is false when neither is declared.
func (g *GroupSpec) DomainFor(category string) ([]string, bool) {
	if keys, ok := g.domains[Normalize(category)]; ok {
		return keys, true
	}
	keys, ok := g.domains["*"]
	return keys, ok
}

// Domain is an expected set of variant keys, written either as a list or as
// an inclusive integer range.
type Domain struct {
	Keys []string `yaml:"keys"`
	From *int     `yaml:"from"`
	To   *int     `yaml:"to"`
}

// UnmarshalYAML accepts a plain sequence as shorthand for keys.
func (d *Domain) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		return value.Decode(&d.Keys)
	}
	type plain Domain
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*d = Domain(p)
	return nil
}

// Expand lists the domain's keys in declared order.
func (d Domain) Expand() ([]string, error) {
	if d.From == nil && d.To == nil {
		if len(d.Keys) == 0 {
			return nil, fmt.Errorf("empty domain")
		}
		return d.Keys, nil
	}
	if d.From == nil || d.To == nil {
		return nil, fmt.Errorf("range needs both from and to")
	}
	if len(d.Keys) > 0 {
		return nil, fmt.Errorf("use either keys or a range, not both")
	}
	if *d.From > *d.To {
		return nil, fmt.Errorf("range from %d exceeds to %d", *d.From, *d.To)
	}
	keys := make([]string, 0, *d.To-*d.From+1)
	for i := *d.From; i <= *d.To; i++ {
		keys = append(keys, strconv.Itoa(i))
	}
	return keys, nil
}
