package validation

import (
	"fmt"

	"github.com/grimdark-vtt/packforge/internal/record"
	"github.com/grimdark-vtt/packforge/internal/tables"
)

// RuleKind is the kind of check a rule performs.
type RuleKind string

const (
	RuleRequired RuleKind = "required"
	RuleEnum     RuleKind = "enum"
	RuleType     RuleKind = "type"
)

// FieldType is the structural shape a type rule asserts.
type FieldType string

const (
	FieldTypeString FieldType = "string"
	FieldTypeNumber FieldType = "number"
	FieldTypeBool   FieldType = "bool"
	FieldTypeArray  FieldType = "array"
	FieldTypeObject FieldType = "object"
	// FieldTypeNumericObject is an object whose listed Fields exist and whose
	// values are all numbers.
	FieldTypeNumericObject FieldType = "numericObject"
)

// Rule is one declared constraint on a field path.
type Rule struct {
	Path   record.Path
	Kind   RuleKind
	Domain []string  // enum only
	Type   FieldType // type only
	Fields []string  // numericObject only
	Hint   string
}

// Residue is a legacy field that must not survive next to its canonical one.
type Residue struct {
	Legacy    record.Path
	Canonical record.Path
}

// RuleSet holds the rules for one record kind.
type RuleSet struct {
	Kind        string
	Description string
	Rules       []Rule
	Residue     []Residue
}

func required(path string, hint string) Rule {
	return Rule{Path: record.MustPath(path), Kind: RuleRequired, Hint: hint}
}

func enum(path string, domain []string) Rule {
	return Rule{Path: record.MustPath(path), Kind: RuleEnum, Domain: domain}
}

func typed(path string, t FieldType, fields ...string) Rule {
	return Rule{Path: record.MustPath(path), Kind: RuleType, Type: t, Fields: fields}
}

func residue(legacy, canonical string) Residue {
	return Residue{Legacy: record.MustPath(legacy), Canonical: record.MustPath(canonical)}
}

var zoneTokens = []string{"head", "body", "leftArm", "rightArm", "leftLeg", "rightLeg"}

// DefaultRuleSets declares the canonical schema of every known kind. Enum
// domains come from the lookup tables so the validator and the migrators
// agree on the token vocabulary.
func DefaultRuleSets(tb *tables.Tables) ([]RuleSet, error) {
	tokens := func(family string) ([]string, error) {
		fam, ok := tb.Family(family)
		if !ok {
			return nil, fmt.Errorf("tables define no %s family", family)
		}
		return fam.Tokens(), nil
	}
	domains := map[string][]string{}
	for _, name := range []string{"weapon-type", "weapon-class", "armour-type", "damage-type", "rarity", "craftsmanship"} {
		d, err := tokens(name)
		if err != nil {
			return nil, err
		}
		domains[name] = d
	}
	coverage := append(append([]string{}, zoneTokens...), "all")
	migrateHint := "run `packforge migrate` on this record"

	return []RuleSet{
		{
			Kind:        "armour",
			Description: "Body armour with per-zone armour points",
			Rules: []Rule{
				required("name", ""),
				required("system.coverage", migrateHint),
				typed("system.coverage", FieldTypeArray),
				enum("system.coverage", coverage),
				required("system.armourPoints", migrateHint),
				typed("system.armourPoints", FieldTypeNumericObject, zoneTokens...),
				enum("system.armourType", domains["armour-type"]),
				enum("system.rarity", domains["rarity"]),
				enum("system.craftsmanship", domains["craftsmanship"]),
			},
			Residue: []Residue{
				residue("system.locations", "system.coverage"),
				residue("system.ap", "system.armourPoints"),
				residue("system.type", "system.armourType"),
				residue("system.availability", "system.rarity"),
				residue("system.craft", "system.craftsmanship"),
			},
		},
		{
			Kind:        "weapon",
			Description: "Ranged and melee weapons",
			Rules: []Rule{
				required("name", ""),
				required("system.damage", migrateHint),
				typed("system.damage", FieldTypeObject),
				required("system.damage.formula", ""),
				typed("system.damage.formula", FieldTypeString),
				required("system.damage.type", ""),
				enum("system.damage.type", domains["damage-type"]),
				enum("system.weaponType", domains["weapon-type"]),
				enum("system.weaponClass", domains["weapon-class"]),
				enum("system.rarity", domains["rarity"]),
				enum("system.craftsmanship", domains["craftsmanship"]),
				typed("system.clip", FieldTypeNumericObject, "value", "max"),
				typed("system.penetration", FieldTypeNumber),
			},
			Residue: []Residue{
				residue("system.type", "system.weaponType"),
				residue("system.class", "system.weaponClass"),
				residue("system.damageType", "system.damage"),
				residue("system.availability", "system.rarity"),
				residue("system.craft", "system.craftsmanship"),
			},
		},
		{
			Kind:        "skill",
			Description: "Skills and their roll configuration",
			Rules: []Rule{
				required("name", ""),
				required("system.roll", migrateHint),
				typed("system.roll", FieldTypeObject),
				required("system.roll.characteristic", ""),
				enum("system.roll.characteristic", tb.CharacteristicTokens()),
				required("system.roll.advance", ""),
				typed("system.roll.advance", FieldTypeNumber),
				typed("system.roll.trained", FieldTypeBool),
				typed("system.roll.specialisation", FieldTypeString),
			},
			Residue: []Residue{
				residue("system.characteristic", "system.roll"),
				residue("system.advance", "system.roll"),
				residue("system.trained", "system.roll"),
				residue("system.plus10", "system.roll"),
				residue("system.plus20", "system.roll"),
				residue("system.plus30", "system.roll"),
			},
		},
		{
			Kind:        "trait",
			Description: "Traits with an optional rating",
			Rules: []Rule{
				required("name", ""),
				required("system.rating", migrateHint),
				typed("system.rating", FieldTypeObject),
				typed("system.rating.value", FieldTypeNumber),
				typed("system.rating.text", FieldTypeString),
				required("system.rating.variable", ""),
				typed("system.rating.variable", FieldTypeBool),
			},
			Residue: []Residue{
				residue("system.level", "system.rating"),
			},
		},
		{
			Kind:        "quality",
			Description: "Weapon and armour qualities",
			Rules: []Rule{
				required("name", ""),
				required("system.identifier", migrateHint),
				typed("system.identifier", FieldTypeString),
				typed("system.level", FieldTypeNumber),
				typed("system.hasLevel", FieldTypeBool),
				typed("system.notes", FieldTypeString),
			},
			Residue: []Residue{
				residue("system.rating", "system.identifier"),
				residue("system.modifiers", "system.identifier"),
			},
		},
		{
			Kind:        "critical",
			Description: "Consolidated critical effect tables",
			Rules: []Rule{
				required("name", ""),
				required("system.category", "run `packforge consolidate`"),
				enum("system.category", domains["damage-type"]),
				required("system.subcategory", ""),
				typed("system.subcategory", FieldTypeString),
				required("system.variants", "run `packforge consolidate`"),
				typed("system.variants", FieldTypeObject),
			},
			Residue: []Residue{
				residue("system.severity", "system.variants"),
				residue("system.damageType", "system.category"),
				residue("system.location", "system.subcategory"),
			},
		},
	}, nil
}
