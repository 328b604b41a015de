// Package planning configures the food bank's plannings on top of the generic
// roster engine and provides the Planner service that persists rosters.
package planning

import (
	_ "embed"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/roster-engine/generic"
	"gopkg.in/yaml.v3"
)

// Kinds of the food bank.
const (
	KindRamasse      generic.Kind = "ramasse"
	KindPalettes     generic.Kind = "palettes"
	KindPesee        generic.Kind = "pesee"
	KindDistribution generic.Kind = "distribution"
	KindVIF          generic.Kind = "vif"
)

//go:embed kinds.yaml
var defaultKinds []byte

type kindsFile struct {
	Kinds []kindYAML `yaml:"kinds"`
}

type kindYAML struct {
	Kind  string     `yaml:"kind"`
	Label string     `yaml:"label"`
	Days  []string   `yaml:"days"`
	Slots []slotYAML `yaml:"slots"`
}

type slotYAML struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
	Hours string `yaml:"hours"`
}

// ParseKinds decodes planning definitions from YAML.
func ParseKinds(data []byte) ([]generic.KindDefinition, error) {
	var f kindsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse kinds: %w", err)
	}

	defs := make([]generic.KindDefinition, 0, len(f.Kinds))
	for _, k := range f.Kinds {
		if k.Kind == "" {
			return nil, fmt.Errorf("kind without name")
		}
		def := generic.KindDefinition{Kind: generic.Kind(k.Kind), Label: k.Label}
		for _, d := range k.Days {
			day, err := generic.ParseDay(d)
			if err != nil {
				return nil, fmt.Errorf("kind %s: %w", k.Kind, err)
			}
			def.Days = append(def.Days, day)
		}
		seen := map[string]bool{}
		for _, s := range k.Slots {
			if seen[s.Key] {
				return nil, fmt.Errorf("kind %s: slot %q declared twice", k.Kind, s.Key)
			}
			seen[s.Key] = true
			hours := decimal.Zero
			if s.Hours != "" {
				h, err := decimal.NewFromString(s.Hours)
				if err != nil {
					return nil, fmt.Errorf("kind %s slot %s: invalid hours %q: %w", k.Kind, s.Key, s.Hours, err)
				}
				hours = h
			}
			def.Slots = append(def.Slots, generic.SlotDefinition{
				Key:   generic.SlotKey(s.Key),
				Label: s.Label,
				Hours: hours,
			})
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Register loads the built-in plannings into the generic registry.
func Register() error {
	defs, err := ParseKinds(defaultKinds)
	if err != nil {
		return err
	}
	for _, d := range defs {
		generic.RegisterKind(d)
	}
	return nil
}

// ValidateTemplate checks a template against its planning: every slot must be
// a declared seat on a day the planning runs, at most once per day.
func ValidateTemplate(def generic.KindDefinition, tpl generic.Template) error {
	seen := map[string]bool{}
	for _, s := range tpl.Slots {
		bad := func(reason string) error {
			return &generic.MalformedRosterError{Kind: def.Kind, Day: s.Day, Slot: s.Slot, Reason: reason}
		}
		if !s.Day.Valid() {
			return bad("day must be monday to friday")
		}
		if !def.HasDay(s.Day) {
			return bad(fmt.Sprintf("%s does not run on %s", def.Kind, s.Day))
		}
		if _, ok := def.Slot(s.Slot); !ok {
			return bad("unknown slot")
		}
		k := s.Day.String() + "/" + string(s.Slot)
		if seen[k] {
			return bad("slot appears twice on the same day")
		}
		seen[k] = true
	}
	return nil
}
