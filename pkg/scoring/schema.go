package scoring

import (
	"fmt"
)

// CheckKind is the input type of an essential check.
type CheckKind string

const (
	KindBoolean      CheckKind = "boolean"
	KindGradedSelect CheckKind = "graded_select"
)

func (k CheckKind) Valid() bool {
	switch k {
	case KindBoolean, KindGradedSelect:
		return true
	}
	return false
}

// Grade is the answer of a graded-select essential check.
type Grade string

const (
	GradeUnset  Grade = "unset"
	GradeGood   Grade = "good"
	GradeBad    Grade = "bad"
	GradeAbsent Grade = "absent"
)

func (g Grade) Valid() bool {
	switch g {
	case GradeUnset, GradeGood, GradeBad, GradeAbsent:
		return true
	}
	return false
}

// Grades lists the graded-select enumeration in display order.
func Grades() []Grade {
	return []Grade{GradeUnset, GradeGood, GradeBad, GradeAbsent}
}

// UnsetOption is the selected-option sentinel for an unanswered characteristic.
const UnsetOption = "0"

// EssentialCheck is a mandatory pass/fail inspection point.
type EssentialCheck struct {
	Key   string    `json:"key" yaml:"key"`
	Label string    `json:"label" yaml:"label"`
	Kind  CheckKind `json:"kind" yaml:"kind"`
}

// Passes reports whether the answer satisfies the check.
// A missing answer never passes.
func (c EssentialCheck) Passes(a Answer, ok bool) bool {
	if !ok {
		return false
	}
	switch c.Kind {
	case KindBoolean:
		return a.True()
	case KindGradedSelect:
		return !a.IsBool() && Grade(a.String()) == GradeGood
	}
	return false
}

// Option is one selectable catalog entry of a scored characteristic.
type Option struct {
	ID     string `json:"id" yaml:"id"`
	Label  string `json:"label" yaml:"label"`
	Points int    `json:"points" yaml:"points"`
}

// ScoredCharacteristic is a graded attribute and the catalog of options it can take.
type ScoredCharacteristic struct {
	Key     string   `json:"key" yaml:"key"`
	Label   string   `json:"label" yaml:"label"`
	Options []Option `json:"options" yaml:"options"`
}

// Points returns the points declared for optionID. The sentinel and unknown ids score zero.
func (c ScoredCharacteristic) Points(optionID string) (int, bool) {
	if optionID == "" || optionID == UnsetOption {
		return 0, false
	}
	for _, o := range c.Options {
		if o.ID == optionID {
			return o.Points, true
		}
	}
	return 0, false
}

// MaxPoints returns the highest points any option declares.
func (c ScoredCharacteristic) MaxPoints() int {
	max := 0
	for _, o := range c.Options {
		if o.Points > max {
			max = o.Points
		}
	}
	return max
}

// Banding holds the classification thresholds applied to a complete, non-zero score.
//
//	score < SelectFrom              ESSENTIAL_TIER
//	SelectFrom <= score < PrimeFrom SELECT_TIER
//	score >= PrimeFrom              PRIME_TIER
type Banding struct {
	SelectFrom int `json:"select_from" yaml:"select_from"`
	PrimeFrom  int `json:"prime_from" yaml:"prime_from"`
}

// DefaultBanding is the canonical banding: <9 essential, 9-17 select, >=18 prime.
var DefaultBanding = Banding{SelectFrom: 9, PrimeFrom: 18}

// Validate checks the thresholds are ordered and leave room for every tier.
func (b Banding) Validate() error {
	if b.SelectFrom < 1 {
		return fmt.Errorf("banding: select_from must be at least 1, got %d", b.SelectFrom)
	}
	if b.PrimeFrom <= b.SelectFrom {
		return fmt.Errorf("banding: prime_from (%d) must be greater than select_from (%d)", b.PrimeFrom, b.SelectFrom)
	}
	return nil
}

// Schema bundles everything the engine needs for one inspection form.
type Schema struct {
	Essential []EssentialCheck       `json:"essential"`
	Scored    []ScoredCharacteristic `json:"scored"`
	Banding   Banding                `json:"banding"`
}

// Score runs the engine over the bundled schema.
func (s Schema) Score(answers AnswerSet) Result {
	return Score(answers, s.Essential, s.Scored, s.Banding)
}

// MaxScore returns the highest score the scored schema allows.
func (s Schema) MaxScore() int {
	return MaxScore(s.Scored)
}

// Validate reports the first structural problem in the schema.
func (s Schema) Validate() error {
	seen := make(map[string]bool)
	for i, c := range s.Essential {
		if c.Key == "" {
			return fmt.Errorf("essential check %d: missing key", i)
		}
		if !c.Kind.Valid() {
			return fmt.Errorf("essential check %q: unknown kind %q", c.Key, c.Kind)
		}
		if seen[c.Key] {
			return fmt.Errorf("duplicate field key %q", c.Key)
		}
		seen[c.Key] = true
	}
	for i, c := range s.Scored {
		if c.Key == "" {
			return fmt.Errorf("scored characteristic %d: missing key", i)
		}
		if seen[c.Key] {
			return fmt.Errorf("duplicate field key %q", c.Key)
		}
		seen[c.Key] = true
		ids := make(map[string]bool)
		for _, o := range c.Options {
			if o.ID == UnsetOption {
				return fmt.Errorf("characteristic %q: option id %q is reserved", c.Key, UnsetOption)
			}
			if o.Points < 0 {
				return fmt.Errorf("characteristic %q: option %q has negative points", c.Key, o.ID)
			}
			if ids[o.ID] {
				return fmt.Errorf("characteristic %q: duplicate option id %q", c.Key, o.ID)
			}
			ids[o.ID] = true
		}
	}
	return s.Banding.Validate()
}
