// Package score holds the assessment data model: tri-state scores, scored
// items, domains and the table descriptions the layout engine consumes.
package score

import "fmt"

// Value is a tri-state assessment score.
type Value int

const (
	NotAcquired Value = 0
	InProgress  Value = 1
	Acquired    Value = 2
)

// Values lists every score in legend order.
var Values = []Value{Acquired, InProgress, NotAcquired}

// ParseValue converts a raw integer score, rejecting anything outside {0,1,2}.
func ParseValue(n int) (Value, error) {
	switch Value(n) {
	case NotAcquired, InProgress, Acquired:
		return Value(n), nil
	}
	return 0, fmt.Errorf("score %d outside {0,1,2}", n)
}

func (v Value) String() string {
	switch v {
	case NotAcquired:
		return "not_acquired"
	case InProgress:
		return "in_progress"
	case Acquired:
		return "acquired"
	}
	return fmt.Sprintf("Value(%d)", int(v))
}

// Item is one labeled score.
type Item struct {
	Label string
	Value Value
}

// Student identifies the person a report is about.
type Student struct {
	Name        string `yaml:"name" json:"name"`
	Level       string `yaml:"level" json:"level"`
	DateOfBirth string `yaml:"date_of_birth" json:"date_of_birth"`
	Gender      string `yaml:"gender" json:"gender"`
}

// ActionItem is one recommended remediation for a weak item.
type ActionItem struct {
	Item   string `yaml:"item" json:"item"`
	Action string `yaml:"action" json:"action"`
}
