// Package skill models the three skill categories stored in a character
// record and the bitfield encoding the save file uses for them.
package skill

import (
	"fmt"
	"strings"
)

// DisabledValue marks a skill that can never be granted or counted.
const DisabledValue int32 = -1

// Category identifies one of the three independent skill bitfields.
type Category int

const (
	// Marshal skills (元帥特性).
	Marshal Category = iota
	// Commander skills (主將特性).
	Commander
	// Personal skills (个人特性).
	Personal
)

// Categories lists every category.
var Categories = []Category{Marshal, Commander, Personal}

// String returns the lowercase English name of the category.
func (c Category) String() string {
	switch c {
	case Marshal:
		return "marshal"
	case Commander:
		return "commander"
	case Personal:
		return "personal"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ParseCategory maps a section marker to a Category. Both the Chinese
// markers used by the rules file and the English names are accepted.
//
// Postcondition: ok is false when marker names no category.
func ParseCategory(marker string) (Category, bool) {
	switch strings.TrimSpace(marker) {
	case "元帥", "元帅", "marshal":
		return Marshal, true
	case "主將", "主将", "commander":
		return Commander, true
	case "个人", "個人", "personal":
		return Personal, true
	}
	return 0, false
}

// Definition is one catalog entry. Its bit position in the category bitfield
// equals its ID.
type Definition struct {
	ID          uint32
	Name        string
	Description string
	Value       int32
}

// BitPosition returns the bit index of the skill inside its bitfield.
func (d Definition) BitPosition() uint32 {
	return d.ID
}

// Disabled reports whether the skill is permanently excluded.
func (d Definition) Disabled() bool {
	return d.Value == DisabledValue
}
