// Package rules loads the skill catalog and numeric tunables that drive skill
// allocation from a roguelike.conf rules file.
package rules

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Params holds the numeric tunables of skill allocation.
type Params struct {
	// PickLimit bounds the candidate picks within one allocation step.
	PickLimit int
	// RerollLimit is the number of consecutive failed steps that ends allocation.
	RerollLimit int
	// ExtraAttribute is added to the base budget of 233.
	ExtraAttribute int
	StrRate        float64
	IntRate        float64
	RandomExtraMin int
	RandomExtraMax int
	StrRandomRate  float64
	IntRandomRate  float64
	// AttributeThresholds are ascending score boundaries selecting a tier rate.
	AttributeThresholds []int32
	// AttributeRates has exactly len(AttributeThresholds)+1 entries.
	AttributeRates []float64
	// ExistAttributeRate scales skills that were active before the run.
	ExistAttributeRate float64
	// LastCharacterNumber is the highest character id scanned for.
	LastCharacterNumber int
}

// DefaultThresholds returns the built-in tier thresholds.
func DefaultThresholds() []int32 {
	return []int32{100, 130, 160, 190}
}

// DefaultRates returns the built-in tier rates.
func DefaultRates() []float64 {
	return []float64{1.4, 1.25, 1.1, 1.0, 0.9}
}

// DefaultParams returns the built-in tunables.
//
// Postcondition: the result passes Validate.
func DefaultParams() Params {
	return Params{
		PickLimit:           5,
		RerollLimit:         3,
		ExtraAttribute:      30,
		StrRate:             1.5,
		IntRate:             1.0,
		RandomExtraMin:      -30,
		RandomExtraMax:      30,
		StrRandomRate:       1.0,
		IntRandomRate:       1.0,
		AttributeThresholds: DefaultThresholds(),
		AttributeRates:      DefaultRates(),
		ExistAttributeRate:  0.7,
		LastCharacterNumber: 831,
	}
}

// Validate checks all parameter invariants.
//
// Postcondition: Returns nil if p is usable, or an error describing all violations.
func (p Params) Validate() error {
	var errs []string
	if p.PickLimit < 0 {
		errs = append(errs, fmt.Sprintf("pick_limit must be >= 0, got %d", p.PickLimit))
	}
	if p.RerollLimit < 0 {
		errs = append(errs, fmt.Sprintf("reroll_limit must be >= 0, got %d", p.RerollLimit))
	}
	if p.RandomExtraMin > p.RandomExtraMax {
		errs = append(errs, fmt.Sprintf("random_extra_attribute_min (%d) must not exceed random_extra_attribute_max (%d)",
			p.RandomExtraMin, p.RandomExtraMax))
	}
	if p.LastCharacterNumber < 1 || p.LastCharacterNumber > 0xFFFF {
		errs = append(errs, fmt.Sprintf("last_character_number must be 1-65535, got %d", p.LastCharacterNumber))
	}
	if len(p.AttributeRates) != len(p.AttributeThresholds)+1 {
		errs = append(errs, fmt.Sprintf("attribute_rates must have %d values, got %d",
			len(p.AttributeThresholds)+1, len(p.AttributeRates)))
	}
	if !ascending(p.AttributeThresholds) {
		errs = append(errs, "attribute_thresholds must be ascending")
	}
	rates := []struct {
		name string
		v    float64
	}{
		{"str_rate", p.StrRate},
		{"int_rate", p.IntRate},
		{"str_random_rate", p.StrRandomRate},
		{"int_random_rate", p.IntRandomRate},
		{"exist_attribute_rate", p.ExistAttributeRate},
	}
	for _, r := range rates {
		if !finite(r.v) {
			errs = append(errs, fmt.Sprintf("%s must be finite, got %g", r.name, r.v))
		}
	}
	if !allFinite(p.AttributeRates) {
		errs = append(errs, "attribute_rates must all be finite")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// TierIndex returns the smallest k with score < AttributeThresholds[k], or
// len(AttributeThresholds) when score is at or above every threshold.
func (p Params) TierIndex(score float64) int {
	for i, th := range p.AttributeThresholds {
		if score < float64(th) {
			return i
		}
	}
	return len(p.AttributeThresholds)
}

func ascending(v []int32) bool {
	for i := 1; i < len(v); i++ {
		if v[i] < v[i-1] {
			return false
		}
	}
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(v []float64) bool {
	for _, f := range v {
		if !finite(f) {
			return false
		}
	}
	return true
}
