package savefile

import (
	"fmt"

	"github.com/RanceJen/roguelike-sg7/internal/game/skill"
)

// WarningKind classifies a recoverable condition met during a run.
type WarningKind string

const (
	// WarningGap marks a character id that was not found in its window.
	WarningGap WarningKind = "gap"
	// WarningAbnormalStats marks stats outside the plausible [20,300] range.
	WarningAbnormalStats WarningKind = "abnormal_stats"
	// WarningClampedStats marks stats clamped into [0,1000] before use.
	WarningClampedStats WarningKind = "clamped_stats"
)

// Warning is a recoverable condition surfaced alongside a successful run.
type Warning struct {
	Kind        WarningKind
	CharacterID int
	Offset      int
	Message     string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: character #%d: %s", w.Kind, w.CharacterID, w.Message)
}

// CharacterResult summarises the processing of one located character.
type CharacterResult struct {
	ID           int
	Offset       int
	Strength     int
	Intelligence int
	// Empty is true for (0,0) slots that were left untouched.
	Empty bool
	Added [3][]skill.Definition
}

// AddedCount returns the number of skills granted to the character.
func (c CharacterResult) AddedCount() int {
	n := 0
	for _, a := range c.Added {
		n += len(a)
	}
	return n
}

// Report holds the statistics of one processing run.
type Report struct {
	RunID string

	TotalCharactersFound int
	CharactersModified   int
	TotalSkillsAdded     int

	Characters []CharacterResult
	Warnings   []Warning

	// InputDigest and OutputDigest are hex BLAKE2b-256 digests of the
	// buffers before and after the run.
	InputDigest  string
	OutputDigest string
}

// WarningsOf returns the warnings of the given kind.
func (r *Report) WarningsOf(kind WarningKind) []Warning {
	var out []Warning
	for _, w := range r.Warnings {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}
