// Package allocator grants additional skills to a character within an
// attribute budget derived from its strength and intelligence.
package allocator

import (
	"math"

	"go.uber.org/zap"

	"github.com/RanceJen/roguelike-sg7/internal/game/dice"
	"github.com/RanceJen/roguelike-sg7/internal/game/skill"
	"github.com/RanceJen/roguelike-sg7/internal/rules"
)

// BaseAttribute is the budget every character starts from before
// ExtraAttribute and the tier rate are applied.
const BaseAttribute = 233

// Input is the per-character data the allocator works on.
type Input struct {
	CharacterID  int
	Strength     int
	Intelligence int
	// Fields holds the current bitfield bytes of every category, indexed by
	// skill.Category. The allocator never modifies these slices.
	Fields [3][]byte
}

// Outcome describes the result of allocating skills to one character.
type Outcome struct {
	// Fields holds the updated bitfield bytes, indexed by skill.Category.
	Fields [3][]byte
	// Added lists the newly granted skills per category in grant order.
	Added [3][]skill.Definition
	// Active lists every active skill per category after allocation.
	Active [3][]skill.Definition

	RandomExtra  int
	InitialScore float64
	FinalScore   float64
	Budget       float64
	Tier         int
	Steps        int
}

// AddedCount returns the total number of skills granted.
func (o Outcome) AddedCount() int {
	n := 0
	for _, a := range o.Added {
		n += len(a)
	}
	return n
}

// Allocator grants skills from a shared catalog.
type Allocator struct {
	params  rules.Params
	catalog *skill.Catalog
	src     dice.Source
	logger  *zap.Logger
}

// New creates an Allocator.
//
// Precondition: params passes Validate; catalog, src and logger are non-nil.
func New(params rules.Params, catalog *skill.Catalog, src dice.Source, logger *zap.Logger) *Allocator {
	return &Allocator{params: params, catalog: catalog, src: src, logger: logger}
}

type state struct {
	fields [3][]byte
	active [3]*skill.ActiveSet
	score  float64
	budget float64
}

// Allocate runs the allocation loop for one character.
//
// Postcondition: after every granted skill the score does not exceed the
// budget; no bit set in in.Fields is cleared in the returned Fields; the loop
// ends after RerollLimit consecutive failed steps or when every enabled skill
// of every category is active.
func (a *Allocator) Allocate(in Input) Outcome {
	p := a.params
	log := a.logger.With(zap.Int("character", in.CharacterID))
	out := Outcome{}
	st := &state{}

	var existing float64
	for _, cat := range skill.Categories {
		st.fields[cat] = append([]byte(nil), in.Fields[cat]...)
		st.active[cat] = skill.NewActiveSet(skill.Decode(st.fields[cat], a.catalog.Skills(cat)))
		for _, d := range st.active[cat].Skills() {
			existing += float64(d.Value) * p.ExistAttributeRate
		}
	}

	str := float64(in.Strength)
	intel := float64(in.Intelligence)

	out.RandomExtra = dice.IntRange(a.src, p.RandomExtraMin, p.RandomExtraMax)
	st.score = str*p.StrRate + intel*p.IntRate + float64(out.RandomExtra) + existing
	out.InitialScore = st.score

	out.Tier = p.TierIndex(st.score)
	st.budget = float64(BaseAttribute+p.ExtraAttribute) * p.AttributeRates[out.Tier]
	out.Budget = st.budget

	personalWeight := str * p.StrRandomRate
	bound := max(1, int(math.Floor(personalWeight+intel*p.IntRandomRate)))

	log.Debug("allocation start",
		zap.Float64("existing_value", existing),
		zap.Int("random_extra", out.RandomExtra),
		zap.Float64("score", st.score),
		zap.Int("tier", out.Tier),
		zap.Float64("budget", st.budget),
	)

	failures := 0
	for failures < p.RerollLimit {
		out.Steps++
		cat := skill.Personal
		if float64(a.src.Intn(bound)) >= personalWeight {
			// One marshal draw in three, otherwise commander.
			if a.src.Intn(3) == 0 {
				cat = skill.Marshal
			} else {
				cat = skill.Commander
			}
		}

		if def, ok := a.tryAdd(st, cat, log); ok {
			failures = 0
			st.score += float64(def.Value)
			out.Added[cat] = append(out.Added[cat], def)
		} else {
			failures++
		}

		if a.complete(st) {
			log.Debug("every skill already active, stopping")
			break
		}
	}

	out.FinalScore = st.score
	for _, cat := range skill.Categories {
		out.Fields[cat] = st.fields[cat]
		out.Active[cat] = st.active[cat].Skills()
	}
	return out
}

// tryAdd picks up to PickLimit random candidates from the available skills
// of cat and grants the first one that fits in the remaining budget.
func (a *Allocator) tryAdd(st *state, cat skill.Category, log *zap.Logger) (skill.Definition, bool) {
	available := st.active[cat].Available(a.catalog.Skills(cat))
	if len(available) == 0 {
		log.Debug("no skills available", zap.Stringer("category", cat))
		return skill.Definition{}, false
	}
	for range a.params.PickLimit {
		def := available[a.src.Intn(len(available))]
		if st.budget-st.score < float64(def.Value) {
			log.Debug("skill exceeds budget",
				zap.Stringer("category", cat),
				zap.String("skill", def.Name),
				zap.Int32("value", def.Value),
			)
			continue
		}
		st.fields[cat] = skill.Set(st.fields[cat], def)
		st.active[cat].Add(def)
		log.Debug("skill added",
			zap.Stringer("category", cat),
			zap.Uint32("id", def.ID),
			zap.String("skill", def.Name),
			zap.Int32("value", def.Value),
		)
		return def, true
	}
	log.Debug("no skill fit within pick limit",
		zap.Stringer("category", cat),
		zap.Int("pick_limit", a.params.PickLimit),
	)
	return skill.Definition{}, false
}

// complete reports whether every enabled skill of every category is active.
// Disabled skills can never be granted, so they are not counted.
func (a *Allocator) complete(st *state) bool {
	for _, cat := range skill.Categories {
		if st.active[cat].Len() < a.catalog.Eligible(cat) {
			return false
		}
	}
	return true
}
