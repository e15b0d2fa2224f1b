package skill

// ActiveSet tracks the active skills of one category for one character,
// keyed by skill ID.
type ActiveSet struct {
	order []Definition
	ids   map[uint32]struct{}
}

// NewActiveSet creates an ActiveSet seeded with defs. Duplicate IDs are
// collapsed.
func NewActiveSet(defs []Definition) *ActiveSet {
	s := &ActiveSet{ids: make(map[uint32]struct{}, len(defs))}
	for _, d := range defs {
		s.Add(d)
	}
	return s
}

// Add marks def active.
//
// Postcondition: returns false if def.ID was already active.
func (s *ActiveSet) Add(def Definition) bool {
	if _, ok := s.ids[def.ID]; ok {
		return false
	}
	s.ids[def.ID] = struct{}{}
	s.order = append(s.order, def)
	return true
}

// Has reports whether the skill with id is active.
func (s *ActiveSet) Has(id uint32) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of active skills.
func (s *ActiveSet) Len() int {
	return len(s.order)
}

// Skills returns the active skills in the order they became active.
func (s *ActiveSet) Skills() []Definition {
	return s.order
}

// Available returns the definitions of defs that are neither active nor
// disabled, preserving catalog order.
func (s *ActiveSet) Available(defs []Definition) []Definition {
	var out []Definition
	for _, d := range defs {
		if d.Disabled() || s.Has(d.ID) {
			continue
		}
		out = append(out, d)
	}
	return out
}
