package skill

import "fmt"

// Catalog holds the ordered skill definitions of every category.
//
// Invariant: no two definitions in one category share an ID.
// A Catalog is read-only once loading completes and may be shared freely.
type Catalog struct {
	defs [3][]Definition
	ids  [3]map[uint32]struct{}
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	c := &Catalog{}
	for i := range c.ids {
		c.ids[i] = make(map[uint32]struct{})
	}
	return c
}

// Add appends def to category cat, preserving insertion order.
//
// Postcondition: returns an error if cat is unknown or def.ID is already
// present in cat; the catalog is unchanged in that case.
func (c *Catalog) Add(cat Category, def Definition) error {
	if cat < Marshal || cat > Personal {
		return fmt.Errorf("unknown skill category %d", int(cat))
	}
	if _, dup := c.ids[cat][def.ID]; dup {
		return fmt.Errorf("duplicate %s skill id %d (%q)", cat, def.ID, def.Name)
	}
	c.ids[cat][def.ID] = struct{}{}
	c.defs[cat] = append(c.defs[cat], def)
	return nil
}

// Skills returns the definitions of cat in catalog order. The slice must not
// be modified.
func (c *Catalog) Skills(cat Category) []Definition {
	if cat < Marshal || cat > Personal {
		return nil
	}
	return c.defs[cat]
}

// Eligible returns the number of definitions in cat that are not disabled.
func (c *Catalog) Eligible(cat Category) int {
	n := 0
	for _, d := range c.Skills(cat) {
		if !d.Disabled() {
			n++
		}
	}
	return n
}

// Len returns the total number of definitions across all categories.
func (c *Catalog) Len() int {
	n := 0
	for _, defs := range c.defs {
		n += len(defs)
	}
	return n
}
