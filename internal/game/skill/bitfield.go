package skill

// ByteLen returns the number of bytes the bitfield for defs occupies:
// ceil((max ID + 1) / 8), or 0 when defs is empty.
func ByteLen(defs []Definition) int {
	if len(defs) == 0 {
		return 0
	}
	var maxID uint32
	for _, d := range defs {
		if d.ID > maxID {
			maxID = d.ID
		}
	}
	return int(maxID/8) + 1
}

// IsSet reports whether bit id is set in field. Bits beyond the end of field
// read as unset.
func IsSet(field []byte, id uint32) bool {
	idx := int(id / 8)
	if idx >= len(field) {
		return false
	}
	return field[idx]&(1<<(id%8)) != 0
}

// Decode returns the enabled definitions whose bit is set in field, in
// catalog order.
//
// Postcondition: no returned definition is Disabled.
func Decode(field []byte, defs []Definition) []Definition {
	var active []Definition
	for _, d := range defs {
		if d.Disabled() {
			continue
		}
		if IsSet(field, d.BitPosition()) {
			active = append(active, d)
		}
	}
	return active
}

// Set sets the bit of def in field, growing field with zero bytes when the
// bit lies past its end, and returns the (possibly reallocated) field.
//
// Postcondition: no bit that was set in field is cleared.
func Set(field []byte, def Definition) []byte {
	idx := int(def.BitPosition() / 8)
	for len(field) <= idx {
		field = append(field, 0)
	}
	field[idx] |= 1 << (def.BitPosition() % 8)
	return field
}
