package savefile

import (
	"encoding/binary"

	"github.com/RanceJen/roguelike-sg7/internal/game/skill"
)

// Offsets of the skill bitfields relative to the strength field.
const (
	PersonalSkillDelta  = 0x28C
	CommanderSkillDelta = 0x29C
	MarshalSkillDelta   = 0x2AC
)

// Record holds the resolved field offsets of one character.
type Record struct {
	ID                 int
	Offset             int
	SkipCount          int32
	StrengthOffset     int
	IntelligenceOffset int
	SkillOffsets       [3]int
}

// Resolve reads the length prefix following the template at offset and
// derives every field position of character id.
//
// Postcondition: returns a *FieldReadError if the skip count lies outside buf.
func Resolve(buf []byte, id, offset int) (Record, error) {
	skipAt := offset + TemplateLen
	skip, err := readInt32(buf, id, "skip count", skipAt)
	if err != nil {
		return Record{}, err
	}
	str := skipAt + 4
	if skip > 0 {
		str += int(skip) * 4
	}
	rec := Record{
		ID:                 id,
		Offset:             offset,
		SkipCount:          skip,
		StrengthOffset:     str,
		IntelligenceOffset: str + 4,
	}
	rec.SkillOffsets[skill.Personal] = str + PersonalSkillDelta
	rec.SkillOffsets[skill.Commander] = str + CommanderSkillDelta
	rec.SkillOffsets[skill.Marshal] = str + MarshalSkillDelta
	return rec, nil
}

// Stats reads the strength and intelligence values of r.
func (r Record) Stats(buf []byte) (strength, intelligence int32, err error) {
	if strength, err = readInt32(buf, r.ID, "strength", r.StrengthOffset); err != nil {
		return 0, 0, err
	}
	if intelligence, err = readInt32(buf, r.ID, "intelligence", r.IntelligenceOffset); err != nil {
		return 0, 0, err
	}
	return strength, intelligence, nil
}

// SkillBytes returns a copy of the n bitfield bytes of cat.
func (r Record) SkillBytes(buf []byte, cat skill.Category, n int) ([]byte, error) {
	off := r.SkillOffsets[cat]
	if err := r.check(buf, cat.String()+" skills", off, n); err != nil {
		return nil, err
	}
	return append([]byte(nil), buf[off:off+n]...), nil
}

// CommitSkillBytes writes field back to the bitfield of cat.
func (r Record) CommitSkillBytes(buf []byte, cat skill.Category, field []byte) error {
	off := r.SkillOffsets[cat]
	if err := r.check(buf, cat.String()+" skills", off, len(field)); err != nil {
		return err
	}
	copy(buf[off:], field)
	return nil
}

func (r Record) check(buf []byte, field string, off, n int) error {
	return checkRange(buf, r.ID, field, off, n)
}

func checkRange(buf []byte, id int, field string, off, n int) error {
	if off < 0 || n < 0 || off > len(buf)-n {
		return &FieldReadError{CharacterID: id, Field: field, Offset: off, Length: n, BufferLen: len(buf)}
	}
	return nil
}

func readInt32(buf []byte, id int, field string, off int) (int32, error) {
	if err := checkRange(buf, id, field, off, 4); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[off:])), nil
}
