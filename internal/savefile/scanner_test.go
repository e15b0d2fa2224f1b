package savefile_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/RanceJen/roguelike-sg7/internal/game/skill"
	"github.com/RanceJen/roguelike-sg7/internal/savefile"
)

func TestIDBytes_LittleEndian(t *testing.T) {
	assert.Equal(t, [2]byte{0x01, 0x00}, savefile.IDBytes(1))
	assert.Equal(t, [2]byte{0x3F, 0x03}, savefile.IDBytes(831))
}

func TestLocate_CharacterOneExhaustive(t *testing.T) {
	buf := make([]byte, 0x8000)
	putTemplate(buf, 0x6123, 1)

	match, next, err := savefile.Locate(buf, 1, 0x100)
	require.NoError(t, err)
	assert.Equal(t, 0x6123, match)
	assert.Equal(t, 0x6123+savefile.CursorAdvance, next)
}

func TestLocate_CharacterOneBeforeCursorIsMissed(t *testing.T) {
	buf := make([]byte, 0x4000)
	putTemplate(buf, 0x100, 1)

	_, next, err := savefile.Locate(buf, 1, 0x200)
	assert.ErrorIs(t, err, savefile.ErrCharacterOneNotFound)
	assert.Equal(t, 0x200, next)
}

func TestLocate_CharacterOneRelaxed(t *testing.T) {
	buf := make([]byte, 0x2000)
	off := 0x400
	putTemplate(buf, off, 1)
	// Break the long marker so the strict template fails.
	buf[off+13] = 'X'

	match, _, err := savefile.Locate(buf, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, off, match)
}

func TestLocate_RelaxedNeedsSecondID(t *testing.T) {
	buf := make([]byte, 0x2000)
	off := 0x400
	idb := savefile.IDBytes(1)
	copy(buf[off:], idb[:])
	copy(buf[off+4:], "Mark\x00")

	_, _, err := savefile.Locate(buf, 1, 0)
	assert.ErrorIs(t, err, savefile.ErrCharacterOneNotFound)

	buf[off+15], buf[off+16] = idb[0], idb[1]
	match, _, err := savefile.Locate(buf, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, off, match)
}

func TestLocate_RelaxedNotUsedForLaterIDs(t *testing.T) {
	buf := make([]byte, 0x2000)
	putTemplate(buf, 0x100, 2)
	buf[0x100+13] = 'X'

	_, _, err := savefile.Locate(buf, 2, 0)
	assert.ErrorIs(t, err, savefile.ErrCharacterNotFound)
}

func TestLocate_BoundedWindow(t *testing.T) {
	buf := make([]byte, 0x4000)
	cursor := 0x500
	putTemplate(buf, cursor+savefile.WindowLen+10, 2)

	match, next, err := savefile.Locate(buf, 2, cursor)
	assert.True(t, errors.Is(err, savefile.ErrCharacterNotFound))
	assert.Equal(t, -1, match)
	assert.Equal(t, cursor, next, "a miss leaves the cursor unchanged")

	putTemplate(buf, cursor+savefile.WindowLen-1, 2)
	match, next, err = savefile.Locate(buf, 2, cursor)
	require.NoError(t, err)
	assert.Equal(t, cursor+savefile.WindowLen-1, match)
	assert.Equal(t, match+savefile.CursorAdvance, next)
}

func TestLocate_WindowClampedAtBufferEnd(t *testing.T) {
	buf := make([]byte, 0x600)
	putTemplate(buf, 0x5D0, 3)

	match, _, err := savefile.Locate(buf, 3, 0x500)
	require.NoError(t, err)
	assert.Equal(t, 0x5D0, match)
}

func TestLocate_IgnoresOtherIDs(t *testing.T) {
	buf := make([]byte, 0x2000)
	putTemplate(buf, 0x200, 7)
	putTemplate(buf, 0x300, 1)

	match, _, err := savefile.Locate(buf, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 0x300, match)
}

// TestLocate_CursorMonotonic verifies that successful matches never move the
// cursor backwards and misses never move it at all.
func TestLocate_CursorMonotonic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		buf := rapid.SliceOfN(rapid.Byte(), 64, 4096).Draw(rt, "buf")
		id := rapid.IntRange(1, 4).Draw(rt, "id")
		if rapid.Bool().Draw(rt, "plant") && len(buf) > 60 {
			putTemplate(buf, rapid.IntRange(0, len(buf)-40).Draw(rt, "at"), id)
		}
		cursor := rapid.IntRange(0, len(buf)).Draw(rt, "cursor")

		match, next, err := savefile.Locate(buf, id, cursor)
		if err != nil {
			assert.Equal(rt, cursor, next)
			return
		}
		assert.GreaterOrEqual(rt, match, cursor)
		assert.Equal(rt, match+savefile.CursorAdvance, next)
	})
}

func TestResolve_Offsets(t *testing.T) {
	buf := make([]byte, 0x1000)
	str := putRecord(buf, 0x40, testRecord{id: 1, skip: 3, strength: 100, intel: 90})

	rec, err := savefile.Resolve(buf, 1, 0x40)
	require.NoError(t, err)
	assert.Equal(t, int32(3), rec.SkipCount)
	assert.Equal(t, 0x40+26+12, rec.StrengthOffset)
	assert.Equal(t, str, rec.StrengthOffset)
	assert.Equal(t, str+4, rec.IntelligenceOffset)
	assert.Equal(t, str+0x28C, rec.SkillOffsets[skill.Personal])
	assert.Equal(t, str+0x29C, rec.SkillOffsets[skill.Commander])
	assert.Equal(t, str+0x2AC, rec.SkillOffsets[skill.Marshal])

	s, i, err := rec.Stats(buf)
	require.NoError(t, err)
	assert.Equal(t, int32(100), s)
	assert.Equal(t, int32(90), i)
}

func TestResolve_NonPositiveSkipIgnored(t *testing.T) {
	buf := make([]byte, 0x1000)
	putRecord(buf, 0x40, testRecord{id: 1, skip: -5})

	rec, err := savefile.Resolve(buf, 1, 0x40)
	require.NoError(t, err)
	assert.Equal(t, 0x40+26, rec.StrengthOffset)
}

func TestResolve_OutOfRange(t *testing.T) {
	buf := make([]byte, 0x100)
	putTemplate(buf, 0x100-24, 1)

	_, err := savefile.Resolve(buf, 1, 0x100-24)
	require.Error(t, err)
	assert.ErrorIs(t, err, savefile.ErrFieldOutOfRange)
	var fre *savefile.FieldReadError
	require.ErrorAs(t, err, &fre)
	assert.Equal(t, "skip count", fre.Field)
}

func TestRecord_StatsAndSkillBytesOutOfRange(t *testing.T) {
	buf := make([]byte, 0x200)
	putTemplate(buf, 0x10, 1)
	binary32(buf, 0x10+22, 1000)

	rec, err := savefile.Resolve(buf, 1, 0x10)
	require.NoError(t, err)
	_, _, err = rec.Stats(buf)
	assert.ErrorIs(t, err, savefile.ErrFieldOutOfRange)

	_, err = rec.SkillBytes(buf, skill.Marshal, 1)
	assert.ErrorIs(t, err, savefile.ErrFieldOutOfRange)
	assert.ErrorIs(t, rec.CommitSkillBytes(buf, skill.Marshal, []byte{1}), savefile.ErrFieldOutOfRange)
}

func binary32(buf []byte, off int, v int32) {
	buf[off] = byte(v)
	buf[off+1] = byte(v >> 8)
	buf[off+2] = byte(v >> 16)
	buf[off+3] = byte(v >> 24)
}
