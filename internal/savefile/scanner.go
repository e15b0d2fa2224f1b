package savefile

import (
	"bytes"
	"encoding/binary"
)

const (
	// TemplateLen is the length of the record signature.
	TemplateLen = 22
	// CursorAdvance is how far past a match the next search starts.
	CursorAdvance = 900
	// WindowLen bounds the search for every character after #1.
	WindowLen = 1200
	// tailReserve keeps scans clear of the last bytes of the buffer.
	tailReserve = 25
	// relaxedIDSpan bounds the second id occurrence of the relaxed template.
	relaxedIDSpan = 20
)

var (
	markShort = []byte("Mark\x00")
	markLong  = []byte("Mark\x00\x00\x00\x00\x00")
)

// IDBytes returns the two-byte little-endian signature prefix of id.
func IDBytes(id int) [2]byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(id))
	return b
}

// Locate finds the record of character id at or after cursor and returns
// the match offset together with the cursor for the next character.
//
// Character 1 is searched exhaustively, first with the strict template and
// then with the relaxed one; failing both yields ErrCharacterOneNotFound.
// Every other id is searched with the strict template inside a WindowLen
// window; a miss yields ErrCharacterNotFound and returns cursor unchanged.
//
// Postcondition: on success next == match + CursorAdvance and next > cursor.
func Locate(buf []byte, id, cursor int) (match, next int, err error) {
	idb := IDBytes(id)
	limit := len(buf) - tailReserve
	if cursor < 0 {
		cursor = 0
	}

	if id == 1 {
		if m := scan(buf, idb, cursor, limit, strictMatch); m >= 0 {
			return m, m + CursorAdvance, nil
		}
		if m := scan(buf, idb, cursor, limit, relaxedMatch); m >= 0 {
			return m, m + CursorAdvance, nil
		}
		return -1, cursor, ErrCharacterOneNotFound
	}

	if m := scan(buf, idb, cursor, min(cursor+WindowLen, limit), strictMatch); m >= 0 {
		return m, m + CursorAdvance, nil
	}
	return -1, cursor, ErrCharacterNotFound
}

type matcher func(buf []byte, i int, idb [2]byte) bool

// scan returns the first i in [from, to) accepted by match, or -1.
func scan(buf []byte, idb [2]byte, from, to int, match matcher) int {
	for i := from; i < to; i++ {
		if i+TemplateLen > len(buf) {
			break
		}
		if buf[i] != idb[0] || buf[i+1] != idb[1] {
			continue
		}
		if match(buf, i, idb) {
			return i
		}
	}
	return -1
}

// strictMatch checks the full template:
//
//	+0  id (2)   +2  any (2)   +4  "Mark\0"
//	+9  id (2)   +11 any (2)   +13 "Mark\0\0\0\0\0"
func strictMatch(buf []byte, i int, idb [2]byte) bool {
	return bytes.Equal(buf[i+4:i+9], markShort) &&
		buf[i+9] == idb[0] && buf[i+10] == idb[1] &&
		bytes.Equal(buf[i+13:i+TemplateLen], markLong)
}

// relaxedMatch accepts "Mark\0" at either marker position plus any second
// occurrence of the id within the next relaxedIDSpan bytes.
func relaxedMatch(buf []byte, i int, idb [2]byte) bool {
	if !bytes.Equal(buf[i+4:i+9], markShort) && !bytes.Equal(buf[i+13:i+18], markShort) {
		return false
	}
	end := min(i+relaxedIDSpan, len(buf)-2)
	for j := i + 2; j < end; j++ {
		if buf[j] == idb[0] && buf[j+1] == idb[1] {
			return true
		}
	}
	return false
}
