package savefile_test

import (
	"encoding/binary"

	"github.com/RanceJen/roguelike-sg7/internal/savefile"
)

// testRecord describes a synthetic character record.
type testRecord struct {
	id        int
	skip      int32
	strength  int32
	intel     int32
	personal  []byte
	commander []byte
	marshal   []byte
}

// putTemplate writes the 22-byte signature of id at off.
func putTemplate(buf []byte, off, id int) {
	idb := savefile.IDBytes(id)
	copy(buf[off:], idb[:])
	buf[off+2], buf[off+3] = 0xAA, 0xBB
	copy(buf[off+4:], "Mark\x00")
	copy(buf[off+9:], idb[:])
	buf[off+11], buf[off+12] = 0xCC, 0xDD
	copy(buf[off+13:], "Mark\x00\x00\x00\x00\x00")
}

// putRecord writes r at off and returns the strength offset.
func putRecord(buf []byte, off int, r testRecord) int {
	putTemplate(buf, off, r.id)
	binary.LittleEndian.PutUint32(buf[off+22:], uint32(r.skip))
	str := off + 26
	if r.skip > 0 {
		str += int(r.skip) * 4
		for i := 0; i < int(r.skip); i++ {
			binary.LittleEndian.PutUint32(buf[off+26+i*4:], 0xFFFFFFFF)
		}
	}
	binary.LittleEndian.PutUint32(buf[str:], uint32(r.strength))
	binary.LittleEndian.PutUint32(buf[str+4:], uint32(r.intel))
	copy(buf[str+savefile.PersonalSkillDelta:], r.personal)
	copy(buf[str+savefile.CommanderSkillDelta:], r.commander)
	copy(buf[str+savefile.MarshalSkillDelta:], r.marshal)
	return str
}

// scriptedSource returns the queued values in order, clamped to n-1, and
// 0 once the script is exhausted.
type scriptedSource struct{ vals []int }

func (s *scriptedSource) Intn(n int) int {
	if len(s.vals) == 0 {
		return 0
	}
	v := s.vals[0]
	s.vals = s.vals[1:]
	if v >= n {
		return n - 1
	}
	return v
}
