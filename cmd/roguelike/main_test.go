package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRules = `last_character_number=2

个人
0;勇猛;攻擊提升;10
1;鐵壁;防禦提升;12
`

const testConfig = `
logging:
  level: error
  format: json
scan:
  start_offset: 0
`

type fixture struct {
	dir    string
	save   string
	rules  string
	config string
}

func newFixture(t *testing.T, save []byte) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:    dir,
		save:   filepath.Join(dir, "SAN7-002.sav"),
		rules:  filepath.Join(dir, "roguelike.conf"),
		config: filepath.Join(dir, "app.yaml"),
	}
	require.NoError(t, os.WriteFile(f.save, save, 0o644))
	require.NoError(t, os.WriteFile(f.rules, []byte(testRules), 0o644))
	require.NoError(t, os.WriteFile(f.config, []byte(testConfig), 0o644))
	return f
}

func saveWithCharacter(id int) []byte {
	buf := make([]byte, 0x1000)
	off := 0x40
	binary.LittleEndian.PutUint16(buf[off:], uint16(id))
	copy(buf[off+4:], "Mark\x00")
	binary.LittleEndian.PutUint16(buf[off+9:], uint16(id))
	copy(buf[off+13:], "Mark\x00\x00\x00\x00\x00")
	binary.LittleEndian.PutUint32(buf[off+26:], 100)
	binary.LittleEndian.PutUint32(buf[off+30:], 90)
	return buf
}

func TestRun_WritesDefaultOutput(t *testing.T) {
	f := newFixture(t, saveWithCharacter(1))
	var stdout, stderr bytes.Buffer

	code := run([]string{"-config", f.config, "-rules", f.rules, "-seed", "42", f.save}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := filepath.Join(f.dir, "SAN7-002_roguelike.sav")
	assert.Contains(t, stdout.String(), "processed 1 characters, modified ")
	assert.Contains(t, stdout.String(), out)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, got, 0x1000)
	orig, err := os.ReadFile(f.save)
	require.NoError(t, err)
	assert.Equal(t, saveWithCharacter(1), orig, "input save untouched")
}

func TestRun_SeedIsReproducible(t *testing.T) {
	f := newFixture(t, saveWithCharacter(1))
	var a, b bytes.Buffer
	outA := filepath.Join(f.dir, "a.sav")
	outB := filepath.Join(f.dir, "b.sav")

	require.Equal(t, 0, run([]string{"-config", f.config, "-rules", f.rules, "-seed", "7", "-output", outA, f.save}, &a, &bytes.Buffer{}))
	require.Equal(t, 0, run([]string{"-config", f.config, "-rules", f.rules, "-seed", "7", "-output", outB, f.save}, &b, &bytes.Buffer{}))

	gotA, err := os.ReadFile(outA)
	require.NoError(t, err)
	gotB, err := os.ReadFile(outB)
	require.NoError(t, err)
	assert.Equal(t, gotA, gotB)
}

func TestRun_SlotOutput(t *testing.T) {
	f := newFixture(t, saveWithCharacter(1))
	var stdout bytes.Buffer

	code := run([]string{"-config", f.config, "-rules", f.rules, "-slot", "5", f.save}, &stdout, &bytes.Buffer{})
	require.Equal(t, 0, code)
	_, err := os.Stat(filepath.Join(f.dir, "SAN7-005.sav"))
	assert.NoError(t, err)
}

func TestRun_MissingCharacterOneWritesNothing(t *testing.T) {
	f := newFixture(t, saveWithCharacter(2))
	var stdout, stderr bytes.Buffer

	code := run([]string{"-config", f.config, "-rules", f.rules, f.save}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "no character records found")

	_, err := os.Stat(filepath.Join(f.dir, "SAN7-002_roguelike.sav"))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_SameSlotRefused(t *testing.T) {
	f := newFixture(t, saveWithCharacter(1))
	code := run([]string{"-config", f.config, "-rules", f.rules, "-slot", "2", f.save}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Equal(t, 1, code)
}

func TestRun_OutputAndSlotConflict(t *testing.T) {
	f := newFixture(t, saveWithCharacter(1))
	var stderr bytes.Buffer
	out := filepath.Join(f.dir, "x.sav")

	code := run([]string{"-config", f.config, "-rules", f.rules, "-slot", "5", "-output", out, f.save}, &bytes.Buffer{}, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "-output and -slot cannot be used together")
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(f.dir, "SAN7-005.sav"))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_BadRulesFile(t *testing.T) {
	f := newFixture(t, saveWithCharacter(1))
	require.NoError(t, os.WriteFile(f.rules, []byte("个人\nx;bad;line;1\n"), 0o644))

	code := run([]string{"-config", f.config, "-rules", f.rules, f.save}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Equal(t, 1, code)
	_, err := os.Stat(filepath.Join(f.dir, "SAN7-002_roguelike.sav"))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_Usage(t *testing.T) {
	var stderr bytes.Buffer
	assert.Equal(t, 1, run(nil, &bytes.Buffer{}, &stderr))
	assert.Contains(t, stderr.String(), "usage: roguelike")
}
