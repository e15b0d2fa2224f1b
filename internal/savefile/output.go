package savefile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// OutputSuffix is appended to the input name when no save slot is chosen.
const OutputSuffix = "_roguelike"

// Save slot numbers accepted for numbered output files.
const (
	MinSlot = 1
	MaxSlot = 98
)

var slotName = regexp.MustCompile(`^(.+)-(\d{3})\.sav$`)

// ErrSameFile is returned when the output path would overwrite the input.
var ErrSameFile = errors.New("output path must differ from the input save file")

// SlotPrefix returns the game's save name prefix of path when its base name
// has the form <prefix>-NNN.sav with NNN in 000..098.
func SlotPrefix(path string) (string, bool) {
	m := slotName.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return "", false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n > MaxSlot {
		return "", false
	}
	return m[1], true
}

// OutputPath derives the output file name for input. With slot 0 the result
// is <input without extension>_roguelike.sav. With a slot in 1..98 and an
// input named <prefix>-NNN.sav the result is <prefix>-<slot>.sav in the same
// directory.
//
// Postcondition: the returned path is never input itself.
func OutputPath(input string, slot int) (string, error) {
	var out string
	switch {
	case slot == 0:
		out = strings.TrimSuffix(input, filepath.Ext(input)) + OutputSuffix + ".sav"
	case slot < MinSlot || slot > MaxSlot:
		return "", fmt.Errorf("save slot must be %d-%d, got %d", MinSlot, MaxSlot, slot)
	default:
		prefix, ok := SlotPrefix(input)
		if !ok {
			return "", fmt.Errorf("cannot derive save slot name: %q is not named <prefix>-NNN.sav", filepath.Base(input))
		}
		out = filepath.Join(filepath.Dir(input), fmt.Sprintf("%s-%03d.sav", prefix, slot))
	}
	if same, err := samePath(input, out); err != nil {
		return "", err
	} else if same {
		return "", fmt.Errorf("%s: %w", out, ErrSameFile)
	}
	return out, nil
}

// WriteOutput writes data to output through a temporary file in the same
// directory followed by a rename, so a failed write never leaves a partial
// output file.
//
// Precondition: output is not the input save file.
func WriteOutput(input, output string, data []byte) error {
	same, err := samePath(input, output)
	if err != nil {
		return err
	}
	if same {
		return fmt.Errorf("%s: %w", output, ErrSameFile)
	}

	tmp, err := os.CreateTemp(filepath.Dir(output), "."+filepath.Base(output)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), output); err != nil {
		return fmt.Errorf("renaming output into place: %w", err)
	}
	return nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, fmt.Errorf("resolving %s: %w", a, err)
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, fmt.Errorf("resolving %s: %w", b, err)
	}
	if absA == absB {
		return true, nil
	}
	ia, errA := os.Stat(absA)
	ib, errB := os.Stat(absB)
	if errA != nil || errB != nil {
		return false, nil
	}
	return os.SameFile(ia, ib), nil
}
