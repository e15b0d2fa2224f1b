package savefile

import (
	"errors"
	"fmt"
)

var (
	// ErrCharacterOneNotFound is returned when neither the strict nor the
	// relaxed template locates character 1. No output may be written.
	ErrCharacterOneNotFound = errors.New("character #1 signature not found")
	// ErrCharacterNotFound is returned when a character other than #1 is not
	// present within its bounded search window. Processing continues.
	ErrCharacterNotFound = errors.New("character signature not found in search window")
	// ErrFieldOutOfRange is wrapped by every FieldReadError.
	ErrFieldOutOfRange = errors.New("derived field offset outside save buffer")
)

// FieldReadError reports a derived offset that points outside the buffer.
// It aborts the whole run because it indicates a false signature match or a
// layout this tool does not understand.
type FieldReadError struct {
	CharacterID int
	Field       string
	Offset      int
	Length      int
	BufferLen   int
}

func (e *FieldReadError) Error() string {
	return fmt.Sprintf("character #%d: reading %s (%d bytes at 0x%X) past end of %d-byte buffer",
		e.CharacterID, e.Field, e.Length, e.Offset, e.BufferLen)
}

// Unwrap lets errors.Is match ErrFieldOutOfRange.
func (e *FieldReadError) Unwrap() error {
	return ErrFieldOutOfRange
}
