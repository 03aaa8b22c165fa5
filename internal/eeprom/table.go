package eeprom

import (
	"errors"
	"fmt"
)

var (
	ErrCorruptedIndex = errors.New("corrupted access table")
	ErrTruncatedImage = errors.New("image shorter than access table")
)

// IndexError reports an access-table entry that cannot describe a valid
// session boundary.
type IndexError struct {
	Slot   int
	Start  int
	End    int
	Reason string
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%v: slot %d (start 0x%06x, end 0x%06x): %s", ErrCorruptedIndex, e.Slot, e.Start, e.End, e.Reason)
}

func (e *IndexError) Unwrap() error {
	return ErrCorruptedIndex
}

// Address decodes a 24-bit table address stored least significant byte
// first.
func Address(b0, b1, b2 byte) int {
	return int(b0) | int(b1)<<8 | int(b2)<<16
}

// ReadAccessTable returns the session end boundaries listed in the access
// table at the start of the logical stream. Slot 0 is skipped because the
// first session always starts at FirstSession; the walk stops at the first
// zero address or after MaxSlots-1 entries.
func ReadAccessTable(stream []byte) ([]int, error) {
	if len(stream) < AccessTableLen {
		return nil, fmt.Errorf("%w: %d < %d bytes", ErrTruncatedImage, len(stream), AccessTableLen)
	}
	var ends []int
	for i := 1; i < MaxSlots; i++ {
		off := i * AddressSize
		addr := Address(stream[off], stream[off+1], stream[off+2])
		if addr == 0 {
			break
		}
		ends = append(ends, addr)
	}
	return ends, nil
}

// PutAddress writes addr into table slot i. Used to build synthetic images.
func PutAddress(table []byte, slot int, addr int) {
	off := slot * AddressSize
	table[off] = byte(addr)
	table[off+1] = byte(addr >> 8)
	table[off+2] = byte(addr >> 16)
}
