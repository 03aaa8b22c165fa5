package session

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"example.com/timexdr/internal/eeprom"
)

// Fingerprint hashes a session's header, footer and body. The same
// activity downloaded twice from a recorder that was not cleared in
// between yields the same fingerprint.
func Fingerprint(s *eeprom.Session) uint64 {
	d := xxhash.New()
	d.Write(s.Header.Encode())
	d.Write(s.Footer.Encode())
	d.Write(s.Body)
	return d.Sum64()
}

// FormatFingerprint renders a fingerprint as 16 hex digits.
func FormatFingerprint(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}

// Dedup remembers session fingerprints across the dumps of one run.
type Dedup struct {
	seen map[uint64]struct{}
}

func NewDedup() *Dedup {
	return &Dedup{seen: make(map[uint64]struct{})}
}

// Seen reports whether fp was seen before and records it.
func (d *Dedup) Seen(fp uint64) bool {
	if d == nil {
		return false
	}
	if _, ok := d.seen[fp]; ok {
		return true
	}
	d.seen[fp] = struct{}{}
	return false
}
