package eeprom

import "fmt"

// TransferMarker is the control byte the transport places at the start of
// every page.
const TransferMarker = 0x02

// Builder assembles a synthetic EEPROM image from session records. It is
// the inverse of Sessions and exists for tests and sample generation.
type Builder struct {
	sessions [][]byte
}

// AddSession appends a session made of header, body and footer.
func (b *Builder) AddSession(header, footer Header, body []byte) *Builder {
	rec := make([]byte, 0, HeaderSize+len(body)+FooterSize)
	rec = append(rec, header.Encode()...)
	rec = append(rec, body...)
	rec = append(rec, footer.Encode()...)
	b.sessions = append(b.sessions, rec)
	return b
}

// Stream returns the logical stream: the access table followed by the
// session records.
func (b *Builder) Stream() ([]byte, error) {
	if len(b.sessions) > MaxSlots-1 {
		return nil, fmt.Errorf("too many sessions: %d > %d", len(b.sessions), MaxSlots-1)
	}
	stream := make([]byte, FirstSession)
	PutAddress(stream, 0, FirstSession)
	for i, rec := range b.sessions {
		stream = append(stream, rec...)
		PutAddress(stream, i+1, len(stream))
	}
	return stream, nil
}

// Image returns the framed raw image as the transport would deliver it.
func (b *Builder) Image() ([]byte, error) {
	stream, err := b.Stream()
	if err != nil {
		return nil, err
	}
	return Frame(stream, TransferMarker), nil
}
