package session

import (
	"errors"
	"fmt"

	"example.com/timexdr/internal/eeprom"
	"example.com/timexdr/internal/gps"
	"example.com/timexdr/internal/hrm"
)

// Device-type tags. Only the high nibble of a tag is significant.
const (
	TagMask     = 0xF0
	TagHR       = 0x00
	TagGPS      = 0x20
	TagCombined = 0xFF
)

var (
	ErrUnknownDeviceType     = errors.New("unknown device type")
	ErrUnknownSubRecordType  = errors.New("unknown sub-record type in multi-device session")
	ErrMalformedMultiSession = errors.New("malformed multi-device session")
)

type Kind string

const (
	KindHR       Kind = "hrm"
	KindGPS      Kind = "gps"
	KindCombined Kind = "multi"
)

// Classify maps a device-type tag to the session kind that decodes it.
func Classify(tag byte) (Kind, error) {
	switch tag & TagMask {
	case TagHR:
		return KindHR, nil
	case TagGPS:
		return KindGPS, nil
	case TagCombined & TagMask:
		return KindCombined, nil
	default:
		return "", ErrUnknownDeviceType
	}
}

// DecodeError locates a failure in the raw dump: Session is the access
// table order, Offset the logical stream offset, Tag the offending byte.
type DecodeError struct {
	Session int
	Offset  int
	Tag     byte
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("session %d at offset 0x%06x (tag 0x%02x): %v", e.Session, e.Offset, e.Tag, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decoded is one heart-rate or GPS session ready for output. Sessions
// split out of a multi-device session share Index and carry Combined.
type Decoded struct {
	Index       int           `json:"index"`
	Kind        Kind          `json:"kind"`
	Combined    bool          `json:"combined,omitempty"`
	Header      eeprom.Header `json:"header"`
	Footer      eeprom.Header `json:"footer"`
	Fingerprint string        `json:"fingerprint"`
	Units       gps.Units     `json:"units,omitempty"`
	HR          []hrm.Sample  `json:"hr,omitempty"`
	GPS         *gps.Result   `json:"gps,omitempty"`
	// Incomplete is set when decoding stopped early; the samples before
	// the failure are kept.
	Incomplete bool `json:"incomplete,omitempty"`
}

// PacketErrors counts missing and corrupted samples or packets.
func (d *Decoded) PacketErrors() int {
	n := 0
	for _, s := range d.HR {
		if !s.Valid() {
			n++
		}
	}
	if d.GPS != nil {
		for _, f := range d.GPS.Fixes {
			if f.IsError() {
				n++
			}
		}
	}
	return n
}

// Samples returns the number of HR samples or GPS fixes.
func (d *Decoded) Samples() int {
	if d.GPS != nil {
		return len(d.GPS.Fixes)
	}
	return len(d.HR)
}

// Distance returns the last corrected distance of a GPS session.
func (d *Decoded) Distance() float64 {
	if d.GPS == nil {
		return 0
	}
	for i := len(d.GPS.Fixes) - 1; i >= 0; i-- {
		if st := d.GPS.Fixes[i].Status; st != nil {
			return st.Distance
		}
	}
	return 0
}

// Sink receives decoded sessions in access-table order.
type Sink interface {
	WriteSession(d *Decoded) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(d *Decoded) error

func (f SinkFunc) WriteSession(d *Decoded) error {
	return f(d)
}

// MultiSink fans every session out to all sinks in order.
type MultiSink []Sink

func (m MultiSink) WriteSession(d *Decoded) error {
	for _, s := range m {
		if err := s.WriteSession(d); err != nil {
			return err
		}
	}
	return nil
}
