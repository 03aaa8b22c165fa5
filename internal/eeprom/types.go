package eeprom

import (
	"fmt"
	"time"
)

const (
	PageSize     = 256
	DataPageSize = PageSize - 1

	// FirstSession is the logical offset of the first session header.
	FirstSession   = 0x180
	AccessTableLen = 384
	AddressSize    = 3
	MaxSlots       = AccessTableLen / AddressSize

	HeaderSize = 7
	FooterSize = 7
)

// Header is the 7-byte timestamp record that opens and closes a session.
// Year, Month and Day are already bias-corrected.
type Header struct {
	Device byte `json:"device"`
	Year   int  `json:"year"`
	Month  int  `json:"month"`
	Day    int  `json:"day"`
	Hour   int  `json:"hour"`
	Minute int  `json:"minute"`
	Second int  `json:"second"`
}

// ParseHeader decodes a header or footer record. The device byte comes
// first, followed by seconds, minutes, hours, day, month and year offset.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("header too short: %d bytes", len(b))
	}
	return Header{
		Device: b[0],
		Second: int(b[1]),
		Minute: int(b[2]),
		Hour:   int(b[3]),
		Day:    1 + int(b[4]),
		Month:  1 + int(b[5]),
		Year:   2000 + int(b[6]),
	}, nil
}

// Encode is the inverse of ParseHeader.
func (h Header) Encode() []byte {
	return []byte{
		h.Device,
		byte(h.Second),
		byte(h.Minute),
		byte(h.Hour),
		byte(h.Day - 1),
		byte(h.Month - 1),
		byte(h.Year - 2000),
	}
}

// Time converts the header timestamp into a time.Time in loc. The device
// clock carries no zone, so loc is normally the zone it was synchronized in.
func (h Header) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(h.Year, time.Month(h.Month), h.Day, h.Hour, h.Minute, h.Second, 0, loc)
}

func (h Header) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", h.Year, h.Month, h.Day, h.Hour, h.Minute, h.Second)
}

// Session is one recorded activity sliced out of the logical stream. Body
// is a view into the stream owned by the splitter and must not be modified.
type Session struct {
	Index  int    `json:"index"`
	Offset int    `json:"offset"`
	Header Header `json:"header"`
	Footer Header `json:"footer"`
	Body   []byte `json:"-"`
	// Origin maps each byte of a rebuilt Body back to its stream offset.
	// Nil when Body is a direct slice of the stream.
	Origin []int `json:"-"`
}

// Device returns the device-type tag that selects the session decoder.
func (s *Session) Device() byte {
	return s.Header.Device
}

// BodyOffset is the logical stream offset of the first body byte.
func (s *Session) BodyOffset() int {
	return s.Offset + HeaderSize
}

// StreamOffset returns the logical stream offset of body byte i.
func (s *Session) StreamOffset(i int) int {
	if s.Origin != nil && i >= 0 && i < len(s.Origin) {
		return s.Origin[i]
	}
	if s.Origin != nil && i == len(s.Origin) && i > 0 {
		return s.Origin[i-1] + 1
	}
	return s.BodyOffset() + i
}
