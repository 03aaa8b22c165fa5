package eeprom

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

var (
	testHeader = Header{Device: 0x00, Year: 2006, Month: 3, Day: 14, Hour: 7, Minute: 30, Second: 5}
	testFooter = Header{Device: 0x00, Year: 2006, Month: 3, Day: 14, Hour: 8, Minute: 1, Second: 59}
)

func TestDeframeFullPages(t *testing.T) {
	for _, pages := range []int{1, 2, 5} {
		raw := make([]byte, pages*PageSize)
		for i := range raw {
			if i%PageSize == 0 {
				raw[i] = TransferMarker
				continue
			}
			raw[i] = byte(i % 251)
		}
		out := Deframe(raw)
		if len(out) != pages*DataPageSize {
			t.Fatalf("pages=%d: len = %d, want %d", pages, len(out), pages*DataPageSize)
		}
		if bytes.Count(out, []byte{TransferMarker}) != bytes.Count(raw, []byte{TransferMarker})-pages {
			t.Fatalf("pages=%d: marker bytes not dropped exactly once", pages)
		}
		for p := 0; p < pages; p++ {
			want := raw[p*PageSize+1 : (p+1)*PageSize]
			got := out[p*DataPageSize : (p+1)*DataPageSize]
			if !bytes.Equal(got, want) {
				t.Fatalf("pages=%d: page %d payload mismatch", pages, p)
			}
		}
	}
}

func TestDeframePartialPage(t *testing.T) {
	raw := make([]byte, PageSize+10)
	for i := range raw {
		raw[i] = byte(i)
	}
	out := Deframe(raw)
	if want := len(raw) - 2; len(out) != want {
		t.Fatalf("len = %d, want %d", len(out), want)
	}
	if !bytes.Equal(out[DataPageSize:], raw[PageSize+1:]) {
		t.Fatalf("partial page payload = %x, want %x", out[DataPageSize:], raw[PageSize+1:])
	}
	if got := Deframe(nil); len(got) != 0 {
		t.Fatalf("Deframe(nil) len = %d, want 0", len(got))
	}
}

func TestFrameRoundTrip(t *testing.T) {
	stream := bytes.Repeat([]byte{0xAB}, 600)
	raw := Frame(stream, TransferMarker)
	if len(raw)%PageSize != 0 {
		t.Fatalf("framed length %d is not a whole number of pages", len(raw))
	}
	out := Deframe(raw)
	if !bytes.Equal(out[:len(stream)], stream) {
		t.Fatalf("round trip mismatch")
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		n, size, want int
	}{
		{0, PageSize, 0},
		{1, PageSize, 1},
		{PageSize, PageSize, 1},
		{PageSize + 1, PageSize, 2},
		{510, DataPageSize, 2},
	}
	for _, tc := range tests {
		if got := PageCount(tc.n, tc.size); got != tc.want {
			t.Fatalf("PageCount(%d, %d) = %d, want %d", tc.n, tc.size, got, tc.want)
		}
	}
}

func TestParseHeaderBias(t *testing.T) {
	h, err := ParseHeader([]byte{0x20, 5, 30, 7, 13, 2, 6})
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	want := Header{Device: 0x20, Year: 2006, Month: 3, Day: 14, Hour: 7, Minute: 30, Second: 5}
	if h != want {
		t.Fatalf("header = %+v, want %+v", h, want)
	}
	if !bytes.Equal(h.Encode(), []byte{0x20, 5, 30, 7, 13, 2, 6}) {
		t.Fatalf("Encode = %x", h.Encode())
	}
	got := h.Time(time.UTC)
	if !got.Equal(time.Date(2006, 3, 14, 7, 30, 5, 0, time.UTC)) {
		t.Fatalf("Time = %v", got)
	}
	if _, err := ParseHeader([]byte{1, 2}); err == nil {
		t.Fatalf("expected error for short header")
	}
}

func TestReadAccessTableStopsAtZero(t *testing.T) {
	stream := make([]byte, AccessTableLen)
	PutAddress(stream, 0, FirstSession)
	PutAddress(stream, 1, 0x200)
	PutAddress(stream, 2, 0x012345)
	PutAddress(stream, 4, 0x400)
	ends, err := ReadAccessTable(stream)
	if err != nil {
		t.Fatalf("ReadAccessTable: %v", err)
	}
	if len(ends) != 2 || ends[0] != 0x200 || ends[1] != 0x012345 {
		t.Fatalf("ends = %x, want [200 12345]", ends)
	}
}

func TestReadAccessTableMaxSlots(t *testing.T) {
	stream := make([]byte, AccessTableLen)
	for i := 0; i < MaxSlots; i++ {
		PutAddress(stream, i, FirstSession+i*20)
	}
	ends, err := ReadAccessTable(stream)
	if err != nil {
		t.Fatalf("ReadAccessTable: %v", err)
	}
	if len(ends) != MaxSlots-1 {
		t.Fatalf("len(ends) = %d, want %d", len(ends), MaxSlots-1)
	}
}

func TestReadAccessTableTruncated(t *testing.T) {
	if _, err := ReadAccessTable(make([]byte, 10)); !errors.Is(err, ErrTruncatedImage) {
		t.Fatalf("expected ErrTruncatedImage, got %v", err)
	}
}

func TestSplitBodyLength(t *testing.T) {
	var b Builder
	b.AddSession(testHeader, testFooter, []byte{0x46, 0x00, 0x50})
	b.AddSession(testHeader, testFooter, nil)
	gps := testHeader
	gps.Device = 0x21
	b.AddSession(gps, gps, bytes.Repeat([]byte{0x12, 0x00}, 4))
	stream, err := b.Stream()
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	ends, err := ReadAccessTable(stream)
	if err != nil {
		t.Fatalf("ReadAccessTable: %v", err)
	}
	sessions, err := Split(stream, ends)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("sessions = %d, want 3", len(sessions))
	}
	start := FirstSession
	for i, s := range sessions {
		if s.Offset != start {
			t.Fatalf("session %d offset = %d, want %d", i, s.Offset, start)
		}
		if want := ends[i] - start - 14; len(s.Body) != want {
			t.Fatalf("session %d body length = %d, want %d", i, len(s.Body), want)
		}
		start = ends[i]
	}
	if sessions[0].Header != testHeader || sessions[0].Footer != testFooter {
		t.Fatalf("session 0 timestamps = %v / %v", sessions[0].Header, sessions[0].Footer)
	}
	if !bytes.Equal(sessions[0].Body, []byte{0x46, 0x00, 0x50}) {
		t.Fatalf("session 0 body = %x", sessions[0].Body)
	}
	if sessions[2].Device() != 0x21 {
		t.Fatalf("session 2 device = 0x%02x, want 0x21", sessions[2].Device())
	}
}

func TestSplitCorruptedIndex(t *testing.T) {
	stream := make([]byte, 0x400)
	tests := []struct {
		name string
		ends []int
	}{
		{name: "not increasing", ends: []int{0x200, 0x1F0}},
		{name: "equal to start", ends: []int{FirstSession}},
		{name: "shorter than header and footer", ends: []int{FirstSession + 10}},
		{name: "beyond image", ends: []int{0x500}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Split(stream, tc.ends)
			if !errors.Is(err, ErrCorruptedIndex) {
				t.Fatalf("expected ErrCorruptedIndex, got %v", err)
			}
			var ie *IndexError
			if !errors.As(err, &ie) {
				t.Fatalf("expected *IndexError, got %T", err)
			}
		})
	}
}

func TestSessionsEmptyHRSession(t *testing.T) {
	var b Builder
	b.AddSession(testHeader, testFooter, nil)
	raw, err := b.Image()
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if len(raw)%PageSize != 0 {
		t.Fatalf("image length %d not page aligned", len(raw))
	}
	_, sessions, err := Sessions(raw)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 1 || len(sessions[0].Body) != 0 {
		t.Fatalf("sessions = %+v, want one empty session", sessions)
	}
}

func TestDump(t *testing.T) {
	raw := make([]byte, PageSize*2)
	raw[0] = TransferMarker
	raw[PageSize] = TransferMarker
	var buf bytes.Buffer
	if err := Dump(&buf, raw); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "\n00000000:\t02 00 ") {
		t.Fatalf("missing first line: %q", out[:40])
	}
	if !strings.Contains(out, "\n\n00000100:\t02 ") {
		t.Fatalf("missing page separator before second page")
	}
	if got := strings.Count(out, ":\t"); got != 32 {
		t.Fatalf("line count = %d, want 32", got)
	}
}

func TestStreamOffset(t *testing.T) {
	s := &Session{Offset: 0x180, Body: []byte{1, 2, 3}}
	if got := s.StreamOffset(2); got != 0x180+HeaderSize+2 {
		t.Fatalf("StreamOffset(2) = 0x%x", got)
	}
	s.Origin = []int{0x190, 0x195, 0x196}
	for i, want := range []int{0x190, 0x195, 0x196, 0x197} {
		if got := s.StreamOffset(i); got != want {
			t.Fatalf("StreamOffset(%d) = 0x%x, want 0x%x", i, got, want)
		}
	}
}
