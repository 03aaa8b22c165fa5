package report

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/tormoder/fit"

	"example.com/timexdr/internal/gps"
	"example.com/timexdr/internal/session"
)

// FITSink writes every session as a FIT activity file under Dir so that
// it can be loaded into training software.
type FITSink struct {
	Dir      string
	Location *time.Location
}

func (s *FITSink) WriteSession(d *session.Decoded) error {
	var buf bytes.Buffer
	if err := EncodeFIT(&buf, d, s.Location); err != nil {
		return err
	}
	path := filepath.Join(s.Dir, FileName(d)+".fit")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write fit file: %w", err)
	}
	return nil
}

// EncodeFIT encodes one session as a FIT activity. Record timestamps are
// the session start plus the sample elapsed time. Error samples and
// packets are left out.
func EncodeFIT(w io.Writer, d *session.Decoded, loc *time.Location) error {
	start := d.Header.Time(loc)
	file, err := fit.NewFile(fit.FileTypeActivity, fit.NewHeader(fit.V20, true))
	if err != nil {
		return fmt.Errorf("new fit file: %w", err)
	}
	file.FileId.TimeCreated = start
	act, err := file.Activity()
	if err != nil {
		return fmt.Errorf("fit activity: %w", err)
	}
	act.Records = fitRecords(d, start)
	if err := fit.Encode(w, file, binary.LittleEndian); err != nil {
		return fmt.Errorf("encode fit: %w", err)
	}
	return nil
}

func fitRecords(d *session.Decoded, start time.Time) []*fit.RecordMsg {
	var recs []*fit.RecordMsg
	for _, s := range d.HR {
		if !s.Valid() {
			continue
		}
		r := fit.NewRecordMsg()
		r.Timestamp = start.Add(time.Duration(s.Elapsed) * time.Second)
		r.HeartRate = uint8(s.BPM)
		recs = append(recs, r)
	}
	if d.GPS == nil {
		return recs
	}
	units := d.Units
	for _, f := range d.GPS.Fixes {
		if f.Status == nil {
			continue
		}
		r := fit.NewRecordMsg()
		r.Timestamp = start.Add(time.Duration(f.Elapsed * float64(time.Second)))
		r.Distance = uint32(math.Round(meters(units, f.Status.Distance) * 100))
		r.Speed = uint16(math.Round(meters(units, f.Status.Speed) / 3600 * 1000))
		if p := f.Position; p != nil {
			r.PositionLat = fit.NewLatitudeDegrees(p.Latitude)
			r.PositionLong = fit.NewLongitudeDegrees(p.Longitude)
			alt := p.Altitude
			if units == gps.Imperial {
				alt *= 0.3048
			}
			r.Altitude = fitAltitude(alt)
		}
		recs = append(recs, r)
	}
	return recs
}

// meters converts a distance in units to meters, or a speed in units per
// hour to meters per hour.
func meters(units gps.Units, v float64) float64 {
	if units == gps.Imperial {
		return v * 1609.344
	}
	return v * 1000
}

// fitAltitude scales metres to the FIT altitude field (5 per metre, 500 m
// offset). The field cannot hold anything below -500 m.
func fitAltitude(m float64) uint16 {
	v := math.Round((m + 500) * 5)
	if v < 0 {
		return 0
	}
	if v > math.MaxUint16-1 {
		return math.MaxUint16 - 1
	}
	return uint16(v)
}
