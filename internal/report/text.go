package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"example.com/timexdr/internal/eeprom"
	"example.com/timexdr/internal/gps"
	"example.com/timexdr/internal/hrm"
	"example.com/timexdr/internal/session"
)

// File extensions for per-session output.
const (
	ExtHRM = "hrm"
	ExtGPS = "gps"
)

// TextSink prints sessions in the recorder tool's plain text layout, either
// to one writer or to one file per session in Dir.
type TextSink struct {
	w   io.Writer
	dir string
}

// NewTextSink writes every session to w.
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

// NewFileTextSink writes every session to its own file under dir.
func NewFileTextSink(dir string) *TextSink {
	return &TextSink{dir: dir}
}

func (s *TextSink) WriteSession(d *session.Decoded) error {
	if s.w != nil {
		return WriteText(s.w, d)
	}
	path := filepath.Join(s.dir, FileName(d))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create session file: %w", err)
	}
	if err := WriteText(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FileName returns YYYYMMDD_HHMMSS-HHMMSS.ext built from the header date and
// time and the footer time.
func FileName(d *session.Decoded) string {
	h, f := d.Header, d.Footer
	return fmt.Sprintf("%04d%02d%02d_%02d%02d%02d-%02d%02d%02d.%s",
		h.Year, h.Month, h.Day, h.Hour, h.Minute, h.Second,
		f.Hour, f.Minute, f.Second, extension(d.Kind))
}

func extension(k session.Kind) string {
	if k == session.KindGPS {
		return ExtGPS
	}
	return ExtHRM
}

// FormatElapsed renders whole seconds as HH:MM:SS. Hours do not wrap.
func FormatElapsed(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

// gpsElapsed rounds a GPS elapsed time to the nearest second.
func gpsElapsed(sec float64) string {
	return FormatElapsed(int(math.Floor(sec + 0.5)))
}

// WriteText prints one decoded session.
func WriteText(w io.Writer, d *session.Decoded) error {
	tw := &textWriter{w: w}
	switch d.Kind {
	case session.KindGPS:
		tw.header("GPS session", d.Header, d.Footer)
		if d.GPS != nil {
			tw.gps(d.GPS.Fixes, d.Units)
		}
	default:
		tw.header("HRM session", d.Header, d.Footer)
		tw.printf("  Time        HR[bpm]\n")
		tw.hr(d.HR)
	}
	return tw.err
}

// textWriter keeps the first write error so the layout code stays flat.
type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

func (t *textWriter) header(name string, h, f eeprom.Header) {
	t.printf("%s: %s - %s\n", name, h, f)
}

func (t *textWriter) packetError(at string, code byte) {
	switch code {
	case gps.MissingPacket:
		t.printf("%s\tMissing packet.\n", at)
	case gps.CorruptedPacket:
		t.printf("%s\tCorrupted packet.\n", at)
	default:
		t.printf("%s\tPacket error 0x%02x.\n", at, code)
	}
}

func (t *textWriter) hr(samples []hrm.Sample) {
	for _, s := range samples {
		at := FormatElapsed(s.Elapsed)
		if !s.Valid() {
			t.packetError(at, s.Raw)
			continue
		}
		t.printf("%s\t%3d\n", at, s.BPM)
	}
}

func (t *textWriter) gps(fixes []gps.Fix, units gps.Units) {
	columns := false
	for _, f := range fixes {
		at := gpsElapsed(f.Elapsed)
		switch f.Kind {
		case gps.KindError:
			t.packetError(at, f.ErrorCode)
		case gps.KindTimeDate:
			dt := f.Date
			t.printf("%s\t%d-%02d-%02d %2d:%02d:%05.2f GMT\n", at,
				dt.Year, dt.Month, dt.Day, dt.Hour, dt.Minute, dt.Seconds)
		case gps.KindStatus, gps.KindFullPosition:
			if !columns {
				t.gpsColumns(units)
				columns = true
			}
			st := f.Status
			t.printf("%s\t0x%x\t0x%x\t0x%x\t%5.1f\t%9.3f", at,
				st.Sensor, st.Acquisition, st.Battery, st.Speed, st.Distance)
			if p := f.Position; p != nil {
				t.printf("\t%7.1f\t%5.1f\t%5.1f\t%10.6f\t%11.6f",
					p.Altitude, p.TrueHeading, p.MagneticHeading, p.Latitude, p.Longitude)
			}
			t.printf("\n")
		}
	}
}

func (t *textWriter) gpsColumns(units gps.Units) {
	if units == gps.Imperial {
		t.printf("  Time\t\tStatus\tACQ\tBAT\tV [mph]\tD [miles]\n")
		return
	}
	t.printf("  Time\t\tStatus\tACQ\tBAT\tV [kph]\t   D [km]\n")
}
