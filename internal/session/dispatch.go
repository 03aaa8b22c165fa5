package session

import (
	"errors"
	"fmt"
	"time"

	"example.com/timexdr/internal/common"
	"example.com/timexdr/internal/eeprom"
	"example.com/timexdr/internal/gps"
	"example.com/timexdr/internal/hrm"
)

// Policy decides what a failed session does to the rest of the run.
type Policy string

const (
	PolicyAbort Policy = "abort"
	PolicySkip  Policy = "skip"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyAbort:
		return PolicyAbort, nil
	case PolicySkip:
		return PolicySkip, nil
	default:
		return "", fmt.Errorf("unknown session error policy %q", s)
	}
}

type Options struct {
	Units  gps.Units
	Policy Policy
	// Since drops sessions whose header timestamp is earlier. Zero keeps
	// every session.
	Since    time.Time
	Location *time.Location
	Metrics  *common.Metrics
	// Dedup, when set, drops sessions already delivered earlier in the run.
	Dedup *Dedup
}

// Failure records a session that could not be decoded.
type Failure struct {
	Session int    `json:"session"`
	Offset  int    `json:"offset"`
	Error   string `json:"error"`
}

// Summary describes the outcome of one Run.
type Summary struct {
	Sessions   int       `json:"sessions"`
	Delivered  int       `json:"delivered"`
	Filtered   int       `json:"filtered"`
	Duplicates int       `json:"duplicates"`
	Failures   []Failure `json:"failures,omitempty"`
}

// Dispatcher routes sessions to the heart-rate or GPS decoder by device
// tag, splitting multi-device sessions first. It keeps no state between
// sessions.
type Dispatcher struct {
	opts Options
}

func NewDispatcher(opts Options) *Dispatcher {
	if opts.Units == "" {
		opts.Units = gps.Metric
	}
	if opts.Policy == "" {
		opts.Policy = PolicyAbort
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Dispatcher{opts: opts}
}

// Run decodes sessions in order and hands every result to sink. With
// PolicyAbort the first failure ends the run and is returned; with
// PolicySkip it is logged, listed in the summary and the run continues.
// Sink errors always end the run.
func (d *Dispatcher) Run(sessions []eeprom.Session, sink Sink) (Summary, error) {
	var sum Summary
	for i := range sessions {
		s := &sessions[i]
		sum.Sessions++
		if d.opts.Dedup != nil && d.opts.Dedup.Seen(Fingerprint(s)) {
			common.Logf("session %d (%s) already decoded, skipping", s.Index, s.Header)
			d.opts.Metrics.IncDuplicate()
			sum.Duplicates++
			continue
		}
		if !d.wanted(s.Header) {
			d.opts.Metrics.IncFiltered()
			sum.Filtered++
			continue
		}
		decoded, err := d.Dispatch(s)
		for j := range decoded {
			out := &decoded[j]
			if werr := sink.WriteSession(out); werr != nil {
				return sum, fmt.Errorf("write session %d: %w", out.Index, werr)
			}
			d.opts.Metrics.AddSession(hrCount(out), gpsCount(out), out.PacketErrors())
			sum.Delivered++
		}
		if err == nil {
			continue
		}
		d.opts.Metrics.IncFailure()
		if d.opts.Policy != PolicySkip {
			return sum, err
		}
		common.Logf("skipping session %d: %v", s.Index, err)
		f := Failure{Session: s.Index, Offset: s.Offset, Error: err.Error()}
		var de *DecodeError
		if errors.As(err, &de) {
			f.Offset = de.Offset
		}
		sum.Failures = append(sum.Failures, f)
	}
	return sum, nil
}

// Dispatch decodes one session. A multi-device session yields two results.
// On failure the results decoded before it are returned alongside the
// error.
func (d *Dispatcher) Dispatch(s *eeprom.Session) ([]Decoded, error) {
	kind, err := Classify(s.Device())
	if err != nil {
		return nil, &DecodeError{Session: s.Index, Offset: s.Offset, Tag: s.Device(), Err: err}
	}
	switch kind {
	case KindHR:
		return []Decoded{d.decodeHR(s)}, nil
	case KindGPS:
		out, err := d.decodeGPS(s)
		return []Decoded{out}, err
	default:
		hrSes, gpsSes, err := Demux(s)
		if err != nil {
			return nil, err
		}
		var results []Decoded
		for _, sub := range []*eeprom.Session{&hrSes, &gpsSes} {
			decoded, err := d.Dispatch(sub)
			for i := range decoded {
				decoded[i].Combined = true
			}
			results = append(results, decoded...)
			if err != nil {
				return results, err
			}
		}
		return results, nil
	}
}

func (d *Dispatcher) decodeHR(s *eeprom.Session) Decoded {
	out := d.newDecoded(s, KindHR)
	out.HR = hrm.Decode(s.Body)
	return out
}

func (d *Dispatcher) decodeGPS(s *eeprom.Session) (Decoded, error) {
	out := d.newDecoded(s, KindGPS)
	out.Units = d.opts.Units
	res, err := gps.Decoder{Units: d.opts.Units}.Decode(s.Body)
	out.GPS = &res
	if res.Trailing > 0 {
		common.Logf("session %d: dropped %d trailing GPS bytes at offset 0x%06x",
			s.Index, res.Trailing, s.StreamOffset(len(s.Body)-res.Trailing))
	}
	if err != nil {
		out.Incomplete = true
		var pe *gps.PacketTypeError
		if errors.As(err, &pe) {
			return out, &DecodeError{Session: s.Index, Offset: s.StreamOffset(pe.Offset), Tag: pe.Type, Err: err}
		}
		return out, &DecodeError{Session: s.Index, Offset: s.StreamOffset(0), Tag: s.Device(), Err: err}
	}
	return out, nil
}

func (d *Dispatcher) newDecoded(s *eeprom.Session, kind Kind) Decoded {
	return Decoded{
		Index:       s.Index,
		Kind:        kind,
		Header:      s.Header,
		Footer:      s.Footer,
		Fingerprint: FormatFingerprint(Fingerprint(s)),
	}
}

// wanted reports whether a session recorded at h passes the since filter.
// Older sessions are never decoded.
func (d *Dispatcher) wanted(h eeprom.Header) bool {
	if d.opts.Since.IsZero() {
		return true
	}
	return !h.Time(d.opts.Location).Before(d.opts.Since)
}

func hrCount(d *Decoded) int {
	return len(d.HR)
}

func gpsCount(d *Decoded) int {
	if d.GPS == nil {
		return 0
	}
	return len(d.GPS.Fixes)
}

// MidnightDaysAgo returns local midnight days days before now, the start
// of the window used by the since filter.
func MidnightDaysAgo(now time.Time, days int) time.Time {
	t := now.AddDate(0, 0, -days)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
