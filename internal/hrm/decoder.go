package hrm

// TimeStep is the spacing between heart-rate samples in seconds.
const TimeStep = 2

// Packet error codes shared with the GPS stream.
const (
	MissingPacket   = 0x00
	CorruptedPacket = 0x04
)

type SampleStatus string

const (
	StatusValid     SampleStatus = "valid"
	StatusMissing   SampleStatus = "missing"
	StatusCorrupted SampleStatus = "corrupted"
)

// Sample is one heart-rate reading. Raw keeps the stored byte so that a
// consumer can reinterpret a Missing sample: 0x00 is also a legal 0 bpm
// reading and the recorder does not distinguish the two.
type Sample struct {
	Elapsed int          `json:"elapsed"`
	BPM     int          `json:"bpm,omitempty"`
	Raw     byte         `json:"raw"`
	Status  SampleStatus `json:"status"`
}

// Valid reports whether the sample carries a measurement.
func (s Sample) Valid() bool {
	return s.Status == StatusValid
}

// Decode turns a heart-rate session body into one sample per byte.
func Decode(body []byte) []Sample {
	samples := make([]Sample, len(body))
	for i, b := range body {
		s := Sample{Elapsed: i * TimeStep, Raw: b}
		switch b {
		case MissingPacket:
			s.Status = StatusMissing
		case CorruptedPacket:
			s.Status = StatusCorrupted
		default:
			s.Status = StatusValid
			s.BPM = int(b)
		}
		samples[i] = s
	}
	return samples
}
