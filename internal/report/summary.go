package report

import (
	"encoding/json"
	"os"
	"time"

	"example.com/timexdr/internal/common"
	"example.com/timexdr/internal/session"
)

// SessionRow is the one-line summary of a decoded session.
type SessionRow struct {
	Index        int       `json:"index"`
	Kind         string    `json:"kind"`
	Combined     bool      `json:"combined,omitempty"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Samples      int       `json:"samples"`
	PacketErrors int       `json:"packetErrors"`
	// Distance is the final corrected distance of a GPS session in Units.
	Distance    float64 `json:"distance,omitempty"`
	Units       string  `json:"units,omitempty"`
	Fingerprint string  `json:"fingerprint"`
	Incomplete  bool    `json:"incomplete,omitempty"`
}

// Summary describes one decoded dump.
type Summary struct {
	Source    string                 `json:"source"`
	SHA256    string                 `json:"sha256"`
	Generated time.Time              `json:"generated"`
	Sessions  []SessionRow           `json:"sessions"`
	Failures  []session.Failure      `json:"failures,omitempty"`
	Metrics   common.MetricsSnapshot `json:"metrics"`
}

// Collector is a sink that keeps a SessionRow per decoded session.
type Collector struct {
	Location *time.Location
	Rows     []SessionRow
}

func (c *Collector) WriteSession(d *session.Decoded) error {
	row := SessionRow{
		Index:        d.Index,
		Kind:         string(d.Kind),
		Combined:     d.Combined,
		Start:        d.Header.Time(c.Location),
		End:          d.Footer.Time(c.Location),
		Samples:      d.Samples(),
		PacketErrors: d.PacketErrors(),
		Fingerprint:  d.Fingerprint,
		Incomplete:   d.Incomplete,
	}
	if d.GPS != nil {
		row.Distance = d.Distance()
		row.Units = d.Units.DistanceLabel()
	}
	c.Rows = append(c.Rows, row)
	return nil
}

func SaveSummaryJSON(sum Summary, out string) error {
	b, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

func LoadSummaryJSON(path string) (Summary, error) {
	var sum Summary
	b, err := os.ReadFile(path)
	if err != nil {
		return sum, err
	}
	err = json.Unmarshal(b, &sum)
	return sum, err
}
