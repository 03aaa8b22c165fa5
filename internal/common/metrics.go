package common

import (
	"fmt"
	"sync"
	"time"
)

// Metrics counts what one decode run has seen.
type Metrics struct {
	mu           sync.Mutex
	start        time.Time
	end          time.Time
	pages        int64
	bytes        int64
	sessions     int64
	hrSamples    int64
	gpsFixes     int64
	packetErrors int64
	filtered     int64
	duplicates   int64
	failures     int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Start() {
	if m == nil {
		return
	}
	m.mu.Lock()
	if m.start.IsZero() {
		m.start = time.Now()
		m.end = time.Time{}
	}
	m.mu.Unlock()
}

func (m *Metrics) Stop() {
	if m == nil {
		return
	}
	m.mu.Lock()
	if !m.start.IsZero() && m.end.IsZero() {
		m.end = time.Now()
	}
	m.mu.Unlock()
}

// AddImage records a raw image of n bytes spread over pages pages.
func (m *Metrics) AddImage(pages, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.mu.Lock()
	m.pages += int64(pages)
	m.bytes += int64(n)
	m.mu.Unlock()
}

// AddSession records one decoded session with its sample and error counts.
func (m *Metrics) AddSession(hrSamples, gpsFixes, packetErrors int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.sessions++
	m.hrSamples += int64(hrSamples)
	m.gpsFixes += int64(gpsFixes)
	m.packetErrors += int64(packetErrors)
	m.mu.Unlock()
}

func (m *Metrics) IncFiltered() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.filtered++
	m.mu.Unlock()
}

func (m *Metrics) IncDuplicate() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.duplicates++
	m.mu.Unlock()
}

func (m *Metrics) IncFailure() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.failures++
	m.mu.Unlock()
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return MetricsSnapshot{
		Duration:     m.elapsedLocked(),
		Pages:        m.pages,
		Bytes:        m.bytes,
		Sessions:     m.sessions,
		HRSamples:    m.hrSamples,
		GPSFixes:     m.gpsFixes,
		PacketErrors: m.packetErrors,
		Filtered:     m.filtered,
		Duplicates:   m.duplicates,
		Failures:     m.failures,
	}
}

func (m *Metrics) elapsedLocked() time.Duration {
	if m.start.IsZero() {
		return 0
	}
	if !m.end.IsZero() {
		return m.end.Sub(m.start)
	}
	return time.Since(m.start)
}

type MetricsSnapshot struct {
	Duration     time.Duration `json:"duration"`
	Pages        int64         `json:"pages"`
	Bytes        int64         `json:"bytes"`
	Sessions     int64         `json:"sessions"`
	HRSamples    int64         `json:"hrSamples"`
	GPSFixes     int64         `json:"gpsFixes"`
	PacketErrors int64         `json:"packetErrors"`
	Filtered     int64         `json:"filtered"`
	Duplicates   int64         `json:"duplicates"`
	Failures     int64         `json:"failures"`
}

// String formats the snapshot as a single status line.
func (s MetricsSnapshot) String() string {
	return fmt.Sprintf("pages=%d bytes=%s sessions=%d hr=%d gps=%d packetErrors=%d filtered=%d duplicates=%d failures=%d duration=%s",
		s.Pages, FormatBytes(s.Bytes), s.Sessions, s.HRSamples, s.GPSFixes, s.PacketErrors,
		s.Filtered, s.Duplicates, s.Failures, s.Duration.Round(time.Millisecond))
}

func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div := float64(unit)
	exp := 0
	for n := float64(b) / div; n >= unit && exp < 6; n /= unit {
		div *= unit
		exp++
	}
	prefixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	return fmt.Sprintf("%.2f %s", float64(b)/div, prefixes[exp])
}
