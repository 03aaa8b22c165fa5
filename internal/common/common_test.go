package common

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.Start()
	m.AddImage(4, 1024)
	m.AddSession(10, 0, 2)
	m.AddSession(0, 7, 1)
	m.IncFiltered()
	m.IncDuplicate()
	m.IncFailure()
	m.Stop()
	s := m.Snapshot()
	if s.Pages != 4 || s.Bytes != 1024 {
		t.Fatalf("image counters = %d/%d, want 4/1024", s.Pages, s.Bytes)
	}
	if s.Sessions != 2 || s.HRSamples != 10 || s.GPSFixes != 7 || s.PacketErrors != 3 {
		t.Fatalf("session counters = %+v", s)
	}
	if s.Filtered != 1 || s.Duplicates != 1 || s.Failures != 1 {
		t.Fatalf("skip counters = %+v", s)
	}
	if !strings.Contains(s.String(), "sessions=2") {
		t.Fatalf("String() = %q", s.String())
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.AddImage(1, 256)
	m.AddSession(1, 1, 1)
	m.IncFailure()
	if s := m.Snapshot(); s.Sessions != 0 {
		t.Fatalf("nil snapshot = %+v", s)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		512:     "512 B",
		2048:    "2.00 KiB",
		3 << 20: "3.00 MiB",
	}
	for in, want := range tests {
		if got := FormatBytes(in); got != want {
			t.Fatalf("FormatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestSha256OfFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.bin")
	data := []byte("eeprom")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	sum, size, err := Sha256OfFile(path)
	if err != nil {
		t.Fatalf("Sha256OfFile: %v", err)
	}
	if size != int64(len(data)) || sum != Sha256Hex(data) {
		t.Fatalf("sum = %s size = %d", sum, size)
	}
}

func TestSetupLoggingWritesFile(t *testing.T) {
	dir := t.TempDir()
	closer, err := SetupLogging(LogConfig{Directory: dir, MaxSizeMB: 1}, "test")
	if err != nil {
		t.Fatalf("SetupLogging: %v", err)
	}
	Logf("hello %d", 42)
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	SetOutput(os.Stderr)
	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Contains(data, []byte("[timexdr] ")) || !bytes.Contains(data, []byte("hello 42")) {
		t.Fatalf("log content = %q", data)
	}
}

func TestDebugfGated(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetVerbosity(0)
	Debugf("quiet")
	SetVerbosity(1)
	Debugf("loud")
	SetVerbosity(0)
	if strings.Contains(buf.String(), "quiet") || !strings.Contains(buf.String(), "loud") {
		t.Fatalf("debug output = %q", buf.String())
	}
}
