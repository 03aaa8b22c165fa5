package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"example.com/timexdr/internal/common"
)

type Item struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Sha256 string `json:"sha256"`
	Type   string `json:"type"`
}

// Manifest lists a decoded dump and every artifact produced from it.
type Manifest struct {
	CreatedAt time.Time `json:"createdAt"`
	ShaAlgo   string    `json:"shaAlgo"`
	Items     []Item    `json:"items"`
}

var itemTypes = map[string]string{
	".bin":    "dump",
	".eep":    "dump",
	".zst":    "archive",
	".s2":     "archive",
	".lz4":    "archive",
	".hrm":    "hrm",
	".gps":    "gps",
	".fit":    "fit",
	".ndjson": "ndjson",
	".json":   "json",
	".pdf":    "pdf",
}

// ItemType classifies path by extension.
func ItemType(path string) string {
	if typ, ok := itemTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return typ
	}
	return "other"
}

func Build(paths []string) (Manifest, error) {
	m := Manifest{CreatedAt: time.Now().UTC(), ShaAlgo: "sha256"}
	for _, p := range paths {
		hex, sz, err := common.Sha256OfFile(p)
		if err != nil {
			return m, err
		}
		m.Items = append(m.Items, Item{Path: p, Size: sz, Sha256: hex, Type: ItemType(p)})
	}
	return m, nil
}

func Save(m Manifest, out string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

func Load(path string) (Manifest, error) {
	var m Manifest
	b, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(b, &m)
	return m, err
}

// Verify re-hashes every item and reports the first one whose size or
// digest changed.
func Verify(m Manifest) error {
	for _, it := range m.Items {
		hex, sz, err := common.Sha256OfFile(it.Path)
		if err != nil {
			return err
		}
		if sz != it.Size || hex != it.Sha256 {
			return fmt.Errorf("%s: content changed (sha256 %s, want %s)", it.Path, hex, it.Sha256)
		}
	}
	return nil
}
