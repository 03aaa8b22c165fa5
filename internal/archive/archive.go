package archive

import (
	"fmt"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns the xxHash64 of a raw dump.
func Fingerprint(raw []byte) uint64 {
	return xxhash.Sum64(raw)
}

// FileName appends the codec extension to base unless it already ends
// with it.
func FileName(base string, t CodecType) (string, error) {
	codec, err := GetCodec(t)
	if err != nil {
		return "", err
	}
	if ext := codec.Extension(); ext != "" && !strings.HasSuffix(strings.ToLower(base), ext) {
		return base + ext, nil
	}
	return base, nil
}

// Save writes raw to path compressed with t. The codec extension is
// appended to path when missing; the final path is returned.
func Save(path string, raw []byte, t CodecType) (string, error) {
	out, err := FileName(path, t)
	if err != nil {
		return "", err
	}
	codec, _ := GetCodec(t)
	data, err := codec.Compress(raw)
	if err != nil {
		return "", fmt.Errorf("compress %s: %w", out, err)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return "", err
	}
	return out, nil
}

// Load reads a dump written by Save, or a plain raw dump. The codec is
// chosen from the extension.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	codec, err := GetCodec(CodecForPath(path))
	if err != nil {
		return nil, err
	}
	raw, err := codec.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return raw, nil
}
