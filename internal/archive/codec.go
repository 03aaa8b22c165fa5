// Package archive stores raw EEPROM dumps on disk, optionally compressed,
// and fingerprints them so repeated downloads can be recognized.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CodecType names a compression format for archived dumps.
type CodecType string

const (
	CodecNone CodecType = "none"
	CodecZstd CodecType = "zstd"
	CodecS2   CodecType = "s2"
	CodecLZ4  CodecType = "lz4"
)

// Codec compresses and decompresses a whole dump. Implementations are
// safe for concurrent use.
type Codec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
	// Extension is the file suffix including the dot, or "" for CodecNone.
	Extension() string
}

var builtinCodecs = map[CodecType]Codec{
	CodecNone: noopCodec{},
	CodecZstd: zstdCodec{},
	CodecS2:   s2Codec{},
	CodecLZ4:  lz4Codec{},
}

// ParseCodec accepts a codec name; the empty string means CodecNone.
func ParseCodec(name string) (CodecType, error) {
	t := CodecType(strings.ToLower(strings.TrimSpace(name)))
	if t == "" {
		return CodecNone, nil
	}
	if _, ok := builtinCodecs[t]; !ok {
		return "", fmt.Errorf("unsupported archive codec: %s", name)
	}
	return t, nil
}

// GetCodec retrieves the built-in Codec for t.
func GetCodec(t CodecType) (Codec, error) {
	if codec, ok := builtinCodecs[t]; ok {
		return codec, nil
	}
	return nil, fmt.Errorf("unsupported archive codec: %s", t)
}

// CodecForPath picks the codec from the file extension. Unknown
// extensions are read as uncompressed dumps.
func CodecForPath(path string) CodecType {
	lower := strings.ToLower(path)
	for t, c := range builtinCodecs {
		if ext := c.Extension(); ext != "" && strings.HasSuffix(lower, ext) {
			return t
		}
	}
	return CodecNone
}

type noopCodec struct{}

func (noopCodec) Compress(data []byte) ([]byte, error)   { return data, nil }
func (noopCodec) Decompress(data []byte) ([]byte, error) { return data, nil }
func (noopCodec) Extension() string                      { return "" }

var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}
		return decoder
	},
}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		// Archives are written once and kept, so spend more time on them.
		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}
		return encoder
	},
}

type zstdCodec struct{}

func (zstdCodec) Extension() string { return ".zst" }

func (zstdCodec) Compress(data []byte) ([]byte, error) {
	encoder := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)
	return encoder.EncodeAll(data, nil), nil
}

func (zstdCodec) Decompress(data []byte) ([]byte, error) {
	decoder := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)
	out, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	return out, nil
}

type s2Codec struct{}

func (s2Codec) Extension() string { return ".s2" }

func (s2Codec) Compress(data []byte) ([]byte, error) {
	return s2.Encode(nil, data), nil
}

func (s2Codec) Decompress(data []byte) ([]byte, error) {
	out, err := s2.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}
	return out, nil
}

// lz4Codec uses the framed format, which records the content size, rather
// than bare blocks.
type lz4Codec struct{}

func (lz4Codec) Extension() string { return ".lz4" }

func (lz4Codec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if err := w.Apply(lz4.ChecksumOption(true)); err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (lz4Codec) Decompress(data []byte) ([]byte, error) {
	out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	return out, nil
}
