package report

import (
	"errors"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const defaultQRSize = 128

// FingerprintQR renders a PNG QR code carrying "sha256:<hex>" for the dump
// hash, so a printed report can be matched against the archived image.
func FingerprintQR(hash string, size int) ([]byte, error) {
	hex := hexDigits(hash)
	if hex == "" {
		return nil, errors.New("fingerprint hash is empty")
	}
	if size <= 0 {
		size = defaultQRSize
	}
	return qrcode.Encode("sha256:"+hex, qrcode.Medium, size)
}

// hexDigits lowercases hash and drops everything that is not a hex digit.
func hexDigits(hash string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f':
			return r
		case r >= 'A' && r <= 'F':
			return r + ('a' - 'A')
		}
		return -1
	}, hash)
}
