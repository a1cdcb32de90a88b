// Package slugid implements the bidirectional mapping between a 22-
// character URL-safe base64 "slugid" and a raw 16-byte identifier.
//
// Grounded on the teacher's internal/types/ids.go, which leans on
// github.com/google/uuid for parse/format of 128-bit identifiers; this
// package applies the same "parse strictly, reject malformed input"
// discipline to the slug alphabet instead of canonical UUID dashes.
package slugid

import (
	"encoding/base64"
	"fmt"
	"regexp"
)

// Size is the length in bytes of the raw identifier a slug encodes.
const Size = 16

// shapeRegexp further constrains the 22-character slug beyond what plain
// base64 decoding would accept, per spec §4.2.
var shapeRegexp = regexp.MustCompile(`^[A-Za-z0-9_-]{8}[Q-T][A-Za-z0-9_-][CGKOSWaeimquy26-][A-Za-z0-9_-]{10}[AQgw]$`)

// ErrMalformed indicates a slug does not match the required 22-character
// shape, or raw input is not exactly 16 bytes.
var ErrMalformed = fmt.Errorf("slugid: malformed input")

// Encode converts a 16-byte buffer into its 22-character slug form:
// standard URL-safe base64 with the trailing "=" padding stripped.
// Encode does not check the shape: the result is accepted by Decode and
// Valid only when raw carries the version-4 bits (raw[6]>>4 == 4) and
// the RFC 4122 variant bits (raw[8]>>6 == 2).
func Encode(raw []byte) (string, error) {
	if len(raw) != Size {
		return "", fmt.Errorf("%w: raw must be %d bytes, got %d", ErrMalformed, Size, len(raw))
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode converts a 22-character slug back into its 16 raw bytes,
// strictly validating the slug's shape first.
func Decode(slug string) ([]byte, error) {
	if !shapeRegexp.MatchString(slug) {
		return nil, fmt.Errorf("%w: %q does not match slug shape", ErrMalformed, slug)
	}
	raw, err := base64.RawURLEncoding.DecodeString(slug)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(raw) != Size {
		return nil, fmt.Errorf("%w: decoded length %d, want %d", ErrMalformed, len(raw), Size)
	}
	return raw, nil
}

// Valid reports whether slug matches the required shape without
// allocating a decode buffer.
func Valid(slug string) bool {
	return shapeRegexp.MatchString(slug)
}
