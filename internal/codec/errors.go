// Package codec defines the shared type-trait surface and error taxonomy
// honored by every value codec in this module: scalar types, buffer-based
// types, and their encrypted counterparts.
package codec

import (
	"errors"
	"fmt"
)

// Kind enumerates the taxonomy of failures a codec can raise. All codec
// errors are synchronous and carry the type variant and property name.
type Kind int

const (
	// TypeMismatch indicates a value's primitive category does not match
	// what the type expects (e.g. a string where a bool was required).
	TypeMismatch Kind = iota
	// FormatInvalid indicates a structural check failed: a malformed UUID
	// or slug, a non-integer where an integer was required, an
	// out-of-range PositiveInteger, or similar.
	FormatInvalid
	// SchemaInvalid indicates JSON-Schema validation failed.
	SchemaInvalid
	// SizeExceeded indicates a payload exceeds the 256 KiB envelope limit
	// (or 256 KiB - 32 bytes for encrypted payloads).
	SizeExceeded
	// NotComparable indicates filterCondition or compare was invoked on a
	// type that does not support the requested capability.
	NotComparable
	// NotImplemented marks a base operation deliberately left unoverridden.
	NotImplemented
	// DecodeFailure indicates a corrupted envelope on deserialize: a
	// missing chunk count, malformed base64, truncated ciphertext, or a
	// padding failure.
	DecodeFailure
)

func (k Kind) String() string {
	switch k {
	case TypeMismatch:
		return "TypeMismatch"
	case FormatInvalid:
		return "FormatInvalid"
	case SchemaInvalid:
		return "SchemaInvalid"
	case SizeExceeded:
		return "SizeExceeded"
	case NotComparable:
		return "NotComparable"
	case NotImplemented:
		return "NotImplemented"
	case DecodeFailure:
		return "DecodeFailure"
	default:
		return "Unknown"
	}
}

// Error is the single concrete error type every codec in this module
// raises. TypeName and Property are always populated so a caller can
// locate the offending property without parsing the message.
type Error struct {
	Kind     Kind
	TypeName string
	Property string
	Schema   []error // populated only for Kind == SchemaInvalid
	Value    any     // populated only for Kind == SchemaInvalid
	Err      error   // wrapped cause, optional
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("codec: %s: %s on property %q", e.Kind, e.TypeName, e.Property)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, SomeKind) work by comparing Kind via a sentinel
// wrapper; see kindSentinel below.
func (e *Error) Is(target error) bool {
	var ks *kindSentinel
	if errors.As(target, &ks) {
		return e.Kind == ks.kind
	}
	return false
}

type kindSentinel struct{ kind Kind }

func (k *kindSentinel) Error() string { return "codec: " + k.kind.String() }

// SentinelFor returns a value suitable for errors.Is(err, codec.SentinelFor(Kind))
// comparisons, mirroring the teacher's preference for flat sentinel errors
// while still carrying structured fields on the concrete Error.
func SentinelFor(k Kind) error { return &kindSentinel{kind: k} }

// NewError constructs a codec.Error, wrapping cause if non-nil.
func NewError(kind Kind, typeName, property string, cause error) *Error {
	return &Error{Kind: kind, TypeName: typeName, Property: property, Err: cause}
}

// NewSchemaError constructs a SchemaInvalid error carrying the validator's
// error list and the offending value, per spec.
func NewSchemaError(typeName, property string, schemaErrs []error, value any) *Error {
	return &Error{Kind: SchemaInvalid, TypeName: typeName, Property: property, Schema: schemaErrs, Value: value}
}
