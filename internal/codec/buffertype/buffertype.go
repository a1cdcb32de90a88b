// Package buffertype implements the buffer-based value types of spec
// §4.6: Blob, Text, JSON, Schema, and SlugIdArrayType. None of these are
// ordered or comparable via filterCondition; they compose with the
// buffer envelope (internal/codec/buffer) instead of writing a scalar
// cell directly.
//
// Grounded on DangerosoDavo-cache/cache/core/json_serializer.go for the
// canonical-JSON (sorted-key) marshaling shape reused here for JSONType's
// Hash, and on internal/core/db/queries.go's embedded-file-assembly
// style for treating a property's payload as an opaque byte blob.
package buffertype

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/solatis/typecodec/internal/codec"
	"github.com/solatis/typecodec/internal/codec/buffer"
	"github.com/solatis/typecodec/internal/codec/slugarray"
)

// ---- Blob --------------------------------------------------------------

// BlobType is the identity codec over raw bytes: the value is the
// payload, unchanged.
type BlobType struct {
	codec.Base
}

func NewBlob(property string) *BlobType {
	return &BlobType{Base: codec.NewBaseType(property, false, false, false)}
}

func (t *BlobType) typeName() string { return "Blob" }

func (t *BlobType) Serialize(row codec.Row, v []byte) error {
	return buffer.Write(row, t.Property(), v, t.typeName())
}

func (t *BlobType) Deserialize(row codec.Row) ([]byte, error) {
	return buffer.Read(row, t.Property(), t.typeName())
}

func (t *BlobType) Equal(a, b []byte) bool { return bytes.Equal(a, b) }

func (t *BlobType) Clone(v []byte) []byte {
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

// Hash returns the bytes themselves, per spec §4.6.
func (t *BlobType) Hash(v []byte) []byte { return v }

// ---- Text --------------------------------------------------------------

// TextType UTF-8 encodes a string on write and decodes on read, over the
// same buffer envelope BlobType uses.
type TextType struct {
	codec.Base
}

func NewText(property string) *TextType {
	return &TextType{Base: codec.NewBaseType(property, false, false, false)}
}

func (t *TextType) typeName() string { return "Text" }

func (t *TextType) Serialize(row codec.Row, v string) error {
	return buffer.Write(row, t.Property(), []byte(v), t.typeName())
}

func (t *TextType) Deserialize(row codec.Row) (string, error) {
	raw, err := buffer.Read(row, t.Property(), t.typeName())
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (t *TextType) Equal(a, b string) bool { return a == b }
func (t *TextType) Clone(v string) string  { return v }

// Hash is the string itself; no re-encoding per spec §4.6.
func (t *TextType) Hash(v string) string { return v }

// ---- JSON --------------------------------------------------------------

// JSONType codecs an arbitrary JSON-compatible value (string, number,
// boolean, object, array, or null) via json.Marshal/Unmarshal over the
// buffer envelope.
type JSONType struct {
	codec.Base
}

func NewJSON(property string) *JSONType {
	return &JSONType{Base: codec.NewBaseType(property, false, false, false)}
}

func (t *JSONType) typeName() string { return "JSON" }

func (t *JSONType) Serialize(row codec.Row, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return codec.NewError(codec.FormatInvalid, t.typeName(), t.Property(), err)
	}
	return buffer.Write(row, t.Property(), data, t.typeName())
}

func (t *JSONType) Deserialize(row codec.Row) (any, error) {
	raw, err := buffer.Read(row, t.Property(), t.typeName())
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, codec.NewError(codec.DecodeFailure, t.typeName(), t.Property(), err)
	}
	return v, nil
}

// Equal compares by deep structural equality of the decoded values.
func (t *JSONType) Equal(a, b any) bool {
	ha, err1 := CanonicalJSON(a)
	hb, err2 := CanonicalJSON(b)
	if err1 != nil || err2 != nil {
		return false
	}
	return bytes.Equal(ha, hb)
}

// Clone deep-copies v via a marshal/unmarshal round trip.
func (t *JSONType) Clone(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, codec.NewError(codec.FormatInvalid, t.typeName(), t.Property(), err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, codec.NewError(codec.DecodeFailure, t.typeName(), t.Property(), err)
	}
	return out, nil
}

// Hash returns v's canonical (recursively key-sorted) JSON form, giving
// a stable byte representation independent of insertion order.
func (t *JSONType) Hash(v any) ([]byte, error) {
	return CanonicalJSON(v)
}

// CanonicalJSON marshals v with all object keys sorted recursively.
// Grounded on DangerosoDavo-cache/cache/core/json_serializer.go's
// marshalCanonicalJSON.
func CanonicalJSON(v any) ([]byte, error) {
	normalized, err := normalize(v)
	if err != nil {
		return nil, err
	}
	return marshalCanonical(normalized)
}

// normalize round-trips v through json.Marshal/Unmarshal so that Go
// struct values and map[string]any inputs are reduced to the same
// representation (map[string]any, []any, and primitives) before
// canonicalization.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func marshalCanonical(value any) ([]byte, error) {
	switch v := value.(type) {
	case map[string]any:
		if v == nil {
			return []byte("null"), nil
		}
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, key := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyBytes, err := json.Marshal(key)
			if err != nil {
				return nil, err
			}
			buf.Write(keyBytes)
			buf.WriteByte(':')
			child, err := marshalCanonical(v[key])
			if err != nil {
				return nil, err
			}
			buf.Write(child)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	case []any:
		if v == nil {
			return []byte("null"), nil
		}
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			child, err := marshalCanonical(item)
			if err != nil {
				return nil, err
			}
			buf.Write(child)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return json.Marshal(v)
	}
}

// ---- Schema --------------------------------------------------------------

// SchemaType layers a compiled JSON-Schema validator atop JSONType.
// Validation populates defaults declared by the schema for missing
// optional fields.
type SchemaType struct {
	codec.Base
	json   *JSONType
	schema *jsonschema.Schema
}

// NewSchema compiles schemaJSON once and returns a type descriptor that
// validates every value against it on serialize and deserialize.
func NewSchema(property string, schemaJSON []byte) (*SchemaType, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	compiler.AssertFormat = true
	compiler.ExtractAnnotations = true
	const resourceName = "schema.json"
	if err := compiler.AddResource(resourceName, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("codec: schema: %w", err)
	}
	compiled, err := compiler.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("codec: schema: %w", err)
	}
	return &SchemaType{
		Base:   codec.NewBaseType(property, false, false, false),
		json:   NewJSON(property),
		schema: compiled,
	}, nil
}

func (t *SchemaType) typeName() string { return "Schema" }

// Validate checks v against the compiled schema, raising SchemaInvalid
// carrying the validator's error list and the offending value on
// failure. Defaults are filled in before validation, but the defaulted
// value is discarded; use ValidateWithDefaults to obtain it.
func (t *SchemaType) Validate(v any) error {
	_, err := t.ValidateWithDefaults(v)
	return err
}

// ValidateWithDefaults normalizes v, fills in schema-declared defaults
// for missing object properties, validates the result, and returns the
// defaulted value. Serialize persists this defaulted value so that
// defaults actually reach the wire.
func (t *SchemaType) ValidateWithDefaults(v any) (any, error) {
	return ValidateAgainst(t.schema, t.typeName(), t.Property(), v)
}

// CompiledSchema exposes the compiled validator so sibling packages
// (encrypted.SchemaType) can reuse it without recompiling schemaJSON.
func (t *SchemaType) CompiledSchema() *jsonschema.Schema { return t.schema }

// ValidateAgainst runs the same normalize/default/validate sequence as
// SchemaType.ValidateWithDefaults against an already-compiled schema,
// letting encrypted.SchemaType share this logic instead of duplicating it.
func ValidateAgainst(schema *jsonschema.Schema, typeName, property string, v any) (any, error) {
	normalized, err := normalize(v)
	if err != nil {
		return nil, codec.NewError(codec.FormatInvalid, typeName, property, err)
	}
	defaulted := applyDefaults(schema, normalized)
	if err := schema.Validate(defaulted); err != nil {
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			return nil, codec.NewSchemaError(typeName, property, flattenValidationError(verr), v)
		}
		return nil, codec.NewSchemaError(typeName, property, []error{err}, v)
	}
	return defaulted, nil
}

// applyDefaults walks schema's declared object properties and fills any
// missing key in value with that property's declared "default", one
// level at a time (matching spec's "populates defaults for missing
// optional fields", not a recursive deep-merge).
func applyDefaults(schema *jsonschema.Schema, value any) any {
	obj, ok := value.(map[string]any)
	if !ok || schema == nil || schema.Properties == nil {
		return value
	}
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	for name, propSchema := range schema.Properties {
		if _, present := out[name]; present {
			continue
		}
		if propSchema.Default != nil {
			out[name] = propSchema.Default
		}
	}
	return out
}

func flattenValidationError(verr *jsonschema.ValidationError) []error {
	var out []error
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		out = append(out, e)
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(verr)
	return out
}

func (t *SchemaType) Serialize(row codec.Row, v any) error {
	defaulted, err := t.ValidateWithDefaults(v)
	if err != nil {
		return err
	}
	return t.json.Serialize(row, defaulted)
}

func (t *SchemaType) Deserialize(row codec.Row) (any, error) {
	v, err := t.json.Deserialize(row)
	if err != nil {
		return nil, err
	}
	defaulted, err := t.ValidateWithDefaults(v)
	if err != nil {
		return nil, err
	}
	return defaulted, nil
}

func (t *SchemaType) Equal(a, b any) bool        { return t.json.Equal(a, b) }
func (t *SchemaType) Clone(v any) (any, error)   { return t.json.Clone(v) }
func (t *SchemaType) Hash(v any) ([]byte, error) { return t.json.Hash(v) }

// ---- SlugIdArrayType -------------------------------------------------------

// SlugIdArrayType codecs a *slugarray.Array as the packed 16-byte-per-
// identifier view of its live region.
type SlugIdArrayType struct {
	codec.Base
}

func NewSlugIdArray(property string) *SlugIdArrayType {
	return &SlugIdArrayType{Base: codec.NewBaseType(property, false, false, false)}
}

func (t *SlugIdArrayType) typeName() string { return "SlugIdArrayType" }

// ToBuffer returns the live packed-bytes view of arr.
func (t *SlugIdArrayType) ToBuffer(arr *slugarray.Array) []byte {
	return arr.Bytes()
}

// FromBuffer wraps raw bytes as a new *slugarray.Array.
func (t *SlugIdArrayType) FromBuffer(raw []byte) (*slugarray.Array, error) {
	arr, err := slugarray.FromBuffer(raw)
	if err != nil {
		return nil, codec.NewError(codec.DecodeFailure, t.typeName(), t.Property(), err)
	}
	return arr, nil
}

func (t *SlugIdArrayType) Serialize(row codec.Row, arr *slugarray.Array) error {
	return buffer.Write(row, t.Property(), t.ToBuffer(arr), t.typeName())
}

func (t *SlugIdArrayType) Deserialize(row codec.Row) (*slugarray.Array, error) {
	raw, err := buffer.Read(row, t.Property(), t.typeName())
	if err != nil {
		return nil, err
	}
	return t.FromBuffer(raw)
}

func (t *SlugIdArrayType) Equal(a, b *slugarray.Array) bool { return a.Equals(b) }

func (t *SlugIdArrayType) Clone(v *slugarray.Array) *slugarray.Array { return v.Clone() }

// Hash returns the packed bytes of arr's live region.
func (t *SlugIdArrayType) Hash(arr *slugarray.Array) []byte { return arr.Bytes() }

var (
	_ codec.Type = (*BlobType)(nil)
	_ codec.Type = (*TextType)(nil)
	_ codec.Type = (*JSONType)(nil)
	_ codec.Type = (*SchemaType)(nil)
	_ codec.Type = (*SlugIdArrayType)(nil)
)
