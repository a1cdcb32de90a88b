// Package encrypted implements the encrypted value types of spec §4.8:
// EncryptedBlob, EncryptedText, EncryptedJSON, and EncryptedSchema. Each
// mirrors its buffertype counterpart's validation and value semantics
// but routes its payload through internal/codec/crypt instead of writing
// plaintext into the buffer envelope directly. IsEncrypted() is true for
// all four, and Hash is computed over the plaintext domain value so that
// two encryptions of the same value (which differ in ciphertext thanks
// to a fresh IV) still hash equal.
//
// Grounded on internal/codec/buffertype's Blob/Text/JSON/Schema shapes,
// composed with the crypt envelope in place of the raw buffer envelope.
package encrypted

import (
	"bytes"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/solatis/typecodec/internal/codec"
	"github.com/solatis/typecodec/internal/codec/buffertype"
	"github.com/solatis/typecodec/internal/codec/crypt"
)

// ---- EncryptedBlob -------------------------------------------------------

// BlobType is the identity codec over raw bytes, encrypted at rest.
type BlobType struct {
	codec.Base
}

func NewBlob(property string) *BlobType {
	return &BlobType{Base: codec.NewBaseType(property, false, false, true)}
}

func (t *BlobType) typeName() string { return "EncryptedBlob" }

func (t *BlobType) Serialize(row codec.Row, v []byte, key []byte) error {
	return crypt.Encrypt(row, t.Property(), v, key, t.typeName())
}

func (t *BlobType) Deserialize(row codec.Row, key []byte) ([]byte, error) {
	return crypt.Decrypt(row, t.Property(), key, t.typeName())
}

func (t *BlobType) Equal(a, b []byte) bool { return bytes.Equal(a, b) }

func (t *BlobType) Clone(v []byte) []byte {
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

// Hash is over plaintext, not ciphertext, so repeated encryptions of the
// same value hash equal despite the random IV.
func (t *BlobType) Hash(v []byte) []byte { return v }

// ---- EncryptedText -------------------------------------------------------

// TextType UTF-8 encodes a string and encrypts it at rest.
type TextType struct {
	codec.Base
}

func NewText(property string) *TextType {
	return &TextType{Base: codec.NewBaseType(property, false, false, true)}
}

func (t *TextType) typeName() string { return "EncryptedText" }

func (t *TextType) Serialize(row codec.Row, v string, key []byte) error {
	return crypt.Encrypt(row, t.Property(), []byte(v), key, t.typeName())
}

func (t *TextType) Deserialize(row codec.Row, key []byte) (string, error) {
	raw, err := crypt.Decrypt(row, t.Property(), key, t.typeName())
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (t *TextType) Equal(a, b string) bool { return a == b }
func (t *TextType) Clone(v string) string  { return v }
func (t *TextType) Hash(v string) string   { return v }

// ---- EncryptedJSON -------------------------------------------------------

// JSONType codecs an arbitrary JSON-compatible value, encrypted at rest.
type JSONType struct {
	codec.Base
}

func NewJSON(property string) *JSONType {
	return &JSONType{Base: codec.NewBaseType(property, false, false, true)}
}

func (t *JSONType) typeName() string { return "EncryptedJSON" }

func (t *JSONType) Serialize(row codec.Row, v any, key []byte) error {
	data, err := json.Marshal(v)
	if err != nil {
		return codec.NewError(codec.FormatInvalid, t.typeName(), t.Property(), err)
	}
	return crypt.Encrypt(row, t.Property(), data, key, t.typeName())
}

func (t *JSONType) Deserialize(row codec.Row, key []byte) (any, error) {
	raw, err := crypt.Decrypt(row, t.Property(), key, t.typeName())
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, codec.NewError(codec.DecodeFailure, t.typeName(), t.Property(), err)
	}
	return v, nil
}

// Equal compares by canonical JSON form of the decoded plaintext values.
func (t *JSONType) Equal(a, b any) bool {
	ha, err1 := buffertype.CanonicalJSON(a)
	hb, err2 := buffertype.CanonicalJSON(b)
	if err1 != nil || err2 != nil {
		return false
	}
	return string(ha) == string(hb)
}

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

// Hash is over the plaintext's canonical JSON form.
func (t *JSONType) Hash(v any) ([]byte, error) { return buffertype.CanonicalJSON(v) }

// ---- EncryptedSchema -------------------------------------------------------

// SchemaType layers a compiled JSON-Schema validator atop EncryptedJSON,
// mirroring buffertype.SchemaType's default-population behavior.
type SchemaType struct {
	codec.Base
	json   *JSONType
	schema *jsonschema.Schema
}

// NewSchema compiles schemaJSON once, the same way buffertype.NewSchema
// does, and returns a type descriptor that encrypts validated values.
func NewSchema(property string, schemaJSON []byte) (*SchemaType, error) {
	plain, err := buffertype.NewSchema(property, schemaJSON)
	if err != nil {
		return nil, err
	}
	return &SchemaType{
		Base:   codec.NewBaseType(property, false, false, true),
		json:   NewJSON(property),
		schema: plain.CompiledSchema(),
	}, nil
}

func (t *SchemaType) typeName() string { return "EncryptedSchema" }

func (t *SchemaType) validateWithDefaults(v any) (any, error) {
	return buffertype.ValidateAgainst(t.schema, t.typeName(), t.Property(), v)
}

func (t *SchemaType) Serialize(row codec.Row, v any, key []byte) error {
	defaulted, err := t.validateWithDefaults(v)
	if err != nil {
		return err
	}
	return t.json.Serialize(row, defaulted, key)
}

func (t *SchemaType) Deserialize(row codec.Row, key []byte) (any, error) {
	v, err := t.json.Deserialize(row, key)
	if err != nil {
		return nil, err
	}
	return t.validateWithDefaults(v)
}

func (t *SchemaType) Equal(a, b any) bool        { return t.json.Equal(a, b) }
func (t *SchemaType) Clone(v any) (any, error)   { return t.json.Clone(v) }
func (t *SchemaType) Hash(v any) ([]byte, error) { return t.json.Hash(v) }

var (
	_ codec.Type = (*BlobType)(nil)
	_ codec.Type = (*TextType)(nil)
	_ codec.Type = (*JSONType)(nil)
	_ codec.Type = (*SchemaType)(nil)
)
