// Package scalar implements the single-cell value types of spec §4.4:
// String, Boolean, Number, PositiveInteger, Date, UUID, and SlugId. Each
// type validates, writes one wire cell (plus an optional @odata.type
// annotation), and reads itself back.
//
// Grounded on the teacher's internal/rules/coercion.go for the
// type-dispatch-by-switch shape, and internal/types/ids.go for the
// google/uuid-based parse/format discipline reused here for UUID and,
// via the slugid package, SlugId.
package scalar

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/solatis/typecodec/internal/codec"
	"github.com/solatis/typecodec/internal/codec/filterop"
	"github.com/solatis/typecodec/internal/codec/slugid"
)

// ---- String --------------------------------------------------------------

// StringType codecs a plain string value into a single cell.
type StringType struct {
	codec.Base
}

// NewString constructs a StringType bound to property.
func NewString(property string) *StringType {
	return &StringType{Base: codec.NewBaseType(property, true, true, false)}
}

func (t *StringType) typeName() string { return "String" }

// Validate checks v is a string.
func (t *StringType) Validate(v string) error { return nil }

// Serialize writes v into row[property].
func (t *StringType) Serialize(row codec.Row, v string) error {
	row[t.Property()] = v
	return nil
}

// Deserialize reads and validates the string cell back.
func (t *StringType) Deserialize(row codec.Row) (string, error) {
	raw, ok := row[t.Property()]
	if !ok {
		return "", codec.NewError(codec.TypeMismatch, t.typeName(), t.Property(), fmt.Errorf("cell missing"))
	}
	if err := codec.CheckCategory(t.typeName(), t.Property(), []codec.Category{codec.CategoryString}, raw); err != nil {
		return "", err
	}
	return raw.(string), nil
}

// Equal compares two string values for equality.
func (t *StringType) Equal(a, b string) bool { return a == b }

// Clone returns v unchanged; strings are immutable.
func (t *StringType) Clone(v string) string { return v }

// String returns v itself as the canonical stringification.
func (t *StringType) String(v string) string { return v }

// FilterCondition renders a filter clause for op against operand.
func (t *StringType) FilterCondition(op filterop.Op, operand string) string {
	return filterop.Render(t.Property(), filterop.Condition{Op: op, Operand: operand, Category: filterop.CategoryString})
}

// ---- Boolean ---------------------------------------------------------------

// BooleanType codecs a bool value. Not ordered: booleans have no range
// semantics worth filtering on.
type BooleanType struct {
	codec.Base
}

func NewBoolean(property string) *BooleanType {
	return &BooleanType{Base: codec.NewBaseType(property, false, true, false)}
}

func (t *BooleanType) typeName() string { return "Boolean" }

func (t *BooleanType) Serialize(row codec.Row, v bool) error {
	row[t.Property()] = v
	return nil
}

func (t *BooleanType) Deserialize(row codec.Row) (bool, error) {
	raw, ok := row[t.Property()]
	if !ok {
		return false, codec.NewError(codec.TypeMismatch, t.typeName(), t.Property(), fmt.Errorf("cell missing"))
	}
	if err := codec.CheckCategory(t.typeName(), t.Property(), []codec.Category{codec.CategoryBool}, raw); err != nil {
		return false, err
	}
	return raw.(bool), nil
}

func (t *BooleanType) Equal(a, b bool) bool { return a == b }
func (t *BooleanType) Clone(v bool) bool    { return v }

func (t *BooleanType) String(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// FilterCondition renders eq/ne clauses; boolean is not ordered, so
// lt/le/gt/ge raise NotComparable.
func (t *BooleanType) FilterCondition(op filterop.Op, operand bool) (string, error) {
	if op != filterop.Eq && op != filterop.Ne {
		return "", codec.NewError(codec.NotComparable, t.typeName(), t.Property(), fmt.Errorf("boolean does not support ordering operator %s", op))
	}
	return filterop.Render(t.Property(), filterop.Condition{Op: op, Operand: operand, Category: filterop.CategoryBoolean}), nil
}

// ---- Number ----------------------------------------------------------------

// bigIntThreshold is the magnitude at which an integer value is written
// as a string with an Edm.Int64 annotation instead of a bare double.
const bigIntThreshold = 1 << 31

// NumberType codecs a float64 value, switching to string+Edm.Int64
// representation when the value is an integer with |v| >= 2^31 (spec
// §4.4's "not a big int" carve-out: non-integers always go through as
// doubles regardless of magnitude).
type NumberType struct {
	codec.Base
}

func NewNumber(property string) *NumberType {
	return &NumberType{Base: codec.NewBaseType(property, true, true, false)}
}

func (t *NumberType) typeName() string { return "Number" }

func (t *NumberType) isBigInt(v float64) bool {
	return v == math.Trunc(v) && math.Abs(v) >= bigIntThreshold
}

func (t *NumberType) Serialize(row codec.Row, v float64) error {
	if t.isBigInt(v) {
		row[t.Property()] = strconv.FormatInt(int64(v), 10)
		row[codec.AnnotationKey(t.Property())] = codec.EdmInt64
		return nil
	}
	row[t.Property()] = v
	return nil
}

func (t *NumberType) Deserialize(row codec.Row) (float64, error) {
	raw, ok := row[t.Property()]
	if !ok {
		return 0, codec.NewError(codec.TypeMismatch, t.typeName(), t.Property(), fmt.Errorf("cell missing"))
	}
	annotation, _ := row[codec.AnnotationKey(t.Property())].(string)
	if annotation == codec.EdmInt64 {
		if err := codec.CheckCategory(t.typeName(), t.Property(), []codec.Category{codec.CategoryString}, raw); err != nil {
			return 0, err
		}
		n, err := strconv.ParseInt(raw.(string), 10, 64)
		if err != nil {
			return 0, codec.NewError(codec.FormatInvalid, t.typeName(), t.Property(), err)
		}
		return float64(n), nil
	}
	if err := codec.CheckCategory(t.typeName(), t.Property(), []codec.Category{codec.CategoryNumber}, raw); err != nil {
		return 0, err
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, codec.NewError(codec.TypeMismatch, t.typeName(), t.Property(), fmt.Errorf("cell is not numeric"))
	}
}

func (t *NumberType) Equal(a, b float64) bool { return a == b }
func (t *NumberType) Clone(v float64) float64 { return v }

func (t *NumberType) String(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (t *NumberType) FilterCondition(op filterop.Op, operand float64) string {
	return filterop.Render(t.Property(), filterop.Condition{Op: op, Operand: t.String(operand), Category: filterop.CategoryNumber})
}

// ---- PositiveInteger --------------------------------------------------------

// PositiveIntegerType codecs a non-negative integer below 2^32,
// using the same wire representation as NumberType.
type PositiveIntegerType struct {
	*NumberType
}

func NewPositiveInteger(property string) *PositiveIntegerType {
	return &PositiveIntegerType{NumberType: NewNumber(property)}
}

func (t *PositiveIntegerType) typeName() string { return "PositiveInteger" }

// Validate rejects non-integers, negative values, and values >= 2^32:
// 2^32 itself fails, 2^32-1 passes.
func (t *PositiveIntegerType) Validate(v float64) error {
	if v != math.Trunc(v) {
		return codec.NewError(codec.FormatInvalid, t.typeName(), t.Property(), fmt.Errorf("%v is not an integer", v))
	}
	if v < 0 {
		return codec.NewError(codec.FormatInvalid, t.typeName(), t.Property(), fmt.Errorf("%v is negative", v))
	}
	if v >= math.Pow(2, 32) {
		return codec.NewError(codec.FormatInvalid, t.typeName(), t.Property(), fmt.Errorf("%v is not below 2^32", v))
	}
	return nil
}

func (t *PositiveIntegerType) Serialize(row codec.Row, v float64) error {
	if err := t.Validate(v); err != nil {
		return err
	}
	return t.NumberType.Serialize(row, v)
}

func (t *PositiveIntegerType) Deserialize(row codec.Row) (float64, error) {
	v, err := t.NumberType.Deserialize(row)
	if err != nil {
		return 0, err
	}
	if err := t.Validate(v); err != nil {
		return 0, err
	}
	return v, nil
}

// ---- Date --------------------------------------------------------------

// DateType codecs a time.Time as an ISO-8601 string with an Edm.DateTime
// annotation. Equality is millisecond-granular per spec §4.4.
type DateType struct {
	codec.Base
}

func NewDate(property string) *DateType {
	return &DateType{Base: codec.NewBaseType(property, true, true, false)}
}

func (t *DateType) typeName() string { return "Date" }

const iso8601Millis = "2006-01-02T15:04:05.000Z"

func (t *DateType) Serialize(row codec.Row, v time.Time) error {
	row[t.Property()] = v.UTC().Format(iso8601Millis)
	row[codec.AnnotationKey(t.Property())] = codec.EdmDateTime
	return nil
}

func (t *DateType) Deserialize(row codec.Row) (time.Time, error) {
	raw, ok := row[t.Property()]
	if !ok {
		return time.Time{}, codec.NewError(codec.TypeMismatch, t.typeName(), t.Property(), fmt.Errorf("cell missing"))
	}
	if err := codec.CheckCategory(t.typeName(), t.Property(), []codec.Category{codec.CategoryString}, raw); err != nil {
		return time.Time{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, raw.(string))
	if err != nil {
		return time.Time{}, codec.NewError(codec.FormatInvalid, t.typeName(), t.Property(), err)
	}
	return parsed, nil
}

// Equal compares two instants with millisecond precision.
func (t *DateType) Equal(a, b time.Time) bool {
	return a.UnixMilli() == b.UnixMilli()
}

func (t *DateType) Clone(v time.Time) time.Time { return v }

func (t *DateType) String(v time.Time) string {
	return v.UTC().Format(iso8601Millis)
}

func (t *DateType) FilterCondition(op filterop.Op, operand time.Time) string {
	return filterop.Render(t.Property(), filterop.Condition{Op: op, Operand: t.String(operand), Category: filterop.CategoryDate})
}

// ---- UUID --------------------------------------------------------------

// UUIDType codecs a uuid.UUID as its canonical lowercase hex-with-dashes
// string, annotated Edm.Guid. Comparison is undefined: compare fails
// explicitly per spec §4.4 (open question resolved: both UUID and
// SlugId raise NotComparable on Compare, see DESIGN.md).
type UUIDType struct {
	codec.Base
}

func NewUUID(property string) *UUIDType {
	return &UUIDType{Base: codec.NewBaseType(property, true, true, false)}
}

func (t *UUIDType) typeName() string { return "UUID" }

func (t *UUIDType) Serialize(row codec.Row, v uuid.UUID) error {
	row[t.Property()] = v.String()
	row[codec.AnnotationKey(t.Property())] = codec.EdmGuid
	return nil
}

func (t *UUIDType) Deserialize(row codec.Row) (uuid.UUID, error) {
	raw, ok := row[t.Property()]
	if !ok {
		return uuid.UUID{}, codec.NewError(codec.TypeMismatch, t.typeName(), t.Property(), fmt.Errorf("cell missing"))
	}
	if err := codec.CheckCategory(t.typeName(), t.Property(), []codec.Category{codec.CategoryString}, raw); err != nil {
		return uuid.UUID{}, err
	}
	parsed, err := uuid.Parse(raw.(string))
	if err != nil {
		return uuid.UUID{}, codec.NewError(codec.FormatInvalid, t.typeName(), t.Property(), err)
	}
	return parsed, nil
}

// Equal compares two UUIDs case-insensitively (uuid.UUID is already
// normalized, so byte equality suffices).
func (t *UUIDType) Equal(a, b uuid.UUID) bool { return a == b }

func (t *UUIDType) Clone(v uuid.UUID) uuid.UUID { return v }

func (t *UUIDType) String(v uuid.UUID) string { return strings.ToLower(v.String()) }

// Compare is explicitly unsupported for UUID, per spec §4.4 and §9.
func (t *UUIDType) Compare(a, b uuid.UUID) (int, error) {
	return 0, codec.NewError(codec.NotComparable, t.typeName(), t.Property(), fmt.Errorf("UUID does not support ordering comparison"))
}

func (t *UUIDType) FilterCondition(op filterop.Op, operand uuid.UUID) string {
	return filterop.Render(t.Property(), filterop.Condition{Op: op, Operand: t.String(operand), Category: filterop.CategoryGuid})
}

// ---- SlugId --------------------------------------------------------------

// SlugIdType codecs a 16-byte identifier through the slugid package,
// storing it on the wire as a canonical GUID string (Edm.Guid), the same
// cell shape as UUIDType, while exposing the compact slug form to
// callers. See DESIGN.md for the §9 open question on SlugId.String.
type SlugIdType struct {
	codec.Base
}

func NewSlugId(property string) *SlugIdType {
	return &SlugIdType{Base: codec.NewBaseType(property, true, true, false)}
}

func (t *SlugIdType) typeName() string { return "SlugId" }

func (t *SlugIdType) Serialize(row codec.Row, slug string) error {
	raw, err := slugid.Decode(slug)
	if err != nil {
		return codec.NewError(codec.FormatInvalid, t.typeName(), t.Property(), err)
	}
	guid, err := rawToGUIDString(raw)
	if err != nil {
		return codec.NewError(codec.FormatInvalid, t.typeName(), t.Property(), err)
	}
	row[t.Property()] = guid
	row[codec.AnnotationKey(t.Property())] = codec.EdmGuid
	return nil
}

func (t *SlugIdType) Deserialize(row codec.Row) (string, error) {
	raw, ok := row[t.Property()]
	if !ok {
		return "", codec.NewError(codec.TypeMismatch, t.typeName(), t.Property(), fmt.Errorf("cell missing"))
	}
	if err := codec.CheckCategory(t.typeName(), t.Property(), []codec.Category{codec.CategoryString}, raw); err != nil {
		return "", err
	}
	rawBytes, err := guidStringToRaw(raw.(string))
	if err != nil {
		return "", codec.NewError(codec.FormatInvalid, t.typeName(), t.Property(), err)
	}
	slug, err := slugid.Encode(rawBytes)
	if err != nil {
		return "", codec.NewError(codec.FormatInvalid, t.typeName(), t.Property(), err)
	}
	return slug, nil
}

// Equal compares two slugs for exact (slug-form) equality.
func (t *SlugIdType) Equal(a, b string) bool { return a == b }

func (t *SlugIdType) Clone(v string) string { return v }

// String returns the slug form. Spec §9 leaves this operation's
// existence ambiguous in the source; this port defines it rather than
// raising NotImplemented, since key derivation from a SlugId-typed
// property is a reasonable and harmless capability to offer.
func (t *SlugIdType) String(v string) string { return v }

// Compare is explicitly unsupported for SlugId, per spec §9.
func (t *SlugIdType) Compare(a, b string) (int, error) {
	return 0, codec.NewError(codec.NotComparable, t.typeName(), t.Property(), fmt.Errorf("SlugId does not support ordering comparison"))
}

func (t *SlugIdType) FilterCondition(op filterop.Op, operand string) (string, error) {
	raw, err := slugid.Decode(operand)
	if err != nil {
		return "", codec.NewError(codec.FormatInvalid, t.typeName(), t.Property(), err)
	}
	guid, err := rawToGUIDString(raw)
	if err != nil {
		return "", codec.NewError(codec.FormatInvalid, t.typeName(), t.Property(), err)
	}
	return filterop.Render(t.Property(), filterop.Condition{Op: op, Operand: guid, Category: filterop.CategoryGuid}), nil
}

func rawToGUIDString(raw []byte) (string, error) {
	id, err := uuid.FromBytes(raw)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func guidStringToRaw(s string) ([]byte, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	b := id[:]
	return b, nil
}

var (
	_ codec.Type = (*StringType)(nil)
	_ codec.Type = (*BooleanType)(nil)
	_ codec.Type = (*NumberType)(nil)
	_ codec.Type = (*PositiveIntegerType)(nil)
	_ codec.Type = (*DateType)(nil)
	_ codec.Type = (*UUIDType)(nil)
	_ codec.Type = (*SlugIdType)(nil)
)
