package codec

// Row is the flat name-to-primitive-value mapping accepted by the target
// table store. Values are always one of string, float64, bool, or int64;
// the codec owning a cell decides which. A cell named "<cell>@odata.type"
// carries the wire type tag for its sibling cell; cells without an
// annotation default to string or double per the store's convention.
type Row map[string]any

// AnnotationKey returns the companion annotation cell name for cell.
func AnnotationKey(cell string) string {
	return cell + "@odata.type"
}

// Wire type tags emitted via the @odata.type annotation cell.
const (
	EdmInt64    = "Edm.Int64"
	EdmDateTime = "Edm.DateTime"
	EdmGuid     = "Edm.Guid"
	EdmBinary   = "Edm.Binary"
)

// Type is the capability surface every codec variant honors. Flags are
// fixed per type variant and never change after construction.
type Type interface {
	// Property returns the logical column name this instance is bound to.
	Property() string
	// Ordered reports whether this type supports <, <=, >, >= filters.
	Ordered() bool
	// Comparable reports whether this type supports =, != filters.
	Comparable() bool
	// IsEncrypted reports whether serialize/deserialize require a key.
	IsEncrypted() bool
}

// base implements the fixed-flag portion of Type; every concrete codec
// embeds it instead of repeating three accessor methods.
type base struct {
	property   string
	ordered    bool
	comparable bool
	encrypted  bool
}

func newBase(property string, ordered, comparable, encrypted bool) base {
	return base{property: property, ordered: ordered, comparable: comparable, encrypted: encrypted}
}

func (b base) Property() string    { return b.property }
func (b base) Ordered() bool       { return b.ordered }
func (b base) Comparable() bool    { return b.comparable }
func (b base) IsEncrypted() bool   { return b.encrypted }

// Base is exported so codecs in sibling packages (scalar, buffertype,
// encrypted) can embed the same fixed-flag bookkeeping without this
// package exposing its unexported base type.
type Base = base

// NewBaseType constructs the embeddable flag bundle for a concrete codec.
func NewBaseType(property string, ordered, comparable, encrypted bool) Base {
	return newBase(property, ordered, comparable, encrypted)
}

// category names a value's primitive wire shape for the CheckCategory helper.
type category int

const (
	CategoryString category = iota
	CategoryNumber
	CategoryBool
	CategoryBinary
	CategoryDate
	CategoryGuid
	CategoryObject
)

func (c category) String() string {
	switch c {
	case CategoryString:
		return "string"
	case CategoryNumber:
		return "number"
	case CategoryBool:
		return "boolean"
	case CategoryBinary:
		return "binary"
	case CategoryDate:
		return "date"
	case CategoryGuid:
		return "guid"
	case CategoryObject:
		return "object"
	default:
		return "unknown"
	}
}

// Category is the exported alias for category, since Go does not let an
// unexported type leak through an exported function signature cleanly
// across packages without an alias.
type Category = category

// CheckCategory is the single shared type-checking utility every
// validator in this module delegates to for primitive checks (§4.9).
// It accepts actual if its runtime type belongs to expected, and
// otherwise fails with a uniform TypeMismatch diagnostic naming typeName,
// property, and the expected/actual categories.
func CheckCategory(typeName, property string, expected []Category, actual any) error {
	actualCat, ok := categoryOf(actual)
	if !ok {
		return NewError(TypeMismatch, typeName, property,
			errf("value has no recognized wire category"))
	}
	for _, c := range expected {
		if c == actualCat {
			return nil
		}
	}
	return NewError(TypeMismatch, typeName, property,
		errf("expected %s, got %s", joinCategories(expected), actualCat))
}

func categoryOf(v any) (Category, bool) {
	switch v.(type) {
	case string:
		return CategoryString, true
	case bool:
		return CategoryBool, true
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return CategoryNumber, true
	case []byte:
		return CategoryBinary, true
	default:
		return CategoryObject, true
	}
}

func joinCategories(cs []Category) string {
	if len(cs) == 0 {
		return "none"
	}
	s := cs[0].String()
	for _, c := range cs[1:] {
		s += "|" + c.String()
	}
	return s
}
