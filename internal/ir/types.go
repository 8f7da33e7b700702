package ir

import (
	"fmt"
	"go/token"
)

// Shorthand is a type tag as written in a declaration, e.g. "i32", "nz_u8",
// "float64" or "time.Duration".
type Shorthand string

// Strategy selects how a variant's field is constructed from the initializer.
type Strategy int

const (
	// DirectCast converts the initializer with a Go constant conversion T(expr).
	DirectCast Strategy = iota
	// NonZeroWrap wraps the converted initializer in numeric.NonZero.
	NonZeroWrap
	// WideSplit builds a 128-bit value from its high and low halves.
	WideSplit
)

var strategyNames = map[Strategy]string{
	DirectCast:  "direct_cast",
	NonZeroWrap: "non_zero_wrap",
	WideSplit:   "wide_split",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Kind is the numeric kind of a resolved type, as far as the resolver knows it.
type Kind int

const (
	// KindUnknown marks a verbatim type name; checking it is left to the Go compiler.
	KindUnknown Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindInt
	KindInt128
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindUint
	KindUintptr
	KindUint128
	KindFloat32
	KindFloat64
)

var kindNames = map[Kind]string{
	KindUnknown: "unknown",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindInt:     "int",
	KindInt128:  "int128",
	KindUint8:   "uint8",
	KindUint16:  "uint16",
	KindUint32:  "uint32",
	KindUint64:  "uint64",
	KindUint:    "uint",
	KindUintptr: "uintptr",
	KindUint128: "uint128",
	KindFloat32: "float32",
	KindFloat64: "float64",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsInteger reports whether k is a signed or unsigned integer kind.
func (k Kind) IsInteger() bool {
	return k >= KindInt8 && k <= KindUint128
}

// IsUnsigned reports whether k is an unsigned integer kind.
func (k Kind) IsUnsigned() bool {
	return k >= KindUint8 && k <= KindUint128
}

// IsFloat reports whether k is a floating-point kind.
func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// Variant is one requested representation of a constant.
type Variant struct {
	Tag          Shorthand `json:"tag"`
	ResolvedType string    `json:"resolved_type"`
	Elem         string    `json:"elem,omitempty"` // wrapped type, NonZeroWrap only
	Strategy     Strategy  `json:"strategy"`
	Kind         Kind      `json:"kind"`
}

// FieldName returns the container field that stores this variant.
// Fields are unexported so the instance cannot be modified outside its package.
func (v Variant) FieldName() string {
	return LowerFirst(flattenTag(v.Tag))
}

// AccessorName returns the method that converts the container to this variant.
func (v Variant) AccessorName() string {
	return UpperCamel(flattenTag(v.Tag))
}

// Visibility is the declared visibility of a constant.
type Visibility int

const (
	Private Visibility = iota
	PublicScoped
	Public
)

var visibilityNames = map[Visibility]string{
	Private:      "private",
	PublicScoped: "public_scoped",
	Public:       "public",
}

func (v Visibility) String() string {
	if name, ok := visibilityNames[v]; ok {
		return name
	}
	return fmt.Sprintf("visibility(%d)", int(v))
}

// MarshalText implements encoding.TextMarshaler.
func (v Visibility) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Exported reports whether generated type names for this visibility are exported.
func (v Visibility) Exported() bool {
	return v != Private
}

// Declaration keywords.
const (
	KeywordConst  = "const"
	KeywordStatic = "static"
)

// Declaration is one parsed `name : tag | tag = expr` clause.
type Declaration struct {
	Attributes  []string       `json:"attributes,omitempty"` // comment lines, verbatim
	Visibility  Visibility     `json:"visibility"`
	ScopePath   string         `json:"scope_path,omitempty"` // only for PublicScoped
	Keyword     string         `json:"keyword"`
	Name        string         `json:"name"`
	TypeName    string         `json:"type_name"`
	Variants    []Variant      `json:"variants"`
	Initializer string         `json:"initializer"` // Go expression source, as written
	Pos         token.Position `json:"-"`
}
