package compiler

import (
	"github.com/roach88/polyconst/internal/ir"
)

// NumericImport is the import path of the runtime support package that
// generated code uses for non-zero and 128-bit values.
const NumericImport = "github.com/roach88/polyconst/numeric"

type builtin struct {
	goType string
	kind   ir.Kind
}

// nonZeroTags is the closed table of non-zero shorthands.
var nonZeroTags = map[ir.Shorthand]builtin{
	"nz_i8":    {"int8", ir.KindInt8},
	"nz_i16":   {"int16", ir.KindInt16},
	"nz_i32":   {"int32", ir.KindInt32},
	"nz_i64":   {"int64", ir.KindInt64},
	"nz_i128":  {"numeric.Int128", ir.KindInt128},
	"nz_isize": {"int", ir.KindInt},
	"nz_u8":    {"uint8", ir.KindUint8},
	"nz_u16":   {"uint16", ir.KindUint16},
	"nz_u32":   {"uint32", ir.KindUint32},
	"nz_u64":   {"uint64", ir.KindUint64},
	"nz_u128":  {"numeric.Uint128", ir.KindUint128},
	"nz_usize": {"uint", ir.KindUint},
}

// shortTags maps the short spellings to Go types.
var shortTags = map[ir.Shorthand]builtin{
	"i8":    {"int8", ir.KindInt8},
	"i16":   {"int16", ir.KindInt16},
	"i32":   {"int32", ir.KindInt32},
	"i64":   {"int64", ir.KindInt64},
	"isize": {"int", ir.KindInt},
	"u8":    {"uint8", ir.KindUint8},
	"u16":   {"uint16", ir.KindUint16},
	"u32":   {"uint32", ir.KindUint32},
	"u64":   {"uint64", ir.KindUint64},
	"usize": {"uint", ir.KindUint},
	"f32":   {"float32", ir.KindFloat32},
	"f64":   {"float64", ir.KindFloat64},
}

// wideTags have no Go conversion; they are built from 64-bit halves.
var wideTags = map[ir.Shorthand]builtin{
	"i128": {"numeric.Int128", ir.KindInt128},
	"u128": {"numeric.Uint128", ir.KindUint128},
}

// goTypes are the predeclared Go numeric types accepted verbatim.
var goTypes = map[ir.Shorthand]ir.Kind{
	"int8":    ir.KindInt8,
	"int16":   ir.KindInt16,
	"int32":   ir.KindInt32,
	"rune":    ir.KindInt32,
	"int64":   ir.KindInt64,
	"int":     ir.KindInt,
	"uint8":   ir.KindUint8,
	"byte":    ir.KindUint8,
	"uint16":  ir.KindUint16,
	"uint32":  ir.KindUint32,
	"uint64":  ir.KindUint64,
	"uint":    ir.KindUint,
	"uintptr": ir.KindUintptr,
	"float32": ir.KindFloat32,
	"float64": ir.KindFloat64,
}

// Resolve maps a shorthand tag to its variant. It never fails: a tag that is
// not in any table is used verbatim as a Go type name with an unknown kind,
// and a bad name surfaces when the generated file is compiled.
func Resolve(tag ir.Shorthand) ir.Variant {
	if b, ok := nonZeroTags[tag]; ok {
		return ir.Variant{
			Tag:          tag,
			ResolvedType: "numeric.NonZero[" + b.goType + "]",
			Elem:         b.goType,
			Strategy:     ir.NonZeroWrap,
			Kind:         b.kind,
		}
	}
	if b, ok := shortTags[tag]; ok {
		return ir.Variant{Tag: tag, ResolvedType: b.goType, Strategy: ir.DirectCast, Kind: b.kind}
	}
	if b, ok := wideTags[tag]; ok {
		return ir.Variant{Tag: tag, ResolvedType: b.goType, Strategy: ir.WideSplit, Kind: b.kind}
	}
	if kind, ok := goTypes[tag]; ok {
		return ir.Variant{Tag: tag, ResolvedType: string(tag), Strategy: ir.DirectCast, Kind: kind}
	}
	return ir.Variant{Tag: tag, ResolvedType: string(tag), Strategy: ir.DirectCast, Kind: ir.KindUnknown}
}

// NeedsNumeric reports whether a variant's generated code references the
// numeric support package.
func NeedsNumeric(v ir.Variant) bool {
	return v.Strategy != ir.DirectCast
}
