package ir

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// DefaultTypePrefix is prepended to every generated container type name.
const DefaultTypePrefix = "PolymorphicConstant"

// NormalizeIdent returns the NFC form of an identifier.
// Identifiers are compared and transformed only in this form.
func NormalizeIdent(s string) string {
	return norm.NFC.String(s)
}

// UpperCamel converts a constant or tag name to UpperCamelCase.
//
// The name is split on underscores. Words without lower-case letters are
// title-cased (HEIGHT -> Height); other words keep their internal casing and
// only have their first rune upper-cased (piE -> PiE).
//
//	UpperCamel("ASCII_LINE_RETURN") // "AsciiLineReturn"
//	UpperCamel("nz_u8")             // "NzU8"
func UpperCamel(name string) string {
	var b strings.Builder
	for _, word := range strings.Split(NormalizeIdent(name), "_") {
		if word == "" {
			continue
		}
		if !hasLower(word) {
			b.WriteString(cases.Title(language.Und).String(word))
			continue
		}
		b.WriteString(UpperFirst(word))
	}
	return b.String()
}

// TypeName derives the container type name for a constant.
// Private constants get an unexported name.
func TypeName(prefix, name string, vis Visibility) string {
	typeName := prefix + UpperCamel(name)
	if !vis.Exported() {
		return LowerFirst(typeName)
	}
	return UpperFirst(typeName)
}

// UpperFirst upper-cases the first rune of s.
func UpperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// LowerFirst lower-cases the first rune of s.
func LowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func hasLower(s string) bool {
	for _, r := range s {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}

// flattenTag turns a qualified tag (time.Duration) into an identifier-safe
// form (time_Duration).
func flattenTag(tag Shorthand) string {
	return strings.ReplaceAll(NormalizeIdent(string(tag)), ".", "_")
}
