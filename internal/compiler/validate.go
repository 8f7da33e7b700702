package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/polyconst/internal/ir"
)

// ValidateDeclarations checks the declaration-level rules over a parsed list:
// unique constant names, unique tags per declaration, distinct derived
// type, field and accessor names, and constant names that shadow neither a
// container type nor a package the generated file imports.
// Returns all errors found (does not fail-fast).
func ValidateDeclarations(decls []ir.Declaration) ErrorList {
	var errs ErrorList

	names := make(map[string]ir.Declaration, len(decls))
	typeNames := make(map[string]ir.Declaration, len(decls))

	for _, decl := range decls {
		// E110: constant declared twice
		if prev, ok := names[decl.Name]; ok {
			errs = append(errs, &CheckError{
				Code:     ErrDuplicateName,
				Constant: decl.Name,
				Message:  fmt.Sprintf("redeclared (previous declaration at %s)", prev.Pos),
				Pos:      decl.Pos,
			})
			continue
		}
		names[decl.Name] = decl

		// E112: two constants derive the same container type
		if prev, ok := typeNames[decl.TypeName]; ok {
			errs = append(errs, &CheckError{
				Code:     ErrTypeNameCollision,
				Constant: decl.Name,
				Message:  fmt.Sprintf("container type %s is already derived from %s", decl.TypeName, prev.Name),
				Pos:      decl.Pos,
			})
		} else {
			typeNames[decl.TypeName] = decl
		}

		errs = append(errs, validateVariants(decl)...)
	}

	packages := make(map[string]bool)
	for _, decl := range decls {
		for _, v := range decl.Variants {
			if pkg, _, ok := strings.Cut(v.ResolvedType, "."); ok {
				packages[pkg] = true
			}
		}
	}
	for _, decl := range decls {
		// E112: the instance name is another constant's container type
		if owner, ok := typeNames[decl.Name]; ok && owner.Name != decl.Name {
			errs = append(errs, &CheckError{
				Code:     ErrTypeNameCollision,
				Constant: decl.Name,
				Message:  fmt.Sprintf("name is the container type derived from %s", owner.Name),
				Pos:      decl.Pos,
			})
		}
		// E114: the instance would shadow an import of the generated file
		if packages[decl.Name] {
			errs = append(errs, &CheckError{
				Code:     ErrImportCollision,
				Constant: decl.Name,
				Message:  fmt.Sprintf("name shadows package %s used by the generated file", decl.Name),
				Pos:      decl.Pos,
			})
		}
	}

	return errs
}

func validateVariants(decl ir.Declaration) ErrorList {
	var errs ErrorList

	tags := make(map[ir.Shorthand]bool, len(decl.Variants))
	accessors := make(map[string]ir.Shorthand, len(decl.Variants))
	fields := make(map[string]ir.Shorthand, len(decl.Variants))

	for _, v := range decl.Variants {
		// E111: tag repeated
		if tags[v.Tag] {
			errs = append(errs, &CheckError{
				Code:     ErrDuplicateTag,
				Constant: decl.Name,
				Tag:      v.Tag,
				Message:  "type tag listed more than once",
				Pos:      decl.Pos,
			})
			continue
		}
		tags[v.Tag] = true

		// E113: distinct tags flattening to the same Go identifier
		if other, ok := accessors[v.AccessorName()]; ok {
			errs = append(errs, &CheckError{
				Code:     ErrAccessorCollision,
				Constant: decl.Name,
				Tag:      v.Tag,
				Message:  fmt.Sprintf("tags %s and %s both derive accessor %s", other, v.Tag, v.AccessorName()),
				Pos:      decl.Pos,
			})
			continue
		}
		if other, ok := fields[v.FieldName()]; ok {
			errs = append(errs, &CheckError{
				Code:     ErrAccessorCollision,
				Constant: decl.Name,
				Tag:      v.Tag,
				Message:  fmt.Sprintf("tags %s and %s both derive field %s", other, v.Tag, v.FieldName()),
				Pos:      decl.Pos,
			})
			continue
		}
		accessors[v.AccessorName()] = v.Tag
		fields[v.FieldName()] = v.Tag
	}

	return errs
}
