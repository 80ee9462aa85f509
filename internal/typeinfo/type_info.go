package typeinfo

import (
	"fmt"
	"go/types"
	"strings"
)

// TypeInfo stores the Go type information.
type TypeInfo struct {
	// Name is the type expression, with package qualifiers omitted for the current package.
	Name string
	// Kind describes the underlying structure, e.g. "[]string", "*struct" or "func".
	Kind string
	// Package is the import path of the referenced named type.
	// Empty for builtin and unnamed types.
	Package string
	// Object is the name of the referenced named type.
	Object string
}

// Get returns the information for the [types.Type] as seen from the current package.
// A single pointer indirection is stripped when resolving the referenced named type,
// so both "Widget" and "*Widget" refer to Widget.
func Get(typ types.Type, current *types.Package) TypeInfo {
	if typ == nil {
		return TypeInfo{}
	}
	result := TypeInfo{
		Name: types.TypeString(typ, types.RelativeTo(current)),
		Kind: getKindString(typ, make(map[*types.Named]bool)),
	}
	named := typ
	if ptr, ok := types.Unalias(typ).(*types.Pointer); ok {
		named = ptr.Elem()
	}
	if n, ok := types.Unalias(named).(*types.Named); ok && n.Obj().Pkg() != nil {
		result.Package = n.Obj().Pkg().Path()
		result.Object = n.Obj().Name()
	}
	return result
}

// QualifiedName returns the fully qualified name of the referenced named type.
func (t TypeInfo) QualifiedName() string {
	if t.Package == "" {
		return ""
	}
	return t.Package + "." + t.Object
}

// IsArray reports whether the type is a slice or an array.
func (t TypeInfo) IsArray() bool { return strings.HasPrefix(t.Kind, "[") }

// IsCallable reports whether the type is a function.
func (t TypeInfo) IsCallable() bool { return t.Kind == "func" }

// IsPointer reports whether the type is a pointer.
func (t TypeInfo) IsPointer() bool { return strings.HasPrefix(t.Kind, "*") }

// getKindString describes the structure of the type.
// A named type met again while describing itself is rendered by its name.
func getKindString(typ types.Type, visited map[*types.Named]bool) string {
	if named, ok := types.Unalias(typ).(*types.Named); ok {
		if visited[named] {
			return named.Obj().Name()
		}
		visited[named] = true
		defer delete(visited, named)
	}
	switch u := typ.Underlying().(type) {
	case *types.Basic:
		return u.Name()
	case *types.Pointer:
		return "*" + getKindString(u.Elem(), visited)
	case *types.Slice:
		return "[]" + getKindString(u.Elem(), visited)
	case *types.Array:
		return fmt.Sprintf("[%d]%s", u.Len(), getKindString(u.Elem(), visited))
	case *types.Map:
		return fmt.Sprintf("map[%s]%s", getKindString(u.Key(), visited), getKindString(u.Elem(), visited))
	case *types.Chan:
		return "chan"
	case *types.Signature:
		return "func"
	case *types.Struct:
		return "struct"
	case *types.Interface:
		return "interface"
	default:
		return typ.String()
	}
}
