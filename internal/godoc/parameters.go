package godoc

import (
	"go/types"

	"github.com/nieomylnieja/lowdown/internal/construct"
	"github.com/nieomylnieja/lowdown/internal/typeinfo"
)

// newParameter converts a signature parameter.
// Go has no default values, the only optional parameter is the variadic one.
func newParameter(param *types.Var, position int, variadic bool, current *types.Package) *construct.Parameter {
	typ := param.Type()
	if slice, ok := typ.(*types.Slice); ok && variadic {
		typ = slice.Elem()
	}
	info := typeinfo.Get(typ, current)
	parameter := &construct.Parameter{
		Name:     param.Name(),
		Position: position,
		Type:     info.Name,
		Modifiers: construct.ParameterModifiers{
			Array:             info.IsArray(),
			Callable:          info.IsCallable(),
			Optional:          variadic,
			PassedByReference: info.IsPointer(),
			Variadic:          variadic,
		},
		Class: info.QualifiedName(),
	}
	if variadic {
		parameter.Type = "..." + parameter.Type
	}
	return parameter
}
