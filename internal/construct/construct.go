// Package construct defines the source constructs surfaced by introspection.
// The set of variants is closed: [ClassLike], [Function], [Method], [Property] and [Parameter].
package construct

// Construct is implemented only by the types of this package.
type Construct interface {
	// QualifiedName returns the fully qualified name of the construct.
	QualifiedName() string
	isConstruct()
}

// Kind is the flavour of a [ClassLike].
type Kind string

const (
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindTrait     Kind = "trait"
)

// Modifiers holds boolean structural facts, keyed by modifier name.
type Modifiers map[string]bool

// ClassLike is a declared type: a class, interface or trait.
// Interfaces, Traits and Parent may form a cyclic graph.
type ClassLike struct {
	Name       string
	ShortName  string
	Namespace  string
	Kind       Kind
	StartLine  int
	EndLine    int
	Filename   string
	RawComment string
	Properties []*Property
	Methods    []*Method
	Interfaces []*ClassLike
	Traits     []*ClassLike
	Parent     *ClassLike
}

func (c *ClassLike) QualifiedName() string { return c.Name }
func (*ClassLike) isConstruct()            {}

// Function is a free function, not bound to any type.
type Function struct {
	Name       string
	ShortName  string
	Namespace  string
	StartLine  int
	EndLine    int
	Filename   string
	Parameters []*Parameter
	ReturnType string
	RawComment string
}

func (f *Function) QualifiedName() string { return f.Name }
func (*Function) isConstruct()            {}

// Method is a function bound to a [ClassLike].
// Its embedded [Function] holds the method's own short name in both Name and ShortName.
type Method struct {
	Function
	// Owner is the fully qualified name of the declaring type.
	Owner     string
	Modifiers Modifiers
}

// QualifiedName returns the owner qualified method name, e.g. "example.com/pkg.Widget.Render".
func (m *Method) QualifiedName() string {
	if m.Owner == "" {
		return m.Name
	}
	return m.Owner + "." + m.Name
}

func (*Method) isConstruct() {}

// Property is a member field of a [ClassLike].
type Property struct {
	Name       string
	Owner      string
	Namespace  string
	Type       string
	Modifiers  Modifiers
	RawComment string
}

func (p *Property) QualifiedName() string {
	if p.Owner == "" {
		return p.Name
	}
	return p.Owner + "." + p.Name
}

func (*Property) isConstruct() {}

// ParameterModifiers are the structural facts of a [Parameter].
type ParameterModifiers struct {
	Array                 bool `json:"array"`
	Callable              bool `json:"callable"`
	DefaultValueAvailable bool `json:"defaultValueAvailable"`
	DefaultValueConstant  bool `json:"defaultValueConstant"`
	Optional              bool `json:"optional"`
	PassedByReference     bool `json:"passedByReference"`
	Variadic              bool `json:"variadic"`
}

// Parameter is a single function or method parameter.
type Parameter struct {
	Name      string
	Position  int
	Type      string
	Modifiers ParameterModifiers
	// DefaultValue is only meaningful when Modifiers.DefaultValueAvailable is set.
	DefaultValue             any
	DefaultValueConstantName string
	// Class is the qualified name of the named type the parameter refers to, if any.
	Class string
}

func (p *Parameter) QualifiedName() string { return p.Name }
func (*Parameter) isConstruct()            {}
