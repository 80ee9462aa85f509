package lowdown

import (
	"github.com/nieomylnieja/lowdown/internal/construct"
)

// Record is a single documentation unit of the [NamespaceIndex].
// It is implemented by [ClassRecord], [FunctionRecord], [PropertyRecord] and [ParameterRecord].
type Record interface {
	// SortKey orders records within a namespace.
	// Ties are broken by [Record.FullName].
	SortKey() string
	// FullName returns the fully qualified name of the documented construct.
	FullName() string
}

// Record types, as serialized in the "_type" field.
const (
	TypeClass     = string(construct.KindClass)
	TypeInterface = string(construct.KindInterface)
	TypeTrait     = string(construct.KindTrait)
	TypeFunction  = "function"
	TypeMethod    = "method"
	TypeProperty  = "property"
)

// ClassRecord documents a class, interface or trait.
type ClassRecord struct {
	Type        string `json:"_type"`
	Name        string `json:"name"`
	ShortName   string `json:"shortName"`
	Namespace   string `json:"namespace"`
	StartLine   int    `json:"startLine,omitempty"`
	EndLine     int    `json:"endLine,omitempty"`
	Filename    string `json:"filename,omitempty"`
	Summary     string `json:"summary,omitempty"`
	Description string `json:"description,omitempty"`
	// Deprecated holds the contents of the "Deprecated:" paragraph.
	Deprecated string            `json:"deprecated,omitempty"`
	Properties []*PropertyRecord `json:"properties"`
	Methods    []*FunctionRecord `json:"methods"`
	Interfaces []*ClassRecord    `json:"interfaces"`
	Traits     []*ClassRecord    `json:"traits"`
	// ParentClassName and ParentClassShortName are set whenever the class has a parent,
	// ParentClass only if the parent passed the [Whitelist].
	ParentClassName      string       `json:"parentClassName,omitempty"`
	ParentClassShortName string       `json:"parentClassShortName,omitempty"`
	ParentClass          *ClassRecord `json:"parentClass,omitempty"`
	// Reference marks a placeholder for a class which is already being documented
	// higher up in a cyclic hierarchy.
	Reference bool `json:"reference,omitempty"`
}

func (c *ClassRecord) SortKey() string  { return c.ShortName }
func (c *ClassRecord) FullName() string { return c.Name }

// FunctionRecord documents a free function or a method.
type FunctionRecord struct {
	Type      string              `json:"_type"`
	Name      string              `json:"name"`
	ShortName string              `json:"shortName"`
	Namespace string              `json:"namespace"`
	StartLine int                 `json:"startLine,omitempty"`
	EndLine   int                 `json:"endLine,omitempty"`
	Filename  string              `json:"filename,omitempty"`
	Modifiers construct.Modifiers `json:"modifiers,omitempty"`
	// Parameters are ordered by position.
	Parameters  []*ParameterRecord `json:"parameters"`
	ReturnType  string             `json:"returnType"`
	Summary     string             `json:"summary,omitempty"`
	Description string             `json:"description,omitempty"`
	Deprecated  string             `json:"deprecated,omitempty"`
	// Example is the source of the first literal block found in the description.
	Example string `json:"example,omitempty"`
	// Output is present if and only if Example is.
	Output *string `json:"output,omitempty"`
	// Gist is the URL of the example's gist, if gists are enabled.
	Gist string `json:"gist,omitempty"`

	qualifiedName string
}

func (f *FunctionRecord) SortKey() string { return f.ShortName }

func (f *FunctionRecord) FullName() string {
	if f.qualifiedName != "" {
		return f.qualifiedName
	}
	return f.Name
}

// PropertyRecord documents a class member.
type PropertyRecord struct {
	Type      string              `json:"_type"`
	Name      string              `json:"name"`
	ShortName string              `json:"shortName"`
	Namespace string              `json:"namespace"`
	Modifiers construct.Modifiers `json:"modifiers"`
	// ValueType is the declared type, overridden by the "@var" tag.
	ValueType string `json:"type,omitempty"`
	Summary   string `json:"summary,omitempty"`

	qualifiedName string
}

func (p *PropertyRecord) SortKey() string { return p.ShortName }

func (p *PropertyRecord) FullName() string {
	if p.qualifiedName != "" {
		return p.qualifiedName
	}
	return p.Name
}

// ParameterRecord documents a single parameter of a function or method.
type ParameterRecord struct {
	Name      string                       `json:"name"`
	Position  int                          `json:"position"`
	Type      string                       `json:"type"`
	Modifiers construct.ParameterModifiers `json:"modifiers"`
	// Description comes from the matching "@param" tag.
	Description              string `json:"description,omitempty"`
	Class                    string `json:"class,omitempty"`
	DefaultValue             any    `json:"defaultValue,omitempty"`
	DefaultValueConstantName string `json:"defaultValueConstantName,omitempty"`
}

func (p *ParameterRecord) SortKey() string  { return p.Name }
func (p *ParameterRecord) FullName() string { return p.Name }
