package lowdown

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/nieomylnieja/lowdown/internal/construct"
	"github.com/nieomylnieja/lowdown/internal/docblock"
)

// transformer converts constructs into records.
// Each class is transformed at most once; the results are reused
// wherever the class appears again (as a parent, interface or trait).
type transformer struct {
	options    generateOptions
	classes    map[string]*ClassRecord
	inProgress map[string]bool
}

func newTransformer(options generateOptions) *transformer {
	return &transformer{
		options:    options,
		classes:    make(map[string]*ClassRecord),
		inProgress: make(map[string]bool),
	}
}

// Transform converts a single construct into its record.
func (t *transformer) Transform(ctx context.Context, c construct.Construct) (Record, error) {
	switch c := c.(type) {
	case *construct.ClassLike:
		return t.transformClass(ctx, c)
	case *construct.Function:
		return t.transformFunction(ctx, c)
	case *construct.Method:
		return t.transformMethod(ctx, c)
	case *construct.Property:
		return transformProperty(c), nil
	case *construct.Parameter:
		return transformParameter(c, nil), nil
	default:
		return nil, errors.Errorf("unsupported construct type %T", c)
	}
}

func (t *transformer) transformClass(ctx context.Context, class *construct.ClassLike) (*ClassRecord, error) {
	if record, ok := t.classes[class.Name]; ok {
		return record, nil
	}
	if t.inProgress[class.Name] {
		return referenceRecord(class), nil
	}
	t.inProgress[class.Name] = true
	defer delete(t.inProgress, class.Name)

	t.options.logger.Debug("transforming class", slog.String("name", class.Name))
	record := &ClassRecord{
		Type:       classType(class.Kind),
		Name:       class.Name,
		ShortName:  class.ShortName,
		Namespace:  class.Namespace,
		StartLine:  class.StartLine,
		EndLine:    class.EndLine,
		Filename:   class.Filename,
		Properties: make([]*PropertyRecord, 0, len(class.Properties)),
		Methods:    make([]*FunctionRecord, 0, len(class.Methods)),
		Interfaces: make([]*ClassRecord, 0, len(class.Interfaces)),
		Traits:     make([]*ClassRecord, 0, len(class.Traits)),
	}
	for _, property := range class.Properties {
		record.Properties = append(record.Properties, transformProperty(property))
	}
	for _, method := range class.Methods {
		methodRecord, err := t.transformMethod(ctx, method)
		if err != nil {
			return nil, err
		}
		record.Methods = append(record.Methods, methodRecord)
	}
	// Interfaces and traits are structural, they bypass the whitelist.
	for _, iface := range class.Interfaces {
		ifaceRecord, err := t.transformClass(ctx, iface)
		if err != nil {
			return nil, err
		}
		record.Interfaces = append(record.Interfaces, ifaceRecord)
	}
	for _, trait := range class.Traits {
		traitRecord, err := t.transformClass(ctx, trait)
		if err != nil {
			return nil, err
		}
		record.Traits = append(record.Traits, traitRecord)
	}
	if parent := class.Parent; parent != nil {
		record.ParentClassName = parent.Name
		record.ParentClassShortName = parent.ShortName
		if t.options.whitelist.AllowsClass(parent.Name) {
			parentRecord, err := t.transformClass(ctx, parent)
			if err != nil {
				return nil, err
			}
			record.ParentClass = parentRecord
		}
	}

	if comment := docblock.Parse(class.RawComment); comment != nil {
		doc := t.postProcess(recordDoc{
			namespace:   class.Namespace,
			summary:     comment.Summary,
			description: comment.Description,
		})
		record.Summary = doc.summary
		record.Description = doc.description
		record.Deprecated = doc.deprecated
	}
	t.classes[class.Name] = record
	return record, nil
}

func (t *transformer) transformFunction(ctx context.Context, function *construct.Function) (*FunctionRecord, error) {
	return t.transformCallable(ctx, function, TypeFunction, function.Name)
}

func (t *transformer) transformMethod(ctx context.Context, method *construct.Method) (*FunctionRecord, error) {
	record, err := t.transformCallable(ctx, &method.Function, TypeMethod, method.QualifiedName())
	if err != nil {
		return nil, err
	}
	record.Modifiers = method.Modifiers
	record.qualifiedName = method.QualifiedName()
	return record, nil
}

// transformCallable builds the record shared by functions and methods.
// The exampleOwner identifies the example's gist.
func (t *transformer) transformCallable(
	ctx context.Context,
	function *construct.Function,
	recordType string,
	exampleOwner string,
) (*FunctionRecord, error) {
	comment := docblock.Parse(function.RawComment)
	record := &FunctionRecord{
		Type:       recordType,
		Name:       function.Name,
		ShortName:  function.ShortName,
		Namespace:  function.Namespace,
		StartLine:  function.StartLine,
		EndLine:    function.EndLine,
		Filename:   function.Filename,
		Parameters: make([]*ParameterRecord, 0, len(function.Parameters)),
		ReturnType: function.ReturnType,
	}
	for _, parameter := range function.Parameters {
		record.Parameters = append(record.Parameters, transformParameter(parameter, comment))
	}
	if comment == nil {
		return record, nil
	}

	if tag, ok := comment.Tag("return"); ok && tag.Type != "" {
		record.ReturnType = tag.Type
	}
	if source, ok := docblock.ExtractExample(comment.Description); ok {
		record.Example = source
		output := t.options.runner.Run(ctx, source)
		record.Output = &output
		if t.options.gists != nil {
			url, err := t.options.gists.Sync(ctx, exampleOwner, source)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to synchronize %s example", exampleOwner)
			}
			record.Gist = url
		}
	}
	doc := t.postProcess(recordDoc{
		namespace:   function.Namespace,
		summary:     comment.Summary,
		description: comment.Description,
	})
	record.Summary = doc.summary
	record.Description = doc.description
	record.Deprecated = doc.deprecated
	return record, nil
}

func (t *transformer) postProcess(doc recordDoc) recordDoc {
	return postProcessDoc(doc,
		extractDeprecatedInformation,
		renderDescription(t.options.render),
		removeTrailingWhitespace,
	)
}

func transformProperty(property *construct.Property) *PropertyRecord {
	record := &PropertyRecord{
		Type:          TypeProperty,
		Name:          property.Name,
		ShortName:     property.Name,
		Namespace:     property.Namespace,
		Modifiers:     property.Modifiers,
		ValueType:     property.Type,
		qualifiedName: property.QualifiedName(),
	}
	if record.Modifiers == nil {
		record.Modifiers = construct.Modifiers{}
	}
	if comment := docblock.Parse(property.RawComment); comment != nil {
		if tag, ok := comment.Tag("var"); ok && tag.Type != "" {
			record.ValueType = tag.Type
		}
		record.Summary = comment.Summary
	}
	return record
}

// transformParameter merges the reflected parameter with its "@param" tag, if any.
func transformParameter(parameter *construct.Parameter, comment *docblock.Comment) *ParameterRecord {
	record := &ParameterRecord{
		Name:      parameter.Name,
		Position:  parameter.Position,
		Type:      parameter.Type,
		Modifiers: parameter.Modifiers,
		Class:     parameter.Class,
	}
	if tag, ok := comment.Param(parameter.Name); ok {
		if tag.Type != "" {
			record.Type = tag.Type
		}
		record.Description = tag.Description
	}
	if parameter.Modifiers.DefaultValueAvailable {
		record.DefaultValue = parameter.DefaultValue
		if parameter.Modifiers.DefaultValueConstant {
			record.DefaultValueConstantName = parameter.DefaultValueConstantName
		}
	}
	return record
}

func referenceRecord(class *construct.ClassLike) *ClassRecord {
	return &ClassRecord{
		Type:       classType(class.Kind),
		Name:       class.Name,
		ShortName:  class.ShortName,
		Namespace:  class.Namespace,
		Properties: []*PropertyRecord{},
		Methods:    []*FunctionRecord{},
		Interfaces: []*ClassRecord{},
		Traits:     []*ClassRecord{},
		Reference:  true,
	}
}

func classType(kind construct.Kind) string {
	if kind == "" {
		return TypeClass
	}
	return string(kind)
}
