package godoc

import (
	"go/ast"
	"go/doc/comment"
	"go/token"
	"go/types"
	"maps"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/go/packages"

	"github.com/nieomylnieja/lowdown/internal/construct"
	"github.com/nieomylnieja/lowdown/internal/pathutils"
)

// NewParser loads the packages matching the patterns, resolved relative to dir.
// If no patterns are given, all packages under dir are loaded.
func NewParser(dir string, patterns ...string) (*Parser, error) {
	root, err := pathutils.FindModuleRoot(dir)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	fset := token.NewFileSet()
	// Load complete type information for the specified packages,
	// along with type-annotated syntax.
	conf := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedCompiledGoFiles |
			packages.NeedImports |
			packages.NeedDeps |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo |
			packages.NeedModule,
		Dir:  dir,
		Fset: fset,
	}
	pkgs, err := packages.Load(conf, patterns...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load packages")
	}
	if err = checkForPackageErrors(pkgs); err != nil {
		return nil, err
	}

	parser := &Parser{
		root:    root,
		fset:    fset,
		initial: pkgs,
		pkgs:    make(map[string]*goPackage, len(pkgs)),
		classes: make(map[string]*construct.ClassLike),
	}
	parser.collectAllPackages(pkgs)
	parser.interfaces = parser.collectInterfaces()
	return parser, nil
}

// Parser converts the loaded packages into source constructs.
// Only exported identifiers are surfaced.
type Parser struct {
	root       string
	fset       *token.FileSet
	initial    []*packages.Package
	pkgs       map[string]*goPackage
	classes    map[string]*construct.ClassLike
	interfaces []*types.TypeName
}

type goPackage struct {
	pkg           *packages.Package
	initial       bool
	commentParser *comment.Parser
}

// Program lists the top-level constructs of the loaded packages.
type Program struct {
	Classes   []*construct.ClassLike
	Functions []*construct.Function
}

// Program converts every exported named type and free function of the
// initially loaded packages.
// Types from dependencies are converted only when referenced.
func (p *Parser) Program() (*Program, error) {
	program := &Program{}
	for _, pkg := range p.initial {
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			switch obj := scope.Lookup(name).(type) {
			case *types.TypeName:
				if !obj.Exported() || obj.IsAlias() {
					continue
				}
				class, err := p.classFor(obj)
				if err != nil {
					return nil, err
				}
				program.Classes = append(program.Classes, class)
			case *types.Func:
				if !obj.Exported() {
					continue
				}
				function := p.callable(obj, qualifiedName(obj))
				program.Functions = append(program.Functions, &function)
			}
		}
	}
	return program, nil
}

// classFor converts the named type, memoizing the result.
// The class is registered before its relations are resolved, so the returned
// graph may contain cycles.
func (p *Parser) classFor(obj *types.TypeName) (*construct.ClassLike, error) {
	name := qualifiedName(obj)
	if class, ok := p.classes[name]; ok {
		return class, nil
	}
	named, ok := types.Unalias(obj.Type()).(*types.Named)
	if !ok {
		return nil, errors.Errorf("%s is not a named type", name)
	}
	decl := p.findDeclaration(obj)
	class := &construct.ClassLike{
		Name:       name,
		ShortName:  obj.Name(),
		Namespace:  packagePath(obj),
		Kind:       construct.KindClass,
		StartLine:  decl.startLine,
		EndLine:    decl.endLine,
		Filename:   decl.filename,
		RawComment: decl.doc,
	}
	p.classes[name] = class

	var err error
	switch underlying := named.Underlying().(type) {
	case *types.Interface:
		class.Kind = construct.KindInterface
		err = p.addInterfaceMembers(class, underlying)
	case *types.Struct:
		err = p.addStructMembers(class, obj, underlying)
	}
	if err != nil {
		return nil, err
	}
	if class.Kind != construct.KindInterface {
		p.addMethods(class, named)
		if err = p.addImplementedInterfaces(class, named); err != nil {
			return nil, err
		}
	}
	if parent := p.parentOf(obj, decl); parent != nil {
		if class.Parent, err = p.classFor(parent); err != nil {
			return nil, errors.Wrapf(err, "failed to resolve %s parent", name)
		}
	}
	return class, nil
}

func (p *Parser) addInterfaceMembers(class *construct.ClassLike, iface *types.Interface) error {
	for embedded := range iface.EmbeddedTypes() {
		named, ok := types.Unalias(embedded).(*types.Named)
		if !ok {
			continue // Type constraint unions.
		}
		embeddedClass, err := p.classFor(named.Obj())
		if err != nil {
			return errors.Wrapf(err, "failed to resolve %s embedded interface", class.Name)
		}
		class.Interfaces = append(class.Interfaces, embeddedClass)
	}
	for method := range iface.ExplicitMethods() {
		if !method.Exported() {
			continue
		}
		class.Methods = append(class.Methods, &construct.Method{
			Function:  p.callable(method, method.Name()),
			Owner:     class.Name,
			Modifiers: construct.Modifiers{"abstract": true, "exported": true, "pointerReceiver": false},
		})
	}
	return nil
}

// addStructMembers converts embedded types into traits and the remaining
// exported fields into properties.
func (p *Parser) addStructMembers(class *construct.ClassLike, obj *types.TypeName, structType *types.Struct) error {
	for field := range structType.Fields() {
		if field.Embedded() {
			embedded := field.Type()
			if ptr, ok := types.Unalias(embedded).(*types.Pointer); ok {
				embedded = ptr.Elem()
			}
			named, ok := types.Unalias(embedded).(*types.Named)
			if !ok {
				continue
			}
			trait, err := p.classFor(named.Obj())
			if err != nil {
				return errors.Wrapf(err, "failed to resolve %s embedded type", class.Name)
			}
			class.Traits = append(class.Traits, trait)
			continue
		}
		if !field.Exported() {
			continue
		}
		class.Properties = append(class.Properties, &construct.Property{
			Name:       field.Name(),
			Owner:      class.Name,
			Namespace:  class.Namespace,
			Type:       types.TypeString(field.Type(), types.RelativeTo(obj.Pkg())),
			Modifiers:  construct.Modifiers{"exported": true},
			RawComment: p.findDeclaration(field).doc,
		})
	}
	return nil
}

// addMethods adds the methods declared directly on the type, in source order.
func (p *Parser) addMethods(class *construct.ClassLike, named *types.Named) {
	for method := range named.Methods() {
		if !method.Exported() {
			continue
		}
		_, pointerReceiver := types.Unalias(method.Type().(*types.Signature).Recv().Type()).(*types.Pointer)
		class.Methods = append(class.Methods, &construct.Method{
			Function:  p.callable(method, method.Name()),
			Owner:     class.Name,
			Modifiers: construct.Modifiers{"abstract": false, "exported": true, "pointerReceiver": pointerReceiver},
		})
	}
}

// addImplementedInterfaces adds the interfaces declared in the initial packages
// which are implemented by the type or a pointer to it.
// Interfaces of dependencies are not searched.
func (p *Parser) addImplementedInterfaces(class *construct.ClassLike, named *types.Named) error {
	if !p.isInitial(class.Namespace) || named.TypeParams().Len() > 0 {
		return nil
	}
	for _, obj := range p.interfaces {
		iface := obj.Type().Underlying().(*types.Interface)
		if !types.Implements(named, iface) && !types.Implements(types.NewPointer(named), iface) {
			continue
		}
		ifaceClass, err := p.classFor(obj)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve %s implemented interface", class.Name)
		}
		class.Interfaces = append(class.Interfaces, ifaceClass)
	}
	return nil
}

// parentOf returns the named type the type was declared from, e.g. Widget for "type Gadget Widget".
func (p *Parser) parentOf(obj *types.TypeName, decl declaration) *types.TypeName {
	spec, ok := decl.node.(*ast.TypeSpec)
	if !ok || spec.Assign.IsValid() {
		return nil
	}
	pkg := p.getPackageByPath(packagePath(obj))
	if pkg == nil || pkg.pkg.TypesInfo == nil {
		return nil
	}
	named, ok := types.Unalias(pkg.pkg.TypesInfo.TypeOf(spec.Type)).(*types.Named)
	if !ok || named.Obj() == obj {
		return nil
	}
	return named.Obj()
}

// callable converts a function or method signature.
func (p *Parser) callable(fn *types.Func, name string) construct.Function {
	decl := p.findDeclaration(fn)
	sig := fn.Type().(*types.Signature)
	qualifier := types.RelativeTo(fn.Pkg())
	function := construct.Function{
		Name:       name,
		ShortName:  fn.Name(),
		Namespace:  packagePath(fn),
		StartLine:  decl.startLine,
		EndLine:    decl.endLine,
		Filename:   decl.filename,
		Parameters: make([]*construct.Parameter, 0, sig.Params().Len()),
		RawComment: decl.doc,
	}
	for i := range sig.Params().Len() {
		variadic := sig.Variadic() && i == sig.Params().Len()-1
		function.Parameters = append(function.Parameters, newParameter(sig.Params().At(i), i, variadic, fn.Pkg()))
	}
	switch results := sig.Results(); results.Len() {
	case 0:
	case 1:
		function.ReturnType = types.TypeString(results.At(0).Type(), qualifier)
	default:
		function.ReturnType = types.TypeString(results, qualifier)
	}
	return function
}

// RenderMarkdown renders the Go doc comment text, written in the package, as Markdown.
// Doc links are resolved to pkg.go.dev.
func (p *Parser) RenderMarkdown(pkgPath, text string) string {
	if text == "" {
		return ""
	}
	parser := &comment.Parser{}
	if pkg := p.getPackageByPath(pkgPath); pkg != nil {
		if pkg.commentParser == nil {
			pkg.commentParser = p.newCommentParserForPackage(pkg.pkg)
		}
		parser = pkg.commentParser
	}
	return docCommentToMarkdown(parser, pkgPath, text)
}

const docLinkBaseURL = "https://pkg.go.dev"

var preBlockRegex = regexp.MustCompile(`(?s)<pre>\s*(.*?)\s*</pre>`)

// preBlocksToCode turns <pre> blocks into indented doc comment code blocks.
func preBlocksToCode(text string) string {
	return preBlockRegex.ReplaceAllStringFunc(text, func(block string) string {
		code := preBlockRegex.FindStringSubmatch(block)[1]
		lines := strings.Split(code, "\n")
		for i, line := range lines {
			lines[i] = "\t" + line
		}
		return "\n\n" + strings.Join(lines, "\n") + "\n\n"
	})
}

func docCommentToMarkdown(parser *comment.Parser, pkg, text string) string {
	doc := parser.Parse(preBlocksToCode(text))
	printer := comment.Printer{
		DocLinkURL: func(link *comment.DocLink) string {
			if link.ImportPath == "" {
				link.ImportPath = pkg
			}
			return link.DefaultURL(docLinkBaseURL)
		},
	}
	return string(printer.Markdown(doc))
}

func (p *Parser) newCommentParserForPackage(currentPackage *packages.Package) *comment.Parser {
	return &comment.Parser{
		LookupPackage: func(name string) (importPath string, ok bool) {
			for _, path := range slices.Sorted(maps.Keys(p.pkgs)) {
				if p.pkgs[path].pkg.Name == name {
					return path, true
				}
			}
			return "", false
		},
		LookupSym: func(recv, name string) (ok bool) {
			if recv == "" {
				return currentPackage.Types.Scope().Lookup(name) != nil
			}
			obj := currentPackage.Types.Scope().Lookup(recv)
			if obj == nil {
				return false
			}
			member, _, _ := types.LookupFieldOrMethod(obj.Type(), true, currentPackage.Types, name)
			return member != nil
		},
	}
}

// declaration describes where an object is declared in the source.
type declaration struct {
	node      ast.Node
	doc       string
	filename  string
	startLine int
	endLine   int
}

// findDeclaration locates the type spec, function declaration or field which declares the object.
// Objects without syntax, like the predeclared error type, yield an empty declaration.
func (p *Parser) findDeclaration(obj types.Object) declaration {
	pkg := p.getPackageByPath(packagePath(obj))
	if pkg == nil || !obj.Pos().IsValid() {
		return declaration{}
	}
	pos := obj.Pos()
	for _, file := range pkg.pkg.Syntax {
		if file.FileStart > pos || pos >= file.FileEnd {
			continue // not in this file
		}
		path, _ := astutil.PathEnclosingInterval(file, pos, pos)
		for i, n := range path {
			var doc *ast.CommentGroup
			switch n := n.(type) {
			case *ast.TypeSpec:
				doc = n.Doc
				if doc == nil && i+1 < len(path) {
					if genDecl, ok := path[i+1].(*ast.GenDecl); ok && len(genDecl.Specs) == 1 {
						doc = genDecl.Doc
					}
				}
			case *ast.FuncDecl:
				doc = n.Doc
			case *ast.Field:
				doc = n.Doc
				if doc == nil {
					doc = n.Comment
				}
			default:
				continue
			}
			return p.newDeclaration(pkg, n, doc)
		}
	}
	return declaration{}
}

func (p *Parser) newDeclaration(pkg *goPackage, node ast.Node, doc *ast.CommentGroup) declaration {
	start := p.fset.Position(node.Pos())
	end := p.fset.Position(node.End())
	filename := filepath.Base(start.Filename)
	if pkg.initial {
		if rel, err := filepath.Rel(p.root, start.Filename); err == nil && !strings.HasPrefix(rel, "..") {
			filename = filepath.ToSlash(rel)
		}
	}
	return declaration{
		node:      node,
		doc:       doc.Text(),
		filename:  filename,
		startLine: start.Line,
		endLine:   end.Line,
	}
}

func (p *Parser) getPackageByPath(pkgPath string) *goPackage {
	return p.pkgs[pkgPath]
}

func (p *Parser) isInitial(pkgPath string) bool {
	pkg := p.getPackageByPath(pkgPath)
	return pkg != nil && pkg.initial
}

// collectAllPackages recursively adds all packages and their imports to the parser's map.
func (p *Parser) collectAllPackages(pkgs []*packages.Package) {
	for _, pkg := range pkgs {
		p.pkgs[pkg.PkgPath] = &goPackage{pkg: pkg, initial: true}
	}
	var collect func(pkgs []*packages.Package)
	collect = func(pkgs []*packages.Package) {
		for _, pkg := range pkgs {
			if _, exists := p.pkgs[pkg.PkgPath]; !exists {
				p.pkgs[pkg.PkgPath] = &goPackage{pkg: pkg}
			}
			if len(pkg.Imports) > 0 {
				collect(slices.Collect(maps.Values(pkg.Imports)))
			}
		}
	}
	for _, pkg := range pkgs {
		collect(slices.Collect(maps.Values(pkg.Imports)))
	}
}

// collectInterfaces lists the exported, non-empty interfaces of the initial packages,
// sorted by their qualified names.
func (p *Parser) collectInterfaces() []*types.TypeName {
	var interfaces []*types.TypeName
	for _, pkg := range p.initial {
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			obj, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || !obj.Exported() || obj.IsAlias() {
				continue
			}
			named, ok := obj.Type().(*types.Named)
			if !ok || named.TypeParams().Len() > 0 {
				continue
			}
			if iface, ok := named.Underlying().(*types.Interface); ok && iface.NumMethods() > 0 && iface.IsMethodSet() {
				interfaces = append(interfaces, obj)
			}
		}
	}
	slices.SortFunc(interfaces, func(a, b *types.TypeName) int {
		return strings.Compare(qualifiedName(a), qualifiedName(b))
	})
	return interfaces
}

func checkForPackageErrors(pkgs []*packages.Package) (err error) {
	packages.Visit(pkgs, func(pkg *packages.Package) bool {
		for _, err = range pkg.Errors {
			err = errors.Wrapf(err, "package %s has reported an error", pkg.PkgPath)
			return false
		}
		mod := pkg.Module
		if mod != nil && mod.Error != nil {
			err = errors.New(mod.Error.Err)
			return false
		}
		return true
	}, nil)
	return err
}

func qualifiedName(obj types.Object) string {
	if obj.Pkg() == nil {
		return obj.Name()
	}
	return obj.Pkg().Path() + "." + obj.Name()
}

func packagePath(obj types.Object) string {
	if obj.Pkg() == nil {
		return ""
	}
	return obj.Pkg().Path()
}
