package godoc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nieomylnieja/lowdown/internal/construct"
)

const testModelsPkg = "github.com/nieomylnieja/lowdown/internal/testmodels"

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	parser, err := NewParser("../testmodels", ".")
	require.NoError(t, err)
	return parser
}

func TestNewParser(t *testing.T) {
	t.Run("loads the package and its dependencies", func(t *testing.T) {
		parser := newTestParser(t)

		pkg := parser.getPackageByPath(testModelsPkg)
		require.NotNil(t, pkg)
		assert.True(t, pkg.initial)
		fmtPkg := parser.getPackageByPath("fmt")
		require.NotNil(t, fmtPkg)
		assert.False(t, fmtPkg.initial)
		assert.Nil(t, parser.getPackageByPath("github.com/nonexistent/package"))
	})

	t.Run("reports package errors", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/broken\n\ngo 1.22\n"), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.go"), []byte("package broken\n\nfunc X() { undefined() }\n"), 0o600))

		_, err := NewParser(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "package example.com/broken has reported an error")
	})
}

func TestParser_Program(t *testing.T) {
	program, err := newTestParser(t).Program()
	require.NoError(t, err)

	classes := make(map[string]*construct.ClassLike, len(program.Classes))
	for _, class := range program.Classes {
		classes[class.ShortName] = class
	}
	assert.Equal(t, []string{"Base", "Gadget", "Renderer", "Widget"}, classNames(program.Classes))

	t.Run("struct", func(t *testing.T) {
		widget := classes["Widget"]
		assert.Equal(t, testModelsPkg+".Widget", widget.Name)
		assert.Equal(t, testModelsPkg, widget.Namespace)
		assert.Equal(t, construct.KindClass, widget.Kind)
		assert.Equal(t, "internal/testmodels/models.go", widget.Filename)
		assert.Positive(t, widget.StartLine)
		assert.Greater(t, widget.EndLine, widget.StartLine)
		assert.Contains(t, widget.RawComment, "Widget is a visual component.")
		assert.Nil(t, widget.Parent)

		require.Len(t, widget.Properties, 1)
		label := widget.Properties[0]
		assert.Equal(t, "Label", label.Name)
		assert.Equal(t, "string", label.Type)
		assert.Equal(t, testModelsPkg+".Widget.Label", label.QualifiedName())
		assert.Equal(t, "Label is displayed on the widget.\n", label.RawComment)

		assert.Equal(t, []string{"Base"}, classNames(widget.Traits))
		assert.Same(t, classes["Base"], widget.Traits[0])
		assert.Equal(t, []string{"Renderer"}, classNames(widget.Interfaces))
		assert.Same(t, classes["Renderer"], widget.Interfaces[0])
	})

	t.Run("methods", func(t *testing.T) {
		widget := classes["Widget"]
		require.Len(t, widget.Methods, 2)
		render := widget.Methods[0]
		assert.Equal(t, "Render", render.Name)
		assert.Equal(t, testModelsPkg+".Widget.Render", render.QualifiedName())
		assert.Equal(t, "string", render.ReturnType)
		assert.True(t, render.Modifiers["pointerReceiver"])
		assert.False(t, render.Modifiers["abstract"])
		assert.Contains(t, render.RawComment, "@param int $scale how much to enlarge the widget.")
		assert.Contains(t, render.RawComment, "<pre>")
		require.Len(t, render.Parameters, 1)
		assert.Equal(t, &construct.Parameter{Name: "scale", Position: 0, Type: "int"}, render.Parameters[0])

		assert.Equal(t, "String", widget.Methods[1].Name)
		assert.Empty(t, widget.Methods[1].RawComment)

		base := classes["Base"]
		require.Len(t, base.Methods, 1)
		assert.Equal(t, "Identify", base.Methods[0].Name)
		assert.False(t, base.Methods[0].Modifiers["pointerReceiver"])
	})

	t.Run("interface", func(t *testing.T) {
		renderer := classes["Renderer"]
		assert.Equal(t, construct.KindInterface, renderer.Kind)
		require.Len(t, renderer.Interfaces, 1)
		stringer := renderer.Interfaces[0]
		assert.Equal(t, "fmt.Stringer", stringer.Name)
		assert.Equal(t, "fmt", stringer.Namespace)
		assert.Equal(t, construct.KindInterface, stringer.Kind)
		assert.Contains(t, stringer.RawComment, "Stringer is implemented by any value")

		require.Len(t, renderer.Methods, 1)
		render := renderer.Methods[0]
		assert.Equal(t, testModelsPkg+".Renderer.Render", render.QualifiedName())
		assert.True(t, render.Modifiers["abstract"])
		assert.Contains(t, render.RawComment, "Render draws the component.")
	})

	t.Run("parent", func(t *testing.T) {
		gadget := classes["Gadget"]
		require.NotNil(t, gadget.Parent)
		assert.Same(t, classes["Widget"], gadget.Parent)
		assert.Contains(t, gadget.RawComment, "Deprecated: Use Widget instead.")
		assert.Empty(t, gadget.Methods)
		assert.Empty(t, gadget.Interfaces)
		assert.Equal(t, []string{"Base"}, classNames(gadget.Traits))
	})

	t.Run("functions", func(t *testing.T) {
		require.Len(t, program.Functions, 2)
		join := program.Functions[0]
		assert.Equal(t, testModelsPkg+".Join", join.Name)
		assert.Equal(t, "Join", join.ShortName)
		assert.Equal(t, "string", join.ReturnType)
		require.Len(t, join.Parameters, 2)
		assert.Equal(t, &construct.Parameter{Name: "sep", Position: 0, Type: "string"}, join.Parameters[0])
		assert.Equal(t, &construct.Parameter{
			Name:     "widgets",
			Position: 1,
			Type:     "...*Widget",
			Modifiers: construct.ParameterModifiers{
				Optional:          true,
				PassedByReference: true,
				Variadic:          true,
			},
			Class: testModelsPkg + ".Widget",
		}, join.Parameters[1])

		newWidget := program.Functions[1]
		assert.Equal(t, testModelsPkg+".NewWidget", newWidget.Name)
		assert.Equal(t, "*Widget", newWidget.ReturnType)
		assert.Contains(t, newWidget.RawComment, "@param $label text displayed on the widget.")
	})
}

func TestParser_RenderMarkdown(t *testing.T) {
	parser := newTestParser(t)

	tests := map[string]struct {
		pkg      string
		text     string
		expected string
	}{
		"empty": {
			pkg:      testModelsPkg,
			text:     "",
			expected: "",
		},
		"method link": {
			pkg:      testModelsPkg,
			text:     "Draws with [Widget.Render].",
			expected: "Draws with [Widget.Render](https://pkg.go.dev/" + testModelsPkg + "#Widget.Render).\n",
		},
		"field link": {
			pkg:      testModelsPkg,
			text:     "Shows [Widget.Label].",
			expected: "Shows [Widget.Label](https://pkg.go.dev/" + testModelsPkg + "#Widget.Label).\n",
		},
		"standard library link": {
			pkg:      testModelsPkg,
			text:     "See [fmt.Stringer].",
			expected: "See [fmt.Stringer](https://pkg.go.dev/fmt#Stringer).\n",
		},
		"unknown package": {
			pkg:      "github.com/unknown",
			text:     "Plain text.",
			expected: "Plain text.\n",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, parser.RenderMarkdown(tc.pkg, tc.text))
		})
	}

	t.Run("example blocks become code", func(t *testing.T) {
		rendered := parser.RenderMarkdown(testModelsPkg, "Usage:\n<pre>\nw := NewWidget(\"a\")\nfmt.Print(w)\n</pre>\nDone.")
		assert.NotContains(t, rendered, "<pre>")
		assert.Contains(t, rendered, "Usage:")
		assert.Contains(t, rendered, "\tw := NewWidget(\"a\")\n\tfmt.Print(w)\n")
		assert.Contains(t, rendered, "Done.")
	})
}

func TestPreBlocksToCode(t *testing.T) {
	assert.Equal(t, "Text\n\n\ta()\n\tb()\n\n", preBlocksToCode("Text<pre> a()\nb() </pre>"))
	assert.Equal(t, "No blocks.", preBlocksToCode("No blocks."))
}

func classNames(classes []*construct.ClassLike) []string {
	names := make([]string, 0, len(classes))
	for _, class := range classes {
		names = append(names, class.ShortName)
	}
	return names
}
