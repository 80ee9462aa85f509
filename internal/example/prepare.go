package example

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/tools/imports"
)

// PrepareGoSource turns an example snippet into a runnable Go program.
//
// Snippets without a package clause are wrapped into a main function,
// leading import declarations are kept at file level.
// Missing imports are added and the result is gofmt-ed.
func PrepareGoSource(source string) ([]byte, error) {
	src := source
	if !hasPackageClause(source) {
		src = wrapInMain(source)
	}
	formatted, err := imports.Process(DefaultFilename, []byte(src), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, errors.Wrap(err, "invalid example source")
	}
	return formatted, nil
}

func hasPackageClause(source string) bool {
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		return strings.HasPrefix(line, "package ")
	}
	return false
}

func wrapInMain(source string) string {
	var (
		header  []string
		body    []string
		inBlock bool
		inBody  bool
	)
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case inBody:
			body = append(body, line)
		case inBlock:
			header = append(header, line)
			if trimmed == ")" {
				inBlock = false
			}
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, "import ("):
			header = append(header, line)
			inBlock = !strings.HasSuffix(trimmed, ")")
		case strings.HasPrefix(trimmed, "import "):
			header = append(header, line)
		default:
			inBody = true
			body = append(body, line)
		}
	}

	var b strings.Builder
	b.WriteString("package main\n\n")
	for _, line := range header {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\nfunc main() {\n")
	for _, line := range body {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return b.String()
}
