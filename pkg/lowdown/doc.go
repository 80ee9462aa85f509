// Package lowdown builds a normalized documentation model of a Go code base.
//
// It combines three sources of information:
//  1. Structural facts about declared types and functions (names, kinds, members, lines)
//  2. Structured doc comments (summary, description and "@tag" lines)
//  3. Runnable examples embedded in the comments, together with their captured output
//
// The resulting [NamespaceIndex] groups the documented constructs by namespace
// (package import path) in a deterministic order and is JSON-serializable.
//
// # Basic Usage
//
// Given a documented method:
//
//	// Render draws the widget.
//	//
//	// <pre>
//	// fmt.Print(testmodels.NewWidget("w").Render(2))
//	// </pre>
//	//
//	// @param $scale how much to enlarge the widget.
//	// @return string
//	func (w *Widget) Render(scale int) string {
//
// Load the constructs and generate the model:
//
//	parser, err := godoc.NewParser(".", "./...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	program, err := parser.Program()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	index, err := lowdown.Generate(ctx, program.Classes, program.Functions)
//
// # Configuration Options
//
// Use GenerateOption functions to customize behavior:
//
//	index, err := lowdown.Generate(ctx, classes, functions,
//	    lowdown.WithWhitelist(lowdown.ParseWhitelist("github.com/acme/widgets")),
//	    lowdown.WithGistSynchronizer(gist.NewSynchronizer(store)),
//	)
//
// WithWhitelist limits the documented constructs to namespace prefixes.
// An empty whitelist documents every type and no free functions.
// WithGistSynchronizer mirrors every example to a gist and records its URL.
// WithExampleRunner replaces the default subprocess based example executor.
//
// # Output Format
//
// The index marshals to a single JSON object keyed by namespace.
// Each namespace holds a list of records sorted by short name.
//
// Each class record includes:
//
//   - _type: "class", "interface" or "trait"
//   - name, shortName, namespace, filename, startLine, endLine
//   - properties, methods, interfaces and traits
//   - parentClassName and, if whitelisted, the nested parentClass record
//
// Each function or method record includes:
//
//   - parameters with their types, modifiers and "@param" descriptions
//   - returnType, preferring the "@return" tag
//   - example and output, if the description contains a <pre> block
//   - gist, if gist synchronization is enabled
package lowdown
