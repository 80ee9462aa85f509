package lowdown

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"github.com/nieomylnieja/lowdown/internal/construct"
	"github.com/nieomylnieja/lowdown/internal/example"
)

// ExampleRunner executes an example and returns its output.
// Implementations must never fail; faults are part of the output.
type ExampleRunner interface {
	Run(ctx context.Context, source string) string
}

// GistSynchronizer mirrors an example to a remote snippet service and returns its URL.
type GistSynchronizer interface {
	Sync(ctx context.Context, owner, source string) (string, error)
}

// DescriptionRenderer converts a description written in the given namespace into its final form.
type DescriptionRenderer func(namespace, text string) string

// generateOptions contains options for configuring the behavior of the [Generate] function.
type generateOptions struct {
	whitelist Whitelist
	runner    ExampleRunner
	gists     GistSynchronizer
	render    DescriptionRenderer
	logger    *slog.Logger
}

type GenerateOption func(options generateOptions) generateOptions

// WithWhitelist restricts the documented constructs to the given namespace prefixes.
func WithWhitelist(whitelist Whitelist) GenerateOption {
	return func(options generateOptions) generateOptions {
		options.whitelist = whitelist
		return options
	}
}

// WithExampleRunner replaces the default [example.Executor].
func WithExampleRunner(runner ExampleRunner) GenerateOption {
	return func(options generateOptions) generateOptions {
		options.runner = runner
		return options
	}
}

// WithGistSynchronizer enables gist synchronization of examples.
func WithGistSynchronizer(gists GistSynchronizer) GenerateOption {
	return func(options generateOptions) generateOptions {
		options.gists = gists
		return options
	}
}

// WithDescriptionRenderer installs a renderer applied to every description
// after the example has been extracted from it.
func WithDescriptionRenderer(render DescriptionRenderer) GenerateOption {
	return func(options generateOptions) generateOptions {
		options.render = render
		return options
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) GenerateOption {
	return func(options generateOptions) generateOptions {
		options.logger = logger
		return options
	}
}

func newGenerateOptions(opts []GenerateOption) generateOptions {
	options := generateOptions{}
	for _, opt := range opts {
		options = opt(options)
	}
	if options.logger == nil {
		options.logger = slog.New(slog.DiscardHandler)
	}
	if options.runner == nil {
		options.runner = example.NewExecutor(example.WithLogger(options.logger))
	}
	return options
}

// Generate documents the classes and free functions which pass the whitelist
// and returns them grouped by namespace.
// The result does not depend on the order of the input constructs.
func Generate(
	ctx context.Context,
	classes []*construct.ClassLike,
	functions []*construct.Function,
	opts ...GenerateOption,
) (*NamespaceIndex, error) {
	classes = slices.SortedStableFunc(slices.Values(classes), func(a, b *construct.ClassLike) int {
		return cmp.Compare(a.Name, b.Name)
	})
	functions = slices.SortedStableFunc(slices.Values(functions), func(a, b *construct.Function) int {
		return cmp.Compare(a.Name, b.Name)
	})
	builder := NewBuilder(opts...)
	for _, class := range classes {
		if err := builder.AddClass(ctx, class); err != nil {
			return nil, err
		}
	}
	for _, function := range functions {
		if err := builder.AddFunction(ctx, function); err != nil {
			return nil, err
		}
	}
	return builder.Seal(), nil
}
