package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nieomylnieja/lowdown/internal/build"
	"github.com/nieomylnieja/lowdown/internal/config"
	"github.com/nieomylnieja/lowdown/internal/example"
	"github.com/nieomylnieja/lowdown/internal/gist"
	"github.com/nieomylnieja/lowdown/internal/godoc"
	"github.com/nieomylnieja/lowdown/internal/pathutils"
	"github.com/nieomylnieja/lowdown/pkg/lowdown"
)

type buildFlags struct {
	*rootFlags
	configPath string
	dest       string
	gists      bool
	whitelist  []string
	sources    []string
}

func newBuildCommand(root *rootFlags) *cobra.Command {
	flags := &buildFlags{rootFlags: root}
	return flags.command()
}

func (flags *buildFlags) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build documentation",
		Long: `Build documents the packages of the Go module in the current directory.

Every example found in a <pre> block of a doc comment is executed and its
output is recorded next to it. With --gists, examples are also published
as GitHub Gists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}
			return runBuild(cmd.Context(), cfg, flags.logger(cmd))
		},
	}
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Path to the YAML configuration file")
	cmd.Flags().StringVar(&flags.dest, "dest", config.DefaultDest, "Write output to this folder")
	cmd.Flags().BoolVar(&flags.gists, "gists", false, "Create and sync GitHub Gists for examples")
	cmd.Flags().StringSliceVar(&flags.whitelist, "whitelist", nil, "Namespace whitelist")
	cmd.Flags().StringSliceVar(&flags.sources, "sources", nil, "Package patterns to document")
	return cmd
}

// loadConfig loads the configuration, explicitly set flags take precedence.
// The result is validated once all overrides are applied.
func (flags *buildFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Read(flags.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("dest") {
		cfg.Dest = flags.dest
	}
	if cmd.Flags().Changed("gists") {
		cfg.Gists.Enabled = flags.gists
	}
	if cmd.Flags().Changed("whitelist") {
		cfg.Whitelist = flags.whitelist
	}
	if cmd.Flags().Changed("sources") {
		cfg.Sources = flags.sources
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runBuild(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	root, err := pathutils.FindModuleRoot("")
	if err != nil {
		return err
	}
	logger.Info("loading packages", slog.Any("sources", cfg.Sources))
	parser, err := godoc.NewParser(".", cfg.Sources...)
	if err != nil {
		return err
	}
	program, err := parser.Program()
	if err != nil {
		return err
	}

	opts := []lowdown.GenerateOption{
		lowdown.WithWhitelist(cfg.Whitelist),
		lowdown.WithExampleRunner(example.NewExecutor(
			example.WithDir(root),
			example.WithTimeout(cfg.ExampleTimeout),
			example.WithLogger(logger),
		)),
		lowdown.WithDescriptionRenderer(parser.RenderMarkdown),
		lowdown.WithLogger(logger),
	}
	if cfg.Gists.Enabled {
		synchronizer, err := newGistSynchronizer(ctx, cfg.Gists, root, logger)
		if err != nil {
			return err
		}
		opts = append(opts, lowdown.WithGistSynchronizer(synchronizer))
	}
	index, err := lowdown.Generate(ctx, program.Classes, program.Functions, opts...)
	if err != nil {
		return err
	}

	siteOpts := []build.Option{build.WithLogger(logger)}
	if cfg.Template != "" {
		siteOpts = append(siteOpts, build.WithTemplate(cfg.Template, cfg.BuildCommand))
	}
	return build.NewSite(cfg.Dest, siteOpts...).Build(ctx, index)
}

func newGistSynchronizer(
	ctx context.Context,
	cfg config.Gists,
	root string,
	logger *slog.Logger,
) (*gist.Synchronizer, error) {
	modulePath, err := pathutils.ModulePath(root)
	if err != nil {
		return nil, err
	}
	storeOpts := []gist.GitHubStoreOption{gist.WithStoreLogger(logger)}
	if cfg.Username != "" {
		storeOpts = append(storeOpts, gist.WithUsername(cfg.Username))
	}
	if cfg.Cached {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to locate the user cache directory")
		}
		storeOpts = append(storeOpts, gist.WithContentCache(filepath.Join(cacheDir, "lowdown", "gists")))
	}
	store := gist.NewGitHubStoreFromToken(ctx, cfg.Token, storeOpts...)
	return gist.NewSynchronizer(store,
		gist.WithRequires(modulePath+"@latest"),
		gist.WithLogger(logger),
	), nil
}
