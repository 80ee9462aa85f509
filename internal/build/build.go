// Package build writes the generated documentation model to its destination.
package build

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	// IndexFilename is the name of the serialized namespace index.
	IndexFilename = "namespaces.json"
	// TemplateIndexPath is where the index is placed inside a staged template.
	TemplateIndexPath = "resources/json/" + IndexFilename
	// TemplateOutputDir is the directory the build command writes the site to.
	TemplateOutputDir = "build"
)

// Index is the serializable documentation model.
type Index interface {
	WriteJSON(w io.Writer) error
}

// Site writes the index, optionally rendered through a template, to the destination.
type Site struct {
	dest     string
	template string
	command  string
	logger   *slog.Logger
}

// Option configures a [Site].
type Option func(s *Site)

// WithTemplate renders the index with the template directory.
// The template is staged in a temporary directory, the index is written to
// [TemplateIndexPath] and the command is run by the shell.
// Its [TemplateOutputDir] is then copied to the destination.
func WithTemplate(dir, command string) Option {
	return func(s *Site) {
		s.template = dir
		s.command = command
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Site) { s.logger = logger }
}

// NewSite creates a [Site] writing to dest.
func NewSite(dest string, opts ...Option) *Site {
	s := &Site{
		dest:   dest,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build writes the index to the destination.
func (s *Site) Build(ctx context.Context, index Index) error {
	if s.template == "" {
		path := filepath.Join(s.dest, IndexFilename)
		if err := writeIndex(path, index); err != nil {
			return err
		}
		s.logger.Info("documentation written", slog.String("path", path))
		return nil
	}

	stage, err := os.MkdirTemp("", "lowdown-")
	if err != nil {
		return errors.Wrap(err, "failed to create staging directory")
	}
	defer func() { _ = os.RemoveAll(stage) }()

	if err = os.CopyFS(stage, os.DirFS(s.template)); err != nil {
		return errors.Wrapf(err, "failed to stage %s template", s.template)
	}
	if err = writeIndex(filepath.Join(stage, filepath.FromSlash(TemplateIndexPath)), index); err != nil {
		return err
	}
	if err = s.runCommand(ctx, stage); err != nil {
		return err
	}
	if err = copyTree(filepath.Join(stage, TemplateOutputDir), s.dest); err != nil {
		return errors.Wrapf(err, "failed to copy the built site to %s", s.dest)
	}
	s.logger.Info("documentation built", slog.String("dest", s.dest))
	return nil
}

func (s *Site) runCommand(ctx context.Context, dir string) error {
	s.logger.Debug("running build command", slog.String("command", s.command), slog.String("dir", dir))
	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, "sh", "-c", s.command)
	cmd.Dir = dir
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "build command %q failed:\n%s", s.command, output.String())
	}
	return nil
}

func writeIndex(path string, index Index) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(path))
	}
	var buf bytes.Buffer
	if err := index.WriteJSON(&buf); err != nil {
		return errors.Wrap(err, "failed to encode documentation")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// copyTree copies the src directory into dst, overwriting existing files.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o600)
	})
}
