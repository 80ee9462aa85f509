// Package gist mirrors documentation examples to a remote snippet service.
package gist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/nieomylnieja/lowdown/internal/example"
)

// DescriptionSuffix is appended to the example owner name to form the gist description.
const DescriptionSuffix = " Example"

// Store is the remote snippet service.
// Implementations never delete entries.
type Store interface {
	// Lookup returns the entry for the example owner, or nil if there is none.
	Lookup(ctx context.Context, key string) (*Entry, error)
	// Content fetches the raw content of a stored file.
	Content(ctx context.Context, rawURL string) (string, error)
	// Create creates a new entry with a single file named after its description
	// and returns its browsable URL.
	Create(ctx context.Context, description, content string) (string, error)
	// Update replaces the file named after the description and returns the browsable URL.
	Update(ctx context.Context, id, description, content string) (string, error)
}

// Entry is the remote state of a single example owner.
type Entry struct {
	Key     string
	ID      string
	HTMLURL string
	// Files are keyed by their description.
	Files map[string]File
}

// File is a single file of an [Entry].
type File struct {
	RawURL string
}

// Synchronizer ensures each example has an up-to-date gist.
// It is not safe for concurrent use.
type Synchronizer struct {
	store    Store
	requires string
	prepare  example.SourcePreparer
	logger   *slog.Logger
	synced   map[string]string
}

// SynchronizerOption configures a [Synchronizer].
type SynchronizerOption func(s *Synchronizer)

// WithRequires declares the module (and version) the examples depend on,
// e.g. "github.com/acme/widgets@latest".
func WithRequires(module string) SynchronizerOption {
	return func(s *Synchronizer) { s.requires = module }
}

// WithSourcePreparer sets how an example snippet is turned into a complete program.
// It defaults to [example.PrepareGoSource].
func WithSourcePreparer(prepare example.SourcePreparer) SynchronizerOption {
	return func(s *Synchronizer) { s.prepare = prepare }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SynchronizerOption {
	return func(s *Synchronizer) { s.logger = logger }
}

// NewSynchronizer creates a new [Synchronizer] backed by the [Store].
func NewSynchronizer(store Store, opts ...SynchronizerOption) *Synchronizer {
	s := &Synchronizer{
		store:   store,
		prepare: example.PrepareGoSource,
		logger:  slog.New(slog.DiscardHandler),
		synced:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync makes sure the gist for the example owner holds the example and returns its URL.
// An existing gist is only updated if its content differs.
// Each owner is synchronized at most once per [Synchronizer].
func (s *Synchronizer) Sync(ctx context.Context, owner, source string) (string, error) {
	if url, ok := s.synced[owner]; ok {
		return url, nil
	}
	description := owner + DescriptionSuffix
	content := s.Document(owner, source)

	entry, err := s.store.Lookup(ctx, owner)
	if err != nil {
		return "", errors.Wrapf(err, "failed to look up gist for %s", owner)
	}

	var url string
	if entry == nil {
		s.logger.Info("creating gist", slog.String("owner", owner))
		url, err = s.store.Create(ctx, description, content)
		if err != nil {
			return "", errors.Wrapf(err, "failed to create gist for %s", owner)
		}
	} else {
		url, err = s.syncEntry(ctx, entry, description, content)
		if err != nil {
			return "", err
		}
	}
	s.synced[owner] = url
	return url, nil
}

func (s *Synchronizer) syncEntry(ctx context.Context, entry *Entry, description, content string) (string, error) {
	if file, ok := entry.Files[description]; ok {
		current, err := s.store.Content(ctx, file.RawURL)
		if err != nil {
			return "", errors.Wrapf(err, "failed to fetch gist %s content", entry.ID)
		}
		if current == content {
			s.logger.Debug("gist is up to date", slog.String("owner", entry.Key), slog.String("id", entry.ID))
			return entry.HTMLURL, nil
		}
	}
	s.logger.Info("updating gist", slog.String("owner", entry.Key), slog.String("id", entry.ID))
	url, err := s.store.Update(ctx, entry.ID, description, content)
	if err != nil {
		return "", errors.Wrapf(err, "failed to update gist %s", entry.ID)
	}
	if url == "" {
		url = entry.HTMLURL
	}
	return url, nil
}

// Document returns the gist file content for the example.
// The snippet is embedded as a complete program if it can be prepared,
// otherwise it is embedded as-is.
// The result is fully determined by its arguments and the configured options.
func (s *Synchronizer) Document(owner, source string) string {
	body := source
	runnable := false
	if s.prepare != nil {
		if program, err := s.prepare(source); err == nil {
			body = string(program)
			runnable = true
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// %s%s\n", owner, DescriptionSuffix)
	b.WriteString("//\n")
	if runnable {
		b.WriteString("// This is a runnable Go example generated by lowdown.\n")
	} else {
		b.WriteString("// This is a Go example snippet generated by lowdown.\n")
	}
	if s.requires != "" {
		fmt.Fprintf(&b, "// Requires: %s\n", s.requires)
	}
	if runnable {
		b.WriteString("// Run it with: go run .\n")
	}
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(body, "\n"))
	b.WriteString("\n")
	return b.String()
}
