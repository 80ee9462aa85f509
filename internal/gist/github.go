package gist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRate is the proactive request rate, well below the authenticated limit of 5000/hour.
	DefaultRate = 1.2
)

const listPageSize = 100

// GitHubStore is a [Store] backed by GitHub Gists of the authenticated user.
type GitHubStore struct {
	gh       *gh.Client
	http     *http.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
	cacheDir string
	username string
	index    map[string]*Entry
}

// GitHubStoreOption configures a [GitHubStore].
type GitHubStoreOption func(s *GitHubStore)

// WithRateLimit overrides the proactive request rate (requests per second).
func WithRateLimit(limit rate.Limit) GitHubStoreOption {
	return func(s *GitHubStore) { s.limiter = rate.NewLimiter(limit, 1) }
}

// WithStoreLogger sets the logger.
func WithStoreLogger(logger *slog.Logger) GitHubStoreOption {
	return func(s *GitHubStore) { s.logger = logger }
}

// WithUsername indexes the public gists of the user instead of all gists of the authenticated user.
func WithUsername(username string) GitHubStoreOption {
	return func(s *GitHubStore) { s.username = username }
}

// WithContentCache caches downloaded gist contents in dir.
// Raw gist URLs are pinned to a revision, so cached contents never go stale.
func WithContentCache(dir string) GitHubStoreOption {
	return func(s *GitHubStore) { s.cacheDir = dir }
}

// NewGitHubStoreFromToken creates a [GitHubStore] authenticated with a personal access token.
func NewGitHubStoreFromToken(ctx context.Context, token string, opts ...GitHubStoreOption) *GitHubStore {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = DefaultTimeout
	return NewGitHubStore(gh.NewClient(httpClient), httpClient, opts...)
}

// NewGitHubStore creates a [GitHubStore] from an already configured client.
// The HTTP client is used to download raw gist contents.
func NewGitHubStore(client *gh.Client, httpClient *http.Client, opts ...GitHubStoreOption) *GitHubStore {
	s := &GitHubStore{
		gh:      client,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(DefaultRate), 1),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup implements [Store].
// All gists of the authenticated user are indexed on first use.
func (s *GitHubStore) Lookup(ctx context.Context, key string) (*Entry, error) {
	if s.index == nil {
		if err := s.loadIndex(ctx); err != nil {
			return nil, err
		}
	}
	return s.index[key], nil
}

func (s *GitHubStore) loadIndex(ctx context.Context) error {
	index := make(map[string]*Entry)
	opts := &gh.GistListOptions{ListOptions: gh.ListOptions{PerPage: listPageSize}}
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "rate limit wait")
		}
		gists, resp, err := s.gh.Gists.List(ctx, s.username, opts)
		if err != nil {
			return errors.Wrap(err, "failed to list gists")
		}
		for _, g := range gists {
			key, ok := strings.CutSuffix(g.GetDescription(), DescriptionSuffix)
			if !ok {
				continue
			}
			if _, exists := index[key]; exists {
				continue
			}
			index[key] = entryFromGist(key, g)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	s.logger.Debug("indexed gists", slog.Int("count", len(index)))
	s.index = index
	return nil
}

// Content implements [Store].
func (s *GitHubStore) Content(ctx context.Context, rawURL string) (string, error) {
	if s.cacheDir == "" {
		return s.fetchContent(ctx, rawURL)
	}
	sum := sha256.Sum256([]byte(rawURL))
	path := filepath.Join(s.cacheDir, hex.EncodeToString(sum[:]))
	if data, err := os.ReadFile(path); err == nil {
		return string(data), nil
	}
	content, err := s.fetchContent(ctx, rawURL)
	if err != nil {
		return "", err
	}
	if err = os.MkdirAll(s.cacheDir, 0o750); err == nil {
		err = os.WriteFile(path, []byte(content), 0o600)
	}
	if err != nil {
		s.logger.Warn("failed to cache gist content", slog.String("url", rawURL), slog.Any("error", err))
	}
	return content, nil
}

func (s *GitHubStore) fetchContent(ctx context.Context, rawURL string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "rate limit wait")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "failed to fetch %s", rawURL)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("failed to fetch %s: unexpected status %s", rawURL, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", rawURL)
	}
	return string(data), nil
}

// Create implements [Store].
func (s *GitHubStore) Create(ctx context.Context, description, content string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "rate limit wait")
	}
	created, _, err := s.gh.Gists.Create(ctx, newGist(description, content))
	if err != nil {
		return "", errors.Wrap(err, "failed to create gist")
	}
	if s.index != nil {
		key := strings.TrimSuffix(description, DescriptionSuffix)
		s.index[key] = entryFromGist(key, created)
	}
	return created.GetHTMLURL(), nil
}

// Update implements [Store].
func (s *GitHubStore) Update(ctx context.Context, id, description, content string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "rate limit wait")
	}
	updated, _, err := s.gh.Gists.Edit(ctx, id, newGist(description, content))
	if err != nil {
		return "", errors.Wrapf(err, "failed to edit gist %s", id)
	}
	return updated.GetHTMLURL(), nil
}

func newGist(description, content string) *gh.Gist {
	return &gh.Gist{
		Description: gh.Ptr(description),
		Public:      gh.Ptr(true),
		Files: map[gh.GistFilename]gh.GistFile{
			gh.GistFilename(description): {Content: gh.Ptr(content)},
		},
	}
}

func entryFromGist(key string, g *gh.Gist) *Entry {
	entry := &Entry{
		Key:     key,
		ID:      g.GetID(),
		HTMLURL: g.GetHTMLURL(),
		Files:   make(map[string]File, len(g.Files)),
	}
	for name, file := range g.Files {
		entry.Files[string(name)] = File{RawURL: file.GetRawURL()}
	}
	return entry
}
