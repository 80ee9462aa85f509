package gist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	gh "github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type fakeGitHub struct {
	*httptest.Server
	lists   atomic.Int32
	creates atomic.Int32
	edits   atomic.Int32
	raws    atomic.Int32
	lastReq map[string]any
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /gists", func(w http.ResponseWriter, r *http.Request) {
		f.lists.Add(1)
		if r.URL.Query().Get("page") == "2" {
			writeJSON(t, w, []map[string]any{
				gistJSON(f.URL, "2", "Widget.Render Example"),
			})
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/gists?page=2>; rel="next"`, f.URL))
		writeJSON(t, w, []map[string]any{
			gistJSON(f.URL, "1", "New Example"),
			{"id": "3", "description": "unrelated gist"},
		})
	})
	mux.HandleFunc("POST /gists", func(w http.ResponseWriter, r *http.Request) {
		f.creates.Add(1)
		f.lastReq = readJSON(t, r)
		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, gistJSON(f.URL, "4", f.lastReq["description"].(string)))
	})
	mux.HandleFunc("PATCH /gists/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.edits.Add(1)
		f.lastReq = readJSON(t, r)
		writeJSON(t, w, gistJSON(f.URL, r.PathValue("id"), f.lastReq["description"].(string)))
	})
	mux.HandleFunc("GET /raw/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.raws.Add(1)
		_, _ = io.WriteString(w, "content of "+r.PathValue("id"))
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func gistJSON(baseURL, id, description string) map[string]any {
	return map[string]any{
		"id":          id,
		"description": description,
		"html_url":    "https://gist.github.com/" + id,
		"files": map[string]any{
			description: map[string]any{
				"filename": description,
				"raw_url":  baseURL + "/raw/" + id,
			},
		},
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func readJSON(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var v map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&v))
	return v
}

func newTestStore(t *testing.T, server *fakeGitHub, opts ...GitHubStoreOption) *GitHubStore {
	t.Helper()
	client := gh.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = baseURL
	return NewGitHubStore(client, server.Client(), append([]GitHubStoreOption{WithRateLimit(rate.Inf)}, opts...)...)
}

func TestGitHubStore(t *testing.T) {
	ctx := context.Background()

	t.Run("indexes all pages once", func(t *testing.T) {
		server := newFakeGitHub(t)
		store := newTestStore(t, server)

		entry, err := store.Lookup(ctx, "Widget.Render")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, "2", entry.ID)
		assert.Equal(t, "https://gist.github.com/2", entry.HTMLURL)
		assert.Equal(t, server.URL+"/raw/2", entry.Files["Widget.Render Example"].RawURL)

		entry, err = store.Lookup(ctx, "New")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, "1", entry.ID)

		entry, err = store.Lookup(ctx, "unrelated gist")
		require.NoError(t, err)
		assert.Nil(t, entry)

		assert.Equal(t, int32(2), server.lists.Load())
	})

	t.Run("fetches raw content", func(t *testing.T) {
		server := newFakeGitHub(t)
		store := newTestStore(t, server)

		content, err := store.Content(ctx, server.URL+"/raw/2")
		require.NoError(t, err)
		assert.Equal(t, "content of 2", content)

		_, err = store.Content(ctx, server.URL+"/missing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status 404")
	})

	t.Run("caches raw content", func(t *testing.T) {
		server := newFakeGitHub(t)
		cacheDir := t.TempDir()
		store := newTestStore(t, server, WithContentCache(cacheDir))

		for range 2 {
			content, err := store.Content(ctx, server.URL+"/raw/2")
			require.NoError(t, err)
			assert.Equal(t, "content of 2", content)
		}
		assert.Equal(t, int32(1), server.raws.Load())

		store = newTestStore(t, server, WithContentCache(cacheDir))
		content, err := store.Content(ctx, server.URL+"/raw/2")
		require.NoError(t, err)
		assert.Equal(t, "content of 2", content)
		assert.Equal(t, int32(1), server.raws.Load())
	})

	t.Run("creates public gist", func(t *testing.T) {
		server := newFakeGitHub(t)
		store := newTestStore(t, server)
		_, err := store.Lookup(ctx, "Widget.Render")
		require.NoError(t, err)

		htmlURL, err := store.Create(ctx, "Gadget Example", "package main")
		require.NoError(t, err)
		assert.Equal(t, "https://gist.github.com/4", htmlURL)
		assert.Equal(t, int32(1), server.creates.Load())
		assert.Equal(t, true, server.lastReq["public"])
		assert.Equal(t, map[string]any{
			"Gadget Example": map[string]any{"content": "package main"},
		}, server.lastReq["files"])

		entry, err := store.Lookup(ctx, "Gadget")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, "4", entry.ID)
	})

	t.Run("edits gist", func(t *testing.T) {
		server := newFakeGitHub(t)
		store := newTestStore(t, server)

		htmlURL, err := store.Update(ctx, "2", "Widget.Render Example", "package main")
		require.NoError(t, err)
		assert.Equal(t, "https://gist.github.com/2", htmlURL)
		assert.Equal(t, int32(1), server.edits.Load())
	})
}
