package build

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex string

func (f fakeIndex) WriteJSON(w io.Writer) error {
	_, err := io.WriteString(w, string(f))
	return err
}

const testIndex = fakeIndex(`{"github.com/acme/widgets": []}` + "\n")

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh is not available")
	}
}

func TestSite_Build(t *testing.T) {
	t.Run("writes the index", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "docs", "api")

		err := NewSite(dest).Build(context.Background(), testIndex)
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dest, IndexFilename))
		require.NoError(t, err)
		assert.Equal(t, string(testIndex), string(data))
	})

	t.Run("renders the template", func(t *testing.T) {
		requireShell(t)
		template := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(template, "index.html"), []byte("<html></html>"), 0o600))
		dest := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dest, "data.json"), []byte("stale"), 0o600))

		site := NewSite(dest, WithTemplate(template,
			"mkdir -p build/assets && cp index.html build/ && cp resources/json/namespaces.json build/data.json && touch build/assets/app.js"))
		require.NoError(t, site.Build(context.Background(), testIndex))

		data, err := os.ReadFile(filepath.Join(dest, "data.json"))
		require.NoError(t, err)
		assert.Equal(t, string(testIndex), string(data))
		assert.FileExists(t, filepath.Join(dest, "index.html"))
		assert.FileExists(t, filepath.Join(dest, "assets", "app.js"))
		assert.NoFileExists(t, filepath.Join(template, TemplateIndexPath), "template must not be modified")
	})

	t.Run("failing command", func(t *testing.T) {
		requireShell(t)
		site := NewSite(t.TempDir(), WithTemplate(t.TempDir(), "echo broken pipeline >&2; exit 3"))

		err := site.Build(context.Background(), testIndex)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken pipeline")
		assert.Contains(t, err.Error(), "exit status 3")
	})

	t.Run("missing template", func(t *testing.T) {
		site := NewSite(t.TempDir(), WithTemplate(filepath.Join(t.TempDir(), "missing"), "true"))

		err := site.Build(context.Background(), testIndex)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to stage")
	})
}

func TestServe(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFilename), []byte("{}"), 0o600))
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, listener, dir, slog.New(slog.DiscardHandler)) }()

	resp, err := http.Get("http://" + listener.Addr().String() + "/" + IndexFilename)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "{}", string(body))

	cancel()
	select {
	case err = <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
