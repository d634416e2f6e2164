package resources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/stretchr/testify/require"
)

func TestCacheDownload(t *testing.T) {
	teardown := testconfig.QuickConfig(t, map[string]string{
		"app-key": "fontpack-test",
	})
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("font bytes"))
	}))
	defer srv.Close()
	//
	target := filepath.Join(t.TempDir(), "test.woff2")
	err := DownloadCachedFile(context.Background(), target, srv.URL+"/test.woff2")
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "font bytes", string(data))
}

func TestCacheDownloadNotOK(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	//
	dir := t.TempDir()
	target := filepath.Join(dir, "missing.woff2")
	err := DownloadCachedFile(context.Background(), target, srv.URL+"/missing.woff2")
	require.Error(t, err)
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Errorf("failed download must not leave a file behind")
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "no temp files may remain")
}

func TestManifestLoadAndLookup(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	mf := filepath.Join(t.TempDir(), "fonts.json")
	require.NoError(t, os.WriteFile(mf, []byte(`{
	  "fonts": [
	    {"source": "https://example.com/dl/Lato-Regular.woff2", "family": "Brand Sans", "weight": 400},
	    {"source": "local/Lato-Bold.woff2", "family": "Brand Sans", "style": "Bold"}
	  ]
	}`), 0644))
	m, err := LoadManifest(mf)
	require.NoError(t, err)
	require.Len(t, m.Fonts, 2)
	//
	e, ok := m.Lookup("https://example.com/dl/Lato-Regular.woff2")
	require.True(t, ok)
	require.Equal(t, "Brand Sans", e.Family)
	require.Equal(t, 400, e.Weight)
	// base-name match against the resolved cache path
	e, ok = m.Lookup("/home/u/.cache/fontpack/fonts/Lato-Bold.woff2")
	require.True(t, ok)
	require.Equal(t, "Bold", e.Style)
	//
	_, ok = m.Lookup("Unrelated.ttf")
	require.False(t, ok)
}

func TestManifestRejectsEntryWithoutSource(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	//
	mf := filepath.Join(t.TempDir(), "fonts.json")
	require.NoError(t, os.WriteFile(mf, []byte(`{"fonts": [{"family": "X"}]}`), 0644))
	_, err := LoadManifest(mf)
	require.Error(t, err)
}
