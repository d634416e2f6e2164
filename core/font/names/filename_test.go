package names

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
	"github.com/typecase/fontpack/core/font/style"
)

func TestNamerDistinctPaths(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontpack.names")
	defer teardown()
	//
	n := NewNamer(false, false)
	styles := []style.Descriptor{
		{Weight: 400, Width: 5},
		{Weight: 400, Italic: true, Width: 5},
		{Weight: 700, Width: 5},
		{Weight: 700, Italic: true, Width: 5},
	}
	seen := map[string]bool{}
	for _, d := range styles {
		p := n.Name("Brand Sans", d, "", ".ttf")
		require.False(t, seen[p], "path %s planned twice", p)
		seen[p] = true
	}
	require.True(t, seen["BrandSans-Regular.ttf"])
	require.True(t, seen["BrandSans-BoldItalic.ttf"])
}

func TestNamerCollisionSuffix(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontpack.names")
	defer teardown()
	//
	n := NewNamer(false, false)
	d := style.Default()
	first := n.Name("Lato", d, "", ".ttf")
	second := n.Name("Lato", d, "", ".ttf")
	third := n.Name("Lato", d, "", ".ttf")
	require.Equal(t, "Lato-Regular.ttf", first)
	require.Equal(t, "Lato-Regular-2.ttf", second)
	require.Equal(t, "Lato-Regular-3.ttf", third)
}

func TestNamerOrganizeByFamily(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontpack.names")
	defer teardown()
	//
	n := NewNamer(true, false)
	p := n.Name("Brand Sans", style.Default(), "", ".otf")
	require.Equal(t, filepath.Join("BrandSans", "BrandSans-Regular.otf"), p)
}

func TestNamerKeepSourceStem(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontpack.names")
	defer teardown()
	//
	n := NewNamer(false, true)
	p := n.Name("Brand Sans", style.Default(), "lato-v23-latin-700", ".ttf")
	require.Equal(t, "lato-v23-latin-700.ttf", p)
}

func TestResolveAndExists(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontpack.names")
	defer teardown()
	//
	dir := t.TempDir()
	out := Resolve(dir, "Lato-Regular.ttf", false, false)
	require.Equal(t, filepath.Join(dir, "Lato-Regular.ttf"), out.Path)
	require.False(t, out.Exists())
	require.NoError(t, os.WriteFile(out.Path, []byte("x"), 0644))
	require.True(t, out.Exists())
}
