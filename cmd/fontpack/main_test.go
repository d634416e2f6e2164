package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
)

func TestConvertForceFamilyTakesValue(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontpack.cli")
	defer teardown()
	//
	dir := t.TempDir()
	src := filepath.Join(dir, "corrupt.woff2")
	require.NoError(t, os.WriteFile(src, []byte("not a font"), 0644))
	code := convertCmd(context.Background(), []string{
		"--src", src, "--out", t.TempDir(), "--force-family", "Brand Sans", "--dry-run",
	})
	require.Equal(t, 2, code, "a decode failure is a per-file error, not a usage error")
}

func TestConvertRejectsConflictingFamilyFlags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontpack.cli")
	defer teardown()
	//
	code := convertCmd(context.Background(), []string{
		"--src", "unused", "--out", "unused",
		"--family", "One", "--force-family", "Other",
	})
	require.Equal(t, 1, code)
}
