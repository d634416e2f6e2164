package pipeline

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
	"seehuhn.de/go/sfnt"

	"github.com/typecase/fontpack/core"
	"github.com/typecase/fontpack/core/font"
	"github.com/typecase/fontpack/core/font/names"
)

// stubDecoder replaces the container/sfnt decoding step: any payload
// containing "bad" fails, everything else becomes a synthetic face of
// the given family wrapped around a minimal but well-formed table
// directory, so the collection packer can consume it.
func stubDecoder(t *testing.T, family string) func() {
	t.Helper()
	saved := decodeFace
	decodeFace = func(raw []byte) (*font.Face, error) {
		if bytes.Contains(raw, []byte("bad")) {
			return nil, core.Error(core.EDECODE, "not a recognized font container")
		}
		return &font.Face{
			Fontname: family,
			Binary:   minimalSFNT(raw),
			Font:     &sfnt.Font{FamilyName: family},
		}, nil
	}
	return func() { decodeFace = saved }
}

// minimalSFNT wraps a payload into a one-table sfnt so that Pack's
// directory parser accepts it.
func minimalSFNT(payload []byte) []byte {
	body := make([]byte, 54+len(payload))
	copy(body[54:], payload)
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(0x00010000))
	binary.Write(&buf, binary.BigEndian, uint16(1)) // numTables
	binary.Write(&buf, binary.BigEndian, uint16(16))
	binary.Write(&buf, binary.BigEndian, uint16(0))
	binary.Write(&buf, binary.BigEndian, uint16(0))
	buf.WriteString("head")
	binary.Write(&buf, binary.BigEndian, uint32(0))  // checksum
	binary.Write(&buf, binary.BigEndian, uint32(28)) // offset
	binary.Write(&buf, binary.BigEndian, uint32(len(body)))
	buf.Write(body)
	for buf.Len()%4 != 0 {
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

func writeSources(t *testing.T, contents map[string]string) (dir string, paths []string) {
	t.Helper()
	dir = t.TempDir()
	for name, content := range contents {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
		paths = append(paths, p)
	}
	return dir, paths
}

func TestRunWritesAndRecordsFailures(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontpack.pipeline")
	defer teardown()
	restore := stubDecoder(t, "Test Family")
	defer restore()
	//
	_, sources := writeSources(t, map[string]string{
		"one.woff2":   "good one",
		"two.woff2":   "good two",
		"three.woff2": "good three",
		"corrupt-a":   "bad a",
		"corrupt-b":   "bad b",
	})
	out := t.TempDir()
	report, err := Run(context.Background(), sources, Options{OutDir: out, Workers: 2})
	require.NoError(t, err)
	require.Equal(t, 3, report.Written)
	require.Equal(t, 0, report.Skipped)
	require.Equal(t, 2, report.Failed)
	require.Equal(t, 2, report.ExitCode())
	//
	// three faces of the same family and style get distinct paths
	seen := map[string]bool{}
	for _, res := range report.Results {
		if res.State != Written {
			continue
		}
		require.False(t, seen[res.Output], "duplicate output %s", res.Output)
		seen[res.Output] = true
		_, statErr := os.Stat(res.Output)
		require.NoError(t, statErr)
	}
	for _, res := range report.Results {
		if res.State == Failed {
			require.Equal(t, core.EDECODE, core.Code(res.Err))
		}
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontpack.pipeline")
	defer teardown()
	restore := stubDecoder(t, "Test Family")
	defer restore()
	//
	_, sources := writeSources(t, map[string]string{
		"one.woff2": "good one",
		"two.woff2": "good two",
		"corrupt":   "bad",
	})
	out := t.TempDir()
	wet, err := Run(context.Background(), sources, Options{OutDir: out})
	require.NoError(t, err)
	//
	dryOut := t.TempDir()
	dry, err := Run(context.Background(), sources, Options{OutDir: dryOut, DryRun: true})
	require.NoError(t, err)
	require.Equal(t, wet.Written, dry.Written)
	require.Equal(t, wet.Failed, dry.Failed)
	entries, err := os.ReadDir(dryOut)
	require.NoError(t, err)
	require.Empty(t, entries, "dry run must not touch the filesystem")
}

func TestRunCollisionSuffixesFollowSourceOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontpack.pipeline")
	defer teardown()
	restore := stubDecoder(t, "Test Family")
	defer restore()
	//
	// all three classify identically, so all want TestFamily-Regular.ttf
	_, sources := writeSources(t, map[string]string{
		"aaa.woff2": "good",
		"bbb.woff2": "good",
		"ccc.woff2": "good",
	})
	want := map[string]string{
		"aaa.woff2": "TestFamily-Regular.ttf",
		"bbb.woff2": "TestFamily-Regular-2.ttf",
		"ccc.woff2": "TestFamily-Regular-3.ttf",
	}
	// scheduling must not leak into the suffix assignment
	for run := 0; run < 5; run++ {
		out := t.TempDir()
		report, err := Run(context.Background(), sources, Options{OutDir: out, Workers: 3})
		require.NoError(t, err)
		require.Equal(t, 3, report.Written)
		for _, res := range report.Results {
			require.Equal(t, filepath.Join(out, want[filepath.Base(res.Source)]), res.Output)
		}
	}
	//
	// a dry run plans the very same paths
	dryOut := t.TempDir()
	dry, err := Run(context.Background(), sources, Options{OutDir: dryOut, DryRun: true, Workers: 3})
	require.NoError(t, err)
	for _, res := range dry.Results {
		require.Equal(t, filepath.Join(dryOut, want[filepath.Base(res.Source)]), res.Output)
	}
}

func TestRunSkipsExistingWithoutOverwrite(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontpack.pipeline")
	defer teardown()
	restore := stubDecoder(t, "Test Family")
	defer restore()
	//
	_, sources := writeSources(t, map[string]string{"one.woff2": "good"})
	out := t.TempDir()
	first, err := Run(context.Background(), sources, Options{OutDir: out})
	require.NoError(t, err)
	require.Equal(t, 1, first.Written)
	//
	second, err := Run(context.Background(), sources, Options{OutDir: out})
	require.NoError(t, err)
	require.Equal(t, 0, second.Written)
	require.Equal(t, 1, second.Skipped)
	require.Equal(t, 0, second.ExitCode())
	//
	third, err := Run(context.Background(), sources, Options{OutDir: out, Overwrite: true})
	require.NoError(t, err)
	require.Equal(t, 1, third.Written)
}

func TestRunRewritesNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontpack.pipeline")
	defer teardown()
	restore := stubDecoder(t, "Lato")
	defer restore()
	var applied []names.Plan
	savedApply := applyPlan
	applyPlan = func(plan names.Plan, f *font.Face) error {
		applied = append(applied, plan)
		return nil
	}
	defer func() { applyPlan = savedApply }()
	//
	_, sources := writeSources(t, map[string]string{"lato-bold.woff2": "good"})
	out := t.TempDir()
	report, err := Run(context.Background(), sources, Options{
		OutDir:       out,
		Family:       "Brand Sans",
		ForceFamily:  true,
		RewriteNames: true,
	})
	require.NoError(t, err)
	require.Equal(t, 1, report.Written)
	res := report.Results[0]
	require.Equal(t, "Brand Sans", res.Family)
	require.Equal(t, filepath.Join(out, "BrandSans-Bold.ttf"), res.Output,
		"weight token from the filename stem must drive the style")
	require.Len(t, applied, 1)
	require.Equal(t, "Brand Sans", applied[0].Family)
}

func TestRunArgumentErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontpack.pipeline")
	defer teardown()
	//
	_, err := Run(context.Background(), nil, Options{OutDir: "x"})
	require.Error(t, err)
	require.Equal(t, core.EINVALID, core.Code(err))
	//
	_, err = Run(context.Background(), []string{"a"}, Options{})
	require.Error(t, err)
	require.Equal(t, core.EINVALID, core.Code(err))
}

func TestRunCancelledContext(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontpack.pipeline")
	defer teardown()
	restore := stubDecoder(t, "Test Family")
	defer restore()
	//
	_, sources := writeSources(t, map[string]string{
		"one.woff2": "good", "two.woff2": "good",
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := Run(ctx, sources, Options{OutDir: t.TempDir()})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, len(sources), report.Skipped)
}
