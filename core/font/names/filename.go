package names

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/typecase/fontpack/core/font/style"
)

// Output describes where a processed face goes and under which policy.
type Output struct {
	Path      string // destination, relative to the output root
	Overwrite bool
	DryRun    bool
}

// Namer derives output paths from (family, style) pairs. Within one run
// every planned path is unique: a second face mapping to an already
// planned path gets a numeric disambiguator. Namer is safe for use from
// concurrent pipeline workers.
type Namer struct {
	mu               sync.Mutex
	planned          map[string]int
	OrganizeByFamily bool // per-family subdirectory prefix
	KeepSourceStem   bool // keep the original filename stem (hash names)
}

// NewNamer returns an empty namer for one pipeline run.
func NewNamer(organizeByFamily, keepSourceStem bool) *Namer {
	return &Namer{
		planned:          make(map[string]int),
		OrganizeByFamily: organizeByFamily,
		KeepSourceStem:   keepSourceStem,
	}
}

// Name computes the output path for a face. The returned path is
// relative to the output root and unique within this run.
func (n *Namer) Name(family string, d style.Descriptor, srcStem, ext string) string {
	base := SanitizeFamily(family)
	var file string
	if n.KeepSourceStem && srcStem != "" {
		file = srcStem + ext
	} else {
		file = base + "-" + PostScriptStyle(d) + ext
	}
	if n.OrganizeByFamily {
		file = filepath.Join(base, file)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	count := n.planned[file]
	n.planned[file] = count + 1
	if count == 0 {
		return file
	}
	// planned collision: deterministic numeric suffix
	e := filepath.Ext(file)
	disambiguated := fmt.Sprintf("%s-%d%s", file[:len(file)-len(e)], count+1, e)
	tracer().Infof("output name collision, using %s", disambiguated)
	n.planned[disambiguated]++
	return disambiguated
}

// Resolve combines a planned relative path with the output root and the
// run's write policy into an output descriptor.
func Resolve(outDir, relPath string, overwrite, dryRun bool) Output {
	return Output{
		Path:      filepath.Join(outDir, relPath),
		Overwrite: overwrite,
		DryRun:    dryRun,
	}
}

// Exists tells whether the output destination is already occupied on
// disk. Occupied destinations without the overwrite flag are skipped by
// the pipeline, they are not errors.
func (o Output) Exists() bool {
	_, err := os.Stat(o.Path)
	return err == nil
}
