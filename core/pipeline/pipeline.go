package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/typecase/fontpack/core"
	"github.com/typecase/fontpack/core/font"
	"github.com/typecase/fontpack/core/font/container"
	"github.com/typecase/fontpack/core/font/names"
	"github.com/typecase/fontpack/core/font/style"
	"github.com/typecase/fontpack/core/locate/resources"
	"golang.org/x/text/language"
)

// State names the last phase a source file completed.
type State int

const (
	Discovered State = iota
	Decoded
	Classified
	Renamed
	Written
	Skipped
	Failed
)

func (s State) String() string {
	switch s {
	case Discovered:
		return "discovered"
	case Decoded:
		return "decoded"
	case Classified:
		return "classified"
	case Renamed:
		return "renamed"
	case Written:
		return "written"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Result records what happened to one source file.
type Result struct {
	Source string
	Output string
	Family string
	Style  style.Descriptor
	State  State
	Err    error

	data   []byte // final sfnt bytes, kept for the bundle phase
	isCFF  bool
	ext    string // output extension, fixed at decode time
	outRel string // manifest-pinned relative output path
}

// Report summarizes a run: one Result per source, ordered by source
// path, plus the collections the bundle phase produced.
type Report struct {
	Results     []Result
	Collections []string
	Written     int
	Skipped     int
	Failed      int
}

// ExitCode maps a report onto the process exit status: 0 when every
// file ended in Written or Skipped, 2 when any file failed.
func (r *Report) ExitCode() int {
	if r.Failed > 0 {
		return 2
	}
	return 0
}

// Options configure a pipeline run.
type Options struct {
	OutDir           string
	Family           string // target family name, empty keeps the font's own
	ForceFamily      bool   // apply Family even when the font names one itself
	RewriteNames     bool   // rebuild the name table from the classification
	OrganizeByFamily bool   // per-family output sub-directories
	CreateCollection bool   // run the bundle phase after all writes
	CollectionMin    int    // least faces per family to bundle, default 1
	IncludeOTF       bool   // admit CFF faces into collections
	UseHashNames     bool   // keep the source file stem as output name
	Overwrite        bool
	DryRun           bool
	Workers          int // pool size, default 4
	Manifest         *resources.Manifest
	Lexicon          style.Lexicon
}

const defaultWorkers = 4

// Run processes the given source files and returns the joined report.
// Decoding and classification run concurrently; output names are then
// assigned and written in source order, so collision suffixes never
// depend on worker scheduling and a dry run plans the same paths as a
// real one. Only argument errors make Run fail up front; per-file
// errors are recorded in the report and never abort the batch. When the
// context is cancelled, files not yet written are reported as skipped
// and Run returns the context's error alongside the partial report.
func Run(ctx context.Context, sources []string, opts Options) (*Report, error) {
	if len(sources) == 0 {
		return nil, core.Error(core.EINVALID, "no font sources given")
	}
	if opts.OutDir == "" {
		return nil, core.Error(core.EINVALID, "no output directory given")
	}
	if opts.Lexicon == (style.Lexicon{}) {
		opts.Lexicon = style.DefaultLexicon()
	}
	if opts.CollectionMin <= 0 {
		opts.CollectionMin = 1
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(sources) {
		workers = len(sources)
	}
	tracer().Infof("processing %d font files with %d workers", len(sources), workers)

	jobs := make(chan string)
	results := make(chan Result)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for src := range jobs {
				if ctx.Err() != nil {
					results <- Result{Source: src, State: Skipped, Err: ctx.Err()}
					continue
				}
				results <- prepare(src, opts)
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, src := range sources {
			jobs <- src
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	report := &Report{}
	for res := range results {
		report.Results = append(report.Results, res)
	}
	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].Source < report.Results[j].Source
	})

	namer := names.NewNamer(opts.OrganizeByFamily, opts.UseHashNames)
	for i := range report.Results {
		res := &report.Results[i]
		if res.State == Failed || res.State == Skipped {
			continue
		}
		if err := ctx.Err(); err != nil {
			res.State = Skipped
			res.Err = err
			continue
		}
		*res = commit(*res, opts, namer)
	}
	for _, res := range report.Results {
		switch res.State {
		case Written:
			report.Written++
		case Skipped:
			report.Skipped++
		case Failed:
			report.Failed++
			tracer().Errorf("%s: %v", res.Source, res.Err)
		}
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	if opts.CreateCollection {
		bundle(report, opts)
	}
	return report, nil
}

// decodeFace and applyPlan are the two steps that need real font
// binaries, as variables so tests can substitute synthetic faces.
var decodeFace = func(raw []byte) (*font.Face, error) {
	sfntData, err := container.Decode(raw)
	if err != nil {
		return nil, err
	}
	return font.ParseFace(sfntData)
}

var applyPlan = names.Apply

// prepare runs the per-file phases that are independent of other files
// and safe to run concurrently: decode, classify and rename. It never
// panics and never returns a fatal condition.
func prepare(src string, opts Options) Result {
	res := Result{Source: src, State: Discovered}
	raw, err := os.ReadFile(src)
	if err != nil {
		return res.fail(core.WrapError(err, core.EMISSING, "cannot read %s", src))
	}
	face, err := decodeFace(raw)
	if err != nil {
		return res.fail(err)
	}
	res.State = Decoded

	md := font.ReadMetadata(face, language.AmericanEnglish)
	md.SourcePath = src
	var output string
	if entry, ok := opts.Manifest.Lookup(src); ok {
		if entry.Family != "" {
			md.Family = entry.Family
		}
		if entry.Weight != 0 {
			md.Weight = entry.Weight
		}
		if entry.Style != "" {
			md.Subfamily = entry.Style
		}
		output = entry.Output
	}
	res.Style = opts.Lexicon.Classify(md)
	res.State = Classified

	family := md.Family
	if opts.Family != "" && (opts.ForceFamily || family == "") {
		family = opts.Family
	}
	res.Family = family

	if opts.RewriteNames {
		plan, err := names.BuildPlan(family, res.Style, names.Fingerprint(face.Binary))
		if err != nil {
			return res.fail(err)
		}
		if err := applyPlan(plan, face); err != nil {
			return res.fail(err)
		}
		res.State = Renamed
	}

	res.data = face.Binary
	res.isCFF = face.IsCFF()
	res.ext = face.Ext()
	res.outRel = output
	return res
}

// commit assigns the output path and writes the face to disk. Called
// sequentially in source order after all prepares are done.
func commit(res Result, opts Options, namer *names.Namer) Result {
	rel := res.outRel
	if rel == "" {
		rel = namer.Name(res.Family, res.Style, sourceStem(res.Source), res.ext)
	}
	out := names.Resolve(opts.OutDir, rel, opts.Overwrite, opts.DryRun)
	res.Output = out.Path
	if out.Exists() && !out.Overwrite {
		res.State = Skipped
		return res
	}
	if opts.DryRun {
		res.State = Written
		return res
	}
	if err := writeAtomic(out.Path, res.data); err != nil {
		return res.fail(core.WrapError(err, core.EWRITE, "cannot write %s", out.Path))
	}
	res.State = Written
	return res
}

func (res Result) fail(err error) Result {
	res.State = Failed
	res.Err = err
	return res
}

// writeAtomic writes to a temp file in the target directory and renames
// it into place, so no half-written font ever appears under its final
// name.
func writeAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".fontpack-*")
	if err != nil {
		return err
	}
	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), target)
}

func sourceStem(src string) string {
	base := filepath.Base(src)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
