package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"github.com/typecase/fontpack/core"
	"github.com/typecase/fontpack/core/locate/resources"
	"github.com/typecase/fontpack/core/pipeline"
)

// tracer traces with key 'fontpack.cli'
func tracer() tracing.Trace {
	return tracing.Select("fontpack.cli")
}

var traceKeys = []string{
	"fontpack.cli",
	"fontpack.font",
	"fontpack.style",
	"fontpack.names",
	"fontpack.container",
	"fontpack.resources",
	"fontpack.pipeline",
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
		"app-key":         "fontpack",
	}
	for _, key := range traceKeys {
		conf["trace."+key] = "Error"
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		return 1
	}
	tracing.SetTraceSelector(trace2go.Selector())
	gconf.Initialize(conf) // cache paths are derived from 'app-key'

	if len(args) == 0 {
		usage()
		return 1
	}
	cmd, args := args[0], args[1:]
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cmd {
	case "convert":
		return convertCmd(ctx, args)
	case "normalize":
		return normalizeCmd(ctx, args)
	case "organize":
		return organizeCmd(ctx, args)
	case "bundle":
		return bundleCmd(ctx, args)
	case "help", "-h", "--help":
		usage()
		return 0
	}
	pterm.Error.Printfln("unknown command: %s", cmd)
	usage()
	return 1
}

func usage() {
	pterm.Info.Println("fontpack turns web fonts into installable font files")
	pterm.Println(`
Usage: fontpack <command> [flags]

Commands:
  convert     decode WOFF2 files to TTF/OTF, optionally renaming them
  normalize   rewrite family and style names of font files
  organize    sort font files into per-family directories
  bundle      pack font files into a TrueType Collection

Run 'fontpack <command> -h' for command flags.`)
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// commonFlags are shared by every subcommand.
type commonFlags struct {
	src       string
	out       string
	dryRun    bool
	overwrite bool
	trace     string
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	cf := &commonFlags{}
	fs.StringVar(&cf.src, "src", "", "Source font file or directory")
	fs.StringVar(&cf.out, "out", "", "Output directory")
	fs.BoolVar(&cf.dryRun, "dry-run", false, "Report planned actions without writing")
	fs.BoolVar(&cf.overwrite, "overwrite", false, "Overwrite existing output files")
	fs.StringVar(&cf.trace, "trace", "Error", "Trace level [Debug|Info|Error]")
	return cf
}

func (cf *commonFlags) setup() {
	level := tracing.LevelError
	switch cf.trace {
	case "Debug", "debug":
		level = tracing.LevelDebug
	case "Info", "info":
		level = tracing.LevelInfo
	}
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(level)
	}
}

// discoverSources turns the --src argument into a list of font files.
func discoverSources(cf *commonFlags) ([]string, bool) {
	if cf.src == "" {
		pterm.Error.Println("no source given, use --src")
		return nil, false
	}
	sources, err := resources.Discover(cf.src)
	if err != nil {
		pterm.Error.Println(core.UserMessage(err))
		return nil, false
	}
	if len(sources) == 0 {
		pterm.Error.Printfln("no font files found in %s", cf.src)
		return nil, false
	}
	return sources, true
}

func convertCmd(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	cf := addCommonFlags(fs)
	family := fs.String("family", "", "Family name for fonts that do not carry one")
	forceFamily := fs.String("force-family", "", "Family name applied to every font, overriding its own")
	organize := fs.Bool("organize-by-family", false, "Write per-family sub-directories")
	collection := fs.Bool("create-collection", false, "Pack converted faces into per-family collections")
	hashNames := fs.Bool("use-hash-names", false, "Keep the source file stem as output name")
	workers := fs.Int("workers", 0, "Concurrent workers (default 4)")
	manifestPath := fs.String("manifest", "", "JSON manifest of font sources and overrides")
	fs.Parse(args)
	cf.setup()

	if *family != "" && *forceFamily != "" {
		pterm.Error.Println("--family and --force-family are mutually exclusive")
		return 1
	}
	target := *family
	if *forceFamily != "" {
		target = *forceFamily
	}
	opts := pipeline.Options{
		OutDir:           cf.out,
		Family:           target,
		ForceFamily:      *forceFamily != "",
		RewriteNames:     target != "",
		OrganizeByFamily: *organize,
		CreateCollection: *collection,
		UseHashNames:     *hashNames,
		Overwrite:        cf.overwrite,
		DryRun:           cf.dryRun,
		Workers:          *workers,
	}
	var sources []string
	var unresolved int
	if *manifestPath != "" {
		m, err := resources.LoadManifest(*manifestPath)
		if err != nil {
			pterm.Error.Println(core.UserMessage(err))
			return 1
		}
		opts.Manifest = m
		opts.RewriteNames = true
		var resolved []string
		resolved, unresolved = resolveManifestSources(ctx, m)
		sources = append(sources, resolved...)
	}
	if cf.src != "" {
		discovered, ok := discoverSources(cf)
		if !ok {
			return 1
		}
		sources = append(sources, discovered...)
	}
	if len(sources) == 0 {
		pterm.Error.Println("no sources: use --src or --manifest")
		return 1
	}
	code := finish(pipeline.Run(ctx, sources, opts))
	if unresolved > 0 {
		pterm.Error.Printfln("%d manifest sources could not be resolved", unresolved)
		if code == 0 {
			code = 2
		}
	}
	return code
}

func normalizeCmd(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	cf := addCommonFlags(fs)
	family := fs.String("family", "", "Target family name (required)")
	workers := fs.Int("workers", 0, "Concurrent workers (default 4)")
	fs.Parse(args)
	cf.setup()

	if *family == "" {
		pterm.Error.Println("normalize needs a target family, use --family")
		return 1
	}
	sources, ok := discoverSources(cf)
	if !ok {
		return 1
	}
	opts := pipeline.Options{
		OutDir:       cf.out,
		Family:       *family,
		ForceFamily:  true,
		RewriteNames: true,
		Overwrite:    cf.overwrite,
		DryRun:       cf.dryRun,
		Workers:      *workers,
	}
	return finish(pipeline.Run(ctx, sources, opts))
}

func organizeCmd(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("organize", flag.ExitOnError)
	cf := addCommonFlags(fs)
	collection := fs.Bool("create-collection", false, "Pack each family into a collection as well")
	fs.Parse(args)
	cf.setup()

	sources, ok := discoverSources(cf)
	if !ok {
		return 1
	}
	opts := pipeline.Options{
		OutDir:           cf.out,
		OrganizeByFamily: true,
		CreateCollection: *collection,
		CollectionMin:    2,
		Overwrite:        cf.overwrite,
		DryRun:           cf.dryRun,
	}
	return finish(pipeline.Run(ctx, sources, opts))
}

func bundleCmd(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("bundle", flag.ExitOnError)
	cf := addCommonFlags(fs)
	name := fs.String("name", "", "Collection name (required)")
	includeOTF := fs.Bool("include-otf", false, "Admit CFF faces into the collection")
	fs.Parse(args)
	cf.setup()

	if *name == "" {
		pterm.Error.Println("bundle needs a collection name, use --name")
		return 1
	}
	sources, ok := discoverSources(cf)
	if !ok {
		return 1
	}
	opts := pipeline.Options{
		OutDir:     cf.out,
		IncludeOTF: *includeOTF,
		Overwrite:  cf.overwrite,
		DryRun:     cf.dryRun,
	}
	return finish(pipeline.Bundle(ctx, sources, *name, opts))
}

// resolveManifestSources fetches every manifest entry to a local path.
func resolveManifestSources(ctx context.Context, m *resources.Manifest) (paths []string, failed int) {
	promises := make([]resources.FilePromise, len(m.Fonts))
	for i, e := range m.Fonts {
		promises[i] = resources.ResolveFile(ctx, e.Source)
	}
	for i, p := range promises {
		local, err := p.File()
		if err != nil {
			pterm.Error.Printfln("%s: %s", m.Fonts[i].Source, core.UserMessage(err))
			failed++
			continue
		}
		paths = append(paths, local)
	}
	return paths, failed
}

// finish prints the report and maps it to the exit status.
func finish(report *pipeline.Report, err error) int {
	if report == nil {
		pterm.Error.Println(core.UserMessage(err))
		return 1
	}
	for _, res := range report.Results {
		switch res.State {
		case pipeline.Written:
			pterm.Success.Printfln("%s -> %s", res.Source, res.Output)
		case pipeline.Skipped:
			pterm.Warning.Printfln("%s skipped", res.Source)
		case pipeline.Failed:
			pterm.Error.Printfln("%s: %s", res.Source, core.UserMessage(res.Err))
		}
	}
	for _, coll := range report.Collections {
		pterm.Success.Printfln("collection %s", coll)
	}
	pterm.Info.Printfln("%d written, %d skipped, %d failed",
		report.Written, report.Skipped, report.Failed)
	if err != nil {
		pterm.Error.Println(core.UserMessage(err))
		return 1
	}
	return report.ExitCode()
}
