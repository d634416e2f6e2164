package resources

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/typecase/fontpack/core"
)

// NotFound returns an application error for a missing font source.
func NotFound(res string) error {
	e := fmt.Errorf("resource missing: %v", res)
	return core.WrapError(e, core.EMISSING, "font not found: %s", res)
}

// Font file extensions considered during discovery.
var fontExtensions = map[string]bool{
	".woff2": true,
	".woff":  true,
	".ttf":   true,
	".otf":   true,
	".ttc":   true,
}

// IsFontFile tells if a path carries a font file extension.
func IsFontFile(p string) bool {
	return fontExtensions[strings.ToLower(filepath.Ext(p))]
}

// Discover walks a file or directory argument and collects the font
// files below it, in lexical order. A plain file argument is returned
// as-is, whether or not its extension looks like a font. A directory
// is walked recursively; entries without a font extension are skipped
// silently.
func Discover(arg string) ([]string, error) {
	fi, err := os.Stat(arg)
	if err != nil {
		return nil, NotFound(arg)
	}
	if !fi.IsDir() {
		return []string{arg}, nil
	}
	var found []string
	err = filepath.WalkDir(arg, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if IsFontFile(p) {
			found = append(found, p)
		}
		return nil
	})
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read font directory: %s", arg)
	}
	sort.Strings(found)
	if len(found) == 0 {
		tracer().Infof("no font files in %s", arg)
	}
	return found, nil
}

// --- Async resolving -------------------------------------------------------

type filePlusErr struct {
	path string
	err  error
}

// FilePromise hands out the local path of a resolved font source.
type FilePromise interface {
	File() (string, error)
}

type fileLoader struct {
	await func(ctx context.Context) (string, error)
}

func (loader fileLoader) File() (string, error) {
	return loader.await(context.Background())
}

// ResolveFile resolves a font source to a local file path. Sources are
// tried in order: an existing local path, a remote URL (downloaded
// into the user's cache directory), and finally an installed system
// font matching the name.
func ResolveFile(ctx context.Context, src string) FilePromise {
	ch := make(chan filePlusErr)
	go func(ch chan<- filePlusErr) {
		result := filePlusErr{}
		switch {
		case isLocal(src):
			result.path = src
		case isRemote(src):
			result.path, result.err = fetchRemote(ctx, src)
		default:
			result.path, result.err = findSystemFont(src)
		}
		ch <- result
		close(ch)
	}(ch)
	return fileLoader{
		await: func(ctx context.Context) (string, error) {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case r := <-ch:
				return r.path, r.err
			}
		},
	}
}

func isLocal(src string) bool {
	fi, err := os.Stat(src)
	return err == nil && !fi.IsDir()
}

func isRemote(src string) bool {
	u, err := url.Parse(src)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// fetchRemote downloads a font URL into the user's cache directory,
// skipping the download if a previous run already cached it.
func fetchRemote(ctx context.Context, src string) (string, error) {
	u, _ := url.Parse(src)
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", core.Error(core.EINVALID, "font URL carries no file name: %s", src)
	}
	cachedir, err := CacheDirPath("fonts")
	if err != nil {
		return "", core.WrapError(err, core.EWRITE, "cannot access font cache")
	}
	target := filepath.Join(cachedir, name)
	if _, err := os.Stat(target); err == nil {
		tracer().Debugf("font %s already cached", name)
		return target, nil
	}
	tracer().Infof("downloading %s", src)
	if err := DownloadCachedFile(ctx, target, src); err != nil {
		return "", core.WrapError(err, core.EMISSING, "cannot download font: %s", src)
	}
	return target, nil
}
