package resources

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/flopp/go-findfont"
)

var listSystemFontsTask sync.Once
var systemFontPaths []string

// findSystemFont searches for an installed font whose file name matches
// the given name pattern. The list of installed fonts is read once per
// process; subsequent calls search the cached list.
//
// Matching is lenient: case is ignored and spaces, hyphens and
// underscores are treated as equal, so "Noto Sans" finds
// "NotoSans-Regular.ttf".
func findSystemFont(name string) (string, error) {
	listSystemFontsTask.Do(func() {
		systemFontPaths = findfont.List()
		tracer().Debugf("%d system fonts installed", len(systemFontPaths))
	})
	needle := normalizeFontname(name)
	for _, p := range systemFontPaths {
		stem := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		if normalizeFontname(stem) == needle {
			return p, nil
		}
	}
	// findfont applies its own fuzzy matching as a fallback
	if p, err := findfont.Find(name); err == nil && p != "" {
		return p, nil
	}
	return "", NotFound(name)
}

func normalizeFontname(name string) string {
	name = strings.ToLower(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, name)
}
