package resources

import (
	"encoding/json"
	"os"
	"path"
	"strings"

	"github.com/typecase/fontpack/core"
)

// ManifestEntry carries per-source overrides from a font manifest.
// Fields left empty defer to whatever the font file itself says.
type ManifestEntry struct {
	Source string `json:"source"`           // local path or URL
	Family string `json:"family,omitempty"` // family name override
	Weight int    `json:"weight,omitempty"` // usWeightClass override
	Style  string `json:"style,omitempty"`  // subfamily override, e.g. "Bold Italic"
	Output string `json:"output,omitempty"` // output file name override
}

// Manifest lists font sources together with metadata overrides. It is
// the batch-mode input of a conversion run.
type Manifest struct {
	Fonts []ManifestEntry `json:"fonts"`
}

// LoadManifest reads a JSON font manifest from a file.
func LoadManifest(manifestPath string) (*Manifest, error) {
	f, err := os.Open(manifestPath)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "manifest cannot be opened: %s", manifestPath)
	}
	defer f.Close()
	var m Manifest
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, core.WrapError(err, core.EINVALID, "manifest is not valid JSON: %s", manifestPath)
	}
	for i, e := range m.Fonts {
		if e.Source == "" {
			return nil, core.Error(core.EINVALID, "manifest entry %d has no source", i)
		}
	}
	tracer().Infof("manifest lists %d fonts", len(m.Fonts))
	return &m, nil
}

// Lookup finds the manifest entry for a resolved source, matching on
// the full source string first and the base file name second.
func (m *Manifest) Lookup(src string) (ManifestEntry, bool) {
	if m == nil {
		return ManifestEntry{}, false
	}
	base := path.Base(strings.ReplaceAll(src, "\\", "/"))
	for _, e := range m.Fonts {
		if e.Source == src {
			return e, true
		}
	}
	for _, e := range m.Fonts {
		if path.Base(e.Source) == base {
			return e, true
		}
	}
	return ManifestEntry{}, false
}
