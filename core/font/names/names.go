package names

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"seehuhn.de/go/sfnt/os2"

	"github.com/typecase/fontpack/core"
	"github.com/typecase/fontpack/core/font"
	"github.com/typecase/fontpack/core/font/container"
	"github.com/typecase/fontpack/core/font/style"
)

// OpenType name IDs written by a rename plan.
const (
	IDFamily        uint16 = 1
	IDSubfamily     uint16 = 2
	IDUniqueID      uint16 = 3
	IDFullName      uint16 = 4
	IDPostScript    uint16 = 6
	IDTypoFamily    uint16 = 16
	IDTypoSubfamily uint16 = 17
)

// Entry is one planned name-table value. Entries are written for the
// Windows (3,1,0x409) and Macintosh (1,0,0) platforms alike.
type Entry struct {
	ID    uint16
	Value string
}

// Plan is a complete renaming of one face to a target family. It is
// immutable after construction; Apply may be called any number of times
// with the same observable result.
type Plan struct {
	Family  string
	Style   style.Descriptor
	Entries []Entry
}

// Fingerprint returns a short content hash of the source data. It feeds
// the unique identifier entry, so re-running the pipeline on unchanged
// input reproduces identical metadata while changed input gets a fresh
// identifier.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// BuildPlan computes the rename plan for a target family and style.
// The family must be non-empty; fingerprint should come from Fingerprint
// over the face's source bytes.
func BuildPlan(family string, d style.Descriptor, fingerprint string) (Plan, error) {
	if strings.TrimSpace(family) == "" {
		return Plan{}, core.Error(core.EINVALID, "target family name is empty")
	}
	human := d.StyleName()
	psFamily := SanitizeFamily(family)
	psName := psFamily + "-" + PostScriptStyle(d)
	full := strings.TrimSpace(family + " " + human)
	unique := fmt.Sprintf("%s;%s", psName, fingerprint)

	plan := Plan{
		Family: family,
		Style:  d,
		Entries: []Entry{
			{IDFamily, family},
			{IDSubfamily, human},
			{IDUniqueID, unique},
			{IDFullName, full},
			{IDPostScript, psName},
			{IDTypoFamily, family},
			{IDTypoSubfamily, human},
		},
	}
	return plan, nil
}

// Apply rewrites a face's metadata in place according to the plan: the
// plan's entries are merged into the binary's name table (records for
// other IDs survive) and the OS/2 weight class and style bits are
// derived from the plan's descriptor, never set independently. The
// face's Binary is patched directly so tables the plan does not touch
// come through byte for byte.
func Apply(plan Plan, f *font.Face) error {
	f.Font.FamilyName = plan.Family
	f.Font.Weight = os2.Weight(plan.Style.Weight)
	if plan.Style.Width != 0 {
		f.Font.Width = os2.Width(plan.Style.Width)
	}
	f.Font.IsItalic = plan.Style.Italic
	f.Font.IsOblique = false
	f.Font.IsBold = plan.Style.Weight >= style.WeightBold
	f.Font.IsRegular = plan.Style.Weight == style.WeightRegular && !plan.Style.Italic

	entries := make([]container.NameEntry, len(plan.Entries))
	for i, e := range plan.Entries {
		entries[i] = container.NameEntry{ID: e.ID, Value: e.Value}
	}
	data, err := container.PatchNames(f.Binary, entries)
	if err != nil {
		return core.WrapError(err, core.EWRITE, "cannot patch name table of %s", f.Fontname)
	}
	data, err = container.PatchStyle(data, plan.Style.Weight, plan.Style.Width,
		plan.Style.Italic, f.Font.IsBold, f.Font.IsRegular)
	if err != nil {
		return core.WrapError(err, core.EWRITE, "cannot patch style bits of %s", f.Fontname)
	}
	f.Binary = data
	f.Fontname = plan.Family + " " + plan.Style.StyleName()
	tracer().Debugf("applied rename plan %s to face", plan.Family)
	return nil
}

// SanitizeFamily strips a family name down to the characters allowed in
// PostScript names and filenames: letters, digits and hyphens, with all
// whitespace removed.
func SanitizeFamily(family string) string {
	var b strings.Builder
	for _, r := range family {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	s := b.String()
	if len(s) > 63 {
		s = s[:63]
	}
	if s == "" {
		s = "Unknown"
	}
	return s
}

// PostScriptStyle renders a descriptor as a PostScript style suffix:
// "BoldItalic", "Italic", "CondensedLight", or "Regular".
func PostScriptStyle(d style.Descriptor) string {
	return strings.ReplaceAll(d.StyleName(), " ", "")
}
