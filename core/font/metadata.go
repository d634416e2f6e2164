package font

import (
	"bytes"
	"sort"

	hbtt "github.com/benoitkugler/textlayout/fonts/truetype"
	"golang.org/x/text/language"
)

// Metadata is an immutable snapshot of a face's naming and style
// information, taken once after decoding. All downstream stages (style
// classification, rename planning, file naming) work from this record
// and never re-read the font.
type Metadata struct {
	Family     string   // name ID 1 (or 16, if present)
	Subfamily  string   // name ID 2 (or 17)
	FullName   string   // name ID 4
	PSName     string   // name ID 6
	Weight     int      // OS/2 usWeightClass, 100…900, 0 if absent
	Italic     bool     // OS/2 fsSelection bit 0 / head macStyle
	Width      int      // OS/2 usWidthClass, 1…9, 0 if absent
	Features   []string // OpenType feature tags (GSUB + GPOS), sorted
	SourcePath string
}

// OS/2 fsSelection bits
const (
	fsSelItalic = 0x0001
	fsSelBold   = 0x0020
)

// ReadMetadata extracts a metadata record from a decoded face. The lang
// parameter selects among localized name entries; currently only the
// Windows en-US and Mac Roman entries are consulted and lang is unused.
//
// ReadMetadata never fails: fields which cannot be determined are left
// at their zero value and the classifier applies its lenient defaults.
func ReadMetadata(f *Face, lang language.Tag) Metadata {
	_ = lang
	md := Metadata{SourcePath: f.Filepath}

	ft, err := hbtt.Parse(bytes.NewReader(f.Binary), true)
	if err == nil {
		if summary, err := ft.LoadSummary(); err == nil {
			md.Family = summary.Familly
			md.Subfamily = summary.Style
			md.Italic = summary.IsItalic
		}
		if os2, err := ft.OS2Table(); err == nil && os2 != nil {
			md.Weight = int(os2.USWeightClass)
			md.Width = int(os2.USWidthClass)
			md.Italic = md.Italic || os2.FsSelection&fsSelItalic != 0
			if os2.FsSelection&fsSelBold != 0 && md.Weight == 0 {
				md.Weight = 700
			}
		}
		md.Features = featureTags(ft)
	} else {
		tracer().Debugf("layout parse of %s failed, using sfnt fields: %v",
			f.Fontname, err)
	}

	// The sfnt object is authoritative where the layout parser came up empty.
	if md.Family == "" {
		md.Family = f.Font.FamilyName
	}
	if md.Weight == 0 {
		md.Weight = int(f.Font.Weight)
	}
	if md.Width == 0 {
		md.Width = int(f.Font.Width)
	}
	md.Italic = md.Italic || f.Font.IsItalic || f.Font.IsOblique
	if md.FullName == "" {
		md.FullName = f.Font.FullName()
	}
	if md.PSName == "" {
		md.PSName = f.Font.PostScriptName()
	}
	return md
}

// featureTags collects the feature tags of the GSUB and GPOS tables.
// Callers use these as hints only, e.g. to flag discretionary ligatures
// or stylistic-set variants in reports and filenames.
func featureTags(ft *hbtt.Font) []string {
	seen := make(map[string]bool)
	lt := ft.LayoutTables()
	for _, feat := range lt.GSUB.Features {
		seen[feat.Tag.String()] = true
	}
	for _, feat := range lt.GPOS.Features {
		seen[feat.Tag.String()] = true
	}
	if len(seen) == 0 {
		return nil
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// HasFeature tells whether a feature tag occurs in the metadata record.
func (md Metadata) HasFeature(tag string) bool {
	for _, t := range md.Features {
		if t == tag {
			return true
		}
	}
	return false
}
