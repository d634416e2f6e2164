package style

import (
	"strings"

	"github.com/derekparker/trie"
	"github.com/typecase/fontpack/core/font"
	xfont "golang.org/x/image/font"
)

// Weight and width classes, as used by the OS/2 table.
const (
	WeightThin       = 100
	WeightExtraLight = 200
	WeightLight      = 300
	WeightRegular    = 400
	WeightMedium     = 500
	WeightSemiBold   = 600
	WeightBold       = 700
	WeightExtraBold  = 800
	WeightBlack      = 900

	WidthUltraCondensed = 1
	WidthCondensed      = 3
	WidthNormal         = 5
	WidthExpanded       = 7
	WidthUltraExpanded  = 9
)

// Descriptor is a normalized style tuple. Equality is structural: two
// faces with the same descriptor are the same style of their family.
type Descriptor struct {
	Weight int // 100…900
	Italic bool
	Width  int // 1…9
}

// Default is the descriptor assigned to faces with empty or entirely
// unrecognized style metadata: Regular, upright, normal width.
func Default() Descriptor {
	return Descriptor{Weight: WeightRegular, Width: WidthNormal}
}

// weightBins maps weight classes to style names, ordered.
var weightBins = []struct {
	class int
	name  string
}{
	{WeightThin, "Thin"},
	{WeightExtraLight, "ExtraLight"},
	{WeightLight, "Light"},
	{WeightRegular, "Regular"},
	{WeightMedium, "Medium"},
	{WeightSemiBold, "SemiBold"},
	{WeightBold, "Bold"},
	{WeightExtraBold, "ExtraBold"},
	{WeightBlack, "Black"},
}

// WeightName maps a numeric weight class to its conventional style name.
// Classes between bins snap to the nearest bin, out-of-range classes
// clamp to Thin and Black.
func WeightName(weight int) string {
	if weight <= WeightThin {
		return "Thin"
	}
	if weight >= WeightBlack {
		return "Black"
	}
	closest := weightBins[0]
	for _, bin := range weightBins[1:] {
		if abs(bin.class-weight) < abs(closest.class-weight) {
			closest = bin
		}
	}
	return closest.name
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// WidthName maps a width class to its conventional name, "" for normal.
func WidthName(width int) string {
	switch {
	case width == 0 || width == WidthNormal:
		return ""
	case width <= 2:
		return "UltraCondensed"
	case width <= 4:
		return "Condensed"
	case width <= 6:
		return "SemiExpanded"
	case width <= 8:
		return "Expanded"
	}
	return "UltraExpanded"
}

// StyleName renders a descriptor as a human-readable subfamily string,
// e.g. "Bold Italic", "Condensed Light" or plain "Regular".
func (d Descriptor) StyleName() string {
	var parts []string
	if w := WidthName(d.Width); w != "" {
		parts = append(parts, w)
	}
	wname := WeightName(d.Weight)
	if wname != "Regular" {
		parts = append(parts, wname)
	}
	if d.Italic {
		parts = append(parts, "Italic")
	}
	if len(parts) == 0 {
		return "Regular"
	}
	return strings.Join(parts, " ")
}

// XStyle converts the italic flag to the x/image/font style vocabulary.
func (d Descriptor) XStyle() xfont.Style {
	if d.Italic {
		return xfont.StyleItalic
	}
	return xfont.StyleNormal
}

// XWeight converts the weight class to the x/image/font weight scale
// (which is zero-based at Normal).
func (d Descriptor) XWeight() xfont.Weight {
	return xfont.Weight(d.Weight/100 - 4)
}

// Lexicon is an immutable token table for style classification. It is a
// value type: configure it once and pass it into Classify explicitly, so
// lookups are deterministic and safe under concurrent use.
type Lexicon struct {
	tokens *trie.Trie
}

type tokenClass int

const (
	weightToken tokenClass = iota
	italicToken
	widthToken
)

type tokenInfo struct {
	class tokenClass
	value int // weight or width class, unused for italic
}

// NewLexicon builds a lexicon from token tables. Keys are matched
// case-insensitively against style tokens.
func NewLexicon(weights map[string]int, italics []string, widths map[string]int) Lexicon {
	t := trie.New()
	for tok, w := range weights {
		t.Add(strings.ToLower(tok), tokenInfo{class: weightToken, value: w})
	}
	for _, tok := range italics {
		t.Add(strings.ToLower(tok), tokenInfo{class: italicToken})
	}
	for tok, w := range widths {
		t.Add(strings.ToLower(tok), tokenInfo{class: widthToken, value: w})
	}
	return Lexicon{tokens: t}
}

// DefaultLexicon covers the conventional OpenType style vocabulary.
func DefaultLexicon() Lexicon {
	return NewLexicon(
		map[string]int{
			"thin":       WeightThin,
			"hairline":   WeightThin,
			"extralight": WeightExtraLight,
			"ultralight": WeightExtraLight,
			"light":      WeightLight,
			"regular":    WeightRegular,
			"normal":     WeightRegular,
			"book":       WeightRegular,
			"medium":     WeightMedium,
			"semibold":   WeightSemiBold,
			"demibold":   WeightSemiBold,
			"bold":       WeightBold,
			"extrabold":  WeightExtraBold,
			"ultrabold":  WeightExtraBold,
			"black":      WeightBlack,
			"heavy":      WeightBlack,
		},
		[]string{"italic", "oblique", "slanted"},
		map[string]int{
			"ultracondensed": WidthUltraCondensed,
			"condensed":      WidthCondensed,
			"narrow":         WidthCondensed,
			"semiexpanded":   6,
			"expanded":       WidthExpanded,
			"extended":       WidthExpanded,
			"ultraexpanded":  WidthUltraExpanded,
		},
	)
}

// Classify derives a descriptor from a metadata record. The numeric OS/2
// classes seed the result, then style tokens from the subfamily string
// (or, if that is empty, the source filename stem) override them. If
// several weight tokens occur, the last one wins. Unmatched tokens are
// ignored; Classify never fails.
func (lx Lexicon) Classify(md font.Metadata) Descriptor {
	d := Default()
	if md.Weight != 0 {
		d.Weight = snapWeight(md.Weight)
	}
	if md.Width != 0 {
		d.Width = md.Width
	}
	d.Italic = md.Italic

	styleString := md.Subfamily
	if styleString == "" {
		styleString = stem(md.SourcePath)
	}
	for _, tok := range Tokenize(styleString) {
		node, ok := lx.tokens.Find(tok)
		if !ok {
			continue
		}
		info := node.Meta().(tokenInfo)
		switch info.class {
		case weightToken:
			d.Weight = info.value
		case italicToken:
			d.Italic = true
		case widthToken:
			d.Width = info.value
		}
	}
	tracer().Debugf("classified %q / %q as %v", md.Family, styleString, d)
	return d
}

// snapWeight clamps and snaps a raw usWeightClass to the named bins.
func snapWeight(weight int) int {
	if weight <= WeightThin {
		return WeightThin
	}
	if weight >= WeightBlack {
		return WeightBlack
	}
	closest := weightBins[0].class
	for _, bin := range weightBins[1:] {
		if abs(bin.class-weight) < abs(closest-weight) {
			closest = bin.class
		}
	}
	return closest
}

// Tokenize splits a style string on whitespace and the common filename
// separators, lowercasing every token.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		switch r {
		case ' ', '\t', '-', '_', '.', ',':
			return true
		}
		return false
	})
}

func stem(path string) string {
	s := path
	if i := strings.LastIndexAny(s, "/\\"); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndexByte(s, '.'); i > 0 {
		s = s[:i]
	}
	return s
}
