package container

import "encoding/binary"

// OS/2 fsSelection bits.
const (
	selItalic  = 0x0001
	selBold    = 0x0020
	selRegular = 0x0040
	selOblique = 0x0200
)

// head macStyle bits.
const (
	macStyleBold   = 0x0001
	macStyleItalic = 0x0002
)

// PatchStyle rewrites the OS/2 weight and width classes together with
// the style bits (OS/2 fsSelection and head macStyle) of plain sfnt
// data. A zero width leaves the width class alone. Fonts without an
// OS/2 table keep only their head bits patched.
func PatchStyle(b []byte, weight, width int, italic, bold, regular bool) ([]byte, error) {
	st, err := parseTables(b)
	if err != nil {
		return nil, err
	}
	if os2, ok := st.tables["OS/2"]; ok && len(os2) >= 64 {
		t := append([]byte(nil), os2...)
		binary.BigEndian.PutUint16(t[4:], uint16(weight))
		if width != 0 {
			binary.BigEndian.PutUint16(t[6:], uint16(width))
		}
		sel := binary.BigEndian.Uint16(t[62:])
		sel &^= selItalic | selBold | selRegular | selOblique
		if italic {
			sel |= selItalic
		}
		if bold {
			sel |= selBold
		}
		if regular {
			sel |= selRegular
		}
		binary.BigEndian.PutUint16(t[62:], sel)
		st.tables["OS/2"] = t
	}
	if head, ok := st.tables["head"]; ok && len(head) >= 46 {
		h := append([]byte(nil), head...)
		var mac uint16
		if bold {
			mac |= macStyleBold
		}
		if italic {
			mac |= macStyleItalic
		}
		binary.BigEndian.PutUint16(h[44:], mac)
		st.tables["head"] = h
	}
	return st.encode(), nil
}
