package container

import (
	tdfont "github.com/tdewolff/font"

	"github.com/typecase/fontpack/core"
)

// Container format magics.
const (
	magicTrueType   = 0x00010000
	magicOpenType   = 0x4f54544f // "OTTO"
	magicCollection = 0x74746366 // "ttcf"
	magicWOFF       = 0x774f4646 // "wOFF"
	magicWOFF2      = 0x774f4632 // "wOF2"
)

// Flavor identifies the container format of raw font data.
type Flavor int

const (
	FlavorUnknown Flavor = iota
	FlavorSFNT           // plain TTF/OTF
	FlavorCollection
	FlavorWOFF
	FlavorWOFF2
)

// Sniff inspects the magic number of raw font data.
func Sniff(b []byte) Flavor {
	if len(b) < 4 {
		return FlavorUnknown
	}
	magic := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	switch magic {
	case magicTrueType, magicOpenType:
		return FlavorSFNT
	case magicCollection:
		return FlavorCollection
	case magicWOFF:
		return FlavorWOFF
	case magicWOFF2:
		return FlavorWOFF2
	}
	return FlavorUnknown
}

// Decode turns raw container data (WOFF, WOFF2 or already plain
// TTF/OTF) into plain sfnt bytes. Corrupt or unsupported data yields an
// EDECODE error; the batch treats those as per-file failures.
func Decode(b []byte) ([]byte, error) {
	if Sniff(b) == FlavorUnknown {
		return nil, core.Error(core.EDECODE, "not a recognized font container")
	}
	sfntBytes, err := tdfont.ToSFNT(b)
	if err != nil {
		return nil, core.WrapError(err, core.EDECODE, "container decode failed")
	}
	tracer().Debugf("decoded container, %d bytes of sfnt data", len(sfntBytes))
	return sfntBytes, nil
}
