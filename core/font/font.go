package font

import (
	"bytes"
	"os"
	"path/filepath"

	"seehuhn.de/go/sfnt"
	"seehuhn.de/go/sfnt/cff"
	"seehuhn.de/go/sfnt/glyf"
)

// Face is one decoded, static font face. Binary always holds plain
// (unflavored) sfnt data; compressed web containers are decompressed
// before a Face is constructed, see package core/font/container.
type Face struct {
	Fontname string     // short name for tracing and reports
	Filepath string     // origin, "" for in-memory faces
	Binary   []byte     // raw sfnt data
	Font     *sfnt.Font // parsed font object
}

// ParseFace parses plain sfnt data into a Face.
func ParseFace(fbytes []byte) (f *Face, err error) {
	f = &Face{Binary: fbytes}
	f.Font, err = sfnt.Read(bytes.NewReader(fbytes))
	if err != nil {
		return nil, err
	}
	f.Fontname = f.Font.FullName()
	if f.Fontname == "" {
		f.Fontname = f.Font.FamilyName
	}
	return
}

// LoadFace reads a TTF/OTF file from disk.
func LoadFace(fontfile string) (*Face, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	f, err := ParseFace(bytez)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	if f.Fontname == "" {
		f.Fontname = filepath.Base(fontfile)
	}
	tracer().Debugf("loaded sfnt face = %s", f.Fontname)
	return f, nil
}

// IsCFF tells whether the face carries CFF/CFF2 outlines. Faces with CFF
// outlines are written with an .otf extension, all others with .ttf.
func (f *Face) IsCFF() bool {
	switch f.Font.Outlines.(type) {
	case *cff.Outlines:
		return true
	case *glyf.Outlines:
		return false
	}
	return false
}

// Ext returns the canonical file extension for the face's outline format.
func (f *Face) Ext() string {
	if f.IsCFF() {
		return ".otf"
	}
	return ".ttf"
}
