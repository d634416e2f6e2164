package container

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
)

func TestPackCollection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontpack.container")
	defer teardown()
	//
	shared := []byte{0, 0, 80, 0, 0, 3}
	regular := testFont(t, map[string][]byte{
		"maxp": shared,
		"name": {0, 0, 0, 0, 0, 6},
	})
	bold := testFont(t, map[string][]byte{
		"maxp": shared,
		"name": {0, 0, 0, 0, 0, 7},
	})
	var buf bytes.Buffer
	n, err := Pack(&buf, [][]byte{regular, bold})
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)
	//
	b := buf.Bytes()
	require.Equal(t, FlavorCollection, Sniff(b))
	require.Equal(t, uint32(2), binary.BigEndian.Uint32(b[8:]), "numFonts")
	//
	// both member directories must be parseable at their offsets
	off1 := binary.BigEndian.Uint32(b[12:])
	off2 := binary.BigEndian.Uint32(b[16:])
	require.NotEqual(t, off1, off2)
	for _, off := range []uint32{off1, off2} {
		numTables := int(binary.BigEndian.Uint16(b[off+4:]))
		require.Equal(t, 3, numTables)
	}
	//
	// the identical maxp table is stored once and shared
	maxpOffsets := map[uint32]bool{}
	for _, off := range []uint32{off1, off2} {
		numTables := int(binary.BigEndian.Uint16(b[off+4:]))
		for i := 0; i < numTables; i++ {
			rec := b[int(off)+12+16*i:]
			if string(rec[:4]) == "maxp" {
				maxpOffsets[binary.BigEndian.Uint32(rec[8:])] = true
			}
		}
	}
	require.Len(t, maxpOffsets, 1, "shared tables must be deduplicated")
}

func TestPackRejectsEmpty(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontpack.container")
	defer teardown()
	//
	var buf bytes.Buffer
	_, err := Pack(&buf, nil)
	require.Error(t, err)
}

func TestPackRejectsGarbageMember(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontpack.container")
	defer teardown()
	//
	var buf bytes.Buffer
	_, err := Pack(&buf, [][]byte{[]byte("not a font")})
	require.Error(t, err)
}
