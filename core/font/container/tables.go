package container

import (
	"bytes"
	"encoding/binary"
	"math/bits"
	"sort"

	"github.com/tdewolff/parse/v2"

	"github.com/typecase/fontpack/core"
)

// sfntTables is the decomposed form of one sfnt font: scaler type plus
// the raw table bodies, keyed by tag.
type sfntTables struct {
	scalerType uint32
	tables     map[string][]byte
}

// parseTables splits plain sfnt data into its tables. Collections are
// rejected here; use Unpack for those.
func parseTables(b []byte) (*sfntTables, error) {
	if len(b) < 12 {
		return nil, core.Error(core.EDECODE, "truncated sfnt data")
	}
	r := parse.NewBinaryReader(b)
	scalerType := r.ReadUint32()
	if scalerType == magicCollection {
		return nil, core.Error(core.EDECODE, "sfnt data is a collection")
	}
	numTables := int(r.ReadUint16())
	_ = r.ReadBytes(6) // searchRange, entrySelector, rangeShift
	if len(b) < 12+16*numTables {
		return nil, core.Error(core.EDECODE, "truncated table directory")
	}
	st := &sfntTables{
		scalerType: scalerType,
		tables:     make(map[string][]byte, numTables),
	}
	for i := 0; i < numTables; i++ {
		tag := string(r.ReadBytes(4))
		_ = r.ReadUint32() // checksum, recomputed on write
		offset := r.ReadUint32()
		length := r.ReadUint32()
		if uint64(offset)+uint64(length) > uint64(len(b)) {
			return nil, core.Error(core.EDECODE, "table %q out of bounds", tag)
		}
		st.tables[tag] = b[offset : offset+length]
	}
	return st, nil
}

// https://docs.microsoft.com/en-us/typography/opentype/spec/recom#optimized-table-ordering
var ttTableOrder = map[string]int{
	"head": 95,
	"hhea": 90,
	"maxp": 85,
	"OS/2": 80,
	"hmtx": 75,
	"LTSH": 70,
	"VDMX": 65,
	"hdmx": 60,
	"cmap": 55,
	"fpgm": 50,
	"prep": 45,
	"cvt ": 40,
	"loca": 35,
	"glyf": 30,
	"kern": 25,
	"name": 20,
	"post": 15,
	"gasp": 10,
	"DSIG": 5,
}

// encode re-assembles an sfnt file from its tables, recomputing all
// checksums including the head table's checkSumAdjustment.
func (st *sfntTables) encode() []byte {
	names := make([]string, 0, len(st.tables))
	for name, data := range st.tables {
		if data != nil && len(name) == 4 {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		iPrio := ttTableOrder[names[i]]
		jPrio := ttTableOrder[names[j]]
		if iPrio != jPrio {
			return iPrio > jPrio
		}
		return names[i] < names[j]
	})
	numTables := len(names)

	if head, ok := st.tables["head"]; ok && len(head) >= 12 {
		binary.BigEndian.PutUint32(head[8:12], 0)
	}

	entrySelector := bits.Len(uint(numTables)) - 1
	var hdr bytes.Buffer
	_ = binary.Write(&hdr, binary.BigEndian, st.scalerType)
	_ = binary.Write(&hdr, binary.BigEndian, uint16(numTables))
	_ = binary.Write(&hdr, binary.BigEndian, uint16(1<<(entrySelector+4)))
	_ = binary.Write(&hdr, binary.BigEndian, uint16(entrySelector))
	_ = binary.Write(&hdr, binary.BigEndian, uint16(16*(numTables-1<<entrySelector)))

	type record struct {
		tag      string
		checksum uint32
		offset   uint32
		length   uint32
	}
	var totalSum uint32
	offset := uint32(12 + 16*numTables)
	records := make([]record, numTables)
	for i, name := range names {
		body := st.tables[name]
		sum := tableChecksum(body)
		records[i] = record{name, sum, offset, uint32(len(body))}
		totalSum += sum
		offset += uint32(4 * ((len(body) + 3) / 4))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].tag < records[j].tag
	})
	for _, rec := range records {
		hdr.WriteString(rec.tag)
		_ = binary.Write(&hdr, binary.BigEndian, rec.checksum)
		_ = binary.Write(&hdr, binary.BigEndian, rec.offset)
		_ = binary.Write(&hdr, binary.BigEndian, rec.length)
	}
	totalSum += tableChecksum(hdr.Bytes())

	if head, ok := st.tables["head"]; ok && len(head) >= 12 {
		binary.BigEndian.PutUint32(head[8:12], 0xB1B0AFBA-totalSum)
	}

	out := bytes.NewBuffer(make([]byte, 0, int(offset)))
	out.Write(hdr.Bytes())
	var pad [3]byte
	for _, name := range names {
		body := st.tables[name]
		out.Write(body)
		if k := len(body) % 4; k != 0 {
			out.Write(pad[:4-k])
		}
	}
	return out.Bytes()
}

// tableChecksum sums a table as big-endian uint32 words, zero-padded.
func tableChecksum(data []byte) uint32 {
	var sum uint32
	n := len(data)
	for i := 0; i+4 <= n; i += 4 {
		sum += binary.BigEndian.Uint32(data[i:])
	}
	if k := n % 4; k != 0 {
		var last [4]byte
		copy(last[:], data[n-k:])
		sum += binary.BigEndian.Uint32(last[:])
	}
	return sum
}
