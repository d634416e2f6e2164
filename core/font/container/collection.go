package container

import (
	"bytes"
	"encoding/binary"
	"io"
	"math/bits"
	"sort"

	"github.com/typecase/fontpack/core"
)

// Pack assembles plain sfnt fonts into a TrueType Collection (version
// 1.0) and writes it to w. Tables with identical tag and content are
// stored once and shared between member fonts. Returns the number of
// bytes written.
func Pack(w io.Writer, faces [][]byte) (int64, error) {
	if len(faces) == 0 {
		return 0, core.Error(core.EPACK, "collection needs at least one font")
	}
	members := make([]*sfntTables, len(faces))
	for i, b := range faces {
		st, err := parseTables(b)
		if err != nil {
			return 0, core.WrapError(err, core.EPACK, "font %d cannot join collection", i)
		}
		// The adjustment is only meaningful for a standalone font file.
		if head, ok := st.tables["head"]; ok && len(head) >= 12 {
			head = append([]byte(nil), head...)
			copy(head[8:12], []byte{0, 0, 0, 0})
			st.tables["head"] = head
		}
		members[i] = st
	}

	type slot struct {
		offset uint32
		data   []byte
	}
	shared := make(map[string]*slot) // tag + "\x00" + content

	headerSize := uint32(12 + 4*len(members))
	offset := headerSize
	dirOffsets := make([]uint32, len(members))
	for i, st := range members {
		dirOffsets[i] = offset
		offset += uint32(12 + 16*len(st.tables))
	}
	var order []*slot
	for _, st := range members {
		tags := sortedTags(st.tables)
		for _, tag := range tags {
			data := st.tables[tag]
			key := tag + "\x00" + string(data)
			if _, ok := shared[key]; ok {
				continue
			}
			s := &slot{offset: offset, data: data}
			shared[key] = s
			order = append(order, s)
			offset += uint32(len(data))
			if pad := offset % 4; pad != 0 {
				offset += 4 - pad
			}
		}
	}

	buf := bytes.NewBuffer(make([]byte, 0, offset))
	_ = binary.Write(buf, binary.BigEndian, uint32(magicCollection))
	_ = binary.Write(buf, binary.BigEndian, uint16(1)) // major
	_ = binary.Write(buf, binary.BigEndian, uint16(0)) // minor
	_ = binary.Write(buf, binary.BigEndian, uint32(len(members)))
	for _, off := range dirOffsets {
		_ = binary.Write(buf, binary.BigEndian, off)
	}
	for _, st := range members {
		tags := sortedTags(st.tables)
		numTables := len(tags)
		entrySelector := bits.Len(uint(numTables)) - 1
		_ = binary.Write(buf, binary.BigEndian, st.scalerType)
		_ = binary.Write(buf, binary.BigEndian, uint16(numTables))
		_ = binary.Write(buf, binary.BigEndian, uint16(1<<(entrySelector+4)))
		_ = binary.Write(buf, binary.BigEndian, uint16(entrySelector))
		_ = binary.Write(buf, binary.BigEndian, uint16(16*(numTables-1<<entrySelector)))
		for _, tag := range tags {
			data := st.tables[tag]
			s := shared[tag+"\x00"+string(data)]
			buf.WriteString(tag)
			_ = binary.Write(buf, binary.BigEndian, tableChecksum(data))
			_ = binary.Write(buf, binary.BigEndian, s.offset)
			_ = binary.Write(buf, binary.BigEndian, uint32(len(data)))
		}
	}
	for _, s := range order {
		buf.Write(s.data)
		if pad := buf.Len() % 4; pad != 0 {
			buf.Write(make([]byte, 4-pad))
		}
	}
	n, err := w.Write(buf.Bytes())
	if err != nil {
		return int64(n), core.WrapError(err, core.EWRITE, "cannot write collection")
	}
	return int64(n), nil
}

func sortedTags(tables map[string][]byte) []string {
	tags := make([]string, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
