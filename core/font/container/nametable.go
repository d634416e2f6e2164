package container

import (
	"bytes"
	"encoding/binary"
	"sort"
	"unicode/utf16"
)

// NameEntry is one name-table value to write, addressed by name ID.
type NameEntry struct {
	ID    uint16
	Value string
}

// Platform/encoding/language tuples written for every entry. These are
// the two records practically all desktop environments consult.
const (
	winPlatformID = 3
	winEncodingID = 1      // Unicode BMP (UTF-16BE)
	winLanguageID = 0x0409 // en-US

	macPlatformID = 1
	macEncodingID = 0 // Roman
	macLanguageID = 0 // English
)

// nameRecord is one decoded record of a name table, value still in its
// platform encoding.
type nameRecord struct {
	platformID uint16
	encodingID uint16
	languageID uint16
	nameID     uint16
	value      []byte
}

// parseNameRecords reads the records of a version 0 name table.
// Malformed tables and records pointing outside the storage area yield
// no records, version 1 language tags are not handled.
func parseNameRecords(table []byte) []nameRecord {
	if len(table) < 6 || binary.BigEndian.Uint16(table) != 0 {
		return nil
	}
	count := int(binary.BigEndian.Uint16(table[2:]))
	storage := int(binary.BigEndian.Uint16(table[4:]))
	if 6+count*12 > len(table) || storage > len(table) {
		return nil
	}
	records := make([]nameRecord, 0, count)
	for i := 0; i < count; i++ {
		rec := table[6+i*12:]
		length := int(binary.BigEndian.Uint16(rec[8:]))
		offset := int(binary.BigEndian.Uint16(rec[10:]))
		if storage+offset+length > len(table) {
			continue
		}
		records = append(records, nameRecord{
			platformID: binary.BigEndian.Uint16(rec[0:]),
			encodingID: binary.BigEndian.Uint16(rec[2:]),
			languageID: binary.BigEndian.Uint16(rec[4:]),
			nameID:     binary.BigEndian.Uint16(rec[6:]),
			value:      table[storage+offset : storage+offset+length],
		})
	}
	return records
}

// encodeNameRecords assembles a version 0 name table. Records are
// sorted as the sfnt format requires and identical values share their
// storage bytes.
func encodeNameRecords(records []nameRecord) []byte {
	sort.Slice(records, func(i, j int) bool {
		if records[i].platformID != records[j].platformID {
			return records[i].platformID < records[j].platformID
		}
		if records[i].encodingID != records[j].encodingID {
			return records[i].encodingID < records[j].encodingID
		}
		if records[i].languageID != records[j].languageID {
			return records[i].languageID < records[j].languageID
		}
		return records[i].nameID < records[j].nameID
	})

	var storage bytes.Buffer
	index := make(map[string]uint16)
	add := func(b []byte) (offset, length uint16) {
		key := string(b)
		if off, ok := index[key]; ok {
			return off, uint16(len(b))
		}
		off := uint16(storage.Len())
		index[key] = off
		storage.Write(b)
		return off, uint16(len(b))
	}

	numRec := len(records)
	storageOffset := 6 + numRec*12
	out := bytes.NewBuffer(make([]byte, 0, storageOffset))
	_ = binary.Write(out, binary.BigEndian, uint16(0)) // version
	_ = binary.Write(out, binary.BigEndian, uint16(numRec))
	_ = binary.Write(out, binary.BigEndian, uint16(storageOffset))
	for _, rec := range records {
		off, length := add(rec.value)
		_ = binary.Write(out, binary.BigEndian, rec.platformID)
		_ = binary.Write(out, binary.BigEndian, rec.encodingID)
		_ = binary.Write(out, binary.BigEndian, rec.languageID)
		_ = binary.Write(out, binary.BigEndian, rec.nameID)
		_ = binary.Write(out, binary.BigEndian, length)
		_ = binary.Write(out, binary.BigEndian, off)
	}
	out.Write(storage.Bytes())
	return out.Bytes()
}

// entryRecords expands the entries into their Mac and Windows records.
func entryRecords(entries []NameEntry) []nameRecord {
	records := make([]nameRecord, 0, len(entries)*2)
	for _, e := range entries {
		records = append(records, nameRecord{
			macPlatformID, macEncodingID, macLanguageID, e.ID, macRoman(e.Value),
		})
	}
	for _, e := range entries {
		records = append(records, nameRecord{
			winPlatformID, winEncodingID, winLanguageID, e.ID, utf16Encode(e.Value),
		})
	}
	return records
}

// EncodeNames builds a name table holding just the given entries for
// the Windows and Macintosh platforms.
func EncodeNames(entries []NameEntry) []byte {
	return encodeNameRecords(entryRecords(entries))
}

// mergeNames rewrites the entries' name IDs into an existing name
// table. Records for other IDs, copyright and license notices among
// them, survive untouched. Records for a rewritten ID are dropped on
// every platform so no stale value lingers in another language.
func mergeNames(existing []byte, entries []NameEntry) []byte {
	rewritten := make(map[uint16]bool, len(entries))
	for _, e := range entries {
		rewritten[e.ID] = true
	}
	var records []nameRecord
	for _, rec := range parseNameRecords(existing) {
		if !rewritten[rec.nameID] {
			records = append(records, rec)
		}
	}
	records = append(records, entryRecords(entries)...)
	return encodeNameRecords(records)
}

// PatchNames rewrites the given entries into the name table of plain
// sfnt data and re-assembles the font with fresh checksums. Name IDs
// not listed keep their existing records.
func PatchNames(b []byte, entries []NameEntry) ([]byte, error) {
	st, err := parseTables(b)
	if err != nil {
		return nil, err
	}
	st.tables["name"] = mergeNames(st.tables["name"], entries)
	return st.encode(), nil
}

func utf16Encode(s string) []byte {
	words := utf16.Encode([]rune(s))
	out := make([]byte, len(words)*2)
	for i, w := range words {
		out[i*2] = byte(w >> 8)
		out[i*2+1] = byte(w)
	}
	return out
}

// macRoman degrades a string to the Mac Roman subset we can emit
// without a conversion table; non-ASCII runes become '?'. The Windows
// record carries the faithful UTF-16 value.
func macRoman(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r < 0x80 {
			out = append(out, byte(r))
		} else {
			out = append(out, '?')
		}
	}
	return out
}
