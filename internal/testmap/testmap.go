// Package testmap encodes map files for tests.
package testmap

import (
	"encoding/binary"
)

const (
	magic               = "mapsforge binary OSM"
	indexStartSignature = "+++IndexStart+++"
)

// Header field values, stored as they appear in the file.
type Header struct {
	FileVersion        int32
	FileSize           uint64
	MapDate            uint64
	BoundingBox        [4]int32 // microdegrees: min lat, min lon, max lat, max lon
	TilePixelSize      int16
	ProjectionName     string
	Flags              uint8
	StartPosition      [2]int32
	StartZoomLevel     uint8
	LanguagePreference string
	Comment            string
	CreatedBy          string
	PoiTags            []string
	WayTags            []string
	SubFiles           []SubFile
}

type SubFile struct {
	BaseZoomLevel uint8
	ZoomLevelMin  uint8
	ZoomLevelMax  uint8
	StartAddress  uint64
	SubFileSize   uint64
}

// Block is the content of one block of a sub-file.
type Block struct {
	Data  []byte
	Water bool
}

// Reference returns the header of the reference file written by
// mapsforge-map-writer 0.3.1 with every optional field set.
func Reference() Header {
	return Header{
		FileVersion:        3,
		FileSize:           709,
		MapDate:            1335871456973,
		BoundingBox:        [4]int32{100000, 200000, 300000, 400000},
		TilePixelSize:      256,
		ProjectionName:     "Mercator",
		Flags:              0x40 | 0x20 | 0x10 | 0x08 | 0x04,
		StartPosition:      [2]int32{150000, 250000},
		StartZoomLevel:     16,
		LanguagePreference: "en",
		Comment:            "testcomment",
		CreatedBy:          "mapsforge-map-writer-0.3.1-SNAPSHOT",
		SubFiles: []SubFile{
			{BaseZoomLevel: 5, ZoomLevelMin: 0, ZoomLevelMax: 7},
			{BaseZoomLevel: 10, ZoomLevelMin: 8, ZoomLevelMax: 11},
			{BaseZoomLevel: 14, ZoomLevelMin: 12, ZoomLevelMax: 21},
		},
	}
}

func AppendVarUint(buffer []byte, value uint32) []byte {
	for value >= 0x80 {
		buffer = append(buffer, byte(value)|0x80)
		value >>= 7
	}
	return append(buffer, byte(value))
}

func AppendString(buffer []byte, value string) []byte {
	buffer = AppendVarUint(buffer, uint32(len(value)))
	return append(buffer, value...)
}

// EncodeHeader encodes the fields following the header length.
func (h Header) EncodeHeader() []byte {
	buffer := make([]byte, 0, 256)
	buffer = binary.BigEndian.AppendUint32(buffer, uint32(h.FileVersion))
	buffer = binary.BigEndian.AppendUint64(buffer, h.FileSize)
	buffer = binary.BigEndian.AppendUint64(buffer, h.MapDate)
	for _, v := range h.BoundingBox {
		buffer = binary.BigEndian.AppendUint32(buffer, uint32(v))
	}
	buffer = binary.BigEndian.AppendUint16(buffer, uint16(h.TilePixelSize))
	buffer = AppendString(buffer, h.ProjectionName)

	buffer = append(buffer, h.Flags)
	if h.Flags&0x40 != 0 {
		buffer = binary.BigEndian.AppendUint32(buffer, uint32(h.StartPosition[0]))
		buffer = binary.BigEndian.AppendUint32(buffer, uint32(h.StartPosition[1]))
	}
	if h.Flags&0x20 != 0 {
		buffer = append(buffer, h.StartZoomLevel)
	}
	if h.Flags&0x10 != 0 {
		buffer = AppendString(buffer, h.LanguagePreference)
	}
	if h.Flags&0x08 != 0 {
		buffer = AppendString(buffer, h.Comment)
	}
	if h.Flags&0x04 != 0 {
		buffer = AppendString(buffer, h.CreatedBy)
	}

	for _, tags := range [][]string{h.PoiTags, h.WayTags} {
		buffer = binary.BigEndian.AppendUint16(buffer, uint16(len(tags)))
		for _, tag := range tags {
			buffer = AppendString(buffer, tag)
		}
	}

	buffer = append(buffer, byte(len(h.SubFiles)))
	for _, s := range h.SubFiles {
		buffer = append(buffer, s.BaseZoomLevel, s.ZoomLevelMin, s.ZoomLevelMax)
		buffer = binary.BigEndian.AppendUint64(buffer, s.StartAddress)
		buffer = binary.BigEndian.AppendUint64(buffer, s.SubFileSize)
	}
	return buffer
}

// Encode returns the magic marker, the header length and the header.
// The header length counts its own four bytes.
func (h Header) Encode() []byte {
	header := h.EncodeHeader()
	buffer := []byte(magic)
	buffer = binary.BigEndian.AppendUint32(buffer, uint32(len(header)+4))
	return append(buffer, header...)
}

// SubFileBody encodes the index followed by the block data of one sub-file.
// Debug files get the index start signature in front of the index.
func SubFileBody(blocks []Block, debug bool) []byte {
	var body []byte
	if debug {
		body = append(body, indexStartSignature...)
	}
	offset := uint64(len(body) + 5*len(blocks))
	for _, block := range blocks {
		entry := offset
		if block.Water {
			entry |= 1 << 39
		}
		body = append(body, byte(entry>>32), byte(entry>>24), byte(entry>>16), byte(entry>>8), byte(entry))
		offset += uint64(len(block.Data))
	}
	for _, block := range blocks {
		body = append(body, block.Data...)
	}
	return body
}

// File lays out the header followed by one body per sub-file, filling in
// start addresses, sub-file sizes and the file size.
func File(h Header, bodies [][]byte) []byte {
	h.SubFiles = append([]SubFile(nil), h.SubFiles...)
	address := uint64(len(h.Encode()))
	for i := range h.SubFiles {
		h.SubFiles[i].StartAddress = address
		h.SubFiles[i].SubFileSize = uint64(len(bodies[i]))
		address += uint64(len(bodies[i]))
	}
	h.FileSize = address

	file := h.Encode()
	for _, body := range bodies {
		file = append(file, body...)
	}
	return file
}
