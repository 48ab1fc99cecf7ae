package spec

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/paulmach/orb"
)

const (
	// Magic is the marker every map file starts with.
	Magic = "mapsforge binary OSM"

	// ConversionFactor converts stored microdegrees to degrees.
	ConversionFactor = 1_000_000

	MapDateLength = 8
)

// BoundingBox is the area covered by a map file, in degrees.
type BoundingBox struct {
	MinLatitude  float64
	MinLongitude float64
	MaxLatitude  float64
	MaxLongitude float64
}

func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLongitude, b.MinLatitude},
		Max: orb.Point{b.MaxLongitude, b.MaxLatitude},
	}
}

// LatLon is a geographic position in degrees.
type LatLon struct {
	Latitude  float64
	Longitude float64
}

func (p LatLon) Point() orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

// OptionalField names a bit of the optional-fields flag byte.
type OptionalField uint8

const (
	FieldCreatedBy          OptionalField = 0x04
	FieldComment            OptionalField = 0x08
	FieldLanguagePreference OptionalField = 0x10
	FieldStartZoomLevel     OptionalField = 0x20
	FieldStartPosition      OptionalField = 0x40
	FieldDebugFile          OptionalField = 0x80
)

func (f OptionalField) String() string {
	switch f {
	case FieldCreatedBy:
		return "created-by"
	case FieldComment:
		return "comment"
	case FieldLanguagePreference:
		return "language-preference"
	case FieldStartZoomLevel:
		return "start-zoom-level"
	case FieldStartPosition:
		return "start-position"
	case FieldDebugFile:
		return "debug-file"
	}
	return fmt.Sprintf("OptionalField(%#x)", uint8(f))
}

// OptionalFlags is the raw optional-fields flag byte.
type OptionalFlags uint8

// Has reports whether the bit of field is set.
func (f OptionalFlags) Has(field OptionalField) bool {
	return uint8(f)&uint8(field) != 0
}

// OptionalFields holds the header fields gated by OptionalFlags.
// A nil pointer means the field is absent from the file.
type OptionalFields struct {
	Flags              OptionalFlags
	StartPosition      *LatLon
	StartZoomLevel     *uint8
	LanguagePreference *string
	Comment            *string
	CreatedBy          *string
}

// FileInfo is the decoded header of a map file.
type FileInfo struct {
	FileVersion    int32
	FileSize       uint32
	MapDate        [MapDateLength]byte
	BoundingBox    BoundingBox
	TilePixelSize  int16
	ProjectionName string
	OptionalFields
	// PoiTags and WayTags are referenced by index from the data blocks.
	PoiTags  []string
	WayTags  []string
	SubFiles SubFileIndex
}

// DebugFile reports whether the file carries debug signatures.
func (fi *FileInfo) DebugFile() bool {
	return fi.Flags.Has(FieldDebugFile)
}

// MapTime interprets MapDate as milliseconds since the Unix epoch,
// which is how map writers fill it.
func (fi *FileInfo) MapTime() time.Time {
	return time.UnixMilli(int64(binary.BigEndian.Uint64(fi.MapDate[:]))).UTC()
}

// DecodeFileInfo reads the magic marker and the header length from c,
// then the whole remaining header in a single read, and decodes it.
func DecodeFileInfo(c *Cursor) (*FileInfo, error) {
	magic, err := c.Read(len(Magic))
	if err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if string(magic) != Magic {
		return nil, fmt.Errorf("%w: magic %q", ErrFormatMismatch, magic)
	}

	headerLength, err := c.ReadInt()
	if err != nil {
		return nil, fmt.Errorf("read header length: %w", err)
	}
	if headerLength < IntLength {
		return nil, fmt.Errorf("%w: header length %d", ErrFormatMismatch, headerLength)
	}

	headerData, err := c.Read(int(headerLength) - IntLength)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	return DecodeHeader(headerData)
}

// DecodeHeader decodes the header fields following the header length.
func DecodeHeader(data []byte) (*FileInfo, error) {
	c := NewCursor(data)
	fi := FileInfo{}
	var err error

	if fi.FileVersion, err = c.ReadInt(); err != nil {
		return nil, fmt.Errorf("read file version: %w", err)
	}
	if fi.FileSize, err = c.ReadLong(); err != nil {
		return nil, fmt.Errorf("read file size: %w", err)
	}
	mapDate, err := c.Read(MapDateLength)
	if err != nil {
		return nil, fmt.Errorf("read map date: %w", err)
	}
	copy(fi.MapDate[:], mapDate)
	if fi.BoundingBox, err = decodeBoundingBox(c); err != nil {
		return nil, fmt.Errorf("read bounding box: %w", err)
	}
	if fi.TilePixelSize, err = c.ReadShort(); err != nil {
		return nil, fmt.Errorf("read tile pixel size: %w", err)
	}
	if fi.ProjectionName, err = c.ReadVariableLengthString(); err != nil {
		return nil, fmt.Errorf("read projection name: %w", err)
	}
	if fi.OptionalFields, err = decodeOptionalFields(c); err != nil {
		return nil, err
	}
	if fi.PoiTags, err = decodeTags(c); err != nil {
		return nil, fmt.Errorf("read poi tags: %w", err)
	}
	if fi.WayTags, err = decodeTags(c); err != nil {
		return nil, fmt.Errorf("read way tags: %w", err)
	}
	if fi.SubFiles, err = decodeSubFileIndex(c, fi.BoundingBox, fi.DebugFile()); err != nil {
		return nil, fmt.Errorf("read sub-files: %w", err)
	}
	return &fi, nil
}

func decodeDegrees(c *Cursor) (float64, error) {
	microdegrees, err := c.ReadInt()
	if err != nil {
		return 0, err
	}
	return float64(microdegrees) / ConversionFactor, nil
}

func decodeBoundingBox(c *Cursor) (BoundingBox, error) {
	var values [4]float64
	for i := range values {
		value, err := decodeDegrees(c)
		if err != nil {
			return BoundingBox{}, err
		}
		values[i] = value
	}
	return BoundingBox{
		MinLatitude:  values[0],
		MinLongitude: values[1],
		MaxLatitude:  values[2],
		MaxLongitude: values[3],
	}, nil
}

func decodeOptionalFields(c *Cursor) (OptionalFields, error) {
	flags, err := c.ReadByte()
	if err != nil {
		return OptionalFields{}, fmt.Errorf("read optional fields flags: %w", err)
	}
	fields := OptionalFields{Flags: OptionalFlags(flags)}

	if fields.Flags.Has(FieldStartPosition) {
		latitude, err := decodeDegrees(c)
		if err != nil {
			return OptionalFields{}, fmt.Errorf("read %v: %w", FieldStartPosition, err)
		}
		longitude, err := decodeDegrees(c)
		if err != nil {
			return OptionalFields{}, fmt.Errorf("read %v: %w", FieldStartPosition, err)
		}
		fields.StartPosition = &LatLon{Latitude: latitude, Longitude: longitude}
	}

	if fields.Flags.Has(FieldStartZoomLevel) {
		zoomLevel, err := c.ReadByte()
		if err != nil {
			return OptionalFields{}, fmt.Errorf("read %v: %w", FieldStartZoomLevel, err)
		}
		fields.StartZoomLevel = &zoomLevel
	}

	for _, opt := range []struct {
		field OptionalField
		value **string
	}{
		{FieldLanguagePreference, &fields.LanguagePreference},
		{FieldComment, &fields.Comment},
		{FieldCreatedBy, &fields.CreatedBy},
	} {
		if !fields.Flags.Has(opt.field) {
			continue
		}
		value, err := c.ReadVariableLengthString()
		if err != nil {
			return OptionalFields{}, fmt.Errorf("read %v: %w", opt.field, err)
		}
		*opt.value = &value
	}

	return fields, nil
}

func decodeTags(c *Cursor) ([]string, error) {
	count, err := c.ReadShort()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: tag count %d", ErrFormatMismatch, count)
	}
	tags := make([]string, 0, count)
	for range count {
		tag, err := c.ReadVariableLengthString()
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
