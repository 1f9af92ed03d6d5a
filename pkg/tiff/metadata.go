// Package tiff reads the subset of the tagged image container used for
// 16-bit RGB scans: little-endian, uncompressed, chunky samples in strips.
package tiff

import (
	"encoding/binary"
	"io"

	"rasterflow/internal/errors"
	"rasterflow/internal/models"
)

// Magic is "II" followed by 42, read as a little-endian uint32.
const Magic = 0x002A4949

const (
	tagImageWidth    = 0x100
	tagImageLength   = 0x101
	tagBitsPerSample = 0x102
	tagCompression   = 0x103
	tagStripOffsets  = 0x111
	tagRowsPerStrip  = 0x116

	typeShort = 3
	typeLong  = 4

	fieldSize = 12
)

var le = binary.LittleEndian

// Metadata describes the image found in the first directory.
type Metadata struct {
	Size          models.Size
	BitsPerSample []uint16
	Compression   uint16
	Strips        models.StripIndex
}

// RowBytes is the number of bytes of one stored row.
func (m Metadata) RowBytes() int { return m.Size.Width * models.Channels * 2 }

// field is one 12-byte directory entry. value holds the raw value-or-offset bytes.
type field struct {
	tag   uint16
	typ   uint16
	count uint32
	value [4]byte
}

func typeSize(typ uint16) int {
	switch typ {
	case typeShort:
		return 2
	case typeLong:
		return 4
	default:
		return 0
	}
}

// values returns the field's values, read inline when they fit in four bytes
// and from the offset otherwise.
func (f field) values(r io.ReaderAt) ([]uint32, error) {
	size := typeSize(f.typ)
	if size == 0 {
		return nil, errors.Errorf("%w: tag %#x has field type %d", errors.ErrUnsupportedFormat, f.tag, f.typ)
	}
	raw := f.value[:]
	if n := size * int(f.count); n > len(f.value) {
		raw = make([]byte, n)
		if _, err := r.ReadAt(raw, int64(le.Uint32(f.value[:]))); err != nil {
			return nil, errors.Annotate(err, errors.ErrTruncated, `reading tag values`)
		}
	}
	out := make([]uint32, f.count)
	for i := range out {
		if size == 2 {
			out[i] = uint32(le.Uint16(raw[2*i:]))
		} else {
			out[i] = le.Uint32(raw[4*i:])
		}
	}
	return out, nil
}

// ReadMetadata scans the first directory and validates that the image is
// 16 bits per channel and uncompressed. Unknown tags are ignored.
func ReadMetadata(r io.ReaderAt) (Metadata, error) {
	var head [8]byte
	if _, err := r.ReadAt(head[:], 0); err != nil {
		return Metadata{}, errors.Annotate(err, errors.ErrTruncated, `reading container header`)
	}
	if head[0] == 'M' && head[1] == 'M' {
		return Metadata{}, errors.Errorf("%w: big-endian container", errors.ErrUnsupportedFormat)
	}
	if le.Uint32(head[:4]) != Magic {
		return Metadata{}, errors.Errorf("%w: bad container magic %#08x", errors.ErrUnsupportedFormat, le.Uint32(head[:4]))
	}
	dir := int64(le.Uint32(head[4:]))

	var cnt [2]byte
	if _, err := r.ReadAt(cnt[:], dir); err != nil {
		return Metadata{}, errors.Annotate(err, errors.ErrTruncated, `reading directory`)
	}
	n := int(le.Uint16(cnt[:]))
	entries := make([]byte, n*fieldSize)
	if _, err := r.ReadAt(entries, dir+2); err != nil {
		return Metadata{}, errors.Annotate(err, errors.ErrTruncated, `reading directory entries`)
	}

	m := Metadata{Compression: 1}
	var haveWidth, haveLength bool
	for i := 0; i < n; i++ {
		e := entries[i*fieldSize:]
		f := field{tag: le.Uint16(e), typ: le.Uint16(e[2:]), count: le.Uint32(e[4:])}
		copy(f.value[:], e[8:12])
		switch f.tag {
		case tagImageWidth, tagImageLength, tagBitsPerSample, tagCompression, tagStripOffsets, tagRowsPerStrip:
		default:
			continue
		}
		vals, err := f.values(r)
		if err != nil {
			return Metadata{}, err
		}
		if len(vals) == 0 {
			return Metadata{}, errors.Errorf("%w: tag %#x without values", errors.ErrUnsupportedFormat, f.tag)
		}
		switch f.tag {
		case tagImageWidth:
			m.Size.Width, haveWidth = int(vals[0]), true
		case tagImageLength:
			m.Size.Height, haveLength = int(vals[0]), true
		case tagBitsPerSample:
			m.BitsPerSample = m.BitsPerSample[:0]
			for _, v := range vals {
				m.BitsPerSample = append(m.BitsPerSample, uint16(v))
			}
		case tagCompression:
			m.Compression = uint16(vals[0])
		case tagStripOffsets:
			m.Strips.Offsets = make([]int64, len(vals))
			for j, v := range vals {
				m.Strips.Offsets[j] = int64(v)
			}
		case tagRowsPerStrip:
			m.Strips.RowsPerStrip = int(vals[0])
		}
	}

	switch {
	case !haveWidth || !haveLength || len(m.Strips.Offsets) == 0:
		return Metadata{}, errors.Errorf("%w: missing image size or strip offsets", errors.ErrUnsupportedFormat)
	case !m.Size.Valid():
		return Metadata{}, errors.Errorf("%w: image size %dx%d", errors.ErrUnsupportedFormat, m.Size.Width, m.Size.Height)
	case m.Compression != 1:
		return Metadata{}, errors.Errorf("%w: compression %d", errors.ErrUnsupportedFormat, m.Compression)
	}
	if len(m.BitsPerSample) == 0 {
		return Metadata{}, errors.Errorf("%w: bits per sample missing", errors.ErrUnsupportedFormat)
	}
	for _, b := range m.BitsPerSample {
		if b != 16 {
			return Metadata{}, errors.Errorf("%w: %d bits per sample", errors.ErrUnsupportedFormat, b)
		}
	}
	if m.Strips.RowsPerStrip <= 0 || m.Strips.RowsPerStrip > m.Size.Height {
		m.Strips.RowsPerStrip = m.Size.Height
	}
	if need := (m.Size.Height + m.Strips.RowsPerStrip - 1) / m.Strips.RowsPerStrip; len(m.Strips.Offsets) < need {
		return Metadata{}, errors.Errorf("%w: %d strip offsets for %d strips", errors.ErrUnsupportedFormat, len(m.Strips.Offsets), need)
	}
	return m, nil
}
