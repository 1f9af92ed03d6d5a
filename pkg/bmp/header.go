// Package bmp reads and writes uncompressed 24-bit bitmaps row by row.
//
// Rows are stored bottom-up in blue-green-red order and padded to a multiple
// of four bytes. Row 0 of the readers and writers in this package is the
// first row in the file, which is the bottom row of the picture.
package bmp

import (
	"encoding/binary"
	"io"
	"math"

	"rasterflow/internal/errors"
	"rasterflow/internal/models"
)

const (
	// Magic is "BM" read as a little-endian uint16.
	Magic = 0x4D42
	// HeaderSize is the size of the file header plus the 40-byte info header.
	HeaderSize = 54
	infoSize   = 40
	bitsPerPx  = 24
)

// Header is the packed little-endian file and info header.
type Header struct {
	Magic           uint16
	FileSize        uint32
	Reserved1       uint16
	Reserved2       uint16
	DataOffset      uint32
	InfoSize        uint32
	Width           int32
	Height          int32
	Planes          uint16
	BitsPerPixel    uint16
	Compression     uint32
	ImageSize       uint32
	XPixelsPerMetre int32
	YPixelsPerMetre int32
	PaletteColors   uint32
	ImportantColors uint32
}

// NewHeader returns the header of a width×height 24-bit bitmap. Sizes whose
// file would not fit the 32-bit size fields are rejected.
func NewHeader(size models.Size) (Header, error) {
	if !size.Valid() || size.Width > math.MaxInt32 || size.Height > math.MaxInt32 {
		return Header{}, errors.Errorf("%w: bitmap size %dx%d", errors.ErrInvalidArgument, size.Width, size.Height)
	}
	stride := (int64(size.Width)*models.Channels + 3) &^ 3
	if image := stride * int64(size.Height); image > math.MaxUint32-HeaderSize {
		return Header{}, errors.Errorf("%w: bitmap size %dx%d needs %d bytes of pixel data",
			errors.ErrInvalidArgument, size.Width, size.Height, image)
	}
	h := Header{
		Magic:        Magic,
		DataOffset:   HeaderSize,
		InfoSize:     infoSize,
		Width:        int32(size.Width),
		Height:       int32(size.Height),
		Planes:       1,
		BitsPerPixel: bitsPerPx,
	}
	h.ImageSize = uint32(h.Stride() * size.Height)
	h.FileSize = HeaderSize + h.ImageSize
	return h, nil
}

// WithSize derives the header of an output bitmap of another size, keeping
// the resolution fields.
func (h Header) WithSize(size models.Size) (Header, error) {
	out, err := NewHeader(size)
	if err != nil {
		return Header{}, err
	}
	out.XPixelsPerMetre, out.YPixelsPerMetre = h.XPixelsPerMetre, h.YPixelsPerMetre
	return out, nil
}

// Size returns the image dimensions.
func (h Header) Size() models.Size {
	return models.Size{Width: int(h.Width), Height: int(h.Height)}
}

// Stride is the number of bytes per stored row: (width*3+3) &^ 3.
func (h Header) Stride() int { return (int(h.Width)*models.Channels + 3) &^ 3 }

// Padding is the number of zero bytes after the pixels of each row.
func (h Header) Padding() int { return h.Stride() - int(h.Width)*models.Channels }

// Validate rejects everything but positive-sized, uncompressed 24-bit bitmaps.
func (h Header) Validate() error {
	switch {
	case h.Magic != Magic:
		return errors.Errorf("%w: bad bitmap magic %#04x", errors.ErrUnsupportedFormat, h.Magic)
	case h.Width <= 0 || h.Height <= 0:
		return errors.Errorf("%w: bitmap size %dx%d", errors.ErrUnsupportedFormat, h.Width, h.Height)
	case h.BitsPerPixel != bitsPerPx:
		return errors.Errorf("%w: %d bits per pixel", errors.ErrUnsupportedFormat, h.BitsPerPixel)
	case h.Compression != 0:
		return errors.Errorf("%w: bitmap compression %d", errors.ErrUnsupportedFormat, h.Compression)
	case h.DataOffset < HeaderSize:
		return errors.Errorf("%w: pixel data offset %d", errors.ErrUnsupportedFormat, h.DataOffset)
	}
	return nil
}

// ReadHeader decodes and validates a header.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return Header{}, errors.Annotate(err, errors.ErrTruncated, `reading bitmap header`)
	}
	if err := h.Validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// Encode writes the packed header.
func (h Header) Encode(w io.Writer) error {
	return errors.Annotate(binary.Write(w, binary.LittleEndian, &h), errors.ErrOutputNotWritable, `writing bitmap header`)
}
