package raster

import (
	"io"

	"rasterflow/internal/errors"
	"rasterflow/internal/models"
)

// Buffer is a whole image kept in memory with a border of ext pixels on every
// side. Coordinates passed to the accessors are image coordinates, so the
// border is addressed with x in [-ext, 0) or [width, width+ext) and likewise
// for y.
type Buffer struct {
	width  int
	height int
	ext    int
	stride int
	pix    []uint8
}

// NewBuffer allocates a black width×height buffer with a border of ext pixels.
// The border is filled by mirroring, which reflects at most once, so ext may
// not exceed either dimension.
func NewBuffer(width, height, ext int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("%w: image size %dx%d", errors.ErrInvalidArgument, width, height)
	}
	if ext < 0 {
		return nil, errors.Errorf("%w: negative border %d", errors.ErrInvalidArgument, ext)
	}
	if ext > width || ext > height {
		return nil, errors.Errorf("%w: %dx%d image, border %d", errors.ErrImageTooSmall, width, height, ext)
	}
	stride := (width + 2*ext) * models.Channels
	return &Buffer{
		width:  width,
		height: height,
		ext:    ext,
		stride: stride,
		pix:    make([]uint8, stride*(height+2*ext)),
	}, nil
}

func (b *Buffer) Width() int        { return b.width }
func (b *Buffer) Height() int       { return b.height }
func (b *Buffer) Ext() int          { return b.ext }
func (b *Buffer) Size() models.Size { return models.Size{Width: b.width, Height: b.height} }

// offset is the only place where sample addresses are computed.
func (b *Buffer) offset(x, y, c int) int {
	if x < -b.ext || x >= b.width+b.ext || y < -b.ext || y >= b.height+b.ext || c < 0 || c >= models.Channels {
		panic(errors.Errorf("raster: sample (%d,%d,%d) outside %dx%d buffer with border %d",
			x, y, c, b.width, b.height, b.ext))
	}
	return (y+b.ext)*b.stride + (x+b.ext)*models.Channels + c
}

// At returns channel c of pixel (x, y).
func (b *Buffer) At(x, y, c int) uint8 { return b.pix[b.offset(x, y, c)] }

// Set stores channel c of pixel (x, y).
func (b *Buffer) Set(x, y, c int, v uint8) { b.pix[b.offset(x, y, c)] = v }

// Pixel returns all channels of pixel (x, y).
func (b *Buffer) Pixel(x, y int) models.Pixel {
	o := b.offset(x, y, 0)
	return models.Pixel(b.pix[o : o+models.Channels])
}

// SetPixel stores all channels of pixel (x, y).
func (b *Buffer) SetPixel(x, y int, p models.Pixel) {
	o := b.offset(x, y, 0)
	copy(b.pix[o:o+models.Channels], p[:])
}

// Row returns the real pixels of row y, without the border.
func (b *Buffer) Row(y int) []uint8 {
	o := b.offset(0, y, 0)
	return b.pix[o : o+b.width*models.Channels]
}

// ExtendedRow returns row y including its left and right border.
func (b *Buffer) ExtendedRow(y int) []uint8 {
	o := b.offset(-b.ext, y, 0)
	return b.pix[o : o+b.stride]
}

// Extend fills the border by mirroring the real pixels. Columns are mirrored
// first so the corner regions come along with the row copies.
func (b *Buffer) Extend() {
	if b.ext == 0 {
		return
	}
	for y := 0; y < b.height; y++ {
		MirrorRow(b.ExtendedRow(y), b.width, b.ext)
	}
	for y := -b.ext; y < 0; y++ {
		copy(b.ExtendedRow(y), b.ExtendedRow(MirrorIndex(y, b.height)))
	}
	for y := b.height; y < b.height+b.ext; y++ {
		copy(b.ExtendedRow(y), b.ExtendedRow(MirrorIndex(y, b.height)))
	}
}

// Reader returns a RowReader yielding rows 0..height-1.
func (b *Buffer) Reader() RowReader {
	y := 0
	return RowReaderFunc(func(dst []uint8) error {
		if y >= b.height {
			return errors.Wrap(io.EOF, 0)
		}
		copy(dst, b.Row(y))
		y++
		return nil
	})
}

// Writer returns a RowWriter storing rows 0..height-1.
func (b *Buffer) Writer() RowWriter {
	y := 0
	return RowWriterFunc(func(row []uint8) error {
		if y >= b.height {
			return errors.Errorf("%w: buffer holds %d rows", errors.ErrInvalidArgument, b.height)
		}
		copy(b.Row(y), row)
		y++
		return nil
	})
}

// Fill fills the real pixels from r and mirrors the border.
func (b *Buffer) Fill(r RowReader) error {
	for y := 0; y < b.height; y++ {
		if err := r.ReadRow(b.Row(y)); err != nil {
			return err
		}
	}
	b.Extend()
	return nil
}

// Drain streams the real pixels to w.
func (b *Buffer) Drain(w RowWriter) error {
	for y := 0; y < b.height; y++ {
		if err := w.WriteRow(b.Row(y)); err != nil {
			return err
		}
	}
	return nil
}
