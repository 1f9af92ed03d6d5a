package tiff

import (
	"bufio"
	"io"
	"math"

	"rasterflow/internal/errors"
	"rasterflow/internal/models"
	"rasterflow/pkg/raster"
)

// Transform converts a 16-bit sample of channel c (models.Red, models.Green
// or models.Blue) to 8 bits. It is applied once per sample at ingestion.
type Transform func(c int, v uint16) uint8

// Shift10Bit keeps the top eight of ten significant bits, for scans whose
// samples only use the low ten bits. Larger values saturate.
func Shift10Bit(_ int, v uint16) uint8 {
	v >>= 2
	if v > math.MaxUint8 {
		return math.MaxUint8
	}
	return uint8(v)
}

// Reader streams rows top to bottom, switching strips as rows are consumed.
type Reader struct {
	src       io.ReaderAt
	meta      Metadata
	transform Transform
	row       int
	strip     *bufio.Reader
	raw       []byte
	samples   []uint16
}

// NewReader reads rows of the image described by meta. A nil transform
// selects Shift10Bit.
func NewReader(src io.ReaderAt, meta Metadata, transform Transform) *Reader {
	if transform == nil {
		transform = Shift10Bit
	}
	return &Reader{
		src:       src,
		meta:      meta,
		transform: transform,
		raw:       make([]byte, meta.RowBytes()),
		samples:   make([]uint16, meta.Size.Width*models.Channels),
	}
}

// Open reads the metadata of src and returns a reader positioned at the first row.
func Open(src io.ReaderAt, transform Transform) (*Reader, error) {
	meta, err := ReadMetadata(src)
	if err != nil {
		return nil, err
	}
	return NewReader(src, meta, transform), nil
}

func (r *Reader) Metadata() Metadata { return r.meta }

// ReadRawRow reads the next row as red, green, blue 16-bit triples.
func (r *Reader) ReadRawRow(dst []uint16) error {
	if r.row >= r.meta.Size.Height {
		return errors.Wrap(io.EOF, 0)
	}
	strip, within := r.meta.Strips.Locate(r.row)
	if within == 0 || r.strip == nil {
		off := r.meta.Strips.Offsets[strip] + int64(within*len(r.raw))
		r.strip = bufio.NewReaderSize(io.NewSectionReader(r.src, off, math.MaxInt64-off), 1<<16)
	}
	if _, err := io.ReadFull(r.strip, r.raw); err != nil {
		return errors.Annotate(err, errors.ErrTruncated, `reading strip row`)
	}
	for i := range dst[:len(r.raw)/2] {
		dst[i] = le.Uint16(r.raw[2*i:])
	}
	r.row++
	return nil
}

// ReadRow reads the next row, converts every sample with the transform and
// reorders the channels to blue, green, red.
func (r *Reader) ReadRow(dst []uint8) error {
	if err := r.ReadRawRow(r.samples); err != nil {
		return err
	}
	for x := 0; x < r.meta.Size.Width; x++ {
		s := r.samples[x*models.Channels:]
		d := dst[x*models.Channels:]
		d[models.Red] = r.transform(models.Red, s[0])
		d[models.Green] = r.transform(models.Green, s[1])
		d[models.Blue] = r.transform(models.Blue, s[2])
	}
	return nil
}

var _ raster.RowReader = (*Reader)(nil)
