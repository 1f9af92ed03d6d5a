package bmp

import (
	"bufio"
	"io"

	"rasterflow/internal/errors"
	"rasterflow/internal/models"
	"rasterflow/pkg/raster"
)

// Reader streams the rows of a bitmap in file order.
type Reader struct {
	r      *bufio.Reader
	header Header
	pad    []byte
	row    int
}

// NewReader reads the header and positions r at the first row.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	h, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}
	if skip := int(h.DataOffset) - HeaderSize; skip > 0 {
		if _, err := br.Discard(skip); err != nil {
			return nil, errors.Annotate(err, errors.ErrTruncated, `skipping to pixel data`)
		}
	}
	return &Reader{r: br, header: h, pad: make([]byte, h.Padding())}, nil
}

// Header returns the validated header.
func (r *Reader) Header() Header { return r.header }

// ReadRow reads the next row into dst, which holds width*3 samples.
func (r *Reader) ReadRow(dst []uint8) error {
	if r.row >= int(r.header.Height) {
		return errors.Wrap(io.EOF, 0)
	}
	n := int(r.header.Width) * models.Channels
	if _, err := io.ReadFull(r.r, dst[:n]); err != nil {
		return errors.Annotate(err, errors.ErrTruncated, `reading bitmap row`)
	}
	if _, err := io.ReadFull(r.r, r.pad); err != nil {
		return errors.Annotate(err, errors.ErrTruncated, `reading bitmap row padding`)
	}
	r.row++
	return nil
}

// Writer writes a header followed by rows in file order.
type Writer struct {
	w      *bufio.Writer
	header Header
	pad    []byte
	row    int
}

// NewWriter writes the header for a bitmap of the given size.
func NewWriter(w io.Writer, size models.Size) (*Writer, error) {
	h, err := NewHeader(size)
	if err != nil {
		return nil, err
	}
	return NewWriterHeader(w, h)
}

// NewWriterHeader writes h, which must describe a 24-bit bitmap.
func NewWriterHeader(w io.Writer, h Header) (*Writer, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	bw := bufio.NewWriter(w)
	if err := h.Encode(bw); err != nil {
		return nil, err
	}
	return &Writer{w: bw, header: h, pad: make([]byte, h.Padding())}, nil
}

// Header returns the written header.
func (w *Writer) Header() Header { return w.header }

// WriteRow appends one row of width*3 samples plus padding.
func (w *Writer) WriteRow(row []uint8) error {
	if w.row >= int(w.header.Height) {
		return errors.Errorf("%w: bitmap holds %d rows", errors.ErrInvalidArgument, w.header.Height)
	}
	n := int(w.header.Width) * models.Channels
	if _, err := w.w.Write(row[:n]); err != nil {
		return errors.Annotate(err, errors.ErrOutputNotWritable, `writing bitmap row`)
	}
	if _, err := w.w.Write(w.pad); err != nil {
		return errors.Annotate(err, errors.ErrOutputNotWritable, `writing bitmap row padding`)
	}
	w.row++
	return nil
}

// Flush writes buffered data and reports rows that were never written.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return errors.Annotate(err, errors.ErrOutputNotWritable, `flushing bitmap`)
	}
	if w.row != int(w.header.Height) {
		return errors.Errorf("%w: wrote %d of %d bitmap rows", errors.ErrTruncated, w.row, w.header.Height)
	}
	return nil
}

// TopDownWriter accepts rows starting with the top of the picture and places
// them bottom-up in the file.
type TopDownWriter struct {
	w      io.WriterAt
	header Header
	buf    []byte
	row    int
}

// NewTopDownWriter writes the header for a bitmap of the given size at the
// start of w.
func NewTopDownWriter(w io.WriterAt, size models.Size) (*TopDownWriter, error) {
	h, err := NewHeader(size)
	if err != nil {
		return nil, err
	}
	hw := io.NewOffsetWriter(w, 0)
	if err := h.Encode(hw); err != nil {
		return nil, err
	}
	return &TopDownWriter{w: w, header: h, buf: make([]byte, h.Stride())}, nil
}

func (w *TopDownWriter) Header() Header { return w.header }

// WriteRow stores the next picture row counted from the top.
func (w *TopDownWriter) WriteRow(row []uint8) error {
	height := int(w.header.Height)
	if w.row >= height {
		return errors.Errorf("%w: bitmap holds %d rows", errors.ErrInvalidArgument, height)
	}
	n := copy(w.buf, row[:int(w.header.Width)*models.Channels])
	clear(w.buf[n:])
	off := int64(HeaderSize) + int64(height-1-w.row)*int64(len(w.buf))
	if _, err := w.w.WriteAt(w.buf, off); err != nil {
		return errors.Annotate(err, errors.ErrOutputNotWritable, `writing bitmap row`)
	}
	w.row++
	return nil
}

// Rows reports how many rows were written.
func (w *TopDownWriter) Rows() int { return w.row }

// Load reads a whole bitmap into a buffer with a mirrored border of ext pixels.
func Load(r io.Reader, ext int) (*raster.Buffer, Header, error) {
	br, err := NewReader(r)
	if err != nil {
		return nil, Header{}, err
	}
	h := br.Header()
	buf, err := raster.NewBuffer(int(h.Width), int(h.Height), ext)
	if err != nil {
		return nil, Header{}, err
	}
	if err := buf.Fill(br); err != nil {
		return nil, Header{}, err
	}
	return buf, h, nil
}

// Save writes a buffer as a bitmap.
func Save(w io.Writer, b *raster.Buffer) error {
	bw, err := NewWriter(w, b.Size())
	if err != nil {
		return err
	}
	if err := b.Drain(bw); err != nil {
		return err
	}
	return bw.Flush()
}

var (
	_ raster.RowReader = (*Reader)(nil)
	_ raster.RowWriter = (*Writer)(nil)
	_ raster.RowWriter = (*TopDownWriter)(nil)
)
