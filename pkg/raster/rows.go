package raster

// RowReader yields consecutive rows of a raster. dst holds width*3 samples.
type RowReader interface {
	ReadRow(dst []uint8) error
}

// RowWriter accepts consecutive rows of a raster.
type RowWriter interface {
	WriteRow(row []uint8) error
}

// RowReaderFunc adapts a function to RowReader.
type RowReaderFunc func(dst []uint8) error

func (f RowReaderFunc) ReadRow(dst []uint8) error { return f(dst) }

// RowWriterFunc adapts a function to RowWriter.
type RowWriterFunc func(row []uint8) error

func (f RowWriterFunc) WriteRow(row []uint8) error { return f(row) }
