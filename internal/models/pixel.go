package models

// Channels is the number of samples stored per pixel.
const Channels = 3

// Channel indices of the internal blue-green-red sample order.
const (
	Blue = iota
	Green
	Red
)

// Pixel is one pixel in the internal channel order
type Pixel [Channels]uint8

// RGB builds a Pixel from red, green and blue values
func RGB(r, g, b uint8) Pixel { return Pixel{Blue: b, Green: g, Red: r} }

// Size describes the dimensions of a raster in pixels
type Size struct {
	// Width is the number of pixels per row
	Width int

	// Height is the number of rows
	Height int
}

// Valid reports whether both sides are positive
func (s Size) Valid() bool { return s.Width > 0 && s.Height > 0 }

// Pixels returns Width*Height
func (s Size) Pixels() int { return s.Width * s.Height }

// StripIndex locates the row strips of a tagged container.
// It is parsed once and never mutated.
type StripIndex struct {
	// Offsets are the byte offsets of the strips, in row order
	Offsets []int64

	// RowsPerStrip is the number of rows stored in every strip but the last
	RowsPerStrip int
}

// Locate returns the strip number and the row index within that strip
func (s StripIndex) Locate(row int) (strip, within int) {
	if s.RowsPerStrip <= 0 {
		return 0, row
	}
	return row / s.RowsPerStrip, row % s.RowsPerStrip
}
