package raster

import "rasterflow/internal/models"

// Sample is the set of element types a Window can hold.
type Sample interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int32 | ~int64 | ~float32 | ~float64
}

// MirrorIndex reflects i into [0, n) about the boundary without repeating the
// edge element: -1 maps to 0, -2 to 1, n to n-1, n+1 to n-2.
// It assumes -n <= i < 2n.
func MirrorIndex(i, n int) int {
	switch {
	case i < 0:
		return -i - 1
	case i >= n:
		return 2*n - 1 - i
	default:
		return i
	}
}

// MirrorRow fills the horizontal border of an extended row. The row holds
// width+2*radius pixels of models.Channels samples each, and the real pixels
// occupy columns [radius, radius+width). Column x < radius takes the value of
// column 2*radius-1-x and column x >= width+radius takes the value of column
// 2*(width+radius)-1-x. radius must not exceed width.
func MirrorRow[T Sample](row []T, width, radius int) {
	const ch = models.Channels
	for x := 0; x < radius; x++ {
		copy(row[x*ch:(x+1)*ch], row[(2*radius-1-x)*ch:(2*radius-x)*ch])
	}
	for x := width + radius; x < width+2*radius; x++ {
		src := 2*(width+radius) - 1 - x
		copy(row[x*ch:(x+1)*ch], row[src*ch:(src+1)*ch])
	}
}
