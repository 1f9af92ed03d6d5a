// Package raster holds the pixel storage used by the filters and resamplers:
// a whole-image Buffer with a mirrored border, a circular row Window, the
// mirroring rules shared by both, and the row streaming interfaces the
// container codecs implement.
//
// All samples are stored in blue-green-red order with three channels per
// pixel. Row 0 is the first row of the container, which for bitmaps is the
// bottom row of the picture.
package raster
