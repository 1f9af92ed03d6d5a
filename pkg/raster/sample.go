package raster

// Round8 converts an accumulated value to a sample: it adds one half,
// truncates and clamps to [0, 255]. Every filter and interpolator rounds
// through here.
func Round8(v float64) uint8 {
	v += 0.5
	switch {
	case v <= 0 || v != v:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
