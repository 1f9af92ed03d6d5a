// Package contrast builds the percentile contrast stretch applied when 16-bit
// scans are reduced to 8 bits. A 65536-bucket histogram is gathered per
// channel in a first pass, two percentile cut points are located in its
// cumulative counts, and samples are mapped linearly from [low, high] onto
// [0, 255].
package contrast

import (
	"github.com/anthonynsimon/bild/histogram"

	"rasterflow/internal/errors"
	"rasterflow/internal/models"
)

// Buckets is the number of histogram buckets, one per 16-bit value.
const Buckets = 1 << 16

// RawRowReader yields rows of red, green, blue 16-bit triples.
type RawRowReader interface {
	ReadRawRow(dst []uint16) error
}

// Cuts are the sample values mapped to 0 and 255.
type Cuts struct {
	Low  int
	High int
	// Flat is set when the histogram gave no usable range and the cuts were
	// substituted.
	Flat bool
}

// NewHistogram returns an empty 65536-bucket histogram.
func NewHistogram() histogram.Histogram {
	return histogram.Histogram{Bins: make([]int, Buckets)}
}

// Collect counts every sample of a width×height image per channel.
// The result is indexed by models.Red, models.Green and models.Blue.
func Collect(r RawRowReader, size models.Size) ([models.Channels]histogram.Histogram, error) {
	var hs [models.Channels]histogram.Histogram
	for c := range hs {
		hs[c] = NewHistogram()
	}
	row := make([]uint16, size.Width*models.Channels)
	for y := 0; y < size.Height; y++ {
		if err := r.ReadRawRow(row); err != nil {
			return hs, errors.Annotate(err, errors.ErrTruncated, `collecting histogram`)
		}
		for x := 0; x < size.Width; x++ {
			s := row[x*models.Channels:]
			hs[models.Red].Bins[s[0]]++
			hs[models.Green].Bins[s[1]]++
			hs[models.Blue].Bins[s[2]]++
		}
	}
	return hs, nil
}

// Percentiles locates the cut points: Low is the first bucket whose
// cumulative count exceeds low·total and High the first whose cumulative
// count reaches high·total. Inverted cuts are swapped. Equal cuts are
// widened by one on each side so the mapping never divides by zero, and an
// empty histogram maps the full 16-bit range. Both cases set Flat.
func Percentiles(h histogram.Histogram, low, high float64) Cuts {
	cum := h.Cumulative().Bins
	last := len(cum) - 1
	if last < 0 || cum[last] == 0 {
		return Cuts{Low: 0, High: Buckets - 1, Flat: true}
	}
	total := float64(cum[last])
	c := Cuts{Low: last, High: last}
	for i, n := range cum {
		if float64(n) > low*total {
			c.Low = i
			break
		}
	}
	for i, n := range cum {
		if float64(n) >= high*total {
			c.High = i
			break
		}
	}
	if c.Low > c.High {
		c.Low, c.High = c.High, c.Low
	}
	if c.Low == c.High {
		c.Low--
		c.High++
		c.Flat = true
	}
	return c
}

// Map stretches v linearly from [Low, High] to [0, 255].
func (c Cuts) Map(v uint16) uint8 {
	f := 255 * float64(int(v)-c.Low) / float64(c.High-c.Low)
	switch {
	case f < 0:
		f = 0
	case f > 255:
		f = 255
	}
	return uint8(f + 0.5)
}

// Stretch holds the cut points of every channel.
type Stretch [models.Channels]Cuts

// Build validates the percentiles and computes the cut points per channel.
func Build(hs [models.Channels]histogram.Histogram, low, high float64) (Stretch, error) {
	if low < 0 || high > 1 || low >= high {
		return Stretch{}, errors.Errorf("%w: percentiles %v..%v", errors.ErrInvalidArgument, low, high)
	}
	var s Stretch
	for c := range hs {
		s[c] = Percentiles(hs[c], low, high)
	}
	return s, nil
}

// Flat lists the channels whose cuts were substituted.
func (s Stretch) Flat() []int {
	var cs []int
	for c := range s {
		if s[c].Flat {
			cs = append(cs, c)
		}
	}
	return cs
}

// Apply maps sample v of channel c. Its signature matches the ingestion
// transform of the tiff reader.
func (s Stretch) Apply(c int, v uint16) uint8 { return s[c].Map(v) }
