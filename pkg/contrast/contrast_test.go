package contrast

import (
	"bytes"
	"testing"

	"github.com/anthonynsimon/bild/histogram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rasterflow/internal/errors"
	"rasterflow/internal/models"
	"rasterflow/internal/testutil"
	"rasterflow/pkg/tiff"
)

// uniform puts one sample in every bucket of [from, to).
func uniform(from, to int) histogram.Histogram {
	h := NewHistogram()
	for v := from; v < to; v++ {
		h.Bins[v] = 1
	}
	return h
}

func TestPercentiles(t *testing.T) {
	h := uniform(1000, 2000)
	c := Percentiles(h, 0.1, 0.9)
	// 100 samples lie at or below 1099, the first bucket exceeding is 1100
	assert.Equal(t, 1100, c.Low)
	// 900 samples are reached at bucket 1899
	assert.Equal(t, 1899, c.High)
	assert.False(t, c.Flat)
}

func TestPercentilesSingleValueWidens(t *testing.T) {
	h := NewHistogram()
	h.Bins[500] = 42
	c := Percentiles(h, 0.05, 0.95)
	assert.Equal(t, Cuts{Low: 499, High: 501, Flat: true}, c)
	assert.Equal(t, uint8(128), c.Map(500))
	assert.Equal(t, uint8(0), c.Map(0))
	assert.Equal(t, uint8(255), c.Map(65535))
}

func TestPercentilesEmptyHistogram(t *testing.T) {
	c := Percentiles(NewHistogram(), 0.1, 0.9)
	assert.Less(t, c.Low, c.High)
	assert.True(t, c.Flat)
	assert.NotPanics(t, func() { c.Map(7) })
}

func TestMap(t *testing.T) {
	c := Cuts{Low: 100, High: 355}
	assert.Equal(t, uint8(0), c.Map(50))
	assert.Equal(t, uint8(0), c.Map(100))
	assert.Equal(t, uint8(1), c.Map(101))
	assert.Equal(t, uint8(255), c.Map(355))
	assert.Equal(t, uint8(255), c.Map(60000))
}

func TestBuildValidates(t *testing.T) {
	var hs [models.Channels]histogram.Histogram
	for i := range hs {
		hs[i] = uniform(0, 10)
	}
	for _, p := range [][2]float64{{-0.1, 0.9}, {0.2, 1.1}, {0.5, 0.5}, {0.9, 0.1}} {
		_, err := Build(hs, p[0], p[1])
		assert.True(t, errors.Is(err, errors.ErrInvalidArgument), "%v", p)
	}
	s, err := Build(hs, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), s.Apply(models.Red, 9))
}

func TestCollectAndApplyThroughReader(t *testing.T) {
	// red spans 0..39960, green is constant, blue spans 10000..19990
	px := func(x, y int) [3]uint16 {
		i := y*40 + x
		return [3]uint16{uint16(i * 40), 300, uint16(10000 + i*10)}
	}
	data := testutil.TIFF16(40, 25, testutil.TIFFOptions{RowsPerStrip: 8}, px)
	r, err := tiff.Open(bytes.NewReader(data), nil)
	require.NoError(t, err)
	hs, err := Collect(r, r.Metadata().Size)
	require.NoError(t, err)
	assert.Equal(t, 1000, hs[models.Green].Bins[300])
	assert.Equal(t, 1, hs[models.Red].Bins[0])

	s, err := Build(hs, 0.01, 0.99)
	require.NoError(t, err)
	assert.Equal(t, Cuts{Low: 299, High: 301, Flat: true}, s[models.Green])
	assert.Equal(t, []int{models.Green}, s.Flat())

	r, err = tiff.Open(bytes.NewReader(data), s.Apply)
	require.NoError(t, err)
	row := make([]uint8, 40*3)
	require.NoError(t, r.ReadRow(row))
	assert.Equal(t, uint8(0), row[models.Red], "darkest red is below the low cut")
	assert.Equal(t, uint8(128), row[models.Green])
	for y := 1; y < 25; y++ {
		require.NoError(t, r.ReadRow(row))
	}
	assert.Equal(t, uint8(255), row[39*3+models.Blue], "brightest blue is above the high cut")
}
