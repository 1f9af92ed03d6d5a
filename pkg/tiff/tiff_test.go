package tiff

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xtiff "golang.org/x/image/tiff"

	"rasterflow/internal/errors"
	"rasterflow/internal/models"
	"rasterflow/internal/testutil"
)

func ramp(x, y int) [3]uint16 {
	return [3]uint16{uint16(x * 100), uint16(y * 200), uint16(1000 + x + y)}
}

func TestMetadata(t *testing.T) {
	data := testutil.TIFF16(5, 7, testutil.TIFFOptions{RowsPerStrip: 3}, ramp)
	m, err := ReadMetadata(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, models.Size{Width: 5, Height: 7}, m.Size)
	assert.Equal(t, []uint16{16, 16, 16}, m.BitsPerSample)
	assert.Equal(t, 3, m.Strips.RowsPerStrip)
	assert.Len(t, m.Strips.Offsets, 3)
	assert.Equal(t, int64(8), m.Strips.Offsets[0])
	assert.Equal(t, int64(8+3*30), m.Strips.Offsets[1])
	assert.Equal(t, 30, m.RowBytes())
}

func TestSingleStripInlineOffset(t *testing.T) {
	data := testutil.TIFF16(2, 2, testutil.TIFFOptions{OmitRowsPerStrip: true}, ramp)
	m, err := ReadMetadata(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []int64{8}, m.Strips.Offsets)
	assert.Equal(t, 2, m.Strips.RowsPerStrip, "absent rows per strip means one strip")
}

func TestRowsMatchStandardDecoder(t *testing.T) {
	data := testutil.TIFF16(6, 5, testutil.TIFFOptions{RowsPerStrip: 2}, ramp)
	img, err := xtiff.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	rgba, ok := img.(*image.RGBA64)
	require.True(t, ok)

	r, err := Open(bytes.NewReader(data), nil)
	require.NoError(t, err)
	raw := make([]uint16, 6*3)
	for y := 0; y < 5; y++ {
		require.NoError(t, r.ReadRawRow(raw))
		for x := 0; x < 6; x++ {
			c := rgba.RGBA64At(x, y)
			assert.Equal(t, []uint16{c.R, c.G, c.B}, raw[x*3:x*3+3], "(%d,%d)", x, y)
		}
	}
	assert.Error(t, r.ReadRawRow(raw))
}

func TestReadRowConvertsToBGR(t *testing.T) {
	data := testutil.TIFF16(3, 4, testutil.TIFFOptions{RowsPerStrip: 3}, func(x, y int) [3]uint16 {
		return [3]uint16{uint16(4 * (x + 1)), uint16(4 * (y + 10)), 4000}
	})
	r, err := Open(bytes.NewReader(data), nil)
	require.NoError(t, err)
	row := make([]uint8, 9)
	for y := 0; y < 4; y++ {
		require.NoError(t, r.ReadRow(row))
		for x := 0; x < 3; x++ {
			assert.Equal(t, uint8(x+1), row[x*3+models.Red])
			assert.Equal(t, uint8(y+10), row[x*3+models.Green])
			assert.Equal(t, uint8(255), row[x*3+models.Blue], "4000>>2 saturates")
		}
	}
}

func TestCustomTransformSeesChannels(t *testing.T) {
	data := testutil.TIFF16(1, 1, testutil.TIFFOptions{}, func(x, y int) [3]uint16 { return [3]uint16{1, 2, 3} })
	var seen []int
	r, err := Open(bytes.NewReader(data), func(c int, v uint16) uint8 {
		seen = append(seen, c)
		return uint8(v * 10)
	})
	require.NoError(t, err)
	row := make([]uint8, 3)
	require.NoError(t, r.ReadRow(row))
	assert.Equal(t, models.Pixel{30, 20, 10}, models.Pixel(row))
	assert.ElementsMatch(t, []int{models.Red, models.Green, models.Blue}, seen)
}

func TestShift10Bit(t *testing.T) {
	assert.Equal(t, uint8(0), Shift10Bit(0, 3))
	assert.Equal(t, uint8(255), Shift10Bit(0, 1023))
	assert.Equal(t, uint8(255), Shift10Bit(0, 65535))
	assert.Equal(t, uint8(100), Shift10Bit(0, 401))
}

func TestRejections(t *testing.T) {
	for name, tc := range map[string]struct {
		data []byte
		want error
	}{
		`big endian`:  {append([]byte{'M', 'M', 0, 42}, make([]byte, 8)...), errors.ErrUnsupportedFormat},
		`bad magic`:   {[]byte{'G', 'I', 'F', '8', 0, 0, 0, 0}, errors.ErrUnsupportedFormat},
		`compressed`:  {testutil.TIFF16(2, 2, testutil.TIFFOptions{Compression: 5}, ramp), errors.ErrUnsupportedFormat},
		`8 bit`:       {testutil.TIFF16(2, 2, testutil.TIFFOptions{BitsPerSample: 8}, ramp), errors.ErrUnsupportedFormat},
		`short`:       {[]byte{'I', 'I'}, errors.ErrTruncated},
		`no dir data`: {[]byte{'I', 'I', 42, 0, 100, 0, 0, 0}, errors.ErrTruncated},
	} {
		_, err := ReadMetadata(bytes.NewReader(tc.data))
		assert.True(t, errors.Is(err, tc.want), "%s: %v", name, err)
	}
}

func TestTruncatedStrip(t *testing.T) {
	data := testutil.TIFF16(4, 4, testutil.TIFFOptions{}, ramp)
	m, err := ReadMetadata(bytes.NewReader(data))
	require.NoError(t, err)
	// keep the header but cut into the pixel data
	short := data[:8+2*m.RowBytes()+3]
	r := NewReader(bytes.NewReader(short), m, nil)
	row := make([]uint8, 12)
	require.NoError(t, r.ReadRow(row))
	require.NoError(t, r.ReadRow(row))
	assert.True(t, errors.Is(r.ReadRow(row), errors.ErrTruncated))
}
