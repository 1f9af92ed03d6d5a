package pipeline

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xbmp "golang.org/x/image/bmp"

	"rasterflow/internal/errors"
	"rasterflow/internal/logx"
	"rasterflow/internal/testutil"
	"rasterflow/pkg/config"
	"rasterflow/pkg/interpolation"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func decode(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := xbmp.Decode(f)
	require.NoError(t, err)
	return img
}

func rgba(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func pattern(x, y int) color.RGBA {
	return color.RGBA{R: uint8(x*37 + y*11), G: uint8(x*5 + y*53), B: uint8(x ^ y*7), A: 255}
}

func newProcessor() *Processor {
	return NewProcessor(&Params{Progress: true}, nil)
}

func TestParseFilter(t *testing.T) {
	for _, f := range []Filter{Identity, Box, Gauss, Gauss2D, RMS, Sobel} {
		got, err := ParseFilter(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	got, err := ParseFilter(" BOX ")
	require.NoError(t, err)
	assert.Equal(t, Box, got)

	_, err = ParseFilter("median")
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}

func TestFilterIdentityIsByteExact(t *testing.T) {
	dir := t.TempDir()
	data := testutil.BMP(7, 5, pattern)
	in := writeFile(t, dir, "in.bmp", data)
	out := filepath.Join(dir, "out.bmp")

	require.NoError(t, newProcessor().Filter(in, out, FilterParams{Filter: Identity}))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestFilterFlatImageIsUnchanged(t *testing.T) {
	dir := t.TempDir()
	flat := func(x, y int) color.RGBA { return color.RGBA{R: 90, G: 45, B: 200} }
	in := writeFile(t, dir, "flat.bmp", testutil.BMP(9, 6, flat))

	for _, fp := range []FilterParams{
		{Filter: Box, Width: 3, Height: 3},
		{Filter: Box, Width: 4, Height: 2},
		{Filter: Gauss, Width: 5, Height: 5},
		{Filter: Gauss2D, Width: 5, Height: 3},
	} {
		t.Run(fp.Filter.String(), func(t *testing.T) {
			out := filepath.Join(dir, fp.Filter.String()+".bmp")
			require.NoError(t, newProcessor().Filter(in, out, fp))
			img := decode(t, out)
			require.Equal(t, image.Rect(0, 0, 9, 6), img.Bounds())
			for y := 0; y < 6; y++ {
				for x := 0; x < 9; x++ {
					assert.Equal(t, color.RGBA{R: 90, G: 45, B: 200, A: 255}, rgba(img, x, y))
				}
			}
		})
	}

	out := filepath.Join(dir, "rms.bmp")
	require.NoError(t, newProcessor().Filter(in, out, FilterParams{Filter: RMS, Width: 3, Height: 3}))
	img := decode(t, out)
	assert.Equal(t, color.RGBA{A: 255}, rgba(img, 4, 3))

	out = filepath.Join(dir, "sobel.bmp")
	require.NoError(t, newProcessor().Filter(in, out, FilterParams{Filter: Sobel}))
	img = decode(t, out)
	assert.Equal(t, color.RGBA{A: 255}, rgba(img, 0, 0))
}

func TestFilterFailures(t *testing.T) {
	dir := t.TempDir()
	small := writeFile(t, dir, "small.bmp", testutil.BMP(2, 2, pattern))
	in := writeFile(t, dir, "in.bmp", testutil.BMP(6, 6, pattern))
	p := newProcessor()

	out := filepath.Join(dir, "too-small.bmp")
	err := p.Filter(small, out, FilterParams{Filter: Box, Width: 7, Height: 7})
	assert.ErrorIs(t, err, errors.ErrImageTooSmall)
	assert.ErrorIs(t, err, errors.ErrUnsupportedFormat)
	assert.NoFileExists(t, out)

	out = filepath.Join(dir, "bad-kernel.bmp")
	err = p.Filter(in, out, FilterParams{Filter: Box, Width: 0, Height: 3})
	assert.ErrorIs(t, err, errors.ErrMalformedKernel)
	assert.NoFileExists(t, out)

	err = p.Filter(filepath.Join(dir, "absent.bmp"), filepath.Join(dir, "x.bmp"), FilterParams{Filter: Identity})
	assert.ErrorIs(t, err, errors.ErrInputNotFound)

	err = p.Filter(in, filepath.Join(dir, "no", "such", "dir.bmp"), FilterParams{Filter: Identity})
	assert.ErrorIs(t, err, errors.ErrOutputNotWritable)

	junk := writeFile(t, dir, "junk.bmp", []byte("not a bitmap at all, just some text padding it out to fifty four bytes"))
	err = p.Filter(junk, filepath.Join(dir, "junk-out.bmp"), FilterParams{Filter: Identity})
	assert.ErrorIs(t, err, errors.ErrUnsupportedFormat)
}

func TestRotate(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.bmp", testutil.BMP(5, 4, pattern))
	src := decode(t, in)
	p := newProcessor()

	for _, m := range interpolation.Methods() {
		t.Run("zero "+m.String(), func(t *testing.T) {
			out := filepath.Join(dir, "zero-"+m.String()+".bmp")
			require.NoError(t, p.Rotate(in, out, 0, m))
			img := decode(t, out)
			require.Equal(t, src.Bounds(), img.Bounds())
			for y := 0; y < 4; y++ {
				for x := 0; x < 5; x++ {
					assert.Equal(t, rgba(src, x, y), rgba(img, x, y))
				}
			}
		})
	}

	out := filepath.Join(dir, "half.bmp")
	require.NoError(t, p.Rotate(in, out, 180, interpolation.NearestNeighbor))
	img := decode(t, out)
	require.Equal(t, src.Bounds(), img.Bounds())
	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			assert.Equal(t, rgba(src, 4-x, 3-y), rgba(img, x, y))
		}
	}

	out = filepath.Join(dir, "quarter.bmp")
	require.NoError(t, p.Rotate(in, out, 90, interpolation.Bilinear))
	assert.Equal(t, image.Rect(0, 0, 4, 5), decode(t, out).Bounds())

	red := writeFile(t, dir, "red.bmp", testutil.BMP(4, 4, func(x, y int) color.RGBA { return color.RGBA{R: 255} }))
	out = filepath.Join(dir, "diamond.bmp")
	require.NoError(t, p.Rotate(red, out, 45, interpolation.NearestNeighbor))
	img = decode(t, out)
	require.Equal(t, image.Rect(0, 0, 6, 6), img.Bounds())
	count := 0
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			switch c := rgba(img, x, y); c {
			case color.RGBA{R: 255, A: 255}:
				count++
			default:
				assert.Equal(t, color.RGBA{A: 255}, c)
			}
		}
	}
	assert.Equal(t, 10, count)

	tiny := writeFile(t, dir, "tiny.bmp", testutil.BMP(2, 2, pattern))
	out = filepath.Join(dir, "tiny-out.bmp")
	err := p.Rotate(tiny, out, 30, interpolation.Lanczos3)
	assert.ErrorIs(t, err, errors.ErrImageTooSmall)
	assert.NoFileExists(t, out)
}

func TestDownscale(t *testing.T) {
	dir := t.TempDir()
	blocks := func(x, y int) color.RGBA {
		v := uint8(40*(x/4) + 100*(y/4))
		return color.RGBA{R: v, G: v + 1, B: v + 2}
	}
	in := writeFile(t, dir, "blocks.bmp", testutil.BMP(8, 8, blocks))
	p := newProcessor()

	out := filepath.Join(dir, "avg.bmp")
	require.NoError(t, p.Downscale(in, out, 4, config.DownscaleAverage))
	img := decode(t, out)
	require.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			want := blocks(4*x, 4*y)
			want.A = 255
			assert.Equal(t, want, rgba(img, x, y))
		}
	}

	thinIn := writeFile(t, dir, "pattern.bmp", testutil.BMP(7, 5, pattern))
	src := decode(t, thinIn)
	out = filepath.Join(dir, "thin.bmp")
	require.NoError(t, p.Downscale(thinIn, out, 3, config.DownscaleThin))
	img = decode(t, out)
	require.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	// rows are kept counting from the bottom of the picture: rows 4 and 1
	for x := 0; x < 3; x++ {
		assert.Equal(t, rgba(src, 3*x, 1), rgba(img, x, 0))
		assert.Equal(t, rgba(src, 3*x, 4), rgba(img, x, 1))
	}

	out = filepath.Join(dir, "bad.bmp")
	assert.ErrorIs(t, p.Downscale(in, out, 0, config.DownscaleAverage), errors.ErrInvalidArgument)
	assert.ErrorIs(t, p.Downscale(in, out, 2, "median"), errors.ErrInvalidArgument)
	assert.NoFileExists(t, out)
}

func TestConvertTIFF(t *testing.T) {
	dir := t.TempDir()
	px := func(x, y int) [3]uint16 {
		return [3]uint16{uint16(x*40) << 2, uint16(y*30) << 2, uint16(x+y) << 2}
	}
	in := writeFile(t, dir, "scan.tif", testutil.TIFF16(5, 7, testutil.TIFFOptions{RowsPerStrip: 3}, px))
	p := newProcessor()

	out := filepath.Join(dir, "scan.bmp")
	require.NoError(t, p.ConvertTIFF(in, out, 1, nil))
	img := decode(t, out)
	require.Equal(t, image.Rect(0, 0, 5, 7), img.Bounds())
	for y := 0; y < 7; y++ {
		for x := 0; x < 5; x++ {
			want := color.RGBA{R: uint8(x * 40), G: uint8(y * 30), B: uint8(x + y), A: 255}
			assert.Equal(t, want, rgba(img, x, y), "pixel %d,%d", x, y)
		}
	}

	flat := func(x, y int) [3]uint16 {
		v := uint16(100*(x/2)+10*(y/2)) << 2
		return [3]uint16{v, v, v}
	}
	in = writeFile(t, dir, "blocks.tif", testutil.TIFF16(4, 4, testutil.TIFFOptions{OmitRowsPerStrip: true}, flat))
	out = filepath.Join(dir, "blocks.bmp")
	require.NoError(t, p.ConvertTIFF(in, out, 2, nil))
	img = decode(t, out)
	require.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
	assert.Equal(t, color.RGBA{R: 110, G: 110, B: 110, A: 255}, rgba(img, 1, 1))
	assert.Equal(t, color.RGBA{R: 10, G: 10, B: 10, A: 255}, rgba(img, 0, 1))
}

func TestConvertTIFFContrast(t *testing.T) {
	dir := t.TempDir()
	px := func(x, y int) [3]uint16 {
		r := uint16(1000)
		if (x+y)%2 == 1 {
			r = 3000
		}
		return [3]uint16{r, 500, uint16(x * 100)}
	}
	in := writeFile(t, dir, "scan.tif", testutil.TIFF16(4, 2, testutil.TIFFOptions{RowsPerStrip: 1}, px))
	out := filepath.Join(dir, "scan.bmp")

	var logs bytes.Buffer
	p := NewProcessor(nil, logx.Prov(logx.NewText(&logs, false)))
	require.NoError(t, p.ConvertTIFF(in, out, 1, &ContrastParams{Low: 0, High: 1}))
	// only the constant channel is reported
	assert.Contains(t, logs.String(), `level=WARN`)
	assert.Contains(t, logs.String(), `channel=green`)
	assert.NotContains(t, logs.String(), `channel=red`)
	assert.NotContains(t, logs.String(), `channel=blue`)
	img := decode(t, out)
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			c := rgba(img, x, y)
			if (x+y)%2 == 1 {
				assert.Equal(t, uint8(255), c.R)
			} else {
				assert.Equal(t, uint8(0), c.R)
			}
			// one value: cuts widened to 499..501
			assert.Equal(t, uint8(128), c.G)
			assert.Equal(t, uint8(x*85), c.B)
		}
	}

	err := newProcessor().ConvertTIFF(in, filepath.Join(dir, "bad.bmp"), 1, &ContrastParams{Low: 0.8, High: 0.2})
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}

func TestConvertTIFFRejects(t *testing.T) {
	dir := t.TempDir()
	p := newProcessor()
	px := func(x, y int) [3]uint16 { return [3]uint16{1, 2, 3} }

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"big endian", append([]byte{'M', 'M', 0, 42}, make([]byte, 16)...), errors.ErrUnsupportedFormat},
		{"eight bit", testutil.TIFF16(2, 2, testutil.TIFFOptions{BitsPerSample: 8}, px), errors.ErrUnsupportedFormat},
		{"compressed", testutil.TIFF16(2, 2, testutil.TIFFOptions{Compression: 5}, px), errors.ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := writeFile(t, dir, "in.tif", tt.data)
			out := filepath.Join(dir, tt.name+".bmp")
			assert.ErrorIs(t, p.ConvertTIFF(in, out, 1, nil), tt.want)
			assert.NoFileExists(t, out)
		})
	}

	err := p.ConvertTIFF(filepath.Join(dir, "absent.tif"), filepath.Join(dir, "x.bmp"), 1, nil)
	assert.ErrorIs(t, err, errors.ErrInputNotFound)

	in := writeFile(t, dir, "ok.tif", testutil.TIFF16(2, 2, testutil.TIFFOptions{}, px))
	assert.ErrorIs(t, p.ConvertTIFF(in, filepath.Join(dir, "x.bmp"), 0, nil), errors.ErrInvalidArgument)
}

func TestCloseOutputJoinsErrors(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.bmp"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// closing twice fails, and the earlier failure is kept next to it
	err = closeOutput(f, errors.Errorf("%w: short strip", errors.ErrTruncated))
	assert.ErrorIs(t, err, errors.ErrTruncated)
	assert.ErrorIs(t, err, errors.ErrOutputNotWritable)

	err = closeOutput(f, nil)
	assert.ErrorIs(t, err, errors.ErrOutputNotWritable)
}

func TestCompare(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.bmp", testutil.BMP(6, 6, pattern))
	b := writeFile(t, dir, "b.bmp", testutil.BMP(6, 6, pattern))
	c := writeFile(t, dir, "c.bmp", testutil.BMP(5, 6, pattern))
	p := newProcessor()

	rep, err := p.Compare(a, b)
	require.NoError(t, err)
	assert.Zero(t, rep.RMSE)
	assert.Equal(t, 100.0, rep.PSNR)
	assert.InDelta(t, 1, rep.SSIM, 1e-9)

	_, err = p.Compare(a, c)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	_, err = p.Compare(a, filepath.Join(dir, "absent.bmp"))
	assert.ErrorIs(t, err, errors.ErrInputNotFound)
}

func TestPreviewAndChannels(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.bmp", testutil.BMP(30, 12, pattern))
	p := newProcessor()

	out := filepath.Join(dir, "preview.png")
	require.NoError(t, p.Preview(in, out, 10, interpolation.Bicubic, image.Rectangle{}))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 10, 4), img.Bounds())

	// a region small enough is copied unscaled from the top-left origin
	out = filepath.Join(dir, "region.png")
	require.NoError(t, p.Preview(in, out, 10, interpolation.NearestNeighbor, image.Rect(20, 2, 26, 5)))
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	img, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 6, 3), img.Bounds())
	assert.Equal(t, pattern(20, 2), rgba(img, 0, 0))
	assert.Equal(t, pattern(25, 4), rgba(img, 5, 2))

	err = p.Preview(in, filepath.Join(dir, "outside.png"), 10, interpolation.Bicubic, image.Rect(25, 0, 35, 5))
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
	assert.NoFileExists(t, filepath.Join(dir, "outside.png"))

	require.NoError(t, p.Channels(in, filepath.Join(dir, "channels")))
	assert.FileExists(t, filepath.Join(dir, "channels", "channel_green.png"))
}
