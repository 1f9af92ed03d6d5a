// Package preview renders rasters as standard images for quick inspection.
// It converts the bottom-up blue-green-red storage to top-down images,
// extracts single channels and regions, and scales previews with
// golang.org/x/image/draw.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"rasterflow/internal/errors"
	"rasterflow/internal/models"
	"rasterflow/pkg/interpolation"
	"rasterflow/pkg/raster"
)

// Viewer wraps a raster for rendering
type Viewer struct {
	// buf holds the pixels in storage order, row 0 at the bottom
	buf *raster.Buffer
}

// NewViewer creates a viewer over b
func NewViewer(b *raster.Buffer) *Viewer {
	return &Viewer{buf: b}
}

// row maps a picture row counted from the top to the storage row
func (v *Viewer) row(y int) int { return v.buf.Height() - 1 - y }

// Image converts the raster to an opaque top-down image
func (v *Viewer) Image() *image.NRGBA {
	w, h := v.buf.Width(), v.buf.Height()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := v.buf.Pixel(x, v.row(y))
			img.SetNRGBA(x, y, color.NRGBA{R: p[models.Red], G: p[models.Green], B: p[models.Blue], A: 255})
		}
	}
	return img
}

// channelNames maps the accepted channel names to storage channel indices
var channelNames = map[string]int{
	"r": models.Red, "red": models.Red,
	"g": models.Green, "green": models.Green,
	"b": models.Blue, "blue": models.Blue,
}

// ExtractChannel returns one channel as a grayscale image
func (v *Viewer) ExtractChannel(name string) (*image.Gray, error) {
	c, ok := channelNames[strings.ToLower(name)]
	if !ok {
		return nil, errors.Errorf("%w: invalid channel: %s (must be red, green or blue)", errors.ErrInvalidArgument, name)
	}
	w, h := v.buf.Width(), v.buf.Height()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: v.buf.At(x, v.row(y), c)})
		}
	}
	return img, nil
}

// ExtractRegion copies a w×h region whose top-left corner is (x0, y0) in
// picture coordinates into a new raster
func (v *Viewer) ExtractRegion(x0, y0, w, h int) (*raster.Buffer, error) {
	if x0 < 0 || y0 < 0 {
		return nil, errors.Errorf("%w: start coordinates must be non-negative", errors.ErrInvalidArgument)
	}
	if w <= 0 || h <= 0 {
		return nil, errors.Errorf("%w: region size must be positive", errors.ErrInvalidArgument)
	}
	if x0+w > v.buf.Width() || y0+h > v.buf.Height() {
		return nil, errors.Errorf("%w: region extends beyond image boundaries", errors.ErrInvalidArgument)
	}
	out, err := raster.NewBuffer(w, h, 0)
	if err != nil {
		return nil, err
	}
	for y := 0; y < h; y++ {
		src := v.buf.Row(v.row(y0 + y))
		copy(out.Row(h-1-y), src[x0*models.Channels:(x0+w)*models.Channels])
	}
	return out, nil
}

// scaler picks the x/image/draw kernel closest to the interpolation method
func scaler(m interpolation.Method) draw.Scaler {
	switch m {
	case interpolation.NearestNeighbor:
		return draw.NearestNeighbor
	case interpolation.Bilinear:
		return draw.ApproxBiLinear
	default:
		return draw.CatmullRom
	}
}

// Thumbnail scales the picture so that its longer side is at most maxSide,
// keeping the aspect ratio. Pictures already small enough are returned at
// their own size.
func (v *Viewer) Thumbnail(maxSide int, m interpolation.Method) (*image.NRGBA, error) {
	if maxSide <= 0 {
		return nil, errors.Errorf("%w: thumbnail side %d", errors.ErrInvalidArgument, maxSide)
	}
	src := v.Image()
	w, h := v.buf.Width(), v.buf.Height()
	if w <= maxSide && h <= maxSide {
		return src, nil
	}
	tw, th := maxSide, maxSide
	if w >= h {
		th = max(1, h*maxSide/w)
	} else {
		tw = max(1, w*maxSide/h)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, tw, th))
	scaler(m).Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// SaveImage writes img as PNG, or as JPEG when the file name ends in .jpg or .jpeg
func SaveImage(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Errorf("%w: %w", errors.ErrOutputNotWritable, err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(file, img)
	}
	if err != nil {
		return errors.Errorf("%w: encoding %s: %w", errors.ErrOutputNotWritable, filename, err)
	}
	return file.Close()
}

// SaveChannelSequence writes every channel as a grayscale PNG into outputDir
func (v *Viewer) SaveChannelSequence(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return errors.Errorf("%w: %w", errors.ErrOutputNotWritable, err)
	}
	for _, name := range []string{"red", "green", "blue"} {
		img, err := v.ExtractChannel(name)
		if err != nil {
			return err
		}
		filename := filepath.Join(outputDir, fmt.Sprintf("channel_%s.png", name))
		if err := SaveImage(img, filename); err != nil {
			return err
		}
	}
	return nil
}
