package pipeline

import (
	"image"

	"rasterflow/internal/errors"
	"rasterflow/internal/logx"
	"rasterflow/pkg/interpolation"
	"rasterflow/pkg/metrics"
	"rasterflow/pkg/preview"
)

// Compare computes the metrics of the bitmap at b against the reference at a.
func (p *Processor) Compare(a, b string) (metrics.Report, error) {
	ra, _, err := loadBitmap(a, 0)
	if err != nil {
		return metrics.Report{}, err
	}
	rb, _, err := loadBitmap(b, 0)
	if err != nil {
		return metrics.Report{}, err
	}
	rep, err := metrics.Compare(ra, rb)
	if err != nil {
		return metrics.Report{}, err
	}
	logx.Debug(`compare`, p, `a`, a, `b`, b, `rmse`, rep.RMSE, `psnr`, rep.PSNR, `ssim`, rep.SSIM)
	return rep, nil
}

// Preview writes a PNG or JPEG rendering of the bitmap at in whose longer
// side is at most maxSide pixels. A non-empty region, in picture coordinates
// with the origin at the top left, crops the bitmap before scaling.
func (p *Processor) Preview(in, out string, maxSide int, method interpolation.Method, region image.Rectangle) error {
	src, _, err := loadBitmap(in, 0)
	if err != nil {
		return err
	}
	if !region.Empty() {
		src, err = preview.NewViewer(src).ExtractRegion(region.Min.X, region.Min.Y, region.Dx(), region.Dy())
		if err != nil {
			return errors.WrapPrefix(err, in, 0)
		}
	}
	img, err := preview.NewViewer(src).Thumbnail(maxSide, method)
	if err != nil {
		return err
	}
	logx.Debug(`preview`, p, `in`, in, `out`, out, `region`, region, `size`, img.Bounds().Size())
	return preview.SaveImage(img, out)
}

// Channels writes every channel of the bitmap at in as a grayscale PNG into dir.
func (p *Processor) Channels(in, dir string) error {
	src, _, err := loadBitmap(in, 0)
	if err != nil {
		return err
	}
	logx.Debug(`channels`, p, `in`, in, `dir`, dir)
	return preview.NewViewer(src).SaveChannelSequence(dir)
}
