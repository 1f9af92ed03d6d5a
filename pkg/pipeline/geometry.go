package pipeline

import (
	"rasterflow/internal/errors"
	"rasterflow/internal/logx"
	"rasterflow/pkg/config"
	"rasterflow/pkg/interpolation"
	"rasterflow/pkg/raster"
	"rasterflow/pkg/resample"
	"rasterflow/pkg/transform"
)

// Rotate rotates the bitmap at in by angleDeg degrees counter-clockwise into
// a bitmap at out just large enough to hold every rotated source pixel.
// Pixels that map outside the source are black.
func (p *Processor) Rotate(in, out string, angleDeg float64, method interpolation.Method) error {
	if method.String() == `unknown` {
		return errors.Errorf("%w: interpolation %d", errors.ErrInvalidArgument, int(method))
	}
	r := resample.NewRotator(method)
	src, h, err := loadBitmap(in, r.Border())
	if err != nil {
		return err
	}
	rot, size := transform.Fit(angleDeg, src.Size())
	oh, err := h.WithSize(size)
	if err != nil {
		return err
	}
	r.SetProgressCallback(p.progress(`rotate`))

	logx.Debug(`rotate`, p, `in`, in, `out`, out, `angle`, angleDeg, `interpolation`, method,
		`cos`, rot.Cos(), `sin`, rot.Sin(), `from`, src.Size(), `to`, size)
	return logx.TimeIt(func() error {
		return writeBitmap(out, oh, func(dst raster.RowWriter) error {
			return r.Rotate(src, dst, rot, size)
		})
	}, `rotate done`, p, `angle`, angleDeg)
}

// Downscale reduces the bitmap at in by factor n with the given method,
// config.DownscaleAverage or config.DownscaleThin.
func (p *Processor) Downscale(in, out string, n int, method string) error {
	var run func(src raster.RowReader, dst raster.RowWriter, fn logx.ProgressFunc) error
	if n <= 0 {
		return errors.Errorf("%w: scale factor %d", errors.ErrInvalidArgument, n)
	}

	src, r, err := openBitmap(in)
	if err != nil {
		return err
	}
	defer src.Close()

	h := r.Header()
	size := h.Size()
	switch method {
	case config.DownscaleAverage, ``:
		run = func(src raster.RowReader, dst raster.RowWriter, fn logx.ProgressFunc) error {
			return resample.Downscale(src, dst, size, n, fn)
		}
	case config.DownscaleThin:
		run = func(src raster.RowReader, dst raster.RowWriter, fn logx.ProgressFunc) error {
			return resample.Thin(src, dst, size, n, fn)
		}
	default:
		return errors.Errorf("%w: downscale method %q", errors.ErrInvalidArgument, method)
	}
	oh, err := h.WithSize(resample.ScaledSize(size, n))
	if err != nil {
		return err
	}

	logx.Debug(`downscale`, p, `in`, in, `out`, out, `factor`, n, `method`, method)
	return logx.TimeIt(func() error {
		return writeBitmap(out, oh, func(dst raster.RowWriter) error {
			return run(r, dst, p.progress(`downscale`))
		})
	}, `downscale done`, p, `factor`, n)
}
