package pipeline

import (
	"strings"

	"rasterflow/internal/errors"
	"rasterflow/internal/logx"
	"rasterflow/pkg/filter"
	"rasterflow/pkg/kernel"
	"rasterflow/pkg/raster"
)

// Filter names a streaming filter.
type Filter int

const (
	Identity Filter = iota
	Box
	Gauss
	Gauss2D
	RMS
	Sobel
)

var filterNames = [...]string{
	Identity: `identity`,
	Box:      `box`,
	Gauss:    `gauss`,
	Gauss2D:  `gauss2d`,
	RMS:      `rms`,
	Sobel:    `sobel`,
}

func (f Filter) String() string {
	if f < 0 || int(f) >= len(filterNames) {
		return `unknown`
	}
	return filterNames[f]
}

// ParseFilter resolves a filter name, case-insensitively.
func ParseFilter(name string) (Filter, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, n := range filterNames {
		if n == name {
			return Filter(f), nil
		}
	}
	return 0, errors.Errorf("%w: filter %q", errors.ErrInvalidArgument, name)
}

// FilterParams selects the filter and its window.
type FilterParams struct {
	Filter Filter

	// Width and Height are the kernel size in pixels. Gauss2D uses the
	// separable factors of radius Width/2 and Height/2. Identity and Sobel
	// ignore them.
	Width  int
	Height int
}

// kernelSize is the window the filter reads.
func (fp FilterParams) kernelSize() (w, h int) {
	switch fp.Filter {
	case Identity:
		return 1, 1
	case Sobel:
		return 3, 3
	case Gauss2D:
		return 2*(fp.Width/2) + 1, 2*(fp.Height/2) + 1
	}
	return fp.Width, fp.Height
}

// run binds the filter to a convolver. Kernels are built here so malformed
// sizes fail before any output exists.
func (fp FilterParams) run(c *filter.Convolver) (func(src raster.RowReader, dst raster.RowWriter) error, error) {
	switch fp.Filter {
	case Identity:
		k := kernel.Identity()
		return func(src raster.RowReader, dst raster.RowWriter) error { return c.Convolve(src, dst, k) }, nil
	case Box, RMS:
		if fp.Width <= 0 || fp.Height <= 0 {
			return nil, errors.Errorf("%w: window size %dx%d", errors.ErrMalformedKernel, fp.Width, fp.Height)
		}
		if fp.Filter == Box {
			return func(src raster.RowReader, dst raster.RowWriter) error {
				return c.BoxBlur(src, dst, fp.Width, fp.Height)
			}, nil
		}
		return func(src raster.RowReader, dst raster.RowWriter) error {
			return c.MovingRMS(src, dst, fp.Width, fp.Height)
		}, nil
	case Gauss:
		k, err := kernel.Gaussian(fp.Height, fp.Width)
		if err != nil {
			return nil, err
		}
		return func(src raster.RowReader, dst raster.RowWriter) error { return c.Convolve(src, dst, k) }, nil
	case Gauss2D:
		if fp.Width <= 0 || fp.Height <= 0 {
			return nil, errors.Errorf("%w: gaussian size %dx%d", errors.ErrMalformedKernel, fp.Width, fp.Height)
		}
		kx, ky, err := kernel.GaussianSeparable(fp.Width/2, fp.Height/2)
		if err != nil {
			return nil, err
		}
		return func(src raster.RowReader, dst raster.RowWriter) error { return c.Separable(src, dst, kx, ky) }, nil
	case Sobel:
		return c.Sobel, nil
	}
	return nil, errors.Errorf("%w: filter %d", errors.ErrInvalidArgument, int(fp.Filter))
}

// Filter streams the bitmap at in through the selected filter into a new
// bitmap at out with the same header fields.
func (p *Processor) Filter(in, out string, fp FilterParams) error {
	src, r, err := openBitmap(in)
	if err != nil {
		return err
	}
	defer src.Close()

	h := r.Header()
	c, err := filter.New(h.Size())
	if err != nil {
		return err
	}
	run, err := fp.run(c)
	if err != nil {
		return err
	}
	if err := c.Fits(fp.kernelSize()); err != nil {
		return err
	}
	c.SetProgressCallback(p.progress(`filter ` + fp.Filter.String()))

	logx.Debug(`filter`, p, `filter`, fp.Filter, `in`, in, `out`, out,
		`width`, h.Width, `height`, h.Height)
	return logx.TimeIt(func() error {
		return writeBitmap(out, h, func(dst raster.RowWriter) error { return run(r, dst) })
	}, `filter done`, p, `filter`, fp.Filter)
}
