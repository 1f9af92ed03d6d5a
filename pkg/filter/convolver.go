// Package filter implements the streaming convolution engine.
//
// Rows are pulled from a raster.RowReader one at a time into a circular
// window of kernel-height rows and results are pushed to a raster.RowWriter
// as soon as the window covering them is complete, so memory stays at
// O(width × kernel height) regardless of the image height.
//
// The window is shared by every filter. What a window row holds and how an
// output row is computed from the window is decided by an accumulation
// policy: the general kernel and Sobel policies keep mirror-extended source
// rows, the separable policy keeps horizontally filtered rows, and the box
// and moving RMS policies keep horizontal running sums and maintain vertical
// column totals as rows enter and leave the window.
package filter

import (
	"rasterflow/internal/errors"
	"rasterflow/internal/logx"
	"rasterflow/internal/models"
	"rasterflow/pkg/kernel"
	"rasterflow/pkg/raster"
)

// Convolver filters images of one size.
type Convolver struct {
	size     models.Size
	progress logx.ProgressFunc
}

// New returns a Convolver for images of the given size.
func New(size models.Size) (*Convolver, error) {
	if !size.Valid() {
		return nil, errors.Errorf("%w: image size %dx%d", errors.ErrInvalidArgument, size.Width, size.Height)
	}
	return &Convolver{size: size}, nil
}

// SetProgressCallback registers fn to be called after every emitted row.
func (c *Convolver) SetProgressCallback(fn logx.ProgressFunc) { c.progress = fn }

// Size returns the image size the convolver was built for.
func (c *Convolver) Size() models.Size { return c.size }

// Fits reports ErrImageTooSmall when a kernel of the given size cannot be
// mirrored inside the image.
func (c *Convolver) Fits(kernelWidth, kernelHeight int) error {
	hr, vr := kernelWidth/2, kernelHeight/2
	if hr > c.size.Width || vr > c.size.Height {
		return errors.Errorf("%w: %dx%d image, kernel radius %d,%d",
			errors.ErrImageTooSmall, c.size.Width, c.size.Height, hr, vr)
	}
	return nil
}

// Convolve applies k to every channel. Each output sample is the weighted sum
// of the mirror-extended neighbourhood, rounded half up and clamped.
func (c *Convolver) Convolve(src raster.RowReader, dst raster.RowWriter, k *kernel.Kernel) error {
	hr := k.HorizontalRadius()
	p := &weighted{
		kernels: []*kernel.Kernel{k},
		combine: first,
		extLen:  (c.size.Width + 2*hr) * models.Channels,
	}
	return scan[uint8](c, src, dst, k.Height(), hr, p)
}

// Sobel runs both Sobel operators over the same window and emits the
// gradient magnitude sqrt(gx²+gy²) per channel.
func (c *Convolver) Sobel(src raster.RowReader, dst raster.RowWriter) error {
	p := &weighted{
		kernels: []*kernel.Kernel{kernel.SobelX(), kernel.SobelY()},
		combine: magnitude,
		extLen:  (c.size.Width + 2) * models.Channels,
	}
	return scan[uint8](c, src, dst, 3, 1, p)
}

// Separable applies a horizontal 1×n kernel kx followed by a vertical m×1
// kernel ky.
func (c *Convolver) Separable(src raster.RowReader, dst raster.RowWriter, kx, ky *kernel.Kernel) error {
	if !kx.IsSeparableRow() || !ky.IsSeparableColumn() {
		return errors.Errorf("%w: separable factors must be 1×n and m×1, got %dx%d and %dx%d",
			errors.ErrMalformedKernel, kx.Width(), kx.Height(), ky.Width(), ky.Height())
	}
	p := &separable{kx: kx, ky: ky, width: c.size.Width}
	return scan[float64](c, src, dst, ky.Height(), kx.HorizontalRadius(), p)
}

// BoxBlur averages every width×height neighbourhood using running sums.
func (c *Convolver) BoxBlur(src raster.RowReader, dst raster.RowWriter, width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.Errorf("%w: box size %dx%d", errors.ErrMalformedKernel, width, height)
	}
	p := newRolling(c.size.Width, width, height, false)
	return scan[uint64](c, src, dst, height, width/2, p)
}

// MovingRMS emits the root mean square deviation sqrt(E[x²]-E[x]²) of every
// width×height neighbourhood using running sums of values and squares.
func (c *Convolver) MovingRMS(src raster.RowReader, dst raster.RowWriter, width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.Errorf("%w: window size %dx%d", errors.ErrMalformedKernel, width, height)
	}
	p := newRolling(c.size.Width, width, height, true)
	return scan[uint64](c, src, dst, height, width/2, p)
}

// policy decides what the window rows contain and how output rows are made.
type policy[T raster.Sample] interface {
	// rowLen is the number of elements per window row.
	rowLen() int
	// load converts a mirror-extended source row into a window row.
	load(dst []T, ext []uint8)
	// reset is called once the window has been primed.
	reset(w *raster.Window[T])
	// emit computes the output row for the current window. The oldest
	// window row leaves the window right after emit returns.
	emit(w *raster.Window[T], out []uint8)
	// admit is called with the newest row after it entered the window.
	admit(row []T)
}

// scan drives a policy over the image.
//
// The window holds kh rows. While output row o is computed, window row i holds
// image row o-vr+i where vr = kh/2; for even kh the window reaches one row
// further up than down. Image rows outside [0, height) are mirrored: row -1-j
// is a copy of row j and row height+j a copy of row height-1-j. Mirrored rows
// are copied from rows already in the window, never read again.
func scan[T raster.Sample](c *Convolver, src raster.RowReader, dst raster.RowWriter, kh, hr int, p policy[T]) error {
	w, h := c.size.Width, c.size.Height
	vr := kh / 2
	if err := c.Fits(2*hr, kh); err != nil {
		return err
	}

	ext := make([]uint8, (w+2*hr)*models.Channels)
	body := ext[hr*models.Channels : (hr+w)*models.Channels]
	win := raster.NewWindow[T](kh, p.rowLen())

	// load places image row l into window row i, where the window starts at
	// image row top.
	load := func(i, l, top int) error {
		if l >= h {
			win.CopyRow(i, raster.MirrorIndex(l, h)-top)
			return nil
		}
		if err := src.ReadRow(body); err != nil {
			return errors.Annotate(err, errors.ErrTruncated, `reading row`)
		}
		raster.MirrorRow(ext, w, hr)
		p.load(win.Row(i), ext)
		return nil
	}

	// prime: rows 0..kh-vr-1, then the mirrored rows above the image
	for i := vr; i < kh; i++ {
		if err := load(i, i-vr, -vr); err != nil {
			return err
		}
	}
	for i := 0; i < vr; i++ {
		win.CopyRow(i, raster.MirrorIndex(i-vr, h)+vr)
	}
	p.reset(win)

	out := make([]uint8, w*models.Channels)
	for o := 0; o < h; o++ {
		p.emit(win, out)
		if err := dst.WriteRow(out); err != nil {
			return errors.Annotate(err, errors.ErrOutputNotWritable, `writing row`)
		}
		c.progress.Report(o+1, h)
		if o == h-1 {
			break
		}
		win.Advance()
		if err := load(kh-1, o-vr+kh, o+1-vr); err != nil {
			return err
		}
		p.admit(win.Newest())
	}
	return nil
}
