// Package resample implements the geometric resamplers: rotation with a
// selectable interpolation kernel, block-average downscaling and pixel
// skipping.
package resample

import (
	"gonum.org/v1/gonum/spatial/r2"

	"rasterflow/internal/errors"
	"rasterflow/internal/logx"
	"rasterflow/internal/models"
	"rasterflow/pkg/interpolation"
	"rasterflow/pkg/raster"
	"rasterflow/pkg/transform"
)

// Rotator rotates whole-image buffers.
type Rotator struct {
	method   interpolation.Method
	sample   interpolation.Func
	progress logx.ProgressFunc
}

// NewRotator resolves the interpolation method once for the whole run.
func NewRotator(method interpolation.Method) *Rotator {
	return &Rotator{method: method, sample: method.Func()}
}

// SetProgressCallback registers fn to be called after every destination row.
func (r *Rotator) SetProgressCallback(fn logx.ProgressFunc) { r.progress = fn }

// Method returns the interpolation method.
func (r *Rotator) Method() interpolation.Method { return r.method }

// Border returns the mirrored border the source buffer must carry.
func (r *Rotator) Border() int { return r.method.ExtensionRadius() }

// Rotate writes the destination rows of rot applied to src. Every destination
// pixel is mapped back with the inverse transform; when it lands inside
// [0, width-1] × [0, height-1] of the source it is interpolated, otherwise it
// is black. src must be mirror-extended by at least Border pixels.
func (r *Rotator) Rotate(src *raster.Buffer, dst raster.RowWriter, rot transform.Rotation, out models.Size) error {
	if src.Ext() < r.Border() {
		return errors.Errorf("%w: %s needs a border of %d, buffer has %d",
			errors.ErrInvalidArgument, r.method, r.Border(), src.Ext())
	}
	if !out.Valid() {
		return errors.Errorf("%w: output size %dx%d", errors.ErrInvalidArgument, out.Width, out.Height)
	}
	maxX, maxY := float64(src.Width()-1), float64(src.Height()-1)
	row := make([]uint8, out.Width*models.Channels)
	for y2 := 0; y2 < out.Height; y2++ {
		for x2 := 0; x2 < out.Width; x2++ {
			p := rot.Inverse(r2.Vec{X: float64(x2), Y: float64(y2)})
			var px models.Pixel
			if p.X >= 0 && p.X <= maxX && p.Y >= 0 && p.Y <= maxY {
				px = r.sample(src, p.X, p.Y)
			}
			copy(row[x2*models.Channels:], px[:])
		}
		if err := dst.WriteRow(row); err != nil {
			return errors.Annotate(err, errors.ErrOutputNotWritable, `writing row`)
		}
		r.progress.Report(y2+1, out.Height)
	}
	return nil
}

// RotateBuffer rotates src by angleDeg into a new buffer sized by
// transform.Fit.
func (r *Rotator) RotateBuffer(src *raster.Buffer, angleDeg float64) (*raster.Buffer, error) {
	rot, size := transform.Fit(angleDeg, src.Size())
	out, err := raster.NewBuffer(size.Width, size.Height, 0)
	if err != nil {
		return nil, err
	}
	if err := r.Rotate(src, out.Writer(), rot, size); err != nil {
		return nil, err
	}
	return out, nil
}
