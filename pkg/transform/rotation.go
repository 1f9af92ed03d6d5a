// Package transform implements the rotation used by the resampler together
// with the exact output sizing rule derived from the rotated source corners.
package transform

import (
	"math"

	"golang.org/x/image/math/f64"
	"gonum.org/v1/gonum/spatial/r2"

	"rasterflow/internal/models"
)

// snap is the magnitude below which matrix entries are treated as zero.
const snap = 10 * 2.220446049250313e-16

// Rotation maps source coordinates p to destination coordinates R·p + b,
// where R rotates by the angle and b is a translation.
type Rotation struct {
	// m is the forward map as a 2×3 affine matrix in row-major order:
	// [cos -sin b1; sin cos b2]
	m f64.Aff3
}

// NewRotation builds a rotation by angleDeg degrees followed by a translation
// of (b1, b2). The angle is reduced to one turn first and matrix entries
// smaller than ten machine epsilons are set to zero, so axis-aligned angles
// map pixel centres onto pixel centres however many turns they add.
func NewRotation(angleDeg, b1, b2 float64) Rotation {
	rad := math.Mod(angleDeg, 360) * math.Pi / 180
	c, s := cleanup(math.Cos(rad)), cleanup(math.Sin(rad))
	return Rotation{m: f64.Aff3{
		c, -s, b1,
		s, c, b2,
	}}
}

func cleanup(v float64) float64 {
	if math.Abs(v) < snap {
		return 0
	}
	return v
}

// Cos returns the cosine entry of the linear part.
func (r Rotation) Cos() float64 { return r.m[0] }

// Sin returns the sine entry of the linear part.
func (r Rotation) Sin() float64 { return r.m[3] }

// Offset returns the translation (b1, b2).
func (r Rotation) Offset() r2.Vec { return r2.Vec{X: r.m[2], Y: r.m[5]} }

// Forward maps a source point to the destination.
func (r Rotation) Forward(p r2.Vec) r2.Vec {
	return r2.Vec{
		X: r.m[0]*p.X + r.m[1]*p.Y + r.m[2],
		Y: r.m[3]*p.X + r.m[4]*p.Y + r.m[5],
	}
}

// Inverse maps a destination point back to the source with Rᵗ(p - b).
func (r Rotation) Inverse(p r2.Vec) r2.Vec {
	q := r2.Sub(p, r.Offset())
	return r2.Vec{
		X: r.m[0]*q.X + r.m[3]*q.Y,
		Y: r.m[1]*q.X + r.m[4]*q.Y,
	}
}

// Corners returns the four corner pixel centres of a width×height source.
func Corners(size models.Size) []r2.Vec {
	return r2.NewBox(0, 0, float64(size.Width-1), float64(size.Height-1)).Vertices()
}

// Fit builds the rotation by angleDeg whose translation moves the rotated
// source into the positive quadrant with its minimum corner at the origin,
// and returns the destination size. The corners are first rotated without a
// translation; their componentwise minimum gives -b and the maximum plus one,
// rounded up, gives the destination width and height.
func Fit(angleDeg float64, src models.Size) (Rotation, models.Size) {
	r := NewRotation(angleDeg, 0, 0)
	corners := Corners(src)
	lo, hi := r.Forward(corners[0]), r.Forward(corners[0])
	for _, p := range corners[1:] {
		q := r.Forward(p)
		lo = r2.Vec{X: math.Min(lo.X, q.X), Y: math.Min(lo.Y, q.Y)}
		hi = r2.Vec{X: math.Max(hi.X, q.X), Y: math.Max(hi.Y, q.Y)}
	}
	b := r2.Scale(-1, lo)
	r = NewRotation(angleDeg, b.X, b.Y)
	ext := r2.Add(hi, b)
	return r, models.Size{
		Width:  int(math.Ceil(ext.X + 1)),
		Height: int(math.Ceil(ext.Y + 1)),
	}
}
