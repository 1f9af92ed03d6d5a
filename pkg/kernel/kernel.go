// Package kernel provides immutable filter kernels and the builders for the
// box, Gaussian and Sobel kernels used by the convolution engine.
package kernel

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"rasterflow/internal/errors"
)

// Kernel is an immutable height×width matrix of filter weights.
// The anchor is the element at (VerticalRadius, HorizontalRadius), so for even
// sizes the window reaches one element further up and left than down and right.
type Kernel struct {
	weights *mat.Dense
	height  int
	width   int
}

// New builds a kernel from weights in row-major order.
// The number of weights must equal height*width.
func New(height, width int, weights []float64) (*Kernel, error) {
	if height <= 0 || width <= 0 {
		return nil, errors.Errorf("%w: size %dx%d", errors.ErrMalformedKernel, width, height)
	}
	if len(weights) != height*width {
		return nil, errors.Errorf("%w: %d weights for a %dx%d kernel",
			errors.ErrMalformedKernel, len(weights), width, height)
	}
	data := make([]float64, len(weights))
	copy(data, weights)
	return &Kernel{
		weights: mat.NewDense(height, width, data),
		height:  height,
		width:   width,
	}, nil
}

func must(k *Kernel, err error) *Kernel {
	if err != nil {
		panic(err)
	}
	return k
}

func (k *Kernel) Height() int           { return k.height }
func (k *Kernel) Width() int            { return k.width }
func (k *Kernel) VerticalRadius() int   { return k.height / 2 }
func (k *Kernel) HorizontalRadius() int { return k.width / 2 }

// Weight returns the weight at row y, column x.
// A column outside [0, Width) panics with mat.ErrColAccess. Rows are
// addressed through the circular window and are trusted.
func (k *Kernel) Weight(y, x int) float64 {
	if x < 0 || x >= k.width {
		panic(mat.ErrColAccess)
	}
	return k.weights.At(y, x)
}

// Matrix exposes the weights as a read-only matrix.
func (k *Kernel) Matrix() mat.Matrix { return k.weights }

// Weights returns a row-major copy of the weights.
func (k *Kernel) Weights() []float64 {
	out := make([]float64, 0, k.height*k.width)
	for y := 0; y < k.height; y++ {
		out = append(out, k.weights.RawRowView(y)...)
	}
	return out
}

// Sum returns the sum of all weights.
func (k *Kernel) Sum() float64 { return floats.Sum(k.Weights()) }

// Normalized returns a copy whose weights sum to one.
// A kernel whose weights sum to zero is returned unchanged, that is divided by one.
func (k *Kernel) Normalized() *Kernel {
	w := k.Weights()
	sum := floats.Sum(w)
	if sum == 0 {
		sum = 1
	}
	floats.Scale(1/sum, w)
	return must(New(k.height, k.width, w))
}

// IsSeparableRow reports whether the kernel is a single row.
func (k *Kernel) IsSeparableRow() bool { return k.height == 1 }

// IsSeparableColumn reports whether the kernel is a single column.
func (k *Kernel) IsSeparableColumn() bool { return k.width == 1 }

// Identity is the 1×1 kernel of weight one.
func Identity() *Kernel { return must(New(1, 1, []float64{1})) }

// Box returns a height×width kernel of equal weights summing to one.
func Box(height, width int) (*Kernel, error) {
	if height <= 0 || width <= 0 {
		return nil, errors.Errorf("%w: box size %dx%d", errors.ErrMalformedKernel, width, height)
	}
	w := make([]float64, height*width)
	for i := range w {
		w[i] = 1 / float64(height*width)
	}
	return New(height, width, w)
}

// sigma of a Gaussian reaching radius r; single element dimensions use one.
func sigma(r int) float64 {
	if r == 0 {
		return 1
	}
	return float64(r) / 3
}

// Gaussian returns a height×width Gaussian kernel with sigma = radius/3 in each
// direction, normalized to sum one.
func Gaussian(height, width int) (*Kernel, error) {
	if height <= 0 || width <= 0 {
		return nil, errors.Errorf("%w: gaussian size %dx%d", errors.ErrMalformedKernel, width, height)
	}
	vr, hr := height/2, width/2
	sy, sx := sigma(vr), sigma(hr)
	w := make([]float64, 0, height*width)
	for y := 0; y < height; y++ {
		dy := float64(y - vr)
		gy := math.Exp(-dy * dy / (2 * sy * sy))
		for x := 0; x < width; x++ {
			dx := float64(x - hr)
			w = append(w, gy*math.Exp(-dx*dx/(2*sx*sx)))
		}
	}
	k, err := New(height, width, w)
	if err != nil {
		return nil, err
	}
	return k.Normalized(), nil
}

// GaussianSeparable returns the horizontal (1×(2rx+1)) and vertical
// ((2ry+1)×1) factors of a Gaussian with radii rx and ry.
func GaussianSeparable(rx, ry int) (kx, ky *Kernel, err error) {
	if rx < 0 || ry < 0 {
		return nil, nil, errors.Errorf("%w: radius %d,%d", errors.ErrMalformedKernel, rx, ry)
	}
	if kx, err = Gaussian(1, 2*rx+1); err != nil {
		return nil, nil, err
	}
	if ky, err = Gaussian(2*ry+1, 1); err != nil {
		return nil, nil, err
	}
	return kx, ky, nil
}

// SobelX is the horizontal gradient operator.
func SobelX() *Kernel {
	return must(New(3, 3, []float64{
		-1, 0, 1,
		-2, 0, 2,
		-1, 0, 1,
	}))
}

// SobelY is the vertical gradient operator.
func SobelY() *Kernel {
	return must(New(3, 3, []float64{
		-1, -2, -1,
		0, 0, 0,
		1, 2, 1,
	}))
}
