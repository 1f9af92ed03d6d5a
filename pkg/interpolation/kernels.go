package interpolation

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"rasterflow/internal/models"
	"rasterflow/pkg/raster"
)

func nearest(src *raster.Buffer, x, y float64) models.Pixel {
	return src.Pixel(int(math.Round(x)), int(math.Round(y)))
}

func bilinear(src *raster.Buffer, x, y float64) models.Pixel {
	x0, y0 := math.Floor(x), math.Floor(y)
	x1, y1 := math.Ceil(x), math.Ceil(y)
	fx, fy := x-x0, y-y0
	p00 := src.Pixel(int(x0), int(y0))
	p10 := src.Pixel(int(x1), int(y0))
	p01 := src.Pixel(int(x0), int(y1))
	p11 := src.Pixel(int(x1), int(y1))
	var out models.Pixel
	for c := range out {
		v := (1-fx)*(1-fy)*float64(p00[c]) +
			fx*(1-fy)*float64(p10[c]) +
			(1-fx)*fy*float64(p01[c]) +
			fx*fy*float64(p11[c])
		out[c] = raster.Round8(v)
	}
	return out
}

// cubic interpolates between f1 and f2 at t in [0, 1].
func cubic(f0, f1, f2, f3, t float64) float64 {
	return f1 + 0.5*t*(f2-f0+t*(2*f0-5*f1+4*f2-f3+t*(3*(f1-f2)+f3-f0)))
}

func bicubic(src *raster.Buffer, x, y float64) models.Pixel {
	xs := [4]int{int(math.Floor(x - 1)), int(math.Floor(x)), int(math.Ceil(x)), int(math.Ceil(x + 1))}
	ys := [4]int{int(math.Floor(y - 1)), int(math.Floor(y)), int(math.Ceil(y)), int(math.Ceil(y + 1))}
	tx, ty := x-math.Floor(x), y-math.Floor(y)
	var out models.Pixel
	for c := range out {
		var col [4]float64
		for j, sy := range ys {
			col[j] = cubic(
				float64(src.At(xs[0], sy, c)),
				float64(src.At(xs[1], sy, c)),
				float64(src.At(xs[2], sy, c)),
				float64(src.At(xs[3], sy, c)),
				tx)
		}
		out[c] = raster.Round8(cubic(col[0], col[1], col[2], col[3], ty))
	}
	return out
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	x *= math.Pi
	return math.Sin(x) / x
}

// LanczosWeight is the windowed sinc L(x, a) = sinc(x)·sinc(x/a) on |x| < a.
func LanczosWeight(x float64, a int) float64 {
	if math.Abs(x) >= float64(a) {
		return 0
	}
	return sinc(x) * sinc(x/float64(a))
}

// lanczos returns the separable Lanczos-a sampler. The taps cover
// floor(x)-a+1 .. floor(x)+a. Rows are filtered first, each normalized by the
// horizontal weight sum, then the filtered rows by the vertical weight sum.
func lanczos(a int) Func {
	n := 2 * a
	return func(src *raster.Buffer, x, y float64) models.Pixel {
		var wx, wy, row [6]float64
		fx, fy := int(math.Floor(x)), int(math.Floor(y))
		for i := 0; i < n; i++ {
			wx[i] = LanczosWeight(x-float64(fx-a+1+i), a)
			wy[i] = LanczosWeight(y-float64(fy-a+1+i), a)
		}
		sx, sy := floats.Sum(wx[:n]), floats.Sum(wy[:n])
		var out models.Pixel
		for c := range out {
			for j := 0; j < n; j++ {
				sampleY := fy - a + 1 + j
				var acc float64
				for i := 0; i < n; i++ {
					acc += wx[i] * float64(src.At(fx-a+1+i, sampleY, c))
				}
				row[j] = acc / sx
			}
			var acc float64
			for j := 0; j < n; j++ {
				acc += wy[j] * row[j]
			}
			out[c] = raster.Round8(acc / sy)
		}
		return out
	}
}
