package filter

import (
	"math"

	"rasterflow/internal/models"
	"rasterflow/pkg/kernel"
	"rasterflow/pkg/raster"
)

const ch = models.Channels

// weighted keeps mirror-extended source rows and evaluates one or more
// kernels over the full neighbourhood of every sample.
type weighted struct {
	kernels []*kernel.Kernel
	combine func(sums []float64) float64
	extLen  int
	sums    []float64
}

func first(sums []float64) float64     { return sums[0] }
func magnitude(sums []float64) float64 { return math.Hypot(sums[0], sums[1]) }

func (p *weighted) rowLen() int { return p.extLen }

func (p *weighted) load(dst []uint8, ext []uint8) { copy(dst, ext) }

func (p *weighted) reset(w *raster.Window[uint8]) { p.sums = make([]float64, len(p.kernels)) }

func (p *weighted) emit(w *raster.Window[uint8], out []uint8) {
	width := len(out) / ch
	for x := 0; x < width; x++ {
		for c := 0; c < ch; c++ {
			for n, k := range p.kernels {
				var acc float64
				for i := 0; i < k.Height(); i++ {
					row := w.Row(i)
					for j := 0; j < k.Width(); j++ {
						acc += k.Weight(i, j) * float64(row[(x+j)*ch+c])
					}
				}
				p.sums[n] = acc
			}
			out[x*ch+c] = raster.Round8(p.combine(p.sums))
		}
	}
}

func (p *weighted) admit([]uint8) {}

// separable keeps rows already filtered with kx and applies ky on emit.
type separable struct {
	kx, ky *kernel.Kernel
	width  int
}

func (p *separable) rowLen() int { return p.width * ch }

func (p *separable) load(dst []float64, ext []uint8) {
	kw := p.kx.Width()
	for x := 0; x < p.width; x++ {
		for c := 0; c < ch; c++ {
			var acc float64
			for j := 0; j < kw; j++ {
				acc += p.kx.Weight(0, j) * float64(ext[(x+j)*ch+c])
			}
			dst[x*ch+c] = acc
		}
	}
}

func (p *separable) reset(*raster.Window[float64]) {}

func (p *separable) emit(w *raster.Window[float64], out []uint8) {
	for n := range out {
		var acc float64
		for i := 0; i < p.ky.Height(); i++ {
			acc += p.ky.Weight(i, 0) * w.Row(i)[n]
		}
		out[n] = raster.Round8(acc)
	}
}

func (p *separable) admit([]float64) {}

// rolling keeps horizontal running sums per window row and vertical column
// totals over the window. With squares set every row also carries the sums
// of squared samples in its second half. Integer accumulators keep the totals
// exact, so no drift correction is needed.
type rolling struct {
	width   int
	kw, kh  int
	squares bool
	totals  []uint64
}

func newRolling(width, kw, kh int, squares bool) *rolling {
	p := &rolling{width: width, kw: kw, kh: kh, squares: squares}
	p.totals = make([]uint64, p.rowLen())
	return p
}

func (p *rolling) rowLen() int {
	if p.squares {
		return 2 * p.width * ch
	}
	return p.width * ch
}

// load slides a kw-wide window across the extended row: the sum for column x
// covers extended columns x..x+kw-1.
func (p *rolling) load(dst []uint64, ext []uint8) {
	n := p.width * ch
	for c := 0; c < ch; c++ {
		var sum, sq uint64
		for j := 0; j < p.kw; j++ {
			v := uint64(ext[j*ch+c])
			sum += v
			sq += v * v
		}
		dst[c] = sum
		if p.squares {
			dst[n+c] = sq
		}
		for x := 1; x < p.width; x++ {
			in := uint64(ext[(x+p.kw-1)*ch+c])
			gone := uint64(ext[(x-1)*ch+c])
			sum += in
			sum -= gone
			dst[x*ch+c] = sum
			if p.squares {
				sq += in * in
				sq -= gone * gone
				dst[n+x*ch+c] = sq
			}
		}
	}
}

func (p *rolling) reset(w *raster.Window[uint64]) {
	clear(p.totals)
	for i := 0; i < w.Len(); i++ {
		p.admit(w.Row(i))
	}
}

func (p *rolling) emit(w *raster.Window[uint64], out []uint8) {
	count := uint64(p.kw * p.kh)
	n := p.width * ch
	for i := range out {
		if p.squares {
			mean := float64(p.totals[i]) / float64(count)
			meanSq := float64(p.totals[n+i]) / float64(count)
			out[i] = raster.Round8(math.Sqrt(math.Max(0, meanSq-mean*mean)))
		} else {
			// round half up in integers
			out[i] = uint8((2*p.totals[i] + count) / (2 * count))
		}
	}
	oldest := w.Row(0)
	for i, v := range oldest {
		p.totals[i] -= v
	}
}

func (p *rolling) admit(row []uint64) {
	for i, v := range row {
		p.totals[i] += v
	}
}
