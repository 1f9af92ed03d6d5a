// Package metrics compares two equally sized rasters, typically a filtered
// or resampled output against a reference rendering of the same picture.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"rasterflow/internal/errors"
	"rasterflow/internal/models"
	"rasterflow/pkg/filter"
	"rasterflow/pkg/raster"
)

// MaxPSNR is reported for identical images instead of +Inf.
const MaxPSNR = 100.0

// Report holds the comparison metrics.
type Report struct {
	// RMSE is the root mean square difference of the samples on the 0..255 scale.
	RMSE float64

	// PSNR is the peak signal to noise ratio in decibels, capped at MaxPSNR.
	PSNR float64

	// SSIM is the global structural similarity of the samples scaled to
	// [0, 1]. It ranges from -1 to 1 with 1 for identical images.
	SSIM float64

	// EntropyDiff is the absolute difference of the Shannon entropies of the
	// two sample histograms, in bits.
	EntropyDiff float64

	// MI is a Gaussian approximation of the mutual information of the samples.
	MI float64

	// EdgePreserved is the correlation of the Sobel gradient magnitudes.
	EdgePreserved float64
}

// Compare computes every metric of b against the reference a.
func Compare(a, b *raster.Buffer) (Report, error) {
	if a.Size() != b.Size() {
		return Report{}, errors.Errorf("%w: comparing %dx%d with %dx%d", errors.ErrInvalidArgument,
			a.Width(), a.Height(), b.Width(), b.Height())
	}
	x, y := samples(a), samples(b)
	rep := Report{
		RMSE:        RMSE(x, y),
		SSIM:        SSIM(x, y),
		EntropyDiff: math.Abs(Entropy(a) - Entropy(b)),
		MI:          MutualInformation(x, y),
	}
	rep.PSNR = PSNR(rep.RMSE)

	ea, err := edges(a)
	if err != nil {
		return Report{}, err
	}
	eb, err := edges(b)
	if err != nil {
		return Report{}, err
	}
	rep.EdgePreserved = correlation(samples(ea), samples(eb))
	return rep, nil
}

// samples flattens the real pixels of b to values in [0, 1].
func samples(b *raster.Buffer) []float64 {
	out := make([]float64, 0, b.Size().Pixels()*models.Channels)
	for y := 0; y < b.Height(); y++ {
		for _, v := range b.Row(y) {
			out = append(out, float64(v)/255)
		}
	}
	return out
}

func edges(b *raster.Buffer) (*raster.Buffer, error) {
	out, err := raster.NewBuffer(b.Width(), b.Height(), 0)
	if err != nil {
		return nil, err
	}
	conv, err := filter.New(b.Size())
	if err != nil {
		return nil, err
	}
	if err := conv.Sobel(b.Reader(), out.Writer()); err != nil {
		return nil, err
	}
	return out, nil
}

// correlation is the Pearson correlation, with flat inputs counting as
// perfectly correlated when they are equal.
func correlation(x, y []float64) float64 {
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		if RMSE(x, y) == 0 {
			return 1
		}
		return 0
	}
	return stat.Correlation(x, y, nil)
}

// RMSE computes the root mean square error on the 0..255 scale of samples
// given in [0, 1].
func RMSE(x, y []float64) float64 {
	n := len(x)
	if n != len(y) || n == 0 {
		return 0
	}
	mse := 0.0
	for i := range x {
		d := (x[i] - y[i]) * 255
		mse += d * d
	}
	return math.Sqrt(mse / float64(n))
}

// PSNR converts an RMSE on the 0..255 scale to decibels.
func PSNR(rmse float64) float64 {
	if rmse == 0 {
		return MaxPSNR
	}
	return math.Min(MaxPSNR, 20*math.Log10(255/rmse))
}

// SSIM computes the global structural similarity index of samples in [0, 1].
func SSIM(x, y []float64) float64 {
	const (
		k1 = 0.01
		k2 = 0.03
	)
	c1, c2 := k1*k1, k2*k2
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	muX, muY := stat.Mean(x, nil), stat.Mean(y, nil)
	sigmaX, sigmaY := stat.Variance(x, nil), stat.Variance(y, nil)
	sigmaXY := stat.Covariance(x, y, nil)

	num := (2*muX*muY + c1) * (2*sigmaXY + c2)
	den := (muX*muX + muY*muY + c1) * (sigmaX + sigmaY + c2)
	return num / den
}

// Entropy is the Shannon entropy in bits of the 256-bucket histogram of all
// samples of b.
func Entropy(b *raster.Buffer) float64 {
	var hist [256]float64
	n := 0
	for y := 0; y < b.Height(); y++ {
		for _, v := range b.Row(y) {
			hist[v]++
			n++
		}
	}
	p := make([]float64, 0, len(hist))
	for _, c := range hist {
		p = append(p, c/float64(n))
	}
	return stat.Entropy(p) / math.Ln2
}

// MutualInformation approximates the mutual information assuming jointly
// Gaussian samples: 0.5·ln(σx²σy² / (σx²σy² - cov²)).
func MutualInformation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	vx, vy := stat.Variance(x, nil), stat.Variance(y, nil)
	cov := stat.Covariance(x, y, nil)
	det := vx*vy - cov*cov
	if vx <= 0 || vy <= 0 || det <= 0 {
		return 0
	}
	return 0.5 * math.Log(vx*vy/det)
}
