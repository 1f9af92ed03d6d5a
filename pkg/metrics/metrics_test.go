package metrics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rasterflow/internal/errors"
	"rasterflow/internal/models"
	"rasterflow/pkg/raster"
)

func createTestImage(t *testing.T, w, h int, fn func(x, y int) models.Pixel) *raster.Buffer {
	t.Helper()
	b, err := raster.NewBuffer(w, h, 0)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b.SetPixel(x, y, fn(x, y))
		}
	}
	return b
}

func noise(seed int64) func(x, y int) models.Pixel {
	rng := rand.New(rand.NewSource(seed))
	return func(x, y int) models.Pixel {
		return models.RGB(uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)))
	}
}

func TestIdenticalImages(t *testing.T) {
	a := createTestImage(t, 12, 9, noise(1))
	rep, err := Compare(a, a)
	require.NoError(t, err)
	assert.Equal(t, 0.0, rep.RMSE)
	assert.Equal(t, MaxPSNR, rep.PSNR)
	assert.InDelta(t, 1.0, rep.SSIM, 1e-12)
	assert.Equal(t, 0.0, rep.EntropyDiff)
	assert.InDelta(t, 1.0, rep.EdgePreserved, 1e-12)
	assert.GreaterOrEqual(t, rep.MI, 0.0)
}

func TestConstantOffset(t *testing.T) {
	a := createTestImage(t, 8, 8, func(x, y int) models.Pixel { return models.RGB(100, 100, 100) })
	b := createTestImage(t, 8, 8, func(x, y int) models.Pixel { return models.RGB(110, 110, 110) })
	rep, err := Compare(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, rep.RMSE, 1e-9)
	assert.InDelta(t, 20*math.Log10(25.5), rep.PSNR, 1e-9)
	assert.Equal(t, 0.0, rep.EntropyDiff)
	assert.Equal(t, 1.0, rep.EdgePreserved, "both flat, equal gradients")
}

func TestNoiseIsDissimilar(t *testing.T) {
	a := createTestImage(t, 16, 16, noise(2))
	b := createTestImage(t, 16, 16, noise(3))
	rep, err := Compare(a, b)
	require.NoError(t, err)
	assert.Less(t, rep.SSIM, 0.2)
	assert.Greater(t, rep.RMSE, 50.0)
	assert.Less(t, rep.MI, 0.05)
}

func TestEntropy(t *testing.T) {
	flat := createTestImage(t, 4, 4, func(x, y int) models.Pixel { return models.Pixel{} })
	assert.Equal(t, 0.0, Entropy(flat))
	// two values, equally frequent
	half := createTestImage(t, 4, 4, func(x, y int) models.Pixel {
		if x < 2 {
			return models.Pixel{}
		}
		return models.Pixel{255, 255, 255}
	})
	assert.InDelta(t, 1.0, Entropy(half), 1e-12)
}

func TestSizeMismatch(t *testing.T) {
	a := createTestImage(t, 4, 4, noise(4))
	b := createTestImage(t, 4, 5, noise(5))
	_, err := Compare(a, b)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestPSNR(t *testing.T) {
	assert.Equal(t, MaxPSNR, PSNR(0))
	assert.InDelta(t, 0, PSNR(255), 1e-12)
	assert.InDelta(t, 20*math.Log10(2), PSNR(127.5), 1e-12)
}
