// Package interpolation provides the sampling kernels used when resampling
// at fractional source coordinates.
//
// The kernel is chosen once per run through Method and resolved to a Func,
// so the per-pixel loop never branches on the method. Every kernel reads
// neighbours up to ExtensionRadius pixels beyond the image, which the caller
// supplies by mirror-extending the source buffer before sampling.
package interpolation

import (
	"strings"

	"rasterflow/internal/errors"
	"rasterflow/internal/models"
	"rasterflow/pkg/raster"
)

// Method selects an interpolation kernel.
type Method int

const (
	NearestNeighbor Method = iota
	Bilinear
	Bicubic
	Lanczos2
	Lanczos3
)

var methodNames = [...]string{
	NearestNeighbor: `nearest`,
	Bilinear:        `bilinear`,
	Bicubic:         `bicubic`,
	Lanczos2:        `lanczos2`,
	Lanczos3:        `lanczos3`,
}

// Methods lists every method in declaration order.
func Methods() []Method {
	return []Method{NearestNeighbor, Bilinear, Bicubic, Lanczos2, Lanczos3}
}

func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return `unknown`
	}
	return methodNames[m]
}

// Parse resolves a method name, case-insensitively.
func Parse(name string) (Method, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for m, n := range methodNames {
		if n == name {
			return Method(m), nil
		}
	}
	return 0, errors.Errorf("%w: interpolation %q", errors.ErrInvalidArgument, name)
}

func (m Method) MarshalText() ([]byte, error) {
	if m.String() == `unknown` {
		return nil, errors.Errorf("%w: interpolation %d", errors.ErrInvalidArgument, int(m))
	}
	return []byte(m.String()), nil
}

func (m *Method) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ExtensionRadius is the mirrored border the method reads beyond the image
// when sampling anywhere in [0, width-1] × [0, height-1].
func (m Method) ExtensionRadius() int {
	switch m {
	case Bicubic:
		return 1
	case Lanczos2:
		return 2
	case Lanczos3:
		return 3
	default:
		return 0
	}
}

// Func samples src at the fractional position (x, y).
type Func func(src *raster.Buffer, x, y float64) models.Pixel

// Func resolves the method to its sampling function.
func (m Method) Func() Func {
	switch m {
	case Bilinear:
		return bilinear
	case Bicubic:
		return bicubic
	case Lanczos2:
		return lanczos(2)
	case Lanczos3:
		return lanczos(3)
	default:
		return nearest
	}
}
