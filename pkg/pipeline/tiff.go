package pipeline

import (
	"rasterflow/internal/errors"
	"rasterflow/internal/logx"
	"rasterflow/internal/models"
	"rasterflow/pkg/bmp"
	"rasterflow/pkg/contrast"
	"rasterflow/pkg/resample"
	"rasterflow/pkg/tiff"
)

// ContrastParams enables the histogram contrast stretch for TIFF input.
type ContrastParams struct {
	// Low and High are the histogram fractions mapped to 0 and 255
	Low  float64
	High float64
}

// ConvertTIFF converts a 16-bit strip TIFF at in to a 24-bit bitmap at out,
// block-averaging by factor n. Samples are reduced to 8 bits with
// tiff.Shift10Bit, or with a per-channel contrast stretch gathered in a first
// pass over the image when stretch is set.
func (p *Processor) ConvertTIFF(in, out string, n int, stretch *ContrastParams) error {
	if n <= 0 {
		return errors.Errorf("%w: scale factor %d", errors.ErrInvalidArgument, n)
	}
	src, err := openInput(in)
	if err != nil {
		return err
	}
	defer src.Close()

	meta, err := tiff.ReadMetadata(src)
	if err != nil {
		return errors.WrapPrefix(err, in, 0)
	}

	transform := tiff.Transform(tiff.Shift10Bit)
	if stretch != nil {
		hs, err := contrast.Collect(tiff.NewReader(src, meta, nil), meta.Size)
		if err != nil {
			return errors.WrapPrefix(err, in, 0)
		}
		s, err := contrast.Build(hs, stretch.Low, stretch.High)
		if err != nil {
			return err
		}
		logx.Debug(`contrast cuts`, p, `red`, s[models.Red], `green`, s[models.Green], `blue`, s[models.Blue])
		for _, c := range s.Flat() {
			logx.Warn(`flat channel, contrast cuts substituted`, p, `in`, in, `channel`, channelName(c),
				`low`, s[c].Low, `high`, s[c].High)
		}
		transform = s.Apply
	}

	size := resample.ScaledSize(meta.Size, n)
	if _, err := bmp.NewHeader(size); err != nil {
		return err
	}
	logx.Debug(`convert tiff`, p, `in`, in, `out`, out, `from`, meta.Size, `to`, size,
		`strips`, len(meta.Strips.Offsets), `rowsPerStrip`, meta.Strips.RowsPerStrip)

	return logx.TimeIt(func() error {
		dst, err := createOutput(out)
		if err != nil {
			return err
		}
		w, err := bmp.NewTopDownWriter(dst, size)
		if err != nil {
			return closeOutput(dst, err)
		}
		r := tiff.NewReader(src, meta, transform)
		if err := resample.Downscale(r, w, meta.Size, n, p.progress(`convert tiff`)); err != nil {
			return closeOutput(dst, err)
		}
		if w.Rows() != size.Height {
			err = errors.Errorf("%w: wrote %d of %d bitmap rows", errors.ErrTruncated, w.Rows(), size.Height)
		}
		return closeOutput(dst, err)
	}, `convert tiff done`, p, `factor`, n)
}

func channelName(c int) string {
	switch c {
	case models.Red:
		return `red`
	case models.Green:
		return `green`
	}
	return `blue`
}
