package resample

import (
	"rasterflow/internal/errors"
	"rasterflow/internal/logx"
	"rasterflow/internal/models"
	"rasterflow/pkg/raster"
)

// ScaledSize is the size of a width×height image reduced by factor n,
// rounding up so partial blocks at the right and bottom edge are kept.
func ScaledSize(size models.Size, n int) models.Size {
	return models.Size{
		Width:  (size.Width + n - 1) / n,
		Height: (size.Height + n - 1) / n,
	}
}

func checkFactor(size models.Size, n int) error {
	if n <= 0 {
		return errors.Errorf("%w: scale factor %d", errors.ErrInvalidArgument, n)
	}
	if !size.Valid() {
		return errors.Errorf("%w: image size %dx%d", errors.ErrInvalidArgument, size.Width, size.Height)
	}
	return nil
}

// Downscale averages every n×n block of src into one pixel of dst.
// Blocks cut by the right or bottom edge average the pixels they contain.
// Sums are kept in integers and rounded half up. Only one source row and
// one row of block sums are held at a time.
func Downscale(src raster.RowReader, dst raster.RowWriter, size models.Size, n int, progress logx.ProgressFunc) error {
	if err := checkFactor(size, n); err != nil {
		return err
	}
	out := ScaledSize(size, n)
	in := make([]uint8, size.Width*models.Channels)
	sums := make([]uint64, out.Width*models.Channels)
	row := make([]uint8, out.Width*models.Channels)

	for oy := 0; oy < out.Height; oy++ {
		clear(sums)
		rows := min(n, size.Height-oy*n)
		for i := 0; i < rows; i++ {
			if err := src.ReadRow(in); err != nil {
				return errors.Annotate(err, errors.ErrTruncated, `reading row`)
			}
			for x := 0; x < size.Width; x++ {
				o := (x / n) * models.Channels
				for c := 0; c < models.Channels; c++ {
					sums[o+c] += uint64(in[x*models.Channels+c])
				}
			}
		}
		for ox := 0; ox < out.Width; ox++ {
			count := uint64(rows * min(n, size.Width-ox*n))
			for c := 0; c < models.Channels; c++ {
				i := ox*models.Channels + c
				row[i] = uint8((2*sums[i] + count) / (2 * count))
			}
		}
		if err := dst.WriteRow(row); err != nil {
			return errors.Annotate(err, errors.ErrOutputNotWritable, `writing row`)
		}
		progress.Report(oy+1, out.Height)
	}
	return nil
}

// Thin keeps every n-th pixel of every n-th row, starting with the first.
func Thin(src raster.RowReader, dst raster.RowWriter, size models.Size, n int, progress logx.ProgressFunc) error {
	if err := checkFactor(size, n); err != nil {
		return err
	}
	out := ScaledSize(size, n)
	in := make([]uint8, size.Width*models.Channels)
	row := make([]uint8, out.Width*models.Channels)
	for y := 0; y < size.Height; y++ {
		if err := src.ReadRow(in); err != nil {
			return errors.Annotate(err, errors.ErrTruncated, `reading row`)
		}
		if y%n != 0 {
			continue
		}
		for ox := 0; ox < out.Width; ox++ {
			copy(row[ox*models.Channels:(ox+1)*models.Channels], in[ox*n*models.Channels:])
		}
		if err := dst.WriteRow(row); err != nil {
			return errors.Annotate(err, errors.ErrOutputNotWritable, `writing row`)
		}
		progress.Report(y/n+1, out.Height)
	}
	return nil
}
