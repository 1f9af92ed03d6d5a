// Package pipeline runs the file level operations. Each operation opens its
// input, validates everything it can before the output file is created,
// streams the rows through the engine and releases both files on every
// exit path.
package pipeline

import (
	"io"
	"log/slog"
	"os"

	"rasterflow/internal/errors"
	"rasterflow/internal/logx"
	"rasterflow/pkg/bmp"
	"rasterflow/pkg/raster"
)

// Params holds the settings shared by every operation.
type Params struct {
	// Progress logs a debug record every tenth of the rows of long operations
	Progress bool
}

// Processor runs the operations with one logger and one set of parameters.
type Processor struct {
	params *Params
	log    logx.LoggerProvider
}

// NewProcessor creates a processor. A nil provider discards log records and
// nil params select the defaults.
func NewProcessor(params *Params, prov logx.LoggerProvider) *Processor {
	if params == nil {
		params = &Params{}
	}
	if prov == nil {
		prov = logx.Discard()
	}
	return &Processor{params: params, log: prov}
}

// Logger satisfies logx.LoggerProvider.
func (p *Processor) Logger() *slog.Logger { return p.log.Logger() }

// progress returns the row callback for op, or nil when progress is off.
func (p *Processor) progress(op string) logx.ProgressFunc {
	if !p.params.Progress {
		return nil
	}
	return logx.StepProgress(op, p)
}

// openInput opens path for reading.
func openInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf("%w: %s: %w", errors.ErrInputNotFound, path, err)
	}
	return f, nil
}

// createOutput creates or truncates path.
func createOutput(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Errorf("%w: %s: %w", errors.ErrOutputNotWritable, path, err)
	}
	return f, nil
}

// closeOutput closes f and joins a close failure to err.
func closeOutput(f *os.File, err error) error {
	if cerr := f.Close(); cerr != nil {
		return errors.Join(err, errors.Errorf("%w: closing %s: %w", errors.ErrOutputNotWritable, f.Name(), cerr))
	}
	return err
}

// openBitmap opens a bitmap for streaming and validates its header.
func openBitmap(path string) (*os.File, *bmp.Reader, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, nil, err
	}
	r, err := bmp.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, errors.WrapPrefix(err, path, 0)
	}
	return f, r, nil
}

// loadBitmap reads a whole bitmap with a mirrored border of ext pixels.
func loadBitmap(path string, ext int) (*raster.Buffer, bmp.Header, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, bmp.Header{}, err
	}
	defer f.Close()
	b, h, err := bmp.Load(f, ext)
	if err != nil {
		return nil, bmp.Header{}, errors.WrapPrefix(err, path, 0)
	}
	return b, h, nil
}

// writeBitmap streams rows produced by fn to a new bitmap described by h.
func writeBitmap(path string, h bmp.Header, fn func(dst raster.RowWriter) error) error {
	f, err := createOutput(path)
	if err != nil {
		return err
	}
	return closeOutput(f, streamBitmap(f, h, fn))
}

func streamBitmap(w io.Writer, h bmp.Header, fn func(dst raster.RowWriter) error) error {
	out, err := bmp.NewWriterHeader(w, h)
	if err != nil {
		return err
	}
	if err := fn(out); err != nil {
		return err
	}
	return out.Flush()
}
