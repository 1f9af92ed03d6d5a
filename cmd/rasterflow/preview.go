package main

import (
	"fmt"
	"image"

	"github.com/spf13/cobra"

	"rasterflow/internal/errors"
	"rasterflow/pkg/interpolation"
)

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().IntVar(&previewMax, `max`, 512, `longest side of the preview in pixels`)
	previewCmd.Flags().StringVarP(&previewInterp, `interp`, `i`, `bicubic`, `scaling quality: nearest, bilinear or bicubic`)
	previewCmd.Flags().StringVar(&previewRegion, `region`, ``, `crop to x,y,w,h with the origin at the top left before scaling`)
	previewCmd.Flags().StringVar(&previewChannels, `channels`, ``, `also write each channel as grayscale PNG into this directory`)
}

var (
	previewMax      int
	previewInterp   string
	previewRegion   string
	previewChannels string
)

// parseRegion reads x,y,w,h. The empty string selects the whole picture.
func parseRegion(s string) (image.Rectangle, error) {
	if s == `` {
		return image.Rectangle{}, nil
	}
	var x, y, w, h int
	if n, err := fmt.Sscanf(s, `%d,%d,%d,%d`, &x, &y, &w, &h); err != nil || n != 4 {
		return image.Rectangle{}, errors.Errorf("%w: region %q, want x,y,w,h", errors.ErrInvalidArgument, s)
	}
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, errors.Errorf("%w: region size %dx%d", errors.ErrInvalidArgument, w, h)
	}
	return image.Rect(x, y, x+w, y+h), nil
}

var previewCmd = &cobra.Command{
	Use:   `preview <in.bmp> <out.png|out.jpg>`,
	Short: `render a scaled PNG or JPEG preview of a bitmap`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		run(func(e *env) error {
			m, err := interpolation.Parse(previewInterp)
			if err != nil {
				return err
			}
			region, err := parseRegion(previewRegion)
			if err != nil {
				return err
			}
			if err := e.proc.Preview(args[0], args[1], previewMax, m, region); err != nil {
				return err
			}
			if previewChannels == `` {
				return nil
			}
			return e.proc.Channels(args[0], previewChannels)
		})
	},
}
