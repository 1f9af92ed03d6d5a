package main

import (
	"github.com/spf13/cobra"

	"rasterflow/pkg/pipeline"
)

func init() {
	rootCmd.AddCommand(filterCmd)
	filterCmd.Flags().IntVar(&filterWidth, `width`, 0, `kernel width in pixels (default from config)`)
	filterCmd.Flags().IntVar(&filterHeight, `height`, 0, `kernel height in pixels (default from config)`)
}

var (
	filterWidth  int
	filterHeight int
)

var filterCmd = &cobra.Command{
	Use:   `filter box|gauss|gauss2d|rms|sobel|identity <in.bmp> <out.bmp>`,
	Short: `apply a streaming filter to a bitmap`,
	Long: `Apply a streaming filter to a 24-bit bitmap.

box      moving average over a width×height window
gauss    Gaussian kernel of width×height with sigma = radius/3
gauss2d  the same Gaussian applied as two one-dimensional passes
rms      moving root mean square deviation over a width×height window
sobel    gradient magnitude of the 3×3 Sobel operators
identity copies the image through the filter engine`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		run(func(e *env) error {
			f, err := pipeline.ParseFilter(args[0])
			if err != nil {
				return err
			}
			fp := pipeline.FilterParams{
				Filter: f,
				Width:  e.cfg.Filter.KernelWidth,
				Height: e.cfg.Filter.KernelHeight,
			}
			if cmd.Flags().Changed(`width`) {
				fp.Width = filterWidth
			}
			if cmd.Flags().Changed(`height`) {
				fp.Height = filterHeight
			}
			return e.proc.Filter(args[1], args[2], fp)
		})
	},
}
