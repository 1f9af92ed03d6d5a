package main

import (
	"github.com/spf13/cobra"

	"rasterflow/pkg/pipeline"
)

func init() {
	rootCmd.AddCommand(tiffCmd)
	tiffCmd.Flags().IntVarP(&tiffFactor, `factor`, `n`, 0, `reduction factor`)
	tiffCmd.Flags().BoolVar(&tiffContrast, `contrast`, false, `stretch each channel between histogram percentiles`)
	tiffCmd.Flags().Float64Var(&tiffLow, `low`, 0, `histogram fraction mapped to black`)
	tiffCmd.Flags().Float64Var(&tiffHigh, `high`, 0, `histogram fraction mapped to white`)
}

var (
	tiffFactor   int
	tiffContrast bool
	tiffLow      float64
	tiffHigh     float64
)

var tiffCmd = &cobra.Command{
	Use:   `tiff <in.tif> <out.bmp>`,
	Short: `convert a 16-bit strip TIFF scan to a 24-bit bitmap`,
	Long: `Convert an uncompressed little-endian 16-bit RGB strip TIFF to a 24-bit bitmap,
block-averaging by the reduction factor. Without --contrast the samples are
assumed to use ten significant bits and are shifted down to eight.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		run(func(e *env) error {
			n := e.cfg.Downscale.Factor
			if cmd.Flags().Changed(`factor`) {
				n = tiffFactor
			}
			var stretch *pipeline.ContrastParams
			if e.cfg.Contrast.Enabled || tiffContrast {
				stretch = &pipeline.ContrastParams{Low: e.cfg.Contrast.Low, High: e.cfg.Contrast.High}
				if cmd.Flags().Changed(`low`) {
					stretch.Low = tiffLow
				}
				if cmd.Flags().Changed(`high`) {
					stretch.High = tiffHigh
				}
			}
			return e.proc.ConvertTIFF(args[0], args[1], n, stretch)
		})
	},
}
