package main

import (
	"github.com/spf13/cobra"

	"rasterflow/pkg/interpolation"
)

func init() {
	rootCmd.AddCommand(rotateCmd)
	rotateCmd.Flags().Float64VarP(&rotateAngle, `angle`, `a`, 0, `counter-clockwise angle in degrees`)
	rotateCmd.Flags().StringVarP(&rotateInterp, `interp`, `i`, ``, `nearest, bilinear, bicubic, lanczos2 or lanczos3`)
}

var (
	rotateAngle  float64
	rotateInterp string
)

var rotateCmd = &cobra.Command{
	Use:   `rotate <in.bmp> <out.bmp>`,
	Short: `rotate a bitmap into its bounding box`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		run(func(e *env) error {
			angle, method := e.cfg.Rotate.Angle, e.cfg.Rotate.Interpolation
			if cmd.Flags().Changed(`angle`) {
				angle = rotateAngle
			}
			if cmd.Flags().Changed(`interp`) {
				m, err := interpolation.Parse(rotateInterp)
				if err != nil {
					return err
				}
				method = m
			}
			return e.proc.Rotate(args[0], args[1], angle, method)
		})
	},
}
