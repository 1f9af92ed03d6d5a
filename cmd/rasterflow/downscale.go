package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(downscaleCmd)
	downscaleCmd.Flags().IntVarP(&downscaleFactor, `factor`, `n`, 0, `reduction factor`)
	downscaleCmd.Flags().StringVarP(&downscaleMethod, `method`, `m`, ``, `avg (block mean) or thin (keep every n-th pixel)`)
}

var (
	downscaleFactor int
	downscaleMethod string
)

var downscaleCmd = &cobra.Command{
	Use:   `downscale <in.bmp> <out.bmp>`,
	Short: `reduce a bitmap by an integer factor`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		run(func(e *env) error {
			n, method := e.cfg.Downscale.Factor, e.cfg.Downscale.Method
			if cmd.Flags().Changed(`factor`) {
				n = downscaleFactor
			}
			if cmd.Flags().Changed(`method`) {
				method = downscaleMethod
			}
			return e.proc.Downscale(args[0], args[1], n, method)
		})
	},
}
