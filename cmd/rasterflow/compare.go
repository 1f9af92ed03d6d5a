package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() { rootCmd.AddCommand(compareCmd) }

var compareCmd = &cobra.Command{
	Use:   `compare <reference.bmp> <other.bmp>`,
	Short: `print similarity metrics of two bitmaps of equal size`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		run(func(e *env) error {
			rep, err := e.proc.Compare(args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "RMSE:                %.4f\n", rep.RMSE)
			fmt.Fprintf(out, "PSNR:                %.2f dB\n", rep.PSNR)
			fmt.Fprintf(out, "SSIM:                %.4f\n", rep.SSIM)
			fmt.Fprintf(out, "Entropy difference:  %.4f bits\n", rep.EntropyDiff)
			fmt.Fprintf(out, "Mutual information:  %.4f\n", rep.MI)
			fmt.Fprintf(out, "Edge preservation:   %.4f\n", rep.EdgePreserved)
			return nil
		})
	},
}
