package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rasterflow/internal/errors"
	"rasterflow/internal/logx"
	"rasterflow/pkg/config"
	"rasterflow/pkg/pipeline"
)

var rootCmd = &cobra.Command{
	Use:              filepath.Base(os.Args[0]),
	Short:            "rasterflow streaming raster filters and resamplers",
	Long:             "rasterflow filters, rotates and downscales 24-bit bitmaps and converts 16-bit strip TIFF scans, streaming rows wherever the operation allows.",
	SilenceUsage:     true,
	TraverseChildren: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
		os.Exit(1)
	},
}

var (
	debugFlag   bool
	verboseFlag bool
	configFlag  string
)

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, `debug`, `d`, false, `print error stacks`)
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, `verbose`, `v`, false, `log debug records and progress`)
	rootCmd.PersistentFlags().StringVarP(&configFlag, `config`, `c`, `rasterflow.yaml`, `configuration file`)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env is what every operation command needs.
type env struct {
	cfg  *config.Config
	proc *pipeline.Processor
}

// setup loads the configuration and builds the processor.
func setup() (*env, error) {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, err
	}
	verbose := verboseFlag || cfg.Output.Verbose
	prov := logx.Prov(logx.NewText(os.Stderr, verbose))
	proc := pipeline.NewProcessor(&pipeline.Params{Progress: cfg.Output.Progress && verbose}, prov)
	return &env{cfg: cfg, proc: proc}, nil
}

func run(fn func(e *env) error) {
	if fn == nil {
		fn = func(*env) error { return errors.New(`nil command`) }
	}
	e, err := setup()
	if err == nil {
		err = fn(e)
	}
	var stack *errors.Error
	if debugFlag && errors.As(err, &stack) {
		fmt.Fprintln(os.Stderr, stack.ErrorStack())
		os.Exit(1)
	}
	var prov logx.LoggerProvider = logx.Prov(logx.NewText(os.Stderr, verboseFlag))
	if e != nil {
		prov = e.proc
	}
	if logx.IsErr(err, prov, slog.LevelError) {
		os.Exit(1)
	}
}
