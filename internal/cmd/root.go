// Package cmd wires the stepscope CLI: trace simple programs with the
// restricted interpreter, instrument anything else for the compile path,
// and fold probe logs back into traces.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stepscope",
	Short: "Execution tracing for simple C/C++ programs",
	Long: `stepscope produces step-by-step execution traces of C/C++ programs.

Simple programs run directly in a restricted interpreter, one observable
step at a time. Anything beyond the restricted subset is instrumented
with trace probes instead, compiled externally, and its probe log folded
back into the same trace shape.`,
	SilenceUsage: true,
}

// ExecuteContext runs the root command under ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

var cfgPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default is $HOME/.stepscope.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable styled output")
}
