package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stepscope/stepscope"
)

var runSteps bool

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Trace an eligible program to completion",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runSteps, "steps", false, "print every step, not just the summary")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	noColor = noColor || cfg.NoColor

	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	it, err := stepscope.NewInterpreter(string(src))
	if err != nil {
		if ie, ok := err.(*stepscope.IneligibleError); ok {
			return fmt.Errorf("%s is not interpreter-eligible (%s); use `stepscope instrument` instead", args[0], ie.Construct)
		}
		fmt.Fprintln(os.Stderr, styled(errStyle, stepscope.WrapErrorWithName(err, args[0], string(src)).Error()))
		return err
	}

	trace, err := it.ContinueToEnd()
	if err != nil {
		fmt.Fprintln(os.Stderr, styled(errStyle, stepscope.WrapErrorWithName(err, args[0], string(src)).Error()))
		return err
	}

	if runSteps {
		fmt.Print(renderTrace(trace))
	} else {
		fmt.Print(renderSummary(trace))
	}
	return nil
}
