package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/stepscope/stepscope"
)

var (
	parseLogSteps    bool
	parseLogDuration time.Duration
)

var parseLogCmd = &cobra.Command{
	Use:   "parse-log [file]",
	Short: "Fold a probe log into an execution trace",
	Long: `Read a probe log (from a file or stdin) produced by an instrumented
program and fold it into a trace. Malformed probe lines are skipped;
non-probe lines are treated as the program's own output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParseLog,
}

func init() {
	parseLogCmd.Flags().BoolVar(&parseLogSteps, "steps", false, "print every step, not just the summary")
	parseLogCmd.Flags().DurationVar(&parseLogDuration, "duration", 0, "measured wall-clock duration of the run")
	rootCmd.AddCommand(parseLogCmd)
}

func runParseLog(cmd *cobra.Command, args []string) error {
	var text []byte
	var err error
	if len(args) == 1 {
		text, err = os.ReadFile(args[0])
	} else {
		text, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return err
	}

	trace := stepscope.ParseProbeLogWithDuration(string(text), parseLogDuration)
	if parseLogSteps {
		fmt.Print(renderTrace(trace))
	} else {
		fmt.Print(renderSummary(trace))
	}
	return nil
}
