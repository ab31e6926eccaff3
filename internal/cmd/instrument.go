package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stepscope/stepscope"
)

var instrumentOut string

var instrumentCmd = &cobra.Command{
	Use:   "instrument <file>",
	Short: "Inject trace probes into a program",
	Long: `Rewrite a program so that every declaration and assignment the scanner
can attribute emits a probe line on stderr. The result still compiles
with any C++ compiler; run it and feed its stderr to 'stepscope parse-log'.`,
	Args: cobra.ExactArgs(1),
	RunE: runInstrument,
}

func init() {
	instrumentCmd.Flags().StringVarP(&instrumentOut, "output", "o", "", "write instrumented source here instead of stdout")
	rootCmd.AddCommand(instrumentCmd)
}

func runInstrument(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	out, err := stepscope.Instrument(string(src))
	if err != nil {
		return fmt.Errorf("instrument %s: %w", args[0], err)
	}
	if instrumentOut == "" {
		fmt.Print(out)
		return nil
	}
	return os.WriteFile(instrumentOut, []byte(out), 0o644)
}
