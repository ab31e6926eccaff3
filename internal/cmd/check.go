package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stepscope/stepscope"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Report whether a program is interpreter-eligible",
	Long: `Classify a program for the interpreter path. Exit code 0 means the
restricted interpreter may run it; exit code 1 names the first construct
that routes it to the instrument-and-compile path instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		ok, construct := stepscope.ClassifySource(string(src))
		if !ok {
			return fmt.Errorf("%s: not eligible: %s", args[0], construct)
		}
		fmt.Printf("%s: eligible\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
