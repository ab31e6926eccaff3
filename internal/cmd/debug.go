package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/stepscope/stepscope"
)

const (
	debugPrompt = "(step) "
	debugHelp   = `commands:
  step, s       execute one step
  continue, c   run to completion
  vars, v       show current variables
  trace, t      show the trace so far (sealed runs only)
  reset, r      restart the program from the beginning
  help, ?       this help
  quit, q       end the session
`
)

var debugCmd = &cobra.Command{
	Use:   "debug <file>",
	Short: "Step through an eligible program interactively",
	Args:  cobra.ExactArgs(1),
	RunE:  runDebug,
}

func init() {
	rootCmd.AddCommand(debugCmd)
}

func runDebug(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	noColor = noColor || cfg.NoColor

	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	mgr := stepscope.NewSessionManager(cfg.SessionTTL)
	sess, err := mgr.Create(string(src))
	if err != nil {
		if _, ok := err.(*stepscope.IneligibleError); ok {
			return fmt.Errorf("%s: %w; use `stepscope instrument` instead", args[0], err)
		}
		fmt.Fprintln(os.Stderr, styled(errStyle, stepscope.WrapErrorWithName(err, args[0], string(src)).Error()))
		return err
	}
	defer mgr.End(sess.ID)
	sess.Interp.SetMaxSteps(cfg.MaxSteps)

	fmt.Printf("stepscope debug: %s (session %s)\n", args[0], sess.ID[:8])
	fmt.Println("Type ? for commands.")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(cfg.HistoryFile); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(cfg.HistoryFile); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		line, err := ln.Prompt(debugPrompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}
		ln.AppendHistory(line)

		switch strings.TrimSpace(strings.ToLower(line)) {
		case "", "step", "s":
			doStep(sess.Interp, string(src), args[0])
		case "continue", "c":
			for sess.Interp.State() == stepscope.NotStarted || sess.Interp.State() == stepscope.Running {
				if !doStep(sess.Interp, string(src), args[0]) {
					break
				}
			}
		case "vars", "v":
			showVars(sess.Interp)
		case "trace", "t":
			if t := sess.Interp.Trace(); t != nil {
				fmt.Print(renderTrace(t))
			} else {
				fmt.Println("run still in progress; trace seals on completion")
			}
		case "reset", "r":
			sess.Interp.Reset()
			fmt.Println("reset")
		case "help", "?":
			fmt.Print(debugHelp)
		case "quit", "q", "exit":
			return nil
		default:
			fmt.Printf("unknown command %q; type ? for help\n", strings.TrimSpace(line))
		}
	}
}

// doStep advances one step and prints the event. It returns false once
// the machine is terminal.
func doStep(it *stepscope.Interpreter, src, name string) bool {
	st, err := it.Step()
	if err != nil {
		fmt.Fprintln(os.Stderr, styled(errStyle, stepscope.WrapErrorWithName(err, name, src).Error()))
		return false
	}
	if st == nil {
		fmt.Printf("program %s\n", it.State())
		return false
	}
	fmt.Println(renderStep(st))
	if st.OutputDelta != "" {
		fmt.Printf("      output: %q\n", st.OutputDelta)
	}
	return true
}

func showVars(it *stepscope.Interpreter) {
	var vars map[string]stepscope.Value
	if t := it.Trace(); t != nil {
		vars = t.Final.Variables
	} else if steps := it.StepsSoFar(); len(steps) > 0 {
		vars = steps[len(steps)-1].Variables
	}
	if len(vars) == 0 {
		fmt.Println("no variables yet")
		return
	}
	fmt.Print(renderVars(vars))
}
