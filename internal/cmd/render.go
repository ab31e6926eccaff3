package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stepscope/stepscope"
)

var noColor bool

var (
	kindStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Width(22)
	lineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	errStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
)

func styled(st lipgloss.Style, s string) string {
	if noColor {
		return s
	}
	return st.Render(s)
}

// renderStep formats one step as a single human line.
func renderStep(st *stepscope.ExecutionStep) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%4d  %s %s",
		st.StepNumber,
		styled(lineStyle, fmt.Sprintf("L%-4d", st.Line)),
		styled(kindStyle, string(st.Kind)))

	p := st.Payload
	switch {
	case st.Kind == stepscope.StepVariableDeclaration:
		fmt.Fprintf(&b, " %s %s = %s", p.VarType, p.Name, styled(valueStyle, p.Value.String()))
	case st.Kind.IsMutation():
		fmt.Fprintf(&b, " %s = %s", p.Name, styled(valueStyle, p.Value.String()))
	case st.Kind.IsControlFlow():
		fmt.Fprintf(&b, " (%s) -> %v", p.Condition, p.Taken)
	case st.Kind == stepscope.StepOutputOperation:
		fmt.Fprintf(&b, " %q", p.Text)
	case st.Kind == stepscope.StepFunctionEnter, st.Kind == stepscope.StepFunctionCall:
		fmt.Fprintf(&b, " %s(%s)", p.Name, strings.Join(p.Args, ", "))
	}
	return b.String()
}

// renderTrace prints every step followed by the summary block.
func renderTrace(t *stepscope.ExecutionTrace) string {
	var b strings.Builder
	b.WriteString(styled(headerStyle, "Trace") + "\n")
	for i := range t.Steps {
		b.WriteString(renderStep(&t.Steps[i]))
		b.WriteByte('\n')
	}
	b.WriteString(renderSummary(t))
	return b.String()
}

func renderSummary(t *stepscope.ExecutionTrace) string {
	var b strings.Builder
	b.WriteString(styled(headerStyle, "Summary") + "\n")
	fmt.Fprintf(&b, "  steps: %d\n", t.Summary.TotalSteps)
	if t.Summary.Elapsed > 0 {
		fmt.Fprintf(&b, "  elapsed: %s (%s/step)\n", t.Summary.Elapsed, t.Summary.PerStep)
	}

	kinds := make([]string, 0, len(t.Summary.Counts))
	for k := range t.Summary.Counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(&b, "  %s\n", styled(summaryStyle,
			fmt.Sprintf("%-22s %d", k, t.Summary.Counts[stepscope.StepKind(k)])))
	}

	if len(t.Final.Variables) > 0 {
		b.WriteString(styled(headerStyle, "Final variables") + "\n")
		b.WriteString(renderVars(t.Final.Variables))
	}
	if t.Final.Output != "" {
		b.WriteString(styled(headerStyle, "Output") + "\n")
		b.WriteString(t.Final.Output)
		if !strings.HasSuffix(t.Final.Output, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func renderVars(vars map[string]stepscope.Value) string {
	names := make([]string, 0, len(vars))
	for n := range vars {
		names = append(names, n)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, n := range names {
		v := vars[n]
		fmt.Fprintf(&b, "  %-12s %s %s\n", n, lipglossTypeTag(v), styled(valueStyle, v.String()))
	}
	return b.String()
}

func lipglossTypeTag(v stepscope.Value) string {
	return styled(lineStyle, fmt.Sprintf("%-6s", v.TypeName()))
}
