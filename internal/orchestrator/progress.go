package orchestrator

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Progress printing is a one-line-per-step summary, not an interactive
// TUI: training runs unattended for long stretches and pipe naturally
// into a log file, so this renders each Progress as a single styled
// line rather than driving a bubbletea program.
var (
	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	iterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	goodExploitStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#96CEB4"))

	badExploitStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))
)

// FormatProgress renders p as the single styled summary line the train
// command logs once per step (through its logger, which writes to
// stderr).
func FormatProgress(p Progress) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s ",
		stepStyle.Render(fmt.Sprintf("step %d", p.Step)),
		iterStyle.Render(fmt.Sprintf("iter=%d", p.Iteration)))

	if p.Exploitability != 0 {
		style := goodExploitStyle
		if p.Exploitability > 0.1 || p.Exploitability < -0.1 {
			style = badExploitStyle
		}
		fmt.Fprintf(&b, "%s ", style.Render(fmt.Sprintf("exploitability=%.5f", p.Exploitability)))
	}

	fmt.Fprintf(&b, "%s", timeStyle.Render(p.StepTime.String()))
	return b.String()
}
