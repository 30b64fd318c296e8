package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 2)

	restoredStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

func renderDiscover(out discoverOutput) string {
	s := out.Summary
	var b strings.Builder

	b.WriteString(titleStyle.Render("Process model") + "\n")
	b.WriteString(helpStyle.Render("run "+s.RunID) + "\n")

	stats := fmt.Sprintf("Traces:      %d\nActivities:  %d\nEdges:       %d of %d\nRestored:    %d\nLoop groups: %d",
		s.Traces, s.Activities, s.FilteredEdges, s.RawEdges, s.Restored, s.LoopRegions)
	b.WriteString(statsBoxStyle.Render(stats) + "\n\n")

	if len(out.Edges) == 0 {
		b.WriteString(helpStyle.Render("no edges") + "\n")
		return b.String()
	}

	width := 0
	for _, e := range out.Edges {
		width = max(width, len(e.Source)+len(e.Target)+3)
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %9s %10s", width, "EDGE", "FREQUENCY", "DEPENDENCY")) + "\n")
	for _, e := range out.Edges {
		line := fmt.Sprintf("%-*s %9d %10.3f", width, e.Source+" > "+e.Target, e.Frequency, e.Dependency)
		if e.Restored {
			line = restoredStyle.Render(line + "  restored")
		}
		b.WriteString(line + "\n")
	}

	for _, loop := range out.Loops {
		b.WriteString(helpStyle.Render("loop: "+strings.Join(loop, ", ")) + "\n")
	}
	return b.String()
}

func renderPath(out pathOutput) string {
	if !out.Reachable {
		return errorStyle.Render(fmt.Sprintf("%s does not reach %s", out.From, out.To)) + "\n"
	}
	return fmt.Sprintf("%s %s\n",
		successStyle.Render(fmt.Sprintf("%d hops", *out.Distance)),
		strings.Join(out.Path, " > "))
}
