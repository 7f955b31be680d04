package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-docfill/pkg/values"
)

const progressWidth = 20

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	filledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Bold(true)
)

// progressLine renders "[#####.....] 3/5 fields (60%)".
func progressLine(stats values.Stats) string {
	done := 0
	if stats.Total > 0 {
		done = stats.Filled * progressWidth / stats.Total
	}
	bar := filledStyle.Render(strings.Repeat("#", done)) +
		pendingStyle.Render(strings.Repeat(".", progressWidth-done))
	return fmt.Sprintf("[%s] %d/%d fields (%d%%)", bar, stats.Filled, stats.Total, stats.Percent())
}
