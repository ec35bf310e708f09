package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mcqprep/internal/ui/theme"
)

const titleText = "M C Q   P R E P"

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	return max(20, min(frameWidth-6, 72))
}

func renderTitle(cw int) string {
	title := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(titleText)
	sub := theme.Hint.Render("timed practice for the exam modules")
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(title + "\n" + sub)
}

// renderStatsBar shows how many pools are ready and how many sessions are
// saved, in a bordered box matching the content width.
func renderStatsBar(ready, total, saved int, cw int) string {
	readyStyle := lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
	savedStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)

	stats := fmt.Sprintf("%s  %s",
		readyStyle.Render(fmt.Sprintf("● %d/%d BANKS READY", ready, total)),
		savedStyle.Render(fmt.Sprintf("◆ %d SAVED", saved)),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// renderNotice renders the last notice under the menu.
func renderNotice(text string, isErr bool, cw int) string {
	style := theme.Notice
	if isErr {
		style = lipgloss.NewStyle().Foreground(theme.Error)
	}
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(style.Render(text))
}

// renderFrame centers the content block in the available area.
func renderFrame(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(1, 2).
			Render(content))
}

func divider(cw int) string {
	return lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw))
}
