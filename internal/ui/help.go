package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay from the key map, so the overlay never
// drifts from the bindings.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	groups := m.keys.FullHelp()

	sections := []helpSection{
		{title: "Navigation", items: helpItems(groups[0], groups[1])},
		{title: "Channel", items: helpItems(groups[2], groups[3])},
		{title: "Search", items: helpItems(groups[4])},
		{title: "Settings", items: helpItems(groups[5])},
		{title: "General", items: helpItems(groups[6])},
	}

	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)
	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, item := range section.items {
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(44)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}

func helpItems(groups ...[]key.Binding) []helpItem {
	var items []helpItem
	for _, group := range groups {
		for _, b := range group {
			h := b.Help()
			items = append(items, helpItem{key: h.Key, desc: h.Desc})
		}
	}
	return items
}
