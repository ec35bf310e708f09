package home

import "charm.land/bubbles/v2/key"

type keyMap struct {
	Navigate key.Binding
	Start    key.Binding
	Resume   key.Binding
	Cancel   key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Navigate: key.NewBinding(
			key.WithKeys("up", "down", "k", "j"),
			key.WithHelp("↑↓", "Navigate"),
		),
		Start: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "Start"),
		),
		Resume: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("R", "Resume saved"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "Cancel"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("Q", "Quit"),
		),
	}
}
