package summary

import "charm.land/bubbles/v2/key"

type keyMap struct {
	Scroll  key.Binding
	Explain key.Binding
	Restart key.Binding
	Done    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Scroll: key.NewBinding(
			key.WithKeys("up", "down", "k", "j", "pgup", "pgdown"),
			key.WithHelp("↑↓", "Scroll"),
		),
		Explain: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("E", "Explain missed"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("R", "New session"),
		),
		Done: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "Home"),
		),
	}
}
