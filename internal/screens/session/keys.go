package session

import "charm.land/bubbles/v2/key"

type keyMap struct {
	Choose  key.Binding
	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
	Next    key.Binding
	Explain key.Binding
	Save    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Choose: key.NewBinding(
			key.WithKeys("a", "b", "c", "d", "1", "2", "3", "4"),
			key.WithHelp("A-D", "Answer"),
		),
		Up:   key.NewBinding(key.WithKeys("up", "k")),
		Down: key.NewBinding(key.WithKeys("down", "j")),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "Select"),
		),
		Next: key.NewBinding(
			key.WithKeys("n", "right", "space"),
			key.WithHelp("N", "Next"),
		),
		Explain: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("E", "Explain"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("S/Esc", "Save & exit"),
		),
	}
}

// choiceIndex maps an answer key to its option index.
func choiceIndex(k string) (int, bool) {
	switch k {
	case "a", "1":
		return 0, true
	case "b", "2":
		return 1, true
	case "c", "3":
		return 2, true
	case "d", "4":
		return 3, true
	}
	return 0, false
}
