package options

import "github.com/charmbracelet/bubbles/key"

type pageKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Activate key.Binding
	Auto     key.Binding
	Manual   key.Binding
	Title    key.Binding
	Color    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() pageKeyMap {
	return pageKeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Activate: key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "select")),
		Auto:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "automatic")),
		Manual:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "manual")),
		Title:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "title")),
		Color:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "color")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k pageKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Activate, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k pageKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Activate},
		{k.Auto, k.Manual},
		{k.Title, k.Color},
		{k.Help, k.Quit},
	}
}
