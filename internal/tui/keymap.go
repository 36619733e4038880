package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the task list screen's key bindings. Schedule (s) is listed
// in the full help, but the list screen has no handler for it, so pressing
// it does nothing.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Add      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Complete key.Binding
	Lock     key.Binding
	Schedule key.Binding
	Unschedule key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Complete:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete")),
		Lock:       key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "toggle lock")),
		Schedule:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "schedule")),
		Unschedule: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unschedule")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Add, k.Complete, k.Delete, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Add, k.Edit, k.Delete, k.Complete},
		{k.Lock, k.Schedule, k.Unschedule},
		{k.Help, k.Quit},
	}
}
