// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit cancels a running generation and exits.
	Quit key.Binding

	// Close exits once generation has finished.
	Close key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "cancel"),
		),
		Close: key.NewBinding(
			key.WithKeys("enter", "q", "ctrl+c", "esc"),
			key.WithHelp("enter", "close"),
		),
	}
}

// RunningHelp returns keybindings shown while an article is being written.
func (k *KeyMap) RunningHelp() []key.Binding {
	return []key.Binding{k.Quit}
}

// DoneHelp returns keybindings shown after generation finishes.
func (k *KeyMap) DoneHelp() []key.Binding {
	return []key.Binding{k.Close}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
