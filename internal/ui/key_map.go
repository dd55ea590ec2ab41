package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	back      key.Binding
	search    key.Binding
	featured  key.Binding
	recommend key.Binding
	pause     key.Binding
	next      key.Binding
	prev      key.Binding
	shuffle   key.Binding
	repeat    key.Binding
	add       key.Binding
	enqueue   key.Binding
	remove    key.Binding
	clear     key.Binding
	tab       key.Binding
	logout    key.Binding
	forgot    key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play/select")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		featured:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "featured")),
		recommend: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "more like this")),
		pause:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
		next:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		prev:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev")),
		shuffle:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shuffle")),
		repeat:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "repeat")),
		add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add to playlist")),
		enqueue:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "queue")),
		remove:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove")),
		clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear queue")),
		tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch view")),
		logout:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "log out")),
		forgot:    key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "forgot password")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.enter, k.search, k.pause, k.next, k.tab, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.search, k.featured, k.recommend, k.add},
		{k.enqueue, k.remove, k.clear},
		{k.pause, k.next, k.prev, k.shuffle, k.repeat},
		{k.tab, k.logout, k.forgot, k.quit},
	}
}
