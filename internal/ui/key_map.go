package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up         key.Binding
	down       key.Binding
	enter      key.Binding
	back       key.Binding
	tab        key.Binding
	next       key.Binding
	prev       key.Binding
	rate       key.Binding
	trailer    key.Binding
	qr         key.Binding
	remove     key.Binding
	watchlists key.Binding
	chat       key.Binding
	admin      key.Binding
	login      key.Binding
	logout     key.Binding
	ban        key.Binding
	unban      key.Binding
	reset      key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		tab:        key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		next:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next page")),
		prev:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev page")),
		rate:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rate")),
		trailer:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "trailer")),
		qr:         key.NewBinding(key.WithKeys("Q"), key.WithHelp("Q", "qr code")),
		remove:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		watchlists: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "watchlists")),
		chat:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "chat")),
		admin:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "admin")),
		login:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log in")),
		logout:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "log out")),
		ban:        key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "ban")),
		unban:      key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unban")),
		reset:      key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new conversation")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.next, k.prev, k.rate, k.trailer},
		{k.watchlists, k.chat, k.admin, k.login, k.logout},
		{k.qr, k.remove, k.ban, k.unban, k.quit},
	}
}
