package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	Escape     key.Binding

	// Navigation
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding

	// File actions
	Select    key.Binding
	Mark      key.Binding
	MarkAll   key.Binding
	ExportOne key.Binding
	ExportAll key.Binding
	Delete    key.Binding
	Upload    key.Binding
	Retry     key.Binding

	// Report actions
	Play          key.Binding
	NextDetection key.Binding
	PrevDetection key.Binding

	// Session
	ResetSession key.Binding

	// Modal input
	Confirm key.Binding
	Accept  key.Binding
	Reject  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "Switch pane"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),

		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u", "pgup"),
			key.WithHelp("ctrl+u", "Half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d", "pgdown"),
			key.WithHelp("ctrl+d", "Half page down"),
		),

		// File actions
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open/close report"),
		),
		Mark: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Mark file"),
		),
		MarkAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Mark all/none"),
		),
		ExportOne: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Export report"),
		),
		ExportAll: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "Export marked"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Delete"),
		),
		Upload: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Upload audio"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload files"),
		),

		// Report actions
		Play: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space/p", "Play/stop clip"),
		),
		NextDetection: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Next detection"),
		),
		PrevDetection: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "Previous detection"),
		),

		// Session
		ResetSession: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Reset session"),
		),

		// Modal input
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Accept: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "Yes"),
		),
		Reject: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "No"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Navigation
		{k.Tab, k.Up, k.Down, k.Top, k.Bottom},
		{k.HalfPageDown, k.HalfPageUp},
		// Files
		{k.Select, k.Mark, k.MarkAll, k.ExportOne, k.ExportAll, k.Delete, k.Upload, k.Retry},
		// Report
		{k.Play, k.NextDetection, k.PrevDetection},
		// General
		{k.ResetSession, k.CycleTheme, k.Help, k.Quit},
	}
}
