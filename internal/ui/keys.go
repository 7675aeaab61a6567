package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application. Bindings in
// different views may share keys; each view handler only checks its own.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding
	Logs       key.Binding

	// View switching
	ViewHome     key.Binding
	ViewActivity key.Binding
	ViewSearch   key.Binding
	ViewSettings key.Binding

	// Navigation
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding

	// List actions
	Open          key.Binding
	Select        key.Binding
	Download      key.Binding
	BulkDownload  key.Binding
	Delete        key.Binding
	BulkDelete    key.Binding
	DeleteChannel key.Binding
	CycleSort     key.Binding
	CycleFilter   key.Binding
	LoadMore      key.Binding
	Filter        key.Binding
	Monitor       key.Binding
	Sync          key.Binding
	Playlists     key.Binding
	Preview       key.Binding
	Refresh       key.Binding

	// Settings
	ToggleAutoSync key.Binding
	IntervalUp     key.Binding
	IntervalDown   key.Binding
	CycleQuality   key.Binding
	EditPath       key.Binding
	Save           key.Binding
	GenerateKey    key.Binding
	Rescan         key.Binding

	// Logs
	ToggleFollow key.Binding

	// Dialogs
	Accept  key.Binding
	Decline key.Binding
	Confirm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
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
			key.WithKeys("tab"),
			key.WithHelp("tab", "Cycle views"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Cycle views (reverse)"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),
		Logs: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Client log"),
		),

		// View switching
		ViewHome: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Channels"),
		),
		ViewActivity: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Activity"),
		),
		ViewSearch: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Search"),
		),
		ViewSettings: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Settings"),
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

		// List actions
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open"),
		),
		Select: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Select"),
		),
		Download: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Download"),
		),
		BulkDownload: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Download selected"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Delete video"),
		),
		BulkDelete: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "Delete selected"),
		),
		DeleteChannel: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Remove channel"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Cycle sort"),
		),
		CycleFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cycle filter"),
		),
		LoadMore: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Load more"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Filter"),
		),
		Monitor: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "Monitor"),
		),
		Sync: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "Sync"),
		),
		Playlists: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Playlists"),
		),
		Preview: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "Preview"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh"),
		),

		// Settings
		ToggleAutoSync: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Toggle auto sync"),
		),
		IntervalUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "Longer interval"),
		),
		IntervalDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Shorter interval"),
		),
		CycleQuality: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "Cycle quality"),
		),
		EditPath: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Edit path"),
		),
		Save: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "Save"),
		),
		GenerateKey: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "New API key"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Rescan library"),
		),

		// Logs
		ToggleFollow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Toggle follow mode"),
		),

		// Dialogs
		Accept: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "Yes"),
		),
		Decline: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n/esc", "No"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
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
		{k.ViewHome, k.ViewActivity, k.ViewSearch, k.ViewSettings, k.Tab, k.Escape},
		{k.Up, k.Down, k.Top, k.Bottom, k.HalfPageDown, k.HalfPageUp},
		// Channel
		{k.Open, k.Select, k.Download, k.BulkDownload, k.Delete, k.BulkDelete},
		{k.CycleSort, k.CycleFilter, k.LoadMore, k.Filter, k.Monitor, k.Sync, k.Playlists, k.DeleteChannel},
		// Search
		{k.Preview},
		// Settings
		{k.ToggleAutoSync, k.IntervalUp, k.IntervalDown, k.CycleQuality, k.EditPath, k.Save, k.GenerateKey, k.Rescan},
		// General
		{k.Logs, k.CycleTheme, k.Help, k.Quit},
	}
}
