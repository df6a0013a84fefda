// Package ui implements an interactive terminal library browser using bubbletea's Elm architecture.
//
// The TUI has two tabs over the signed-in viewer's library:
//  1. [FavoritesView] : saved movies in insertion order
//  2. [WatchingView] : continue watching, most recently played first
//
// plus a [ConfirmView] guarding "clear all". The [Model] subscribes to the change notification bus, and
// each notification is forwarded through a channel into a tea message that reloads the affected list,
// so writes from the CLI or another process (via the storage watcher) show up without a keypress.
//
// Keyboard navigation uses vim-style bindings (j/k, tab, d, c, y/n, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
