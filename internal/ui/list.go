package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/cineflix/internal/favorites"
	"github.com/desertthunder/cineflix/internal/shared"
	"github.com/desertthunder/cineflix/internal/watching"
)

var (
	_ list.Item = favoriteItem{}
	_ list.Item = watchingItem{}
)

// favoriteItem wraps [favorites.Favorite] to implement [list.Item].
type favoriteItem struct {
	favorite favorites.Favorite
}

func (i favoriteItem) FilterValue() string { return i.favorite.Title }
func (i favoriteItem) Title() string       { return i.favorite.Title }
func (i favoriteItem) Description() string {
	desc := fmt.Sprintf("%d%% match", i.favorite.Match)
	if i.favorite.Year != "" {
		desc = fmt.Sprintf("%s • %s", i.favorite.Year, desc)
	}
	if i.favorite.Duration != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.favorite.Duration)
	}
	return desc
}

// watchingItem wraps [watching.Entry] to implement [list.Item].
type watchingItem struct {
	entry watching.Entry
}

func (i watchingItem) FilterValue() string { return i.entry.Title }
func (i watchingItem) Title() string       { return i.entry.Title }
func (i watchingItem) Description() string {
	return fmt.Sprintf("%s / %s (%.0f%%)",
		shared.FormatDuration(int(i.entry.Progress)),
		shared.FormatDuration(int(i.entry.Duration)),
		i.entry.Percent())
}

func favoriteItems(favs []favorites.Favorite) []list.Item {
	items := make([]list.Item, len(favs))
	for i, f := range favs {
		items[i] = favoriteItem{favorite: f}
	}
	return items
}

func watchingItems(entries []watching.Entry) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = watchingItem{entry: e}
	}
	return items
}
