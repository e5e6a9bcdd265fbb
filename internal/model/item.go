// Package model defines the core data structures for the imager application.
package model

import "strings"

// Item is a catalog row whose display image is managed by the imager.
type Item struct {
	Name     string `db:"name" json:"name"`
	Category string `db:"category" json:"category"`
	ImageURL string `db:"image_url" json:"image_url,omitempty"`
	ID       int64  `db:"id" json:"id"`
}

// GroupKey returns the normalized category label used to group items.
func GroupKey(category string) string {
	return strings.ToLower(category)
}

// CategoryGroup holds the items that share a normalized category label,
// in the order they were enumerated from the store.
type CategoryGroup struct {
	Key   string
	Label string
	Items []Item
}

// DisplayLabel returns the label as shown in reports.
func (g CategoryGroup) DisplayLabel() string {
	if g.Key == "" {
		return "(UNCATEGORIZED)"
	}
	return strings.ToUpper(g.Key)
}
