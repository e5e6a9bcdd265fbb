package engine

import (
	"context"

	"github.com/Veraticus/catalog-imager/internal/model"
)

// ItemStore is the persistence contract the assigner needs.
type ItemStore interface {
	// ListItems returns every item ordered by category, then ID ascending.
	ListItems(ctx context.Context) ([]model.Item, error)
	// SetItemImage writes one item's image reference in its own transaction.
	SetItemImage(ctx context.Context, id int64, imageURL string) error
}

// Classifier maps a category label to an image pool.
type Classifier interface {
	Classify(label string) model.PoolName
}

// ImageSource picks the image for a position within a pool.
type ImageSource interface {
	ImageFor(pool model.PoolName, position int) string
}

// Reporter receives progress events during a run.
type Reporter interface {
	RunStarted(totalItems, totalGroups int)
	GroupStarted(group model.CategoryGroup, pool model.PoolName)
	ItemFinished(result model.ItemResult)
	RunFinished(summary *model.Summary)
}

// Pacer delays successive writes.
type Pacer interface {
	Wait(ctx context.Context) error
}
