// Package engine implements the image assignment pass over the catalog.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/catalog-imager/internal/common"
	"github.com/Veraticus/catalog-imager/internal/model"
)

// ErrInterrupted is returned when the run stops before every item was visited.
var ErrInterrupted = errors.New("assignment run interrupted")

// Config holds optional collaborators and settings for the assigner.
type Config struct {
	Reporter Reporter
	Pacer    Pacer
	DryRun   bool
}

// Assigner walks the catalog once and writes a rotating image to every item.
type Assigner struct {
	store      ItemStore
	classifier Classifier
	images     ImageSource
	reporter   Reporter
	pacer      Pacer
	now        func() time.Time
	dryRun     bool
}

// New creates an assigner with no reporting and no delay between writes.
func New(store ItemStore, classifier Classifier, images ImageSource) *Assigner {
	return NewWithConfig(store, classifier, images, Config{})
}

// NewWithConfig creates an assigner with custom configuration.
func NewWithConfig(store ItemStore, classifier Classifier, images ImageSource, config Config) *Assigner {
	a := &Assigner{
		store:      store,
		classifier: classifier,
		images:     images,
		reporter:   config.Reporter,
		pacer:      config.Pacer,
		dryRun:     config.DryRun,
		now:        time.Now,
	}
	if a.reporter == nil {
		a.reporter = nopReporter{}
	}
	if a.pacer == nil {
		a.pacer = noPacer{}
	}
	return a
}

// Run performs a single pass. Enumeration failure aborts before any write.
// Individual write failures are recorded in the summary and never returned.
// If ctx is canceled the partial summary is returned with ErrInterrupted.
func (a *Assigner) Run(ctx context.Context) (*model.Summary, error) {
	items, err := a.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrEnumeration, err)
	}

	groups := GroupItems(items)
	summary := &model.Summary{
		StartedAt:  a.now(),
		TotalItems: len(items),
		DryRun:     a.dryRun,
	}

	slog.Info("Starting image assignment",
		"items", len(items),
		"categories", len(groups),
		"dry_run", a.dryRun)

	a.reporter.RunStarted(len(items), len(groups))

	runErr := a.processGroups(ctx, groups, summary)

	summary.Duration = a.now().Sub(summary.StartedAt)
	a.reporter.RunFinished(summary)

	slog.Info("Image assignment finished",
		"updated", summary.Updated,
		"failed", summary.Failed,
		"planned", summary.Planned,
		"interrupted", summary.Interrupted)

	return summary, runErr
}

func (a *Assigner) processGroups(ctx context.Context, groups []model.CategoryGroup, summary *model.Summary) error {
	wrote := false

	for _, group := range groups {
		pool := a.classifier.Classify(group.Key)
		summary.StartCategory(group, pool)
		a.reporter.GroupStarted(group, pool)

		for position, item := range group.Items {
			if err := ctx.Err(); err != nil {
				summary.Interrupted = true
				return fmt.Errorf("%w: %w", ErrInterrupted, err)
			}

			if !a.dryRun && wrote {
				if err := a.pacer.Wait(ctx); err != nil {
					summary.Interrupted = true
					return fmt.Errorf("%w: %w", ErrInterrupted, err)
				}
			}

			result := a.assign(ctx, group, position, item)
			wrote = wrote || !a.dryRun

			summary.Record(result)
			a.reporter.ItemFinished(result)
		}
	}

	return nil
}

// assign computes and persists the image for one item.
func (a *Assigner) assign(ctx context.Context, group model.CategoryGroup, position int, item model.Item) model.ItemResult {
	pool := a.classifier.Classify(item.Category)
	result := model.ItemResult{
		Item:     item,
		GroupKey: group.Key,
		Pool:     pool,
		Position: position,
		Image:    a.images.ImageFor(pool, position),
	}

	if a.dryRun {
		result.Status = model.StatusPlanned
		return result
	}

	if err := a.store.SetItemImage(ctx, item.ID, result.Image); err != nil {
		result.Status = model.StatusFailed
		result.Err = err
		result.Error = err.Error()
		common.LogError(err, "Failed to update item image", common.Fields{
			"id":       item.ID,
			"name":     item.Name,
			"category": group.Key,
		})
		return result
	}

	result.Item.ImageURL = result.Image
	result.Status = model.StatusUpdated
	slog.Debug("Updated item image",
		"id", item.ID,
		"name", item.Name,
		"pool", pool,
		"position", position)
	return result
}

type nopReporter struct{}

func (nopReporter) RunStarted(int, int) {}
func (nopReporter) GroupStarted(model.CategoryGroup, model.PoolName) {}
func (nopReporter) ItemFinished(model.ItemResult) {}
func (nopReporter) RunFinished(*model.Summary) {}
