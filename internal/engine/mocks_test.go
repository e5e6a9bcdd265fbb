package engine

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/catalog-imager/internal/model"
)

var errForcedWrite = errors.New("forced write failure")

// memoryStore is an in-memory ItemStore. Writes for ids in failIDs fail.
type memoryStore struct {
	listErr    error
	items      map[int64]model.Item
	failIDs    map[int64]bool
	writes     []int64
	writeTimes []time.Time
	mu         sync.Mutex
}

func newMemoryStore(items ...model.Item) *memoryStore {
	s := &memoryStore{
		items:   make(map[int64]model.Item),
		failIDs: make(map[int64]bool),
	}
	for _, item := range items {
		s.items[item.ID] = item
	}
	return s
}

func (s *memoryStore) ListItems(_ context.Context) ([]model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listErr != nil {
		return nil, s.listErr
	}

	out := make([]model.Item, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := strings.ToLower(out[i].Category), strings.ToLower(out[j].Category)
		if ci != cj {
			return ci < cj
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memoryStore) SetItemImage(_ context.Context, id int64, imageURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writes = append(s.writes, id)
	s.writeTimes = append(s.writeTimes, time.Now())
	if s.failIDs[id] {
		return errForcedWrite
	}
	item, ok := s.items[id]
	if !ok {
		return errors.New("no such item")
	}
	item.ImageURL = imageURL
	s.items[id] = item
	return nil
}

func (s *memoryStore) image(id int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id].ImageURL
}

func (s *memoryStore) images() map[int64]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]string, len(s.items))
	for id, item := range s.items {
		out[id] = item.ImageURL
	}
	return out
}

// recordingReporter captures every event it receives.
type recordingReporter struct {
	summary     *model.Summary
	groups      []string
	results     []model.ItemResult
	totalItems  int
	totalGroups int
	started     bool
}

func (r *recordingReporter) RunStarted(totalItems, totalGroups int) {
	r.started = true
	r.totalItems = totalItems
	r.totalGroups = totalGroups
}

func (r *recordingReporter) GroupStarted(group model.CategoryGroup, _ model.PoolName) {
	r.groups = append(r.groups, group.Key)
}

func (r *recordingReporter) ItemFinished(result model.ItemResult) {
	r.results = append(r.results, result)
}

func (r *recordingReporter) RunFinished(summary *model.Summary) {
	r.summary = summary
}

// countingPacer counts waits and can cancel a context after n waits.
type countingPacer struct {
	cancel   context.CancelFunc
	waits    int
	cancelAt int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	if p.cancel != nil && p.waits == p.cancelAt {
		p.cancel()
	}
	return ctx.Err()
}
