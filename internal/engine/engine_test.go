package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/catalog-imager/internal/common"
	"github.com/Veraticus/catalog-imager/internal/imagery"
	"github.com/Veraticus/catalog-imager/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPools(t *testing.T) *imagery.PoolSet {
	t.Helper()
	pools, err := imagery.NewPoolSet(map[model.PoolName][]string{
		model.PoolCoffee:   {"C1", "C2", "C3"},
		model.PoolTea:      {"T1", "T2"},
		model.PoolSmoothie: {"S1"},
		model.PoolPastry:   {"P1", "P2"},
	}, model.PoolCoffee)
	require.NoError(t, err)
	return pools
}

func newTestAssigner(t *testing.T, store ItemStore, config Config) *Assigner {
	t.Helper()
	pools := testPools(t)
	classifier, err := imagery.NewDefaultClassifier(pools)
	require.NoError(t, err)
	return NewWithConfig(store, classifier, pools, config)
}

func TestAssigner_TeaRotation(t *testing.T) {
	store := newMemoryStore(
		model.Item{ID: 1, Name: "A", Category: "tea"},
		model.Item{ID: 2, Name: "B", Category: "tea"},
		model.Item{ID: 3, Name: "C", Category: "tea"},
	)

	summary, err := newTestAssigner(t, store, Config{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "T1", store.image(1))
	assert.Equal(t, "T2", store.image(2))
	assert.Equal(t, "T1", store.image(3))
	assert.Equal(t, 3, summary.Updated)
	assert.Zero(t, summary.Failed)
}

func TestAssigner_PositionsArePerCategory(t *testing.T) {
	store := newMemoryStore(
		model.Item{ID: 10, Name: "Latte", Category: "Coffee"},
		model.Item{ID: 11, Name: "Mocha", Category: "Coffee"},
		model.Item{ID: 20, Name: "Croissant", Category: "Pastry"},
		model.Item{ID: 12, Name: "Flat White", Category: "Coffee"},
		model.Item{ID: 21, Name: "Scone", Category: "Pastry"},
		model.Item{ID: 30, Name: "Mug", Category: "Merch"},
	)

	summary, err := newTestAssigner(t, store, Config{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[int64]string{
		10: "C1", 11: "C2", 12: "C3",
		30: "C1",
		20: "P1", 21: "P2",
	}, store.images())

	require.Len(t, summary.Categories, 3)
	assert.Equal(t, "coffee", summary.Categories[0].Key)
	assert.Equal(t, "COFFEE", summary.Categories[0].Label)
	assert.Equal(t, 3, summary.Categories[0].Items)
	assert.Equal(t, "merch", summary.Categories[1].Key)
	assert.Equal(t, model.PoolCoffee, summary.Categories[1].Pool)
	assert.Equal(t, model.PoolPastry, summary.Categories[2].Pool)
}

func TestAssigner_MixedCaseLabelsShareGroup(t *testing.T) {
	store := newMemoryStore(
		model.Item{ID: 1, Name: "Green", Category: "Tea"},
		model.Item{ID: 2, Name: "Black", Category: "tea"},
		model.Item{ID: 3, Name: "Oolong", Category: "Tea"},
	)

	summary, err := newTestAssigner(t, store, Config{}).Run(context.Background())
	require.NoError(t, err)

	// Labels differing only in case sort together, so positions follow ID.
	assert.Equal(t, "T1", store.image(1))
	assert.Equal(t, "T2", store.image(2))
	assert.Equal(t, "T1", store.image(3))
	require.Len(t, summary.Categories, 1)
	assert.Equal(t, 3, summary.Categories[0].Updated)
}

func TestAssigner_FailureIsolation(t *testing.T) {
	store := newMemoryStore(
		model.Item{ID: 1, Name: "One", Category: "Pastry"},
		model.Item{ID: 2, Name: "Two", Category: "Pastry"},
		model.Item{ID: 3, Name: "Three", Category: "Pastry"},
		model.Item{ID: 4, Name: "Four", Category: "Pastry"},
		model.Item{ID: 5, Name: "Five", Category: "Pastry"},
	)
	store.failIDs[3] = true
	reporter := &recordingReporter{}

	summary, err := newTestAssigner(t, store, Config{Reporter: reporter}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3, 4, 5}, store.writes)
	for _, id := range []int64{1, 2, 4, 5} {
		assert.NotEmpty(t, store.image(id), "item %d", id)
	}
	assert.Empty(t, store.image(3))

	assert.Equal(t, 4, summary.Updated)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Categories, 1)
	assert.Equal(t, 4, summary.Categories[0].Updated)
	assert.Equal(t, 1, summary.Categories[0].Failed)

	failed := summary.FailedResults()
	require.Len(t, failed, 1)
	assert.Equal(t, int64(3), failed[0].Item.ID)
	assert.ErrorIs(t, failed[0].Err, errForcedWrite)
	assert.Equal(t, errForcedWrite.Error(), failed[0].Error)

	require.Len(t, reporter.results, 5)
	for i, r := range reporter.results {
		assert.Equal(t, i == 2, r.Status == model.StatusFailed, "result %d", i)
	}
	// Item four keeps its position even though item three failed.
	assert.Equal(t, "P2", store.image(4))
}

func TestAssigner_EnumerationFailureIsFatal(t *testing.T) {
	store := newMemoryStore(model.Item{ID: 1, Name: "A", Category: "tea"})
	store.listErr = errors.New("connection refused")
	reporter := &recordingReporter{}

	summary, err := newTestAssigner(t, store, Config{Reporter: reporter}).Run(context.Background())
	require.ErrorIs(t, err, common.ErrEnumeration)
	assert.Nil(t, summary)
	assert.Empty(t, store.writes)
	assert.False(t, reporter.started)
}

func TestAssigner_Idempotent(t *testing.T) {
	store := newMemoryStore(
		model.Item{ID: 1, Name: "Espresso", Category: "Coffee"},
		model.Item{ID: 2, Name: "Chai", Category: "Tea"},
		model.Item{ID: 3, Name: "Matcha", Category: "Tea"},
		model.Item{ID: 4, Name: "Muffin", Category: "Bakery Bread"},
		model.Item{ID: 5, Name: "Berry", Category: "Smoothies"},
	)
	assigner := newTestAssigner(t, store, Config{})

	_, err := assigner.Run(context.Background())
	require.NoError(t, err)
	first := store.images()

	_, err = assigner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, store.images())
}

func TestAssigner_DryRunDoesNotWrite(t *testing.T) {
	store := newMemoryStore(
		model.Item{ID: 1, Name: "A", Category: "tea"},
		model.Item{ID: 2, Name: "B", Category: "tea"},
	)
	pacer := &countingPacer{}

	summary, err := newTestAssigner(t, store, Config{DryRun: true, Pacer: pacer}).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, store.writes)
	assert.Zero(t, pacer.waits)
	assert.True(t, summary.DryRun)
	assert.Equal(t, 2, summary.Planned)
	assert.Zero(t, summary.Updated)
	assert.Equal(t, []string{"T1", "T2"}, []string{summary.Results[0].Image, summary.Results[1].Image})
}

func TestAssigner_PacesBetweenWrites(t *testing.T) {
	store := newMemoryStore(
		model.Item{ID: 1, Name: "A", Category: "tea"},
		model.Item{ID: 2, Name: "B", Category: "tea"},
		model.Item{ID: 3, Name: "C", Category: "coffee"},
	)
	pacer := &countingPacer{}

	_, err := newTestAssigner(t, store, Config{Pacer: pacer}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, pacer.waits)
}

func TestAssigner_InterruptKeepsCommittedRows(t *testing.T) {
	store := newMemoryStore(
		model.Item{ID: 1, Name: "A", Category: "tea"},
		model.Item{ID: 2, Name: "B", Category: "tea"},
		model.Item{ID: 3, Name: "C", Category: "tea"},
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pacer := &countingPacer{cancel: cancel, cancelAt: 2}
	reporter := &recordingReporter{}

	summary, err := newTestAssigner(t, store, Config{Pacer: pacer, Reporter: reporter}).Run(ctx)
	require.ErrorIs(t, err, ErrInterrupted)
	require.ErrorIs(t, err, context.Canceled)

	require.NotNil(t, summary)
	assert.True(t, summary.Interrupted)
	assert.Equal(t, 2, summary.Updated)
	assert.Equal(t, []int64{1, 2}, store.writes)
	assert.Same(t, summary, reporter.summary)
}

func TestAssigner_EmptyCatalog(t *testing.T) {
	reporter := &recordingReporter{}

	summary, err := newTestAssigner(t, newMemoryStore(), Config{Reporter: reporter}).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.TotalItems)
	assert.Empty(t, summary.Categories)
	assert.True(t, reporter.started)
	assert.Same(t, summary, reporter.summary)
}

func TestAssigner_ReporterEvents(t *testing.T) {
	store := newMemoryStore(
		model.Item{ID: 1, Name: "A", Category: "Coffee"},
		model.Item{ID: 2, Name: "B", Category: "Juice"},
	)
	reporter := &recordingReporter{}

	_, err := newTestAssigner(t, store, Config{Reporter: reporter}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, reporter.totalItems)
	assert.Equal(t, 2, reporter.totalGroups)
	assert.Equal(t, []string{"coffee", "juice"}, reporter.groups)
	require.Len(t, reporter.results, 2)
	assert.Equal(t, model.PoolSmoothie, reporter.results[1].Pool)
	assert.Equal(t, "S1", reporter.results[1].Item.ImageURL)
}

func TestRatePacer(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		p := NewRatePacer(0)
		for i := 0; i < 10; i++ {
			require.NoError(t, p.Wait(context.Background()))
		}
	})

	t.Run("first wait blocks", func(t *testing.T) {
		p := NewRatePacer(30 * time.Millisecond)
		start := time.Now()
		require.NoError(t, p.Wait(context.Background()))
		assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
	})

	t.Run("spaces waits", func(t *testing.T) {
		p := NewRatePacer(20 * time.Millisecond)
		start := time.Now()
		for i := 0; i < 3; i++ {
			require.NoError(t, p.Wait(context.Background()))
		}
		assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
	})

	t.Run("canceled", func(t *testing.T) {
		p := NewRatePacer(time.Hour)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Error(t, p.Wait(ctx))
	})
}

func TestAssigner_PacesEveryGapBetweenWrites(t *testing.T) {
	const interval = 50 * time.Millisecond
	store := newMemoryStore(
		model.Item{ID: 1, Name: "A", Category: "tea"},
		model.Item{ID: 2, Name: "B", Category: "tea"},
		model.Item{ID: 3, Name: "C", Category: "tea"},
	)

	_, err := newTestAssigner(t, store, Config{Pacer: NewRatePacer(interval)}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, store.writeTimes, 3)
	for i := 1; i < len(store.writeTimes); i++ {
		gap := store.writeTimes[i].Sub(store.writeTimes[i-1])
		assert.GreaterOrEqual(t, gap, interval-5*time.Millisecond, "gap before write %d", i+1)
	}
}
