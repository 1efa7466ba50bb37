package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfiorezelogos/lg-logistica-backend/internal/domain/transaction"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/guru"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/logger"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/period"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/types"
)

type stubFetcher struct {
	mu      sync.Mutex
	results map[string][]transaction.Transaction
	errs    map[string]error
	calls   []string
}

func (f *stubFetcher) FetchWithRetry(_ context.Context, p guru.FetchParams) ([]transaction.Transaction, error) {
	f.mu.Lock()
	f.calls = append(f.calls, p.ProductID)
	f.mu.Unlock()
	return f.results[p.ProductID], f.errs[p.ProductID]
}

func task(productID string) Task {
	return Task{
		Label: productID,
		Params: guru.FetchParams{
			ProductID: productID,
			Window: period.Window{
				Start: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2025, time.April, 30, 23, 59, 59, 0, time.UTC),
			},
			Tier: types.TierBimonthly,
		},
	}
}

func TestRun_CollectsAllTasks(t *testing.T) {
	fetcher := &stubFetcher{results: map[string][]transaction.Transaction{
		"p1": {{ID: "t1"}, {ID: "t2"}},
		"p2": {{ID: "t3"}},
		"p3": nil, // slice with no sales
	}}
	s := New(fetcher, 4, logger.L)

	txs, failed := s.Run(context.Background(), []Task{task("p1"), task("p2"), task("p3")}, nil)
	require.Len(t, txs, 3)
	assert.Empty(t, failed)

	ids := make([]string, len(txs))
	for i, tx := range txs {
		ids[i] = tx.ID
	}
	sort.Strings(ids)
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids)
	assert.Len(t, fetcher.calls, 3)
}

func TestRun_AbandonedTaskIsReportedAndIsolated(t *testing.T) {
	fetcher := &stubFetcher{
		results: map[string][]transaction.Transaction{
			"p1": {{ID: "t1"}},
		},
		errs: map[string]error{
			"p2": errors.New("slice abandoned after repeated failures"),
		},
	}
	s := New(fetcher, 2, logger.L)

	txs, failed := s.Run(context.Background(), []Task{task("p1"), task("p2")}, nil)

	require.Len(t, txs, 1, "the failing task must not affect its siblings")
	assert.Equal(t, "t1", txs[0].ID)
	require.Len(t, failed, 1)
	assert.Equal(t, "p2", failed[0].Label)
	assert.Error(t, failed[0].Err)
}

func TestRun_ProgressCalledPerTask(t *testing.T) {
	fetcher := &stubFetcher{results: map[string][]transaction.Transaction{}}
	s := New(fetcher, 2, logger.L)

	var (
		mu     sync.Mutex
		labels []string
		dones  []int
	)
	tasks := []Task{task("p1"), task("p2"), task("p3"), task("p4")}
	s.Run(context.Background(), tasks, func(label string, done, total int) {
		mu.Lock()
		defer mu.Unlock()
		labels = append(labels, label)
		dones = append(dones, done)
		assert.Equal(t, len(tasks), total)
	})

	require.Len(t, labels, len(tasks))
	sort.Ints(dones)
	assert.Equal(t, []int{1, 2, 3, 4}, dones, "done count increments once per task")
}

func TestRun_NoTasks(t *testing.T) {
	s := New(&stubFetcher{}, 4, logger.L)
	txs, failed := s.Run(context.Background(), nil, nil)
	assert.Nil(t, txs)
	assert.Nil(t, failed)
}
