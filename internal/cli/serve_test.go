package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energymix/internal/engine"
	"energymix/internal/models"
)

func TestReloaderRunsOneLoadAtATime(t *testing.T) {
	var active, overlaps, calls atomic.Int32
	var published []*engine.Store
	var mu sync.Mutex

	r := &reloader{
		load: func(context.Context) (*engine.Store, error) {
			if active.Add(1) > 1 {
				overlaps.Add(1)
			}
			defer active.Add(-1)
			n := int(calls.Add(1))
			time.Sleep(5 * time.Millisecond)

			recs := make([]models.EnergyRecord, n)
			for i := range recs {
				recs[i] = models.EnergyRecord{Country: "A", Year: 2000 + i}
			}
			return engine.NewStore(recs, nil)
		},
		publish: func(s *engine.Store) {
			mu.Lock()
			published = append(published, s)
			mu.Unlock()
		},
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.reload(context.Background())
		}()
	}
	wg.Wait()

	assert.Zero(t, overlaps.Load())
	require.Len(t, published, 4)
	// Loads finish in the order they started, so the last one published is the newest.
	for i, s := range published {
		assert.Equal(t, i+1, s.Len())
	}
}

func TestReloaderKeepsSnapshotOnFailure(t *testing.T) {
	var snap engine.Snapshot
	good, err := engine.NewStore([]models.EnergyRecord{{Country: "A", Year: 2000}}, nil)
	require.NoError(t, err)
	snap.Swap(good)

	r := &reloader{
		load:    func(context.Context) (*engine.Store, error) { return nil, errors.New("disk gone") },
		publish: func(s *engine.Store) { snap.Swap(s) },
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	r.reload(context.Background())

	assert.Same(t, good, snap.Load())
}
