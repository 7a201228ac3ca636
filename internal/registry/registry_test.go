package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kube-rca/dqsync/internal/model"
)

func TestRegistry_GetOrCreateIsLazyAndStable(t *testing.T) {
	r := New()
	key := model.DatasetKey{Platform: model.PlatformSnowflake, Name: "Finance.public.securities"}

	_, ok := r.Get(key)
	assert.False(t, ok)

	first := r.GetOrCreate(key)
	second := r.GetOrCreate(key)
	assert.Same(t, first, second)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, key, first.Key)
	assert.Empty(t, first.Monitors)
}

func TestRegistry_UpdateAndSnapshotIsolation(t *testing.T) {
	r := New()
	key := model.DatasetKey{Platform: model.PlatformBigQuery, Name: "proj.ds.table"}

	r.Update(key, func(q *model.DatasetQuality) {
		q.URL = "https://getmontecarlo.com/assets/m1/custom-monitors"
		q.Monitors = append(q.Monitors, model.DataMonitor{Title: "rows"})
	})

	snap, ok := r.Get(key)
	require.True(t, ok)
	require.Len(t, snap.Monitors, 1)

	r.Update(key, func(q *model.DatasetQuality) {
		q.Monitors = append(q.Monitors, model.DataMonitor{Title: "freshness"})
	})
	assert.Len(t, snap.Monitors, 1)

	snap, _ = r.Get(key)
	assert.Len(t, snap.Monitors, 2)
}

func TestRegistry_AllSorted(t *testing.T) {
	r := New()
	r.GetOrCreate(model.DatasetKey{Platform: model.PlatformSnowflake, Name: "b"})
	r.GetOrCreate(model.DatasetKey{Platform: model.PlatformBigQuery, Name: "z"})
	r.GetOrCreate(model.DatasetKey{Platform: model.PlatformSnowflake, Name: "a"})

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, model.PlatformBigQuery, all[0].Key.Platform)
	assert.Equal(t, "a", all[1].Key.Name)
	assert.Equal(t, "b", all[2].Key.Name)
}

func TestRegistry_ConcurrentWriters(t *testing.T) {
	r := New()
	key := model.DatasetKey{Platform: model.PlatformRedshift, Name: "dev.public.orders"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Update(key, func(q *model.DatasetQuality) {
				q.Monitors = append(q.Monitors, model.DataMonitor{Title: fmt.Sprintf("m%d", i)})
			})
		}(i)
	}
	wg.Wait()

	snap, ok := r.Get(key)
	require.True(t, ok)
	assert.Len(t, snap.Monitors, 50)
}
