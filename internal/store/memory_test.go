package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/pardot-insights/internal/engine"
	"github.com/AngelCh415/pardot-insights/internal/models"
)

func TestPutIsIdempotentPerSnapshotID(t *testing.T) {
	st := NewMemoryStore(time.Minute)
	snap, v := st.Current()
	assert.Nil(t, snap)
	assert.Zero(t, v)

	v1, fresh := st.Put(&models.Snapshot{ID: "a"})
	require.True(t, fresh)
	assert.Equal(t, uint64(1), v1)

	v2, fresh := st.Put(&models.Snapshot{ID: "a"})
	assert.False(t, fresh)
	assert.Equal(t, v1, v2)

	v3, fresh := st.Put(&models.Snapshot{ID: "b"})
	assert.True(t, fresh)
	assert.Equal(t, uint64(2), v3)
	cur, _ := st.Current()
	assert.Equal(t, "b", cur.ID)
}

func TestReloadingEarlierSnapshotReplacesCurrent(t *testing.T) {
	st := NewMemoryStore(time.Minute)
	st.Put(&models.Snapshot{ID: "a"})
	st.Put(&models.Snapshot{ID: "b"})

	v, fresh := st.Put(&models.Snapshot{ID: "a"})
	assert.True(t, fresh)
	assert.Equal(t, uint64(3), v)
	cur, cv := st.Current()
	require.NotNil(t, cur)
	assert.Equal(t, "a", cur.ID)
	assert.Equal(t, v, cv)
}

func TestResultCacheTTLAndInvalidation(t *testing.T) {
	st := NewMemoryStore(time.Minute)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return clock }

	v, _ := st.Put(&models.Snapshot{ID: "a"})
	res := &engine.Result{SnapshotID: "a"}
	st.SaveResult(v, "k", res)

	got, ok := st.Result("k")
	require.True(t, ok)
	assert.Same(t, res, got)

	clock = clock.Add(2 * time.Minute)
	_, ok = st.Result("k")
	assert.False(t, ok, "expired entry must miss")

	st.SaveResult(v, "k", res)
	st.Put(&models.Snapshot{ID: "b"})
	_, ok = st.Result("k")
	assert.False(t, ok, "new snapshot drops cache")

	st.SaveResult(v, "stale", res)
	_, ok = st.Result("stale")
	assert.False(t, ok, "result for an old version is not cached")
}

func TestZeroTTLDisablesCache(t *testing.T) {
	st := NewMemoryStore(0)
	v, _ := st.Put(&models.Snapshot{ID: "a"})
	st.SaveResult(v, "k", &engine.Result{})
	_, ok := st.Result("k")
	assert.False(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	st := NewMemoryStore(time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _ := st.Put(&models.Snapshot{ID: string(rune('a' + i))})
			st.SaveResult(v, "k", &engine.Result{})
			st.Result("k")
			st.Current()
		}(i)
	}
	wg.Wait()
	_, v := st.Current()
	assert.Equal(t, uint64(20), v)
}
