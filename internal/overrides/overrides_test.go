package overrides

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cardspend/internal/model"
)

func TestStore_SetGetClear(t *testing.T) {
	s := NewStore[string]()

	_, ok := s.Get("k1")
	assert.False(t, ok)

	s.Set("k1", "cat_a")
	s.Set("k2", "cat_b")
	s.Set("k1", "cat_c")

	v, ok := s.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "cat_c", v)
	assert.Equal(t, 2, s.Len())

	s.Clear("k1")
	_, ok = s.Get("k1")
	assert.False(t, ok)
	s.Clear("missing")
	assert.Equal(t, 1, s.Len())

	s.ClearAll()
	assert.Equal(t, 0, s.Len())
	_, ok = s.Get("k2")
	assert.False(t, ok)
}

func TestStore_ZeroValue(t *testing.T) {
	var s Store[int]
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Keys())
	assert.NotNil(t, s.Snapshot())
	s.Clear("x")
	s.Set("x", 1)
	v, ok := s.Get("x")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestStore_SnapshotIsolated(t *testing.T) {
	s := NewStore[string]()
	s.Set("k", "a")

	snap := s.Snapshot()
	s.Set("k", "b")
	snap["other"] = "x"

	assert.Equal(t, "a", snap["k"], "snapshot does not see later writes")
	_, ok := s.Get("other")
	assert.False(t, ok, "store does not see snapshot writes")
}

func TestStore_Keys(t *testing.T) {
	s := NewStore[string]()
	s.Set("b", "1")
	s.Set("a", "2")
	s.Set("c", "3")
	assert.Equal(t, []string{"a", "b", "c"}, s.Keys())
}

func TestStore_ConcurrentReaders(t *testing.T) {
	s := NewStore[int]()
	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_, _ = s.Get("k")
				_ = s.Len()
			}
		}()
	}
	for i := 0; i < 200; i++ {
		s.Set("k", i)
	}
	wg.Wait()

	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, 199, v)
}

func TestNeedWants_AutoClears(t *testing.T) {
	n := NewNeedWants()
	n.Set("k", model.NeedWantNeed)
	assert.Equal(t, model.NeedWantNeed, n.Value("k"))

	n.Set("k", model.NeedWantAuto)
	_, ok := n.Get("k")
	assert.False(t, ok, "auto is never stored")
	assert.Equal(t, model.NeedWantAuto, n.Value("k"))
	assert.Equal(t, 0, n.Len())

	n.Set("fresh", model.NeedWantAuto)
	assert.Equal(t, 0, n.Len())
}

func TestCategories_ZeroValueUsable(t *testing.T) {
	var c Categories
	c.Set("k", "cat_a")
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "cat_a", v)
}

func TestSet_Clear(t *testing.T) {
	set := NewSet()
	set.Categories.Set("k1", "cat_a")
	set.NeedWants.Set("k1", model.NeedWantWant)
	set.Categories.Set("k2", "cat_b")

	set.Clear("k1")
	assert.Equal(t, 1, set.Categories.Len())
	assert.Equal(t, 0, set.NeedWants.Len())

	set.ClearAll()
	assert.Equal(t, 0, set.Categories.Len())
}
