package guard

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contender struct {
	name string
	dead bool
}

func (c *contender) Alive() bool { return !c.dead }

type plainHolder struct {
	payload [8]int64
	next    *plainHolder
}

func TestGuard_AcquireRelease(t *testing.T) {
	t.Parallel()

	g := New[contender]("test")
	a := &contender{name: "a"}
	b := &contender{name: "b"}

	require.True(t, g.TryAcquire(a))
	assert.True(t, g.Holds(a))
	assert.False(t, g.Holds(b))

	assert.False(t, g.TryAcquire(b), "second contender must wait while the first holds the token")

	g.Release(a)
	assert.False(t, g.Holds(a))

	require.True(t, g.TryAcquire(b))
	g.Release(b)
}

func TestGuard_AssertionsPanic(t *testing.T) {
	t.Parallel()

	t.Run("acquire twice by the same holder", func(t *testing.T) {
		t.Parallel()
		g := New[contender]("test")
		a := &contender{name: "a"}
		require.True(t, g.TryAcquire(a))
		assert.Panics(t, func() { g.TryAcquire(a) })
	})

	t.Run("release without holding", func(t *testing.T) {
		t.Parallel()
		g := New[contender]("test")
		assert.Panics(t, func() { g.Release(&contender{name: "a"}) })
	})

	t.Run("release by another holder", func(t *testing.T) {
		t.Parallel()
		g := New[contender]("test")
		a := &contender{name: "a"}
		require.True(t, g.TryAcquire(a))
		assert.Panics(t, func() { g.Release(&contender{name: "b"}) })
		assert.True(t, g.Holds(a))
	})

	t.Run("nil holder", func(t *testing.T) {
		t.Parallel()
		g := New[contender]("test")
		assert.Panics(t, func() { g.TryAcquire(nil) })
	})
}

func TestGuard_DeadHolderIsCleared(t *testing.T) {
	t.Parallel()

	g := New[contender]("test")
	a := &contender{name: "a"}
	b := &contender{name: "b"}

	require.True(t, g.TryAcquire(a))
	a.dead = true

	require.True(t, g.TryAcquire(b), "a destroyed holder must not block others")
	assert.True(t, g.Holds(b))
	assert.False(t, g.Holds(a))
}

//go:noinline
func acquireAndDrop(t *testing.T, g *Guard[plainHolder]) {
	t.Helper()
	h := &plainHolder{}
	require.True(t, g.TryAcquire(h))
}

func TestGuard_CollectedHolderIsCleared(t *testing.T) {
	t.Parallel()

	g := New[plainHolder]("test")
	acquireAndDrop(t, g)

	other := &plainHolder{}
	require.Eventually(t, func() bool {
		runtime.GC()
		return g.TryAcquire(other)
	}, 5*time.Second, 10*time.Millisecond)
	assert.True(t, g.Holds(other))
}

func TestGuard_MutualExclusion(t *testing.T) {
	t.Parallel()

	g := New[contender]("test")

	const workers = 16
	const attempts = 500

	var (
		active   atomic.Int32
		maxSeen  atomic.Int32
		acquired atomic.Int32
		wg       sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			self := &contender{}
			for j := 0; j < attempts; j++ {
				if !g.TryAcquire(self) {
					runtime.Gosched()
					continue
				}
				now := active.Add(1)
				for {
					prev := maxSeen.Load()
					if now <= prev || maxSeen.CompareAndSwap(prev, now) {
						break
					}
				}
				acquired.Add(1)
				runtime.Gosched()
				active.Add(-1)
				g.Release(self)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen.Load())
	assert.Positive(t, acquired.Load())
}
