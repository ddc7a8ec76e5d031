package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWall_UsesMilliseconds(t *testing.T) {
	at := time.UnixMilli(1697040000123)
	w := NewWallAt(func() time.Time { return at })

	assert.Equal(t, int64(1697040000123), w.Next())
	assert.Equal(t, int64(1697040000123), w.Current())
}

func TestWall_MonotonicWithinSameMillisecond(t *testing.T) {
	at := time.UnixMilli(1000)
	w := NewWallAt(func() time.Time { return at })

	assert.Equal(t, int64(1000), w.Next())
	assert.Equal(t, int64(1001), w.Next())
	assert.Equal(t, int64(1002), w.Next())
}

func TestWall_MonotonicWhenClockStepsBack(t *testing.T) {
	times := []int64{5000, 4000, 6000}
	i := 0
	w := NewWallAt(func() time.Time {
		ms := times[i]
		i++
		return time.UnixMilli(ms)
	})

	assert.Equal(t, int64(5000), w.Next())
	assert.Equal(t, int64(5001), w.Next())
	assert.Equal(t, int64(6000), w.Next())
}

func TestWall_ConcurrentUnique(t *testing.T) {
	w := NewWall()
	const n = 200

	var mu sync.Mutex
	seen := make(map[int64]bool, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := w.Next()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
}
