package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence_Next(t *testing.T) {
	ids := NewSequence()

	assert.Equal(t, int64(1), ids.Next())
	assert.Equal(t, int64(2), ids.Next())
	assert.Equal(t, int64(3), ids.Next())
}

func TestSequence_ConcurrentIDsAreDistinct(t *testing.T) {
	ids := NewSequence()
	const goroutines = 50

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool)
	)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := ids.Next()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines)
	assert.Equal(t, int64(goroutines+1), ids.Next())
}
