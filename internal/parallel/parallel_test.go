package parallel

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRange_CoversOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 10}
	hits := make([]int32, 101)

	var mu sync.Mutex
	chunks := 0
	Range(len(hits), func(start, end int) {
		mu.Lock()
		chunks++
		mu.Unlock()
		for i := start; i < end; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
	}, cfg)

	for i, h := range hits {
		assert.Equal(t, int32(1), h, "index %d", i)
	}
	assert.Equal(t, 3, chunks)
}

func TestRange_Sequential(t *testing.T) {
	var calls [][2]int
	Range(100, func(start, end int) {
		calls = append(calls, [2]int{start, end})
	}, Config{Enabled: false})

	assert.Equal(t, [][2]int{{0, 100}}, calls)
}

func TestRange_SmallInput(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 8, MinChunkSize: 64}

	var calls int
	Range(100, func(_, _ int) {
		calls++
	}, cfg)

	assert.Equal(t, 1, calls)
}

func TestRange_Empty(t *testing.T) {
	called := false
	Range(0, func(_, _ int) { called = true }, DefaultConfig())
	assert.False(t, called)
}
