// Package parallel splits index ranges across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how For splits its work.
type Config struct {
	Workers  int // Goroutines to use. Values below 2 run sequentially.
	MinChunk int // Minimum indices handed to one goroutine.
}

// Default uses one worker per CPU and chunks of at least minChunk indices.
func Default(minChunk int) Config {
	return Config{Workers: runtime.NumCPU(), MinChunk: max(minChunk, 1)}
}

// For calls f(i) for every i in [0, n) and returns once all calls are done.
// Indices are split into contiguous chunks, so f must only write state owned
// by index i. Ranges too small to fill two chunks run on the calling goroutine.
func For(n int, cfg Config, f func(i int)) {
	chunk := max(cfg.MinChunk, 1)
	if cfg.Workers > 1 {
		chunk = max(chunk, (n+cfg.Workers-1)/cfg.Workers)
	}
	if cfg.Workers < 2 || n <= chunk {
		for i := range n {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := start; i < end; i++ {
				f(i)
			}
		}()
	}
	wg.Wait()
}
