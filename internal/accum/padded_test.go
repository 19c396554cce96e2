package accum_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/autopas-go/autopas/internal/accum"
)

func TestBankSumsAcrossBuckets(t *testing.T) {
	b := accum.NewBank(4)
	b.Add(0, 1.5)
	b.Add(1, 2.5)
	b.Add(5, 1.0) // stripes onto bucket 1
	require.InDelta(t, 5.0, b.Sum(), 1e-12)

	b.Reset()
	require.Equal(t, 0.0, b.Sum())
}

func TestBankConcurrentAddsLoseNothing(t *testing.T) {
	const workers = 8
	const addsPerWorker = 10000

	b := accum.NewBank(workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < addsPerWorker; i++ {
				// stripe across every bucket to force CAS contention
				b.Add(i, 1)
			}
		}(w)
	}
	wg.Wait()
	require.InDelta(t, float64(workers*addsPerWorker), b.Sum(), 1e-9)
}
