package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/planweave/planweave/internal/analyzer"
	"github.com/planweave/planweave/internal/registry"
)

// AnalyzeConcurrently analyzes every source from several goroutines at
// once, all sharing one registry. The registry is read-only after Load
// and each analysis owns its parser, so runs must not interfere; any
// cross-talk shows up as a fault or a race report.
func AnalyzeConcurrently(t *testing.T, sources []string, workers, iterations int) {
	t.Helper()

	ctx := context.Background()
	reg, err := registry.Load(ctx)
	require.NoError(t, err)

	jobs := make(chan string, workers)
	errs := make(chan error, iterations*len(sources))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for src := range jobs {
				graph, err := analyzer.AnalyzeSource(ctx, reg, []byte(src), fmt.Sprintf("concurrent_%d", id))
				if err != nil {
					errs <- err
					continue
				}
				if len(graph.Workers) == 0 {
					errs <- fmt.Errorf("goroutine %d produced a graph with no workers", id)
				}
			}
		}(i)
	}

	for i := 0; i < iterations; i++ {
		for _, src := range sources {
			jobs <- src
		}
	}
	close(jobs)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}
