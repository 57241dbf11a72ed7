package usecase

import (
	"context"
	"log"
	"sync"

	"github.com/comparaprecios/backend/internal/domain"
)

// Aggregator fans a query out to every registered source adapter and merges
// whatever comes back. Each adapter runs in its own goroutine behind a
// failure boundary: an error or panic in one source is logged and counted as
// zero results, never surfaced to the caller.
type Aggregator struct {
	adapters           []domain.SourceAdapter
	enableDebugLogging bool
}

// NewAggregator creates an aggregator over the given adapters. Registration
// order determines merge order (the pipeline re-sorts downstream anyway).
func NewAggregator(adapters []domain.SourceAdapter, enableDebugLogging bool) *Aggregator {
	return &Aggregator{
		adapters:           adapters,
		enableDebugLogging: enableDebugLogging,
	}
}

// Sources returns the display names of all registered adapters.
func (a *Aggregator) Sources() []string {
	names := make([]string, 0, len(a.adapters))
	for _, adapter := range a.adapters {
		names = append(names, adapter.Name())
	}
	return names
}

// FetchAll queries every adapter concurrently and concatenates the successful
// results in registration order. It waits for all adapters to finish; there
// is no global deadline here, each adapter owns its own timeout.
func (a *Aggregator) FetchAll(ctx context.Context, query string) []domain.ProductRecord {
	// One slot per adapter so goroutines never share a slice.
	results := make([][]domain.ProductRecord, len(a.adapters))

	var wg sync.WaitGroup
	for i, adapter := range a.adapters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[AGGREGATE] %s panicked: %v", adapter.Name(), r)
				}
			}()

			records, err := adapter.Fetch(ctx, query)
			if err != nil {
				log.Printf("[AGGREGATE] %s failed: %v", adapter.Name(), err)
				return
			}
			if a.enableDebugLogging {
				log.Printf("[AGGREGATE] %s returned %d records for %q", adapter.Name(), len(records), query)
			}
			results[i] = records
		}()
	}
	wg.Wait()

	var merged []domain.ProductRecord
	for _, records := range results {
		merged = append(merged, records...)
	}
	return merged
}
