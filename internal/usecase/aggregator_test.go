package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/comparaprecios/backend/internal/domain"
)

// stubAdapter is a controllable SourceAdapter for aggregator tests.
type stubAdapter struct {
	name    string
	records []domain.ProductRecord
	err     error
	panics  bool
	calls   atomic.Int32
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Fetch(ctx context.Context, query string) ([]domain.ProductRecord, error) {
	s.calls.Add(1)
	if s.panics {
		panic("adapter exploded")
	}
	return s.records, s.err
}

func record(title, source string, price float64) domain.ProductRecord {
	return domain.ProductRecord{
		Title:    title,
		Price:    price,
		Currency: "COP",
		URL:      "https://example.com/p/1",
		Source:   source,
	}
}

func TestAggregatorFetchAll(t *testing.T) {
	ctx := context.Background()

	t.Run("merges results in registration order", func(t *testing.T) {
		a := &stubAdapter{name: "A", records: []domain.ProductRecord{record("iPhone 13 A", "A", 100)}}
		b := &stubAdapter{name: "B", records: []domain.ProductRecord{record("iPhone 13 B", "B", 200)}}

		merged := NewAggregator([]domain.SourceAdapter{a, b}, false).FetchAll(ctx, "iphone 13")
		if len(merged) != 2 {
			t.Fatalf("len(merged) = %d, want 2", len(merged))
		}
		if merged[0].Source != "A" || merged[1].Source != "B" {
			t.Errorf("merge order = [%s, %s], want [A, B]", merged[0].Source, merged[1].Source)
		}
	})

	t.Run("one failing adapter does not affect the others", func(t *testing.T) {
		a := &stubAdapter{name: "A", records: []domain.ProductRecord{record("iPhone 13 A", "A", 100)}}
		b := &stubAdapter{name: "B", err: errors.New("connection refused")}
		c := &stubAdapter{name: "C", records: []domain.ProductRecord{record("iPhone 13 C", "C", 300)}}

		merged := NewAggregator([]domain.SourceAdapter{a, b, c}, false).FetchAll(ctx, "iphone 13")
		if len(merged) != 2 {
			t.Fatalf("len(merged) = %d, want 2", len(merged))
		}
		for _, r := range merged {
			if r.Source == "B" {
				t.Errorf("got record from failing source B: %+v", r)
			}
		}
		if b.calls.Load() != 1 {
			t.Errorf("failing adapter called %d times, want 1", b.calls.Load())
		}
	})

	t.Run("a panicking adapter is contained", func(t *testing.T) {
		a := &stubAdapter{name: "A", records: []domain.ProductRecord{record("iPhone 13 A", "A", 100)}}
		b := &stubAdapter{name: "B", panics: true}

		merged := NewAggregator([]domain.SourceAdapter{a, b}, false).FetchAll(ctx, "iphone 13")
		if len(merged) != 1 {
			t.Fatalf("len(merged) = %d, want 1", len(merged))
		}
		if merged[0].Source != "A" {
			t.Errorf("Source = %q, want A", merged[0].Source)
		}
	})

	t.Run("all adapters empty yields empty merge", func(t *testing.T) {
		a := &stubAdapter{name: "A"}
		b := &stubAdapter{name: "B"}

		merged := NewAggregator([]domain.SourceAdapter{a, b}, false).FetchAll(ctx, "iphone 13")
		if len(merged) != 0 {
			t.Errorf("len(merged) = %d, want 0", len(merged))
		}
	})

	t.Run("every adapter is invoked exactly once", func(t *testing.T) {
		adapters := []*stubAdapter{{name: "A"}, {name: "B"}, {name: "C"}}
		registered := make([]domain.SourceAdapter, len(adapters))
		for i, ad := range adapters {
			registered[i] = ad
		}

		NewAggregator(registered, false).FetchAll(ctx, "iphone 13")
		for _, ad := range adapters {
			if ad.calls.Load() != 1 {
				t.Errorf("adapter %s called %d times, want 1", ad.name, ad.calls.Load())
			}
		}
	})
}

func TestAggregatorSources(t *testing.T) {
	a := &stubAdapter{name: "Falabella"}
	b := &stubAdapter{name: "Éxito"}

	sources := NewAggregator([]domain.SourceAdapter{a, b}, false).Sources()
	if len(sources) != 2 || sources[0] != "Falabella" || sources[1] != "Éxito" {
		t.Errorf("Sources() = %v, want [Falabella Éxito]", sources)
	}
}
