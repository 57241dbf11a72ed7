package usecase

import (
	"sort"

	"github.com/comparaprecios/backend/internal/domain"
)

// defaultRelevanceFloor is the minimum match score a record needs to survive
// filtering. It is the primary accessory/noise suppressor.
const defaultRelevanceFloor = 30

// Pipeline turns the aggregator's merged record list into the final ranked
// answer: drop invalid prices, score, drop low-relevance records, sort by
// (score desc, price asc) and pick the globally cheapest survivor.
type Pipeline struct {
	relevanceFloor int
}

// NewPipeline creates a pipeline with the given relevance floor. Values
// outside [1, 100] fall back to the default floor of 30; config validation
// rejects an explicit 0 so the fallback only ever covers the unset case.
func NewPipeline(relevanceFloor int) *Pipeline {
	if relevanceFloor <= 0 || relevanceFloor > 100 {
		relevanceFloor = defaultRelevanceFloor
	}
	return &Pipeline{relevanceFloor: relevanceFloor}
}

// RelevanceFloor returns the configured minimum match score.
func (p *Pipeline) RelevanceFloor() int {
	return p.relevanceFloor
}

// Run filters, scores and ranks the merged records against the query.
// The returned Items slice is never nil.
func (p *Pipeline) Run(query string, records []domain.ProductRecord) domain.SearchResult {
	items := make([]domain.ProductRecord, 0, len(records))
	for _, record := range records {
		if record.Price <= 0 {
			continue
		}
		record.MatchScore = CalculateMatchScore(record.Title, query)
		if record.MatchScore < p.relevanceFloor {
			continue
		}
		items = append(items, record)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].MatchScore != items[j].MatchScore {
			return items[i].MatchScore > items[j].MatchScore
		}
		return items[i].Price < items[j].Price
	})

	// Cheapest is the minimum-price survivor regardless of its rank.
	var cheapest *domain.ProductRecord
	for i := range items {
		if cheapest == nil || items[i].Price < cheapest.Price {
			cheapest = &items[i]
		}
	}

	return domain.SearchResult{Items: items, Cheapest: cheapest}
}
