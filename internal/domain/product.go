package domain

// ProductRecord is the normalized representation of one retailer search result.
// Base fields are filled by exactly one source adapter; MatchScore is attached
// later by the relevance scorer and is zero until scoring runs.
type ProductRecord struct {
	Title      string  `json:"title"`
	Price      float64 `json:"price"`
	Currency   string  `json:"currency"` // ISO-like 3-letter code, e.g. "COP"
	URL        string  `json:"url"`
	Thumbnail  string  `json:"thumbnail,omitempty"`
	Source     string  `json:"source"` // retailer display name, e.g. "MercadoLibre"
	MatchScore int     `json:"match_score"`
}

// SearchResult is the final response of the search pipeline: the ranked,
// filtered list plus the globally cheapest surviving record (nil when empty).
type SearchResult struct {
	Items    []ProductRecord `json:"items"`
	Cheapest *ProductRecord  `json:"cheapest"`
}
