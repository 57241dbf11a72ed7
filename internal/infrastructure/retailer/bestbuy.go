package retailer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/comparaprecios/backend/internal/domain"
)

const bestBuyBaseURL = "https://api.bestbuy.com"

type bestBuyProduct struct {
	Name         string  `json:"name"`
	SalePrice    float64 `json:"salePrice"`
	RegularPrice float64 `json:"regularPrice"`
	URL          string  `json:"url"`
	Image        string  `json:"image"`
}

type bestBuyResponse struct {
	Products []bestBuyProduct `json:"products"`
}

// BestBuyAdapter queries the Best Buy products API. It requires an API key
// and is only registered when one is configured.
type BestBuyAdapter struct {
	apiKey     string
	baseURL    string
	fetcher    *fetcher
	maxResults int
}

// NewBestBuy creates the Best Buy adapter.
func NewBestBuy(apiKey string, cfg Config) *BestBuyAdapter {
	return NewBestBuyWithBaseURL(apiKey, bestBuyBaseURL, cfg)
}

// NewBestBuyWithBaseURL allows pointing the adapter at a test server.
func NewBestBuyWithBaseURL(apiKey, baseURL string, cfg Config) *BestBuyAdapter {
	cfg = cfg.withDefaults()
	return &BestBuyAdapter{
		apiKey:     apiKey,
		baseURL:    baseURL,
		fetcher:    newFetcher(cfg, ""),
		maxResults: cfg.MaxResults,
	}
}

func (a *BestBuyAdapter) Name() string { return "BestBuy" }

func (a *BestBuyAdapter) Fetch(ctx context.Context, query string) ([]domain.ProductRecord, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("%w: BestBuy API key not configured", domain.ErrRetailerUnavailable)
	}

	params := url.Values{}
	params.Set("apiKey", a.apiKey)
	params.Set("format", "json")
	params.Set("pageSize", fmt.Sprintf("%d", a.maxResults))
	reqURL := fmt.Sprintf("%s/v1/products((search=%s))?%s", a.baseURL, url.QueryEscape(query), params.Encode())

	body, status, err := a.fetcher.get(ctx, reqURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: BestBuy status %d", domain.ErrRetailerUnavailable, status)
	}

	var response bestBuyResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: BestBuy: %v", domain.ErrMalformedPayload, err)
	}

	records := make([]domain.ProductRecord, 0, a.maxResults)
	for _, product := range response.Products {
		if len(records) >= a.maxResults {
			break
		}
		price := product.SalePrice
		if price <= 0 {
			price = product.RegularPrice
		}
		if product.Name == "" || product.URL == "" || price <= 0 {
			continue
		}

		records = append(records, domain.ProductRecord{
			Title:     product.Name,
			Price:     price,
			Currency:  "USD",
			URL:       product.URL,
			Thumbnail: product.Image,
			Source:    "BestBuy",
		})
	}

	return records, nil
}
