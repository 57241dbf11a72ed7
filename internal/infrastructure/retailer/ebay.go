package retailer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/comparaprecios/backend/internal/domain"
)

const ebayBaseURL = "https://api.ebay.com"

type ebayItemSummary struct {
	Title string `json:"title"`
	Price struct {
		Value    string `json:"value"`
		Currency string `json:"currency"`
	} `json:"price"`
	ItemWebURL string `json:"itemWebUrl"`
	Image      struct {
		ImageURL string `json:"imageUrl"`
	} `json:"image"`
}

type ebaySearchResponse struct {
	ItemSummaries []ebayItemSummary `json:"itemSummaries"`
}

// EbayAdapter queries the eBay Browse API. It requires an OAuth token and is
// only registered when one is configured.
type EbayAdapter struct {
	oauthToken string
	baseURL    string
	fetcher    *fetcher
	maxResults int
}

// NewEbay creates the eBay adapter.
func NewEbay(oauthToken string, cfg Config) *EbayAdapter {
	return NewEbayWithBaseURL(oauthToken, ebayBaseURL, cfg)
}

// NewEbayWithBaseURL allows pointing the adapter at a test server.
func NewEbayWithBaseURL(oauthToken, baseURL string, cfg Config) *EbayAdapter {
	cfg = cfg.withDefaults()
	return &EbayAdapter{
		oauthToken: oauthToken,
		baseURL:    baseURL,
		fetcher:    newFetcher(cfg, ""),
		maxResults: cfg.MaxResults,
	}
}

func (a *EbayAdapter) Name() string { return "eBay" }

func (a *EbayAdapter) Fetch(ctx context.Context, query string) ([]domain.ProductRecord, error) {
	if a.oauthToken == "" {
		return nil, fmt.Errorf("%w: eBay OAuth token not configured", domain.ErrRetailerUnavailable)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(a.maxResults))
	reqURL := fmt.Sprintf("%s/buy/browse/v1/item_summary/search?%s", a.baseURL, params.Encode())

	headers := map[string]string{
		"Accept":                  "application/json",
		"Authorization":           "Bearer " + a.oauthToken,
		"X-EBAY-C-MARKETPLACE-ID": "EBAY_US",
	}
	body, status, err := a.fetcher.get(ctx, reqURL, headers)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: eBay status %d", domain.ErrRetailerUnavailable, status)
	}

	var response ebaySearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: eBay: %v", domain.ErrMalformedPayload, err)
	}

	records := make([]domain.ProductRecord, 0, a.maxResults)
	for _, item := range response.ItemSummaries {
		if len(records) >= a.maxResults {
			break
		}
		price, err := strconv.ParseFloat(item.Price.Value, 64)
		if err != nil || price <= 0 || item.Title == "" || item.ItemWebURL == "" {
			continue
		}

		currency := item.Price.Currency
		if currency == "" {
			currency = "USD"
		}

		records = append(records, domain.ProductRecord{
			Title:     item.Title,
			Price:     price,
			Currency:  currency,
			URL:       item.ItemWebURL,
			Thumbnail: item.Image.ImageURL,
			Source:    "eBay",
		})
	}

	return records, nil
}
