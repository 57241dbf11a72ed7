package retailer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/comparaprecios/backend/internal/domain"
)

// minVTEXTitleLength filters out truncated catalog entries.
const minVTEXTitleLength = 5

// VTEX catalog API response shapes. Note "commertialOffer" is VTEX's own
// spelling, not a typo here.
type vtexSeller struct {
	CommertialOffer struct {
		Price float64 `json:"Price"`
	} `json:"commertialOffer"`
}

type vtexItem struct {
	Images []struct {
		ImageURL string `json:"imageUrl"`
	} `json:"images"`
	Sellers []vtexSeller `json:"sellers"`
}

type vtexProduct struct {
	ProductName string     `json:"productName"`
	LinkText    string     `json:"linkText"`
	Items       []vtexItem `json:"items"`
}

// VTEXAdapter fetches products from a VTEX-platform store's public catalog
// API. Éxito and Olímpica both run on VTEX and share this adapter.
type VTEXAdapter struct {
	source     string
	baseURL    string
	fetcher    *fetcher
	maxResults int
}

// NewVTEX creates an adapter for a VTEX store. source is the display name
// attached to every record; baseURL is the store root without trailing slash.
func NewVTEX(source, baseURL string, cfg Config) *VTEXAdapter {
	cfg = cfg.withDefaults()
	return &VTEXAdapter{
		source:     source,
		baseURL:    baseURL,
		fetcher:    newFetcher(cfg, baseURL+"/"),
		maxResults: cfg.MaxResults,
	}
}

// NewExito creates the adapter for Éxito Colombia.
func NewExito(cfg Config) *VTEXAdapter {
	return NewVTEX("Éxito", "https://www.exito.com", cfg)
}

// NewOlimpica creates the adapter for Olímpica Colombia.
func NewOlimpica(cfg Config) *VTEXAdapter {
	return NewVTEX("Olímpica", "https://www.olimpica.com", cfg)
}

func (a *VTEXAdapter) Name() string { return a.source }

// Fetch queries the store's catalog search endpoint. VTEX answers paginated
// searches with 206 Partial Content, which is a success here.
func (a *VTEXAdapter) Fetch(ctx context.Context, query string) ([]domain.ProductRecord, error) {
	reqURL := fmt.Sprintf("%s/api/catalog_system/pub/products/search?ft=%s", a.baseURL, url.QueryEscape(query))

	body, status, err := a.fetcher.get(ctx, reqURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusPartialContent {
		return nil, fmt.Errorf("%w: %s status %d", domain.ErrRetailerUnavailable, a.source, status)
	}

	var products []vtexProduct
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedPayload, a.source, err)
	}

	records := make([]domain.ProductRecord, 0, a.maxResults)
	for _, product := range products {
		if len(records) >= a.maxResults {
			break
		}
		if len([]rune(product.ProductName)) < minVTEXTitleLength || product.LinkText == "" {
			continue
		}
		if len(product.Items) == 0 || len(product.Items[0].Sellers) == 0 {
			continue
		}

		price := product.Items[0].Sellers[0].CommertialOffer.Price
		if price <= 0 {
			continue
		}

		var thumbnail string
		if images := product.Items[0].Images; len(images) > 0 {
			thumbnail = images[0].ImageURL
		}

		records = append(records, domain.ProductRecord{
			Title:     product.ProductName,
			Price:     price,
			Currency:  "COP",
			URL:       fmt.Sprintf("%s/%s/p", a.baseURL, product.LinkText),
			Thumbnail: thumbnail,
			Source:    a.source,
		})
	}

	return records, nil
}
