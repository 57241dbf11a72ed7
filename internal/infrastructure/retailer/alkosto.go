package retailer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/comparaprecios/backend/internal/domain"
)

const (
	alkostoBaseURL = "https://www.alkosto.com"

	// Alkosto block pages are smaller than real result pages, but its pages
	// are lighter than Falabella's overall.
	minAlkostoHTML = 10000

	minAlkostoTitleLength = 5
)

// alkostoProduct tolerates the two shapes Alkosto has shipped: VTEX-style
// nested items/sellers and a flattened name/price variant.
type alkostoProduct struct {
	ProductName string     `json:"productName"`
	Name        string     `json:"name"`
	LinkText    string     `json:"linkText"`
	ProductID   string     `json:"productId"`
	ID          string     `json:"id"`
	Price       float64    `json:"price"`
	Image       string     `json:"image"`
	Items       []vtexItem `json:"items"`
}

type alkostoNextData struct {
	Props struct {
		PageProps struct {
			Products     []alkostoProduct `json:"products"`
			SearchResult struct {
				Products []alkostoProduct `json:"products"`
			} `json:"searchResult"`
		} `json:"pageProps"`
	} `json:"props"`
}

// AlkostoAdapter scrapes Alkosto Colombia search pages via their embedded
// Next.js state.
type AlkostoAdapter struct {
	baseURL    string
	fetcher    *fetcher
	maxResults int
}

// NewAlkosto creates the adapter for Alkosto Colombia.
func NewAlkosto(cfg Config) *AlkostoAdapter {
	return NewAlkostoWithBaseURL(alkostoBaseURL, cfg)
}

// NewAlkostoWithBaseURL allows pointing the adapter at a test server.
func NewAlkostoWithBaseURL(baseURL string, cfg Config) *AlkostoAdapter {
	cfg = cfg.withDefaults()
	return &AlkostoAdapter{
		baseURL:    baseURL,
		fetcher:    newFetcher(cfg, baseURL+"/"),
		maxResults: cfg.MaxResults,
	}
}

func (a *AlkostoAdapter) Name() string { return "Alkosto" }

func (a *AlkostoAdapter) Fetch(ctx context.Context, query string) ([]domain.ProductRecord, error) {
	reqURL := fmt.Sprintf("%s/buscar?Ntt=%s", a.baseURL, url.QueryEscape(query))

	body, status, err := a.fetcher.get(ctx, reqURL, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: Alkosto status %d", domain.ErrRetailerUnavailable, status)
	}
	if len(body) < minAlkostoHTML {
		return nil, fmt.Errorf("%w: Alkosto returned %d bytes", domain.ErrBlocked, len(body))
	}

	match := nextDataRegex.FindSubmatch(body)
	if match == nil {
		return nil, fmt.Errorf("%w: Alkosto page has no __NEXT_DATA__", domain.ErrMalformedPayload)
	}

	var nextData alkostoNextData
	if err := json.Unmarshal(match[1], &nextData); err != nil {
		return nil, fmt.Errorf("%w: Alkosto: %v", domain.ErrMalformedPayload, err)
	}

	products := nextData.Props.PageProps.Products
	if len(products) == 0 {
		products = nextData.Props.PageProps.SearchResult.Products
	}

	records := make([]domain.ProductRecord, 0, a.maxResults)
	for _, product := range products {
		if len(records) >= a.maxResults {
			break
		}

		title := product.ProductName
		if title == "" {
			title = product.Name
		}
		if len([]rune(title)) < minAlkostoTitleLength {
			continue
		}

		price := alkostoPrice(product)
		if price <= 0 {
			continue
		}

		productURL := a.productURL(product)
		if productURL == "" {
			continue
		}

		records = append(records, domain.ProductRecord{
			Title:     title,
			Price:     price,
			Currency:  "COP",
			URL:       productURL,
			Thumbnail: alkostoThumbnail(product),
			Source:    "Alkosto",
		})
	}

	return records, nil
}

func alkostoPrice(product alkostoProduct) float64 {
	if len(product.Items) > 0 && len(product.Items[0].Sellers) > 0 {
		if price := product.Items[0].Sellers[0].CommertialOffer.Price; price > 0 {
			return price
		}
	}
	return product.Price
}

func (a *AlkostoAdapter) productURL(product alkostoProduct) string {
	if product.LinkText != "" {
		return fmt.Sprintf("%s/%s/p", a.baseURL, product.LinkText)
	}
	id := product.ProductID
	if id == "" {
		id = product.ID
	}
	if id == "" {
		return ""
	}
	return fmt.Sprintf("%s/p/%s", a.baseURL, id)
}

func alkostoThumbnail(product alkostoProduct) string {
	if len(product.Items) > 0 && len(product.Items[0].Images) > 0 {
		if imageURL := product.Items[0].Images[0].ImageURL; imageURL != "" {
			return imageURL
		}
	}
	return product.Image
}
