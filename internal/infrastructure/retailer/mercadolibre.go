package retailer

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/comparaprecios/backend/internal/domain"
)

const (
	mercadoLibreBaseURL = "https://listado.mercadolibre.com.co"

	// minMLTitleLength: listing cards with shorter link text are navigation
	// chrome, not products.
	minMLTitleLength = 10
)

// MercadoLibreAdapter scrapes the public MercadoLibre Colombia listing pages.
// The official search API rejects unauthenticated server-side requests, so
// results come from the HTML the site serves to browsers.
type MercadoLibreAdapter struct {
	baseURL    string
	fetcher    *fetcher
	maxResults int
}

// NewMercadoLibre creates the adapter for MercadoLibre Colombia.
func NewMercadoLibre(cfg Config) *MercadoLibreAdapter {
	return NewMercadoLibreWithBaseURL(mercadoLibreBaseURL, cfg)
}

// NewMercadoLibreWithBaseURL allows pointing the adapter at a test server.
func NewMercadoLibreWithBaseURL(baseURL string, cfg Config) *MercadoLibreAdapter {
	cfg = cfg.withDefaults()
	return &MercadoLibreAdapter{
		baseURL:    baseURL,
		fetcher:    newFetcher(cfg, "https://www.mercadolibre.com.co/"),
		maxResults: cfg.MaxResults,
	}
}

func (a *MercadoLibreAdapter) Name() string { return "MercadoLibre" }

func (a *MercadoLibreAdapter) Fetch(ctx context.Context, query string) ([]domain.ProductRecord, error) {
	slug := strings.ReplaceAll(strings.TrimSpace(query), " ", "-")
	reqURL := fmt.Sprintf("%s/%s", a.baseURL, slug)

	body, status, err := a.fetcher.get(ctx, reqURL, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: MercadoLibre status %d", domain.ErrRetailerUnavailable, status)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: MercadoLibre: %v", domain.ErrMalformedPayload, err)
	}

	records := make([]domain.ProductRecord, 0, a.maxResults)
	doc.Find("li.ui-search-layout__item").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(records) >= a.maxResults {
			return false
		}
		// Sponsored "intervention" cards share the item class.
		if class, _ := card.Attr("class"); strings.Contains(class, "intervention") {
			return true
		}

		link := card.Find("a[href]").First()
		title := strings.TrimSpace(link.Text())
		if len([]rune(title)) < minMLTitleLength {
			return true
		}
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return true
		}

		priceText := card.Find("span.andes-money-amount__fraction").First().Text()
		price := parseColombianPrice(priceText)
		if price <= 0 {
			return true
		}

		image := card.Find("img").First()
		thumbnail := image.AttrOr("data-src", "")
		if thumbnail == "" {
			thumbnail = image.AttrOr("src", "")
		}

		records = append(records, domain.ProductRecord{
			Title:     title,
			Price:     price,
			Currency:  "COP",
			URL:       href,
			Thumbnail: thumbnail,
			Source:    "MercadoLibre",
		})
		return true
	})

	return records, nil
}
