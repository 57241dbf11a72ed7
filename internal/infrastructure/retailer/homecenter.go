package retailer

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/comparaprecios/backend/internal/domain"
)

const (
	homecenterBaseURL = "https://www.homecenter.com.co"

	minHomecenterTitleLength = 5
)

// Homecenter has shipped several card markups; try the specific selectors
// first and fall back to generic ones.
var (
	homecenterCardSelectors = []string{
		`.product-item, .product-card, .ProductCard, [data-test="product-card"]`,
		`.item, .product, article[data-product]`,
	}
	homecenterTitleSelector = `.product-name, .ProductCard__title, h3, h2, .title, a.name`
	homecenterPriceSelector = `.price, .ProductCard__price, [data-test="price"], .valor, span[class*="price"]`
	homecenterLinkSelector  = `a[href*="/product/"], a[href*="/p/"]`

	homecenterPriceRegex = regexp.MustCompile(`\$\s*([0-9.,]+)`)
)

// HomecenterAdapter scrapes Homecenter Colombia search result pages.
type HomecenterAdapter struct {
	baseURL    string
	fetcher    *fetcher
	maxResults int
}

// NewHomecenter creates the adapter for Homecenter Colombia.
func NewHomecenter(cfg Config) *HomecenterAdapter {
	return NewHomecenterWithBaseURL(homecenterBaseURL, cfg)
}

// NewHomecenterWithBaseURL allows pointing the adapter at a test server.
func NewHomecenterWithBaseURL(baseURL string, cfg Config) *HomecenterAdapter {
	cfg = cfg.withDefaults()
	return &HomecenterAdapter{
		baseURL:    baseURL,
		fetcher:    newFetcher(cfg, baseURL+"/"),
		maxResults: cfg.MaxResults,
	}
}

func (a *HomecenterAdapter) Name() string { return "Homecenter" }

func (a *HomecenterAdapter) Fetch(ctx context.Context, query string) ([]domain.ProductRecord, error) {
	reqURL := fmt.Sprintf("%s/homecenter-co/search?Ntt=%s", a.baseURL, strings.ReplaceAll(strings.TrimSpace(query), " ", "+"))

	body, status, err := a.fetcher.get(ctx, reqURL, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: Homecenter status %d", domain.ErrRetailerUnavailable, status)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: Homecenter: %v", domain.ErrMalformedPayload, err)
	}

	var cards *goquery.Selection
	for _, selector := range homecenterCardSelectors {
		cards = doc.Find(selector)
		if cards.Length() > 0 {
			break
		}
	}

	mainKeyword := firstQueryWord(query)

	records := make([]domain.ProductRecord, 0, a.maxResults)
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(records) >= a.maxResults {
			return false
		}

		title := strings.TrimSpace(card.Find(homecenterTitleSelector).First().Text())
		if len([]rune(title)) < minHomecenterTitleLength {
			return true
		}
		// Homecenter search mixes in loosely related items; require the
		// query's leading word in the title.
		if mainKeyword != "" && !strings.Contains(strings.ToLower(title), mainKeyword) {
			return true
		}

		productURL := a.cardURL(card)
		if productURL == "" {
			return true
		}

		price := cardPrice(card)
		if price <= 0 {
			return true
		}

		records = append(records, domain.ProductRecord{
			Title:     title,
			Price:     price,
			Currency:  "COP",
			URL:       productURL,
			Thumbnail: a.cardThumbnail(card),
			Source:    "Homecenter",
		})
		return true
	})

	return records, nil
}

func firstQueryWord(query string) string {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return ""
	}
	return words[0]
}

func (a *HomecenterAdapter) cardURL(card *goquery.Selection) string {
	link := card.Find(homecenterLinkSelector).First()
	if link.Length() == 0 {
		link = card.Find("a").First()
	}
	href, ok := link.Attr("href")
	if !ok || href == "" {
		return ""
	}
	switch {
	case strings.HasPrefix(href, "http"):
		return href
	case strings.HasPrefix(href, "/"):
		return a.baseURL + href
	default:
		return ""
	}
}

func cardPrice(card *goquery.Selection) float64 {
	priceText := strings.TrimSpace(card.Find(homecenterPriceSelector).First().Text())
	if priceText == "" {
		match := homecenterPriceRegex.FindStringSubmatch(card.Text())
		if match == nil {
			return 0
		}
		priceText = match[1]
	}
	return parseColombianPrice(priceText)
}

func (a *HomecenterAdapter) cardThumbnail(card *goquery.Selection) string {
	image := card.Find("img").First()
	if image.Length() == 0 {
		return ""
	}

	var thumbnail string
	for _, attr := range []string{"src", "data-src", "data-lazy-src", "data-original"} {
		if value := image.AttrOr(attr, ""); value != "" {
			thumbnail = value
			break
		}
	}

	switch {
	case thumbnail == "" || strings.HasPrefix(thumbnail, "http"):
		return thumbnail
	case strings.HasPrefix(thumbnail, "//"):
		return "https:" + thumbnail
	case strings.HasPrefix(thumbnail, "/"):
		return a.baseURL + thumbnail
	default:
		return thumbnail
	}
}
