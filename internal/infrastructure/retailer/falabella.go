package retailer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/comparaprecios/backend/internal/domain"
)

// nextDataRegex extracts the Next.js state blob embedded in search pages.
var nextDataRegex = regexp.MustCompile(`<script id="__NEXT_DATA__" type="application/json">([\s\S]*?)</script>`)

const (
	falabellaBaseURL  = "https://www.falabella.com.co"
	falabellaMediaURL = "https://media.falabella.com.co"

	// minFalabellaHTML: block/captcha pages come back much smaller than a
	// real results page.
	minFalabellaHTML = 50000

	minFalabellaTitleLength = 10
)

// phantomModels are model names Falabella has listed before any such product
// existed. They never have real stock or prices.
var phantomModels = []string{
	"iphone 17", "iphone air", "iphone 16e",
	"iphone 18", "iphone 19", "iphone 20",
}

type falabellaSize struct {
	Available bool `json:"available"`
}

type falabellaOption struct {
	IsPurchaseable bool            `json:"isPurchaseable"`
	Sizes          []falabellaSize `json:"sizes"`
}

type falabellaVariant struct {
	Options []falabellaOption `json:"options"`
}

type falabellaPrice struct {
	Type  string   `json:"type"`
	Price []string `json:"price"`
}

type falabellaProduct struct {
	DisplayName string             `json:"displayName"`
	URL         string             `json:"url"`
	Variants    []falabellaVariant `json:"variants"`
	Prices      []falabellaPrice   `json:"prices"`
	MediaURLs   []string           `json:"mediaUrls"`
}

type falabellaNextData struct {
	Props struct {
		PageProps struct {
			Results []falabellaProduct `json:"results"`
		} `json:"pageProps"`
	} `json:"props"`
}

// FalabellaAdapter scrapes Falabella Colombia search pages. The page embeds
// its full result set as Next.js JSON, which carries precise availability
// data the rendered HTML does not.
type FalabellaAdapter struct {
	baseURL    string
	fetcher    *fetcher
	maxResults int
}

// NewFalabella creates the adapter for Falabella Colombia.
func NewFalabella(cfg Config) *FalabellaAdapter {
	return NewFalabellaWithBaseURL(falabellaBaseURL, cfg)
}

// NewFalabellaWithBaseURL allows pointing the adapter at a test server.
func NewFalabellaWithBaseURL(baseURL string, cfg Config) *FalabellaAdapter {
	cfg = cfg.withDefaults()
	return &FalabellaAdapter{
		baseURL:    baseURL,
		fetcher:    newFetcher(cfg, baseURL+"/"),
		maxResults: cfg.MaxResults,
	}
}

func (a *FalabellaAdapter) Name() string { return "Falabella" }

func (a *FalabellaAdapter) Fetch(ctx context.Context, query string) ([]domain.ProductRecord, error) {
	reqURL := fmt.Sprintf("%s/falabella-co/search?Ntt=%s", a.baseURL, url.QueryEscape(query))

	body, status, err := a.fetcher.get(ctx, reqURL, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: Falabella status %d", domain.ErrRetailerUnavailable, status)
	}
	if len(body) < minFalabellaHTML {
		return nil, fmt.Errorf("%w: Falabella returned %d bytes", domain.ErrBlocked, len(body))
	}

	match := nextDataRegex.FindSubmatch(body)
	if match == nil {
		return nil, fmt.Errorf("%w: Falabella page has no __NEXT_DATA__", domain.ErrMalformedPayload)
	}

	var nextData falabellaNextData
	if err := json.Unmarshal(match[1], &nextData); err != nil {
		return nil, fmt.Errorf("%w: Falabella: %v", domain.ErrMalformedPayload, err)
	}

	records := make([]domain.ProductRecord, 0, a.maxResults)
	for _, product := range nextData.Props.PageProps.Results {
		if len(records) >= a.maxResults {
			break
		}
		if len([]rune(product.DisplayName)) < minFalabellaTitleLength || product.URL == "" {
			continue
		}
		if !hasAvailableVariant(product.Variants) {
			continue
		}
		if isPhantomModel(product.DisplayName) {
			continue
		}

		price := falabellaMainPrice(product.Prices)
		if price <= 0 {
			continue
		}

		records = append(records, domain.ProductRecord{
			Title:     product.DisplayName,
			Price:     price,
			Currency:  "COP",
			URL:       product.URL,
			Thumbnail: falabellaThumbnail(product.MediaURLs),
			Source:    "Falabella",
		})
	}

	return records, nil
}

// hasAvailableVariant reports whether any variant is actually purchasable:
// either flagged directly or carrying at least one available size.
func hasAvailableVariant(variants []falabellaVariant) bool {
	for _, variant := range variants {
		for _, option := range variant.Options {
			if option.IsPurchaseable {
				return true
			}
			for _, size := range option.Sizes {
				if size.Available {
					return true
				}
			}
		}
	}
	return false
}

func isPhantomModel(title string) bool {
	titleLower := strings.ToLower(title)
	for _, model := range phantomModels {
		if strings.Contains(titleLower, model) {
			return true
		}
	}
	return false
}

// falabellaMainPrice prefers the internet price over promotional entries.
func falabellaMainPrice(prices []falabellaPrice) float64 {
	var main *falabellaPrice
	for i := range prices {
		if prices[i].Type == "internetPrice" {
			main = &prices[i]
			break
		}
	}
	if main == nil && len(prices) > 0 {
		main = &prices[0]
	}
	if main == nil || len(main.Price) == 0 {
		return 0
	}
	return parseColombianPrice(main.Price[0])
}

func falabellaThumbnail(mediaURLs []string) string {
	if len(mediaURLs) == 0 {
		return ""
	}
	thumbnail := mediaURLs[0]
	if thumbnail != "" && !strings.HasPrefix(thumbnail, "http") {
		thumbnail = falabellaMediaURL + thumbnail
	}
	return thumbnail
}
