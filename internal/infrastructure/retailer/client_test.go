package retailer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColombianPrice(t *testing.T) {
	tests := []struct {
		text     string
		expected float64
	}{
		{"$ 2.500.000", 2500000},
		{"$1.299.900", 1299900},
		{"2.500.000", 2500000},
		{"  $ 89.900  ", 89900},
		{"450000", 450000},
		{"", 0},
		{"Agotado", 0},
		{"$", 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseColombianPrice(tt.text))
		})
	}
}

func TestConfigWithDefaults(t *testing.T) {
	t.Run("fills zero values", func(t *testing.T) {
		cfg := Config{}.withDefaults()

		assert.Equal(t, defaultUserAgent, cfg.UserAgent)
		assert.Equal(t, defaultTimeout, cfg.Timeout)
		assert.Equal(t, defaultMaxResults, cfg.MaxResults)
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		cfg := Config{
			UserAgent:  "test-agent",
			Timeout:    3 * time.Second,
			MaxResults: 5,
		}.withDefaults()

		assert.Equal(t, "test-agent", cfg.UserAgent)
		assert.Equal(t, 3*time.Second, cfg.Timeout)
		assert.Equal(t, 5, cfg.MaxResults)
	})
}

func TestFetcherGet(t *testing.T) {
	t.Run("sends browser-like headers", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
			assert.Equal(t, "es-CO,es;q=0.9", r.Header.Get("Accept-Language"))
			assert.Equal(t, "https://example.com/", r.Header.Get("Referer"))
			fmt.Fprint(w, "ok")
		}))
		defer server.Close()

		f := newFetcher(Config{UserAgent: "test-agent"}.withDefaults(), "https://example.com/")

		body, status, err := f.get(context.Background(), server.URL, nil)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "ok", string(body))
	})

	t.Run("retries on server errors", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, "recovered")
		}))
		defer server.Close()

		f := newFetcher(Config{}.withDefaults(), "")

		body, status, err := f.get(context.Background(), server.URL, nil)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "recovered", string(body))
		assert.Equal(t, 2, attempts)
	})

	t.Run("returns non-5xx statuses without retrying", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		f := newFetcher(Config{}.withDefaults(), "")

		_, status, err := f.get(context.Background(), server.URL, nil)

		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, 1, attempts)
	})
}

// nextDataPage wraps a Next.js state payload in a search results page and
// pads the markup past minSize so the block-page heuristics accept it.
func nextDataPage(payload string, minSize int) string {
	var page strings.Builder
	page.WriteString("<!DOCTYPE html><html><head><title>Resultados</title></head><body>")
	page.WriteString(`<script id="__NEXT_DATA__" type="application/json">`)
	page.WriteString(payload)
	page.WriteString("</script>")
	for page.Len() < minSize {
		page.WriteString("<div class=\"filler\">relleno de maquetado para la página de resultados</div>\n")
	}
	page.WriteString("</body></html>")
	return page.String()
}
