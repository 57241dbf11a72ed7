package retailer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comparaprecios/backend/internal/domain"
)

func TestAlkostoFetch(t *testing.T) {
	t.Run("parses VTEX-style embedded products", func(t *testing.T) {
		payload := `{
			"props": {
				"pageProps": {
					"products": [
						{
							"productName": "Televisor Kalley 50 pulgadas UHD",
							"linkText": "televisor-kalley-50",
							"items": [{
								"images": [{"imageUrl": "https://www.alkosto.com/kalley50.jpg"}],
								"sellers": [{"commertialOffer": {"Price": 1499900}}]
							}]
						},
						{
							"productName": "TV",
							"linkText": "tv-corto",
							"items": [{"sellers": [{"commertialOffer": {"Price": 999900}}]}]
						}
					]
				}
			}
		}`
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/buscar", r.URL.Path)
			assert.Equal(t, "televisor", r.URL.Query().Get("Ntt"))

			fmt.Fprint(w, nextDataPage(payload, minAlkostoHTML))
		}))
		defer server.Close()

		adapter := NewAlkostoWithBaseURL(server.URL, Config{})

		records, err := adapter.Fetch(context.Background(), "televisor")

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Televisor Kalley 50 pulgadas UHD", records[0].Title)
		assert.Equal(t, float64(1499900), records[0].Price)
		assert.Equal(t, "COP", records[0].Currency)
		assert.Equal(t, "Alkosto", records[0].Source)
		assert.Equal(t, server.URL+"/televisor-kalley-50/p", records[0].URL)
		assert.Equal(t, "https://www.alkosto.com/kalley50.jpg", records[0].Thumbnail)
	})

	t.Run("falls back to flattened searchResult products", func(t *testing.T) {
		payload := `{
			"props": {
				"pageProps": {
					"searchResult": {
						"products": [
							{
								"name": "Nevera LG 420 litros",
								"id": "NEV-420",
								"price": 2899900,
								"image": "https://www.alkosto.com/nevera420.jpg"
							}
						]
					}
				}
			}
		}`
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, nextDataPage(payload, minAlkostoHTML))
		}))
		defer server.Close()

		adapter := NewAlkostoWithBaseURL(server.URL, Config{})

		records, err := adapter.Fetch(context.Background(), "nevera")

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Nevera LG 420 litros", records[0].Title)
		assert.Equal(t, float64(2899900), records[0].Price)
		assert.Equal(t, server.URL+"/p/NEV-420", records[0].URL)
		assert.Equal(t, "https://www.alkosto.com/nevera420.jpg", records[0].Thumbnail)
	})

	t.Run("treats a small page as a block", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html><body>Access denied</body></html>")
		}))
		defer server.Close()

		adapter := NewAlkostoWithBaseURL(server.URL, Config{})

		records, err := adapter.Fetch(context.Background(), "televisor")

		assert.Nil(t, records)
		assert.ErrorIs(t, err, domain.ErrBlocked)
	})
}
