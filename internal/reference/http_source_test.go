package reference

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pepco/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func response(status int, contentType, body string) *http.Response {
	h := make(http.Header)
	h.Set("Content-Type", contentType)
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body)), Header: h}
}

func testHTTPSource(t *testing.T, rt roundTripFunc) *HTTPSource {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.PriceTableURL = "https://sheets.test/prices.csv"
	cfg.TranslationTableURL = "https://sheets.test/translations.html"
	cfg.ReferenceRateLimitRPS = 1000

	src := NewHTTPSource(cfg, nil)
	src.httpClient = &http.Client{Transport: rt}
	src.backoffBase = time.Millisecond
	return src
}

func TestHTTPSourceCSVWithRetry(t *testing.T) {
	attempt := 0
	src := testHTTPSource(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/prices.csv" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		attempt++
		if attempt == 1 {
			return response(http.StatusServiceUnavailable, "text/plain", "busy"), nil
		}
		return response(http.StatusOK, "text/csv", "\xEF\xBB\xBFPLN,EUR\n9.99,2.5\n12.99,3\n"), nil
	})

	rows, err := src.Fetch(context.Background(), KindPrices)
	require.NoError(t, err)
	assert.Equal(t, 2, attempt)
	assert.Equal(t, [][]string{{"PLN", "EUR"}, {"9.99", "2.5"}, {"12.99", "3"}}, rows)
}

func TestHTTPSourceHTMLTable(t *testing.T) {
	page := `<html><body><table>
<tr><th></th><th>A</th><th>B</th><th>C</th></tr>
<tr><th>1</th><td>DEPARTMENT</td><td>PRODUCT_NAME</td><td>AL</td></tr>
<tr><th>2</th><td>Baby Boy</td><td>T-shirt</td><td> Bluzë
 me mëngë </td></tr>
</table></body></html>`
	src := testHTTPSource(t, func(r *http.Request) (*http.Response, error) {
		return response(http.StatusOK, "text/html; charset=utf-8", page), nil
	})

	rows, err := src.Fetch(context.Background(), KindTranslations)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"DEPARTMENT", "PRODUCT_NAME", "AL"}, {"Baby Boy", "T-shirt", "Bluzë me mëngë"}}, rows)
}

func TestHTTPSourceErrors(t *testing.T) {
	src := testHTTPSource(t, func(r *http.Request) (*http.Response, error) {
		return response(http.StatusNotFound, "text/plain", "missing"), nil
	})

	_, err := src.Fetch(context.Background(), KindPrices)
	assert.ErrorContains(t, err, "status=404")

	_, err = src.Fetch(context.Background(), KindMaterials)
	assert.ErrorContains(t, err, "no url configured")
}
