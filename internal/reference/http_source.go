package reference

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"pepco/internal/config"
	"pepco/internal/util"
)

const maxAttempts = 5

// HTTPSource reads published spreadsheet tables as CSV or as an HTML table.
type HTTPSource struct {
	urls        map[Kind]string
	httpClient  *http.Client
	limiter     *RateLimiter
	backoffBase time.Duration
	logger      *slog.Logger
}

func NewHTTPSource(cfg config.Config, logger *slog.Logger) *HTTPSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPSource{
		urls: map[Kind]string{
			KindPrices:       cfg.PriceTableURL,
			KindTranslations: cfg.TranslationTableURL,
			KindMaterials:    cfg.MaterialTableURL,
		},
		httpClient:  &http.Client{Timeout: time.Duration(cfg.ReferenceTimeoutMs) * time.Millisecond},
		limiter:     NewRateLimiter(cfg.ReferenceRateLimitRPS),
		backoffBase: 250 * time.Millisecond,
		logger:      logger,
	}
}

func (s *HTTPSource) Fetch(ctx context.Context, kind Kind) ([][]string, error) {
	u := strings.TrimSpace(s.urls[kind])
	if u == "" {
		return nil, fmt.Errorf("no url configured for %s table", kind)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := s.limiter.WaitTurn(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/csv, text/html;q=0.9")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < maxAttempts {
				lastErr = fmt.Errorf("%s table status %d", kind, resp.StatusCode)
				backoff := s.backoffBase*time.Duration(1<<(attempt-1)) + time.Duration(rand.Int63n(int64(s.backoffBase)/4+1))
				s.logger.Warn("reference.fetch.retry", "kind", kind, "status", resp.StatusCode, "attempt", attempt, "backoff", backoff)
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(backoff):
				}
				continue
			}
			return nil, fmt.Errorf("%s table error: status=%d body=%s", kind, resp.StatusCode, truncate(string(body), 200))
		}

		rows, err := parseTable(resp.Header.Get("Content-Type"), body)
		if err != nil {
			return nil, fmt.Errorf("parse %s table: %w", kind, err)
		}
		s.logger.Debug("reference.fetch.ok", "kind", kind, "rows", len(rows))
		return rows, nil
	}

	if lastErr == nil {
		lastErr = errors.New("reference request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func parseTable(contentType string, body []byte) ([][]string, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(body, []byte{0xEF, 0xBB, 0xBF}))
	if strings.Contains(contentType, "html") || bytes.HasPrefix(trimmed, []byte("<")) {
		return parseHTMLTable(trimmed)
	}
	r := csv.NewReader(bytes.NewReader(trimmed))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// parseHTMLTable reads the first table of a published sheet page. Only td
// cells are kept; published sheets put row numbers and column letters in th.
func parseHTMLTable(body []byte) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, errors.New("no table in html document")
	}

	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, util.NormalizeSpaces(td.Text()))
		})
		if len(cells) == 0 {
			return
		}
		rows = append(rows, cells)
	})
	return rows, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
