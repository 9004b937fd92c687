package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-compass/internal/models"
)

const naverSourceName = "naver"

// NaverClient implements FinancialSource and NewsSource by scraping
// Naver Finance pages. The pages carry no authentication but reject
// requests without a browser-like User-Agent and, for the news iframe,
// a Referer header.
type NaverClient struct {
	httpClient   *RateLimitedHTTPClient
	baseURL      string
	newsPageSize int
	logger       *logrus.Logger
}

// NewNaverClient creates a new Naver Finance client
func NewNaverClient(httpClient *RateLimitedHTTPClient, baseURL string, newsPageSize int, logger *logrus.Logger) *NaverClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	if newsPageSize <= 0 {
		newsPageSize = 20
	}
	return &NaverClient{
		httpClient:   httpClient,
		baseURL:      baseURL,
		newsPageSize: newsPageSize,
		logger:       logger,
	}
}

// Name returns the data source name
func (c *NaverClient) Name() string {
	return naverSourceName
}

// FetchFinancials scrapes the stock main page for valuation and
// financial-summary metrics. Metrics missing from the page come back
// as nil fields.
func (c *NaverClient) FetchFinancials(ctx context.Context, stockCode string) (*models.FinancialSnapshot, error) {
	if stockCode == "" {
		return nil, NewDataSourceError(naverSourceName, ErrCodeInvalidData, "stock code is required", nil)
	}

	doc, err := c.fetchDocument(ctx, fmt.Sprintf("%s/item/main.naver?code=%s", c.baseURL, stockCode), "")
	if err != nil {
		return nil, err
	}

	snapshot := &models.FinancialSnapshot{
		StockCode: stockCode,
		UpdatedAt: time.Now(),
	}

	// Valuation table: one th label and one em value per row
	doc.Find("table.per_table tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find("th").First().Text())
		value := strings.TrimSpace(row.Find("td em").First().Text())
		if label == "" || value == "" {
			return
		}
		switch {
		case strings.Contains(label, "PER"):
			snapshot.PER = parseMetric(value)
		case strings.Contains(label, "PBR"):
			snapshot.PBR = parseMetric(value)
		}
	})

	var revenue, marketCap *float64

	if v := strings.TrimSpace(doc.Find("em#_market_sum").First().Text()); v != "" {
		marketCap = parseMetric(v)
	}

	// Financial summary table: th label followed by annual columns,
	// most recent year in the second column
	doc.Find("table.tb_type1 tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find("th").First().Text())
		cells := row.Find("td")
		if label == "" || cells.Length() < 2 {
			return
		}
		latest := strings.TrimSpace(cells.Eq(1).Text())
		previous := ""
		if cells.Length() > 2 {
			previous = strings.TrimSpace(cells.Eq(0).Text())
		}

		switch {
		case strings.Contains(label, "매출액"):
			revenue = parseMetric(latest)
			snapshot.RevenueGrowth = growthRate(parseMetric(previous), revenue)
		case strings.Contains(label, "영업이익률"):
			snapshot.OpMargin = parseMetric(latest)
		case strings.Contains(label, "영업이익"):
			snapshot.OpGrowth = growthRate(parseMetric(previous), parseMetric(latest))
		case strings.Contains(label, "ROE"):
			snapshot.ROE = parseMetric(latest)
		case strings.Contains(label, "부채비율"):
			snapshot.DebtRatio = parseMetric(latest)
		case strings.Contains(label, "유동비율"):
			snapshot.CurrentRatio = parseMetric(latest)
		}
	})

	// Market cap and revenue are both published in hundred-million won,
	// so their ratio is the price-to-sales multiple directly
	if marketCap != nil && revenue != nil && *revenue > 0 {
		psr := *marketCap / *revenue
		snapshot.PSR = &psr
	}

	return snapshot, nil
}

// FetchNews scrapes the stock news iframe and classifies each headline
// by tone and expected price impact. Items older than since are
// dropped; duplicates are deduplicated on a title prefix.
func (c *NaverClient) FetchNews(ctx context.Context, stockCode string, since time.Time) ([]models.NewsItem, error) {
	if stockCode == "" {
		return nil, NewDataSourceError(naverSourceName, ErrCodeInvalidData, "stock code is required", nil)
	}

	newsURL := fmt.Sprintf("%s/item/news_news.naver?code=%s&page=&clusterId=", c.baseURL, stockCode)
	referer := fmt.Sprintf("%s/item/news.naver?code=%s", c.baseURL, stockCode)
	doc, err := c.fetchDocument(ctx, newsURL, referer)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	seen := make(map[string]bool)
	var items []models.NewsItem

	doc.Find("table.type5 tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		titleLink := row.Find("td.title a").First()
		title := strings.TrimSpace(titleLink.Text())
		if len([]rune(title)) <= 5 {
			return true
		}

		key := titlePrefix(title, 30)
		if seen[key] {
			return true
		}
		seen[key] = true

		link, _ := titleLink.Attr("href")
		if link != "" && !strings.HasPrefix(link, "http") {
			link = c.baseURL + link
		}

		publishedAt := parseNewsDate(strings.TrimSpace(row.Find("td.date").First().Text()), now)
		if publishedAt.Before(since) {
			return true
		}

		sentiment, impact := ClassifyHeadline(title)
		items = append(items, models.NewsItem{
			ID:          uuid.New(),
			StockCode:   stockCode,
			Title:       title,
			URL:         link,
			Sentiment:   sentiment,
			Impact:      impact,
			PublishedAt: publishedAt,
			CreatedAt:   now,
		})

		return len(items) < c.newsPageSize
	})

	return items, nil
}

func (c *NaverClient) fetchDocument(ctx context.Context, url, referer string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewDataSourceError(naverSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(naverSourceName, ErrCodeNetworkError, "failed to fetch page", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, NewDataSourceError(naverSourceName, ErrCodeNotFound, "page not found", ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewDataSourceError(naverSourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, NewDataSourceError(naverSourceName, ErrCodeInvalidData, "failed to parse page", err)
	}
	return doc, nil
}

// parseMetric parses a displayed metric like "12.34배", "1,234" or
// "15.2%" into a float, returning nil for blanks and placeholders.
func parseMetric(s string) *float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "배")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSuffix(s, "원")
	s = stripCommas(strings.TrimSpace(s))
	if s == "" || s == "N/A" || s == "-" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	v := d.InexactFloat64()
	return &v
}

// growthRate returns the year-over-year change in percent, nil when
// either side is missing or the base is not positive.
func growthRate(previous, latest *float64) *float64 {
	if previous == nil || latest == nil || *previous <= 0 {
		return nil
	}
	g := (*latest - *previous) / *previous * 100
	return &g
}

// parseNewsDate parses "2025.01.31 14:30" or "2025.01.31", falling
// back to the fetch time when the cell is malformed.
func parseNewsDate(s string, fallback time.Time) time.Time {
	if t, err := time.Parse("2006.01.02 15:04", s); err == nil {
		return t
	}
	if fields := strings.Fields(s); len(fields) > 0 {
		if t, err := time.Parse("2006.01.02", fields[0]); err == nil {
			return t
		}
	}
	return fallback
}

func titlePrefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
