package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-compass/internal/models"
)

const (
	kisSourceName = "kis"

	// KIS returns at most this many rows per daily-chart request, so
	// longer ranges are fetched in backwards-walking pages.
	kisMaxRowsPerRequest = 100

	kisDailyChartTrID = "FHKST03010100"
)

// KISClient implements PriceSource against the Korea Investment &
// Securities open API. Access tokens are cached until shortly before
// their expiry and refreshed lazily.
type KISClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	appKey     string
	appSecret  string
	logger     *logrus.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

type kisTokenRequest struct {
	GrantType string `json:"grant_type"`
	AppKey    string `json:"appkey"`
	AppSecret string `json:"appsecret"`
}

type kisTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type kisDailyChartResponse struct {
	ReturnCode string            `json:"rt_cd"`
	Message    string            `json:"msg1"`
	Output2    []kisDailyChartRow `json:"output2"`
}

type kisDailyChartRow struct {
	Date         string `json:"stck_bsop_date"`
	Open         string `json:"stck_oprc"`
	High         string `json:"stck_hgpr"`
	Low          string `json:"stck_lwpr"`
	Close        string `json:"stck_clpr"`
	Volume       string `json:"acml_vol"`
	TradingValue string `json:"acml_tr_pbmn"`
}

// NewKISClient creates a new KIS open API client
func NewKISClient(httpClient *RateLimitedHTTPClient, baseURL, appKey, appSecret string, logger *logrus.Logger) *KISClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &KISClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		appKey:     appKey,
		appSecret:  appSecret,
		logger:     logger,
	}
}

// Name returns the data source name
func (c *KISClient) Name() string {
	return kisSourceName
}

// FetchDailyPrices retrieves daily bars for the stock within [from, to],
// ordered ascending by date. Ranges longer than one page are walked
// backwards from the end date until the start date is covered.
func (c *KISClient) FetchDailyPrices(ctx context.Context, stockCode string, from, to time.Time) ([]models.PriceBar, error) {
	if stockCode == "" {
		return nil, NewDataSourceError(kisSourceName, ErrCodeInvalidData, "stock code is required", nil)
	}
	if to.Before(from) {
		return nil, NewDataSourceError(kisSourceName, ErrCodeInvalidData, "end date precedes start date", nil)
	}

	var bars []models.PriceBar
	windowEnd := to
	for {
		page, err := c.fetchDailyPage(ctx, stockCode, from, windowEnd)
		if err != nil {
			return nil, err
		}
		bars = append(bars, page...)
		if len(page) < kisMaxRowsPerRequest {
			break
		}
		oldest := page[0].Date
		if !oldest.After(from) {
			break
		}
		windowEnd = oldest.AddDate(0, 0, -1)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// fetchDailyPage requests a single page of the daily chart, returned
// ascending by date.
func (c *KISClient) fetchDailyPage(ctx context.Context, stockCode string, from, to time.Time) ([]models.PriceBar, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("FID_COND_MRKT_DIV_CODE", "J")
	q.Set("FID_INPUT_ISCD", stockCode)
	q.Set("FID_INPUT_DATE_1", from.Format("20060102"))
	q.Set("FID_INPUT_DATE_2", to.Format("20060102"))
	q.Set("FID_PERIOD_DIV_CODE", "D")
	q.Set("FID_ORG_ADJ_PRC", "0")

	endpoint := c.baseURL + "/uapi/domestic-stock/v1/quotations/inquire-daily-itemchartprice?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewDataSourceError(kisSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("appkey", c.appKey)
	req.Header.Set("appsecret", c.appSecret)
	req.Header.Set("tr_id", kisDailyChartTrID)
	req.Header.Set("custtype", "P")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(kisSourceName, ErrCodeNetworkError, "failed to fetch daily prices", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		c.invalidateToken()
		return nil, NewDataSourceError(kisSourceName, ErrCodeAuthenticationFailed, "credentials rejected", ErrAuthenticationFailed)
	case http.StatusTooManyRequests:
		return nil, NewDataSourceError(kisSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewDataSourceError(kisSourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var chart kisDailyChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, NewDataSourceError(kisSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}
	if chart.ReturnCode != "0" {
		return nil, NewDataSourceError(kisSourceName, ErrCodeServerError, fmt.Sprintf("api error rt_cd=%s: %s", chart.ReturnCode, chart.Message), nil)
	}

	bars := make([]models.PriceBar, 0, len(chart.Output2))
	for _, row := range chart.Output2 {
		// KIS pads short responses with empty rows
		if row.Date == "" {
			continue
		}
		bar, err := c.convertRow(stockCode, row)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"stock_code": stockCode,
				"date":       row.Date,
				"error":      err.Error(),
			}).Warn("skipping malformed price row")
			continue
		}
		bars = append(bars, bar)
	}

	// Rows arrive newest first
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

func (c *KISClient) convertRow(stockCode string, row kisDailyChartRow) (models.PriceBar, error) {
	date, err := time.Parse("20060102", row.Date)
	if err != nil {
		return models.PriceBar{}, fmt.Errorf("invalid date %q: %w", row.Date, err)
	}

	open, err := parsePrice(row.Open)
	if err != nil {
		return models.PriceBar{}, err
	}
	high, err := parsePrice(row.High)
	if err != nil {
		return models.PriceBar{}, err
	}
	low, err := parsePrice(row.Low)
	if err != nil {
		return models.PriceBar{}, err
	}
	closePrice, err := parsePrice(row.Close)
	if err != nil {
		return models.PriceBar{}, err
	}
	volume, err := parsePrice(row.Volume)
	if err != nil {
		return models.PriceBar{}, err
	}

	bar := models.PriceBar{
		StockCode: stockCode,
		Date:      date,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    int64(volume),
	}

	if row.TradingValue != "" {
		if tv, err := parsePrice(row.TradingValue); err == nil {
			bar.TradingValue = &tv
		}
	}
	return bar, nil
}

// token returns a cached access token, fetching a fresh one when the
// cache is empty or within a minute of expiry.
func (c *KISClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		token := c.accessToken
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	payload, err := json.Marshal(kisTokenRequest{
		GrantType: "client_credentials",
		AppKey:    c.appKey,
		AppSecret: c.appSecret,
	})
	if err != nil {
		return "", NewDataSourceError(kisSourceName, ErrCodeInvalidData, "failed to encode token request", err)
	}

	resp, err := c.httpClient.Post(ctx, c.baseURL+"/oauth2/tokenP", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", NewDataSourceError(kisSourceName, ErrCodeNetworkError, "failed to request access token", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", NewDataSourceError(kisSourceName, ErrCodeAuthenticationFailed,
			fmt.Sprintf("token request failed with status %d", resp.StatusCode), ErrAuthenticationFailed)
	}

	var tokenResp kisTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", NewDataSourceError(kisSourceName, ErrCodeInvalidData, "failed to parse token response", err)
	}
	if tokenResp.AccessToken == "" {
		return "", NewDataSourceError(kisSourceName, ErrCodeAuthenticationFailed, "empty access token", ErrAuthenticationFailed)
	}

	c.mu.Lock()
	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	c.mu.Unlock()

	return tokenResp.AccessToken, nil
}

func (c *KISClient) invalidateToken() {
	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()
}

// parsePrice parses a numeric string from a provider payload. Comma
// separators are tolerated.
func parsePrice(s string) (float64, error) {
	d, err := decimal.NewFromString(stripCommas(s))
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return d.InexactFloat64(), nil
}

func stripCommas(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}
