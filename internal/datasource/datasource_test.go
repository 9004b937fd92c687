package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yourusername/stock-compass/internal/models"
)

func testHTTPClient(t *testing.T) *RateLimitedHTTPClient {
	t.Helper()
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 1
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond
	cfg.RateLimit = 1000
	return NewRateLimitedHTTPClient(cfg, nil)
}

const kisChartBody = `{
	"rt_cd": "0",
	"msg1": "ok",
	"output2": [
		{"stck_bsop_date": "20240103", "stck_oprc": "71000", "stck_hgpr": "72000", "stck_lwpr": "70500", "stck_clpr": "71800", "acml_vol": "12345678", "acml_tr_pbmn": "886000000000"},
		{"stck_bsop_date": "20240102", "stck_oprc": "70000", "stck_hgpr": "71000", "stck_lwpr": "69500", "stck_clpr": "70600", "acml_vol": "9876543", "acml_tr_pbmn": ""},
		{"stck_bsop_date": "", "stck_oprc": "", "stck_hgpr": "", "stck_lwpr": "", "stck_clpr": "", "acml_vol": "", "acml_tr_pbmn": ""}
	]
}`

func newKISTestServer(t *testing.T, chartHandler http.HandlerFunc) (*httptest.Server, *int) {
	t.Helper()
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/tokenP", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		tokenCalls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "test-token", "expires_in": 86400}`))
	})
	mux.HandleFunc("/uapi/domestic-stock/v1/quotations/inquire-daily-itemchartprice", chartHandler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &tokenCalls
}

func TestKISFetchDailyPrices(t *testing.T) {
	server, _ := newKISTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected Authorization header: %q", got)
		}
		if got := r.Header.Get("tr_id"); got != kisDailyChartTrID {
			t.Errorf("unexpected tr_id header: %q", got)
		}
		if got := r.URL.Query().Get("FID_INPUT_ISCD"); got != "005930" {
			t.Errorf("unexpected stock code: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(kisChartBody))
	})

	client := NewKISClient(testHTTPClient(t), server.URL, "key", "secret", nil)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	bars, err := client.FetchDailyPrices(context.Background(), "005930", from, to)
	if err != nil {
		t.Fatalf("FetchDailyPrices: %v", err)
	}

	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if !models.SortedAscending(bars) {
		t.Error("bars should be ordered ascending by date")
	}

	first := bars[0]
	if first.Date.Format("20060102") != "20240102" {
		t.Errorf("first bar date = %s, want 20240102", first.Date.Format("20060102"))
	}
	if first.Open != 70000 || first.High != 71000 || first.Low != 69500 || first.Close != 70600 {
		t.Errorf("unexpected OHLC: %+v", first)
	}
	if first.Volume != 9876543 {
		t.Errorf("volume = %d, want 9876543", first.Volume)
	}
	if first.TradingValue != nil {
		t.Error("blank turnover column should leave TradingValue nil")
	}

	second := bars[1]
	if second.TradingValue == nil || *second.TradingValue != 886000000000 {
		t.Errorf("unexpected trading value: %v", second.TradingValue)
	}
}

func TestKISTokenCachedAcrossRequests(t *testing.T) {
	server, tokenCalls := newKISTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(kisChartBody))
	})

	client := NewKISClient(testHTTPClient(t), server.URL, "key", "secret", nil)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if _, err := client.FetchDailyPrices(context.Background(), "005930", from, to); err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
	}

	if *tokenCalls != 1 {
		t.Errorf("token endpoint called %d times, want 1", *tokenCalls)
	}
}

func TestKISAuthenticationFailure(t *testing.T) {
	server, _ := newKISTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client := NewKISClient(testHTTPClient(t), server.URL, "key", "bad-secret", nil)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	_, err := client.FetchDailyPrices(context.Background(), "005930", from, to)
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestKISAPIErrorCode(t *testing.T) {
	server, _ := newKISTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rt_cd": "1", "msg1": "invalid stock code", "output2": []}`))
	})

	client := NewKISClient(testHTTPClient(t), server.URL, "key", "secret", nil)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	_, err := client.FetchDailyPrices(context.Background(), "000000", from, to)
	if err == nil {
		t.Fatal("expected error for non-zero rt_cd")
	}
	if !strings.Contains(err.Error(), "invalid stock code") {
		t.Errorf("error should carry the provider message, got %v", err)
	}
}

func TestKISInvalidRange(t *testing.T) {
	client := NewKISClient(testHTTPClient(t), "http://unused", "key", "secret", nil)
	from := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if _, err := client.FetchDailyPrices(context.Background(), "005930", from, to); err == nil {
		t.Error("expected error when end date precedes start date")
	}
	if _, err := client.FetchDailyPrices(context.Background(), "", to, from); err == nil {
		t.Error("expected error for empty stock code")
	}
}

const naverMainPage = `<html><body>
<em id="_market_sum">4,500,000</em>
<table class="per_table">
	<tr><th>PER</th><td><em>12.34배</em></td></tr>
	<tr><th>PBR</th><td><em>1.20배</em></td></tr>
</table>
<table class="tb_type1">
	<tr><th>매출액</th><td>2,500,000</td><td>3,000,000</td><td>3,100,000</td><td>3,200,000</td></tr>
	<tr><th>영업이익</th><td>400,000</td><td>500,000</td><td>510,000</td><td>520,000</td></tr>
	<tr><th>영업이익률</th><td>15.0</td><td>16.7</td><td>16.5</td><td>16.3</td></tr>
	<tr><th>ROE</th><td>10.1</td><td>12.5</td><td>12.2</td><td>12.0</td></tr>
	<tr><th>부채비율</th><td>45.0</td><td>42.3</td><td>41.0</td><td>40.5</td></tr>
	<tr><th>유동비율</th><td>240.0</td><td>250.0</td><td>251.0</td><td>252.0</td></tr>
</table>
</body></html>`

func TestNaverFetchFinancials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/item/main.naver") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(naverMainPage))
	}))
	defer server.Close()

	client := NewNaverClient(testHTTPClient(t), server.URL, 20, nil)
	snap, err := client.FetchFinancials(context.Background(), "005930")
	if err != nil {
		t.Fatalf("FetchFinancials: %v", err)
	}

	checks := []struct {
		name string
		got  *float64
		want float64
	}{
		{"PER", snap.PER, 12.34},
		{"PBR", snap.PBR, 1.20},
		{"ROE", snap.ROE, 12.5},
		{"OpMargin", snap.OpMargin, 16.7},
		{"DebtRatio", snap.DebtRatio, 42.3},
		{"CurrentRatio", snap.CurrentRatio, 250.0},
		{"RevenueGrowth", snap.RevenueGrowth, 20.0},
		{"OpGrowth", snap.OpGrowth, 25.0},
		{"PSR", snap.PSR, 1.5},
	}
	for _, c := range checks {
		if c.got == nil {
			t.Errorf("%s: expected %.2f, got nil", c.name, c.want)
			continue
		}
		if diff := *c.got - c.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("%s = %.4f, want %.4f", c.name, *c.got, c.want)
		}
	}
	if !snap.HasData() {
		t.Error("snapshot should report data present")
	}
}

func TestNaverFetchFinancialsEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>no tables here</p></body></html>`))
	}))
	defer server.Close()

	client := NewNaverClient(testHTTPClient(t), server.URL, 20, nil)
	snap, err := client.FetchFinancials(context.Background(), "005930")
	if err != nil {
		t.Fatalf("FetchFinancials: %v", err)
	}
	if snap.HasData() {
		t.Error("page without metric tables should produce an empty snapshot")
	}
}

const naverNewsPage = `<html><body>
<table class="type5">
	<tr>
		<td class="title"><a href="/item/news_read.naver?article_id=1">삼성전자 3분기 영업이익 사상 최대 실적</a></td>
		<td class="info">매일경제</td>
		<td class="date">2024.01.03 09:30</td>
	</tr>
	<tr>
		<td class="title"><a href="/item/news_read.naver?article_id=2">삼성전자 3분기 영업이익 사상 최대 실적</a></td>
		<td class="info">한국경제</td>
		<td class="date">2024.01.03 10:00</td>
	</tr>
	<tr>
		<td class="title"><a href="/item/news_read.naver?article_id=3">삼성전자 주가 급락에 개미 한숨</a></td>
		<td class="info">연합뉴스</td>
		<td class="date">2024.01.02 15:00</td>
	</tr>
	<tr>
		<td class="title"><a href="/item/news_read.naver?article_id=4">삼성전자 신입사원 공채 일정 발표</a></td>
		<td class="info">연합뉴스</td>
		<td class="date">2024.01.02 11:00</td>
	</tr>
	<tr>
		<td class="title"><a href="/item/news_read.naver?article_id=5">삼성전자 지난달 소식</a></td>
		<td class="info">연합뉴스</td>
		<td class="date">2023.11.01 10:00</td>
	</tr>
</table>
</body></html>`

func TestNaverFetchNews(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/item/news_news.naver") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(naverNewsPage))
	}))
	defer server.Close()

	client := NewNaverClient(testHTTPClient(t), server.URL, 20, nil)
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	items, err := client.FetchNews(context.Background(), "005930", since)
	if err != nil {
		t.Fatalf("FetchNews: %v", err)
	}

	// Duplicate headline and the 2023 article are dropped
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	first := items[0]
	if first.Sentiment != models.SentimentPositive || first.Impact != models.ImpactHigh {
		t.Errorf("earnings headline classified as %s/%s", first.Sentiment, first.Impact)
	}
	if !strings.HasPrefix(first.URL, server.URL+"/item/news_read.naver") {
		t.Errorf("relative link not resolved: %s", first.URL)
	}
	if first.PublishedAt.Format("2006.01.02 15:04") != "2024.01.03 09:30" {
		t.Errorf("unexpected published time: %s", first.PublishedAt)
	}

	crash := items[1]
	if crash.Sentiment != models.SentimentNegative || crash.Impact != models.ImpactMedium {
		t.Errorf("crash headline classified as %s/%s", crash.Sentiment, crash.Impact)
	}

	hiring := items[2]
	if hiring.Sentiment != models.SentimentNeutral || hiring.Impact != models.ImpactLow {
		t.Errorf("unmatched headline classified as %s/%s", hiring.Sentiment, hiring.Impact)
	}
}

func TestNaverNewsPageSizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(naverNewsPage))
	}))
	defer server.Close()

	client := NewNaverClient(testHTTPClient(t), server.URL, 2, nil)
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	items, err := client.FetchNews(context.Background(), "005930", since)
	if err != nil {
		t.Fatalf("FetchNews: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected page size cap of 2, got %d items", len(items))
	}
}

func TestClassifyHeadline(t *testing.T) {
	tests := []struct {
		title     string
		sentiment models.SentimentClass
		impact    models.ImpactClass
	}{
		{"대규모 해외 수주 성공", models.SentimentPositive, models.ImpactHigh},
		{"3년 연속 적자 지속", models.SentimentNegative, models.ImpactHigh},
		{"유상증자 결정 공시", models.SentimentNegative, models.ImpactHigh},
		{"증권가 목표가 상향", models.SentimentPositive, models.ImpactMedium},
		{"공장 파업 장기화", models.SentimentNegative, models.ImpactMedium},
		{"사옥 이전 소식", models.SentimentNeutral, models.ImpactLow},
	}

	for _, tt := range tests {
		sentiment, impact := ClassifyHeadline(tt.title)
		if sentiment != tt.sentiment || impact != tt.impact {
			t.Errorf("ClassifyHeadline(%q) = %s/%s, want %s/%s",
				tt.title, sentiment, impact, tt.sentiment, tt.impact)
		}
	}
}

func TestHTTPClientRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := testHTTPClient(t)
	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if attempts != 2 {
		t.Errorf("expected 1 retry, server saw %d attempts", attempts)
	}
}

func TestHTTPClientCircuitBreakerOpens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // every request now fails at the dial

	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	cfg.CircuitBreakerMax = 2
	client := NewRateLimitedHTTPClient(cfg, nil)

	for i := 0; i < 2; i++ {
		if _, err := client.Get(context.Background(), server.URL); err == nil {
			t.Fatal("expected dial failure")
		}
	}

	_, err := client.Get(context.Background(), server.URL)
	if err == nil || !strings.Contains(err.Error(), "circuit breaker open") {
		t.Errorf("expected circuit breaker to be open, got %v", err)
	}
}
