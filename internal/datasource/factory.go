package datasource

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-compass/internal/config"
)

// Sources bundles the provider clients used by the collection layer.
type Sources struct {
	Prices     PriceSource
	Financials FinancialSource
	News       NewsSource

	httpClients []*RateLimitedHTTPClient
}

// Factory creates provider clients based on configuration
type Factory struct {
	logger *logrus.Logger
	config *config.Config
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.Config, logger *logrus.Logger) *Factory {
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// NewSources creates all provider clients from configuration. Each
// provider gets its own HTTP client so one provider's rate limit or
// tripped circuit never stalls the other.
func (f *Factory) NewSources() (*Sources, error) {
	if f.config == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	kisCfg := f.config.Providers.KIS
	if kisCfg.AppKey == "" || kisCfg.AppSecret == "" {
		return nil, fmt.Errorf("kis credentials are required")
	}
	kisHTTP := NewRateLimitedHTTPClient(httpConfigFor(kisCfg.TimeoutSeconds, kisCfg.RetryAttempts, kisCfg.RatePerSecond), f.logger)
	kis := NewKISClient(kisHTTP, kisCfg.BaseURL, kisCfg.AppKey, kisCfg.AppSecret, f.logger)

	naverCfg := f.config.Providers.Naver
	naverHTTP := NewRateLimitedHTTPClient(httpConfigFor(naverCfg.TimeoutSeconds, naverCfg.RetryAttempts, naverCfg.RatePerSecond), f.logger)
	naver := NewNaverClient(naverHTTP, naverCfg.BaseURL, naverCfg.NewsPageSize, f.logger)

	if f.logger != nil {
		f.logger.WithFields(logrus.Fields{
			"price_source":     kis.Name(),
			"financial_source": naver.Name(),
			"news_source":      naver.Name(),
		}).Info("data sources created")
	}

	return &Sources{
		Prices:      kis,
		Financials:  naver,
		News:        naver,
		httpClients: []*RateLimitedHTTPClient{kisHTTP, naverHTTP},
	}, nil
}

// Close releases the HTTP clients behind every source.
func (s *Sources) Close() error {
	for _, c := range s.httpClients {
		_ = c.Close()
	}
	return nil
}

func httpConfigFor(timeoutSeconds, retryAttempts, ratePerSecond int) HTTPClientConfig {
	cfg := DefaultHTTPClientConfig()
	if timeoutSeconds > 0 {
		cfg.Timeout = time.Duration(timeoutSeconds) * time.Second
	}
	if retryAttempts >= 0 {
		cfg.MaxRetries = retryAttempts
	}
	if ratePerSecond > 0 {
		cfg.RateLimit = float64(ratePerSecond)
	}
	return cfg
}
