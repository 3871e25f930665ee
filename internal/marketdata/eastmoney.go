package marketdata

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/yourusername/stock-screener/internal/models"
)

// Eastmoney endpoint paths.
const (
	eastmoneyKlinePath = "/api/qt/stock/kline/get"
	eastmoneyListPath  = "/api/qt/clist/get"

	// f12 code, f14 name, f2 latest price, f20 total market cap
	listFields   = "f2,f12,f14,f20"
	listPageSize = 500

	// f51 date, f52 open, f53 close, f54 high, f55 low, f56 volume
	klineFields = "f51,f52,f53,f54,f55,f56"

	// Shanghai composite index, used as the trading calendar reference.
	calendarSecID = "1.000001"
)

// EastmoneyConfig configures the Eastmoney-style quote source.
type EastmoneyConfig struct {
	BaseURL  string
	CacheTTL time.Duration
}

// EastmoneySource fetches A-share daily bars and universe listings
// from an Eastmoney-compatible quote API. Fetched series are cached
// per (code, end date) for the run.
type EastmoneySource struct {
	cfg    EastmoneyConfig
	client *RateLimitedHTTPClient
	cache  *cache.Cache
	logger *logrus.Logger
}

// NewEastmoneySource creates the source over a rate-limited client.
func NewEastmoneySource(cfg EastmoneyConfig, client *RateLimitedHTTPClient, logger *logrus.Logger) *EastmoneySource {
	if logger == nil {
		logger = logrus.New()
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &EastmoneySource{
		cfg:    cfg,
		client: client,
		cache:  cache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// Name returns the name of the data source
func (s *EastmoneySource) Name() string { return "eastmoney" }

// GetPriceSeries retrieves daily bars for one stock code.
func (s *EastmoneySource) GetPriceSeries(ctx context.Context, code string, start, end time.Time) (models.PriceSeries, error) {
	key := fmt.Sprintf("kline:%s:%s:%s", code, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if cached, found := s.cache.Get(key); found {
		return cached.(models.PriceSeries), nil
	}

	series, err := s.fetchKlines(ctx, secID(code), code, start, end)
	if err != nil {
		return models.PriceSeries{}, err
	}
	if err := series.Validate(); err != nil {
		return models.PriceSeries{}, fmt.Errorf("%v: %w", err, models.ErrDataSourceUnavailable)
	}

	s.cache.Set(key, series, cache.DefaultExpiration)
	return series, nil
}

// TradingDays derives the trading calendar from the reference index.
func (s *EastmoneySource) TradingDays(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	series, err := s.fetchKlines(ctx, calendarSecID, "000001", start, end)
	if err != nil {
		return nil, err
	}
	days := make([]time.Time, 0, series.Len())
	for _, bar := range series.Bars {
		days = append(days, bar.Date)
	}
	return days, nil
}

// ListUniverse pages through the full A-share listing.
func (s *EastmoneySource) ListUniverse(ctx context.Context, asOf time.Time) ([]models.StockMeta, error) {
	var all []models.StockMeta
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s%s?pn=%d&pz=%d&fs=m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23&fields=%s",
			s.cfg.BaseURL, eastmoneyListPath, page, listPageSize, listFields)
		body, err := s.fetch(ctx, url)
		if err != nil {
			return nil, err
		}

		diff := gjson.GetBytes(body, "data.diff")
		if !diff.Exists() {
			break
		}
		count := 0
		diff.ForEach(func(_, item gjson.Result) bool {
			count++
			code := strings.TrimSpace(item.Get("f12").String())
			if code == "" {
				return true
			}
			name := strings.TrimSpace(item.Get("f14").String())
			all = append(all, models.StockMeta{
				Code:          code,
				Name:          name,
				MarketCap:     parseQuoteNumber(item.Get("f20")),
				Segment:       segmentForCode(code),
				DelistingRisk: delistingRisk(name),
			})
			return true
		})

		total := int(gjson.GetBytes(body, "data.total").Int())
		if count == 0 || count < listPageSize || len(all) >= total {
			break
		}
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("eastmoney returned an empty universe: %w", models.ErrDataSourceUnavailable)
	}
	return all, nil
}

func (s *EastmoneySource) fetchKlines(ctx context.Context, secid, code string, start, end time.Time) (models.PriceSeries, error) {
	url := fmt.Sprintf("%s%s?secid=%s&fields1=f1,f2,f3&fields2=%s&klt=101&fqt=1&beg=%s&end=%s",
		s.cfg.BaseURL, eastmoneyKlinePath, secid, klineFields,
		start.Format("20060102"), end.Format("20060102"))

	body, err := s.fetch(ctx, url)
	if err != nil {
		return models.PriceSeries{}, err
	}

	data := gjson.GetBytes(body, "data")
	if !data.Exists() || data.Type == gjson.Null {
		return models.PriceSeries{}, fmt.Errorf("no data for %s: %w", code, models.ErrUnknownSymbol)
	}
	klines := data.Get("klines")
	if !klines.IsArray() {
		return models.PriceSeries{}, fmt.Errorf("no klines for %s: %w", code, models.ErrUnknownSymbol)
	}

	series := models.PriceSeries{Code: code}
	for _, line := range klines.Array() {
		bar, ok := parseKlineRow(line.String())
		if !ok {
			continue
		}
		series.Bars = append(series.Bars, bar)
	}
	return series, nil
}

func (s *EastmoneySource) fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := s.client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, models.ErrDataSourceUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("http %d from %s: %w", resp.StatusCode, s.Name(), models.ErrDataSourceUnavailable)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %v: %w", err, models.ErrDataSourceUnavailable)
	}
	return body, nil
}

// parseKlineRow decodes one "date,open,close,high,low,volume" row.
// Prices are parsed as decimals before conversion so malformed fields
// are rejected instead of becoming zeros.
func parseKlineRow(row string) (models.Bar, bool) {
	parts := strings.Split(strings.TrimSpace(row), ",")
	if len(parts) < 6 {
		return models.Bar{}, false
	}
	date, err := time.Parse("2006-01-02", parts[0])
	if err != nil {
		return models.Bar{}, false
	}

	fields := make([]float64, 5)
	for i := 0; i < 5; i++ {
		d, err := decimal.NewFromString(parts[i+1])
		if err != nil {
			return models.Bar{}, false
		}
		fields[i] = d.InexactFloat64()
	}

	return models.Bar{
		Date:   date,
		Open:   fields[0],
		Close:  fields[1],
		High:   fields[2],
		Low:    fields[3],
		Volume: fields[4],
	}, true
}

func parseQuoteNumber(r gjson.Result) float64 {
	if r.Type == gjson.String {
		d, err := decimal.NewFromString(r.String())
		if err != nil {
			return 0
		}
		return d.InexactFloat64()
	}
	return r.Float()
}

// secID converts a bare stock code to the provider's market-prefixed
// form: Shanghai 1.600519, Shenzhen 0.000001.
func secID(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "0.000000"
	}
	if code[0] == '6' || code[0] == '5' || code[0] == '9' {
		return "1." + code
	}
	return "0." + code
}

func segmentForCode(code string) string {
	switch {
	case strings.HasPrefix(code, "68"):
		return "star"
	case strings.HasPrefix(code, "30"):
		return "chinext"
	case strings.HasPrefix(code, "6"):
		return "shanghai-main"
	default:
		return "shenzhen-main"
	}
}

// delistingRisk flags ST / *ST designations and delisting notices.
func delistingRisk(name string) bool {
	return strings.Contains(name, "ST") || strings.Contains(name, "退")
}
