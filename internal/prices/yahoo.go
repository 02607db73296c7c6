package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/networth-dev/networth/internal/model"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider implements Provider against the Yahoo Finance public API.
type YahooProvider struct {
	client  *http.Client
	baseURL string
}

// NewYahooProvider creates a Yahoo Finance provider. An empty proxyURL
// means a direct connection.
func NewYahooProvider(proxyURL string) *YahooProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooProvider{
		client:  &http.Client{Timeout: 30 * time.Second, Transport: transport},
		baseURL: defaultYahooBaseURL,
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

// yahooChart is the response structure of the v8 chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				ShortName          string  `json:"shortName"`
				LongName           string  `json:"longName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// toFloat tolerates Yahoo's null bars.
func toFloat(v interface{}) float64 {
	if n, ok := v.(float64); ok {
		return n
	}
	return 0
}

func (p *YahooProvider) fetchChart(ctx context.Context, symbol, query string) (*yahooChart, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", p.baseURL, url.PathEscape(symbol), query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no data for %s", symbol)
	}
	return &chart, nil
}

// Quote fetches the latest price for one symbol.
func (p *YahooProvider) Quote(ctx context.Context, symbol string) (model.Quote, error) {
	chart, err := p.fetchChart(ctx, symbol, "interval=1d&range=1d")
	if err != nil {
		return model.Quote{}, err
	}

	r := chart.Chart.Result[0]
	price := r.Meta.RegularMarketPrice

	// Fall back to the last non-zero close if the meta price is missing.
	if price <= 0 && len(r.Indicators.Quote) > 0 {
		closes := r.Indicators.Quote[0].Close
		for i := len(closes) - 1; i >= 0; i-- {
			if c := toFloat(closes[i]); c > 0 {
				price = c
				break
			}
		}
	}
	if price <= 0 {
		return model.Quote{}, fmt.Errorf("yahoo: no price for %s", symbol)
	}

	name := r.Meta.ShortName
	if name == "" {
		name = r.Meta.LongName
	}

	var change float64
	if prev := r.Meta.ChartPreviousClose; prev > 0 {
		change = (price - prev) / prev * 100
	}

	return model.Quote{
		Symbol:        symbol,
		Price:         decimal.NewFromFloat(price),
		Currency:      r.Meta.Currency,
		Name:          name,
		ChangePercent: change,
		UpdatedAt:     time.Now().UTC(),
	}, nil
}

// History fetches close-price bars from start to now at the given interval.
func (p *YahooProvider) History(ctx context.Context, symbol string, start time.Time, interval string) ([]model.PricePoint, error) {
	query := fmt.Sprintf("interval=%s&period1=%d&period2=%d",
		url.QueryEscape(interval), start.Unix(), time.Now().Unix())
	chart, err := p.fetchChart(ctx, symbol, query)
	if err != nil {
		return nil, err
	}

	r := chart.Chart.Result[0]
	if len(r.Timestamp) == 0 || len(r.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no history for %s", symbol)
	}

	quote := r.Indicators.Quote[0]
	points := make([]model.PricePoint, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		o, h, l, c := toFloat(quote.Open[i]), toFloat(quote.High[i]), toFloat(quote.Low[i]), toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // null bars (holidays etc.)
		}
		points = append(points, model.PricePoint{
			Date:   model.Day(time.Unix(ts, 0).UTC()),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: int64(toFloat(quote.Volume[i])),
		})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

// yahooSearch is the response structure of the v1 search API.
type yahooSearch struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		Exchange  string `json:"exchange"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

// Search queries Yahoo symbol search.
func (p *YahooProvider) Search(ctx context.Context, query string) ([]model.SymbolMatch, error) {
	u := fmt.Sprintf("%s/v1/finance/search?q=%s&quotesCount=10&newsCount=0", p.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo search: status %d", resp.StatusCode)
	}

	var raw yahooSearch
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("yahoo search decode: %w", err)
	}

	matches := make([]model.SymbolMatch, 0, len(raw.Quotes))
	for _, q := range raw.Quotes {
		name := q.ShortName
		if name == "" {
			name = q.LongName
		}
		matches = append(matches, model.SymbolMatch{
			Symbol:   q.Symbol,
			Name:     name,
			Exchange: q.Exchange,
			Type:     q.QuoteType,
		})
	}
	return matches, nil
}
