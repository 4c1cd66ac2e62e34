package market

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/tickerdesk/tickerdesk/internal/config"
	"github.com/tickerdesk/tickerdesk/internal/models"
)

// YahooClient talks to Yahoo-style finance chart/search/quote endpoints.
// Outbound calls share one rate limiter so a burst of dashboard traffic cannot
// get the upstream to start rejecting us.
type YahooClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	now     func() time.Time
}

// NewYahooClient creates a provider client from config
func NewYahooClient(cfg config.MarketConfig) *YahooClient {
	return &YahooClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		now:     time.Now,
	}
}

func (c *YahooClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build market request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "tickerdesk/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("market request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("market provider returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode market response: %w", err)
	}
	return nil
}

type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		Exchange  string `json:"exchange"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

// Search returns up to 10 equity matches for a query
func (c *YahooClient) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	var body searchResponse
	params := url.Values{"q": {query}, "quotesCount": {"25"}}
	if err := c.get(ctx, "/v1/finance/search", params, &body); err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, 10)
	for _, q := range body.Quotes {
		if q.QuoteType != "EQUITY" {
			continue
		}
		name := q.ShortName
		if name == "" {
			name = q.LongName
		}
		if name == "" {
			name = q.Symbol
		}
		results = append(results, models.SearchResult{
			Symbol:   q.Symbol,
			Name:     name,
			Exchange: q.Exchange,
			Type:     q.QuoteType,
		})
		if len(results) == 10 {
			break
		}
	}
	return results, nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				ExchangeName       string  `json:"exchangeName"`
				ShortName          string  `json:"shortName"`
				LongName           string  `json:"longName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Chart fetches candle history. Bars with missing OHLC values are dropped,
// matching the upstream's habit of returning null slots for halted days.
func (c *YahooClient) Chart(ctx context.Context, symbol, rng, interval string) (*models.Chart, error) {
	start := startForRange(rng, c.now())
	params := url.Values{
		"period1":  {strconv.FormatInt(start.Unix(), 10)},
		"period2":  {strconv.FormatInt(c.now().Unix(), 10)},
		"interval": {interval},
	}

	var body chartResponse
	if err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), params, &body); err != nil {
		return nil, err
	}
	if body.Chart.Error != nil {
		return nil, fmt.Errorf("market provider error: %s", body.Chart.Error.Description)
	}
	if len(body.Chart.Result) == 0 {
		return nil, fmt.Errorf("market provider returned no chart data for %s", symbol)
	}

	result := body.Chart.Result[0]
	meta := result.Meta

	candles := make([]models.Candle, 0, len(result.Timestamp))
	if len(result.Indicators.Quote) > 0 {
		q := result.Indicators.Quote[0]
		for i := range result.Timestamp {
			if i >= len(q.Open) || i >= len(q.High) || i >= len(q.Low) || i >= len(q.Close) {
				break
			}
			if q.Open[i] == nil || q.High[i] == nil || q.Low[i] == nil || q.Close[i] == nil {
				continue
			}
			var volume int64
			if i < len(q.Volume) && q.Volume[i] != nil {
				volume = *q.Volume[i]
			}
			candles = append(candles, models.Candle{
				Time:   time.Unix(result.Timestamp[i], 0).UTC().Format("2006-01-02"),
				Open:   round4(*q.Open[i]),
				High:   round4(*q.High[i]),
				Low:    round4(*q.Low[i]),
				Close:  round4(*q.Close[i]),
				Volume: volume,
			})
		}
	}

	currency := meta.Currency
	if currency == "" {
		currency = "USD"
	}
	name := meta.ShortName
	if name == "" {
		name = meta.LongName
	}
	if name == "" {
		name = symbol
	}
	previousClose := meta.PreviousClose
	if previousClose == 0 {
		previousClose = meta.ChartPreviousClose
	}

	return &models.Chart{
		Symbol:             symbol,
		Currency:           currency,
		Exchange:           meta.ExchangeName,
		Name:               name,
		RegularMarketPrice: meta.RegularMarketPrice,
		PreviousClose:      previousClose,
		Candles:            candles,
	}, nil
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string   `json:"symbol"`
			ShortName                  string   `json:"shortName"`
			LongName                   string   `json:"longName"`
			RegularMarketPrice         float64  `json:"regularMarketPrice"`
			RegularMarketChange        float64  `json:"regularMarketChange"`
			RegularMarketChangePercent float64  `json:"regularMarketChangePercent"`
			RegularMarketVolume        int64    `json:"regularMarketVolume"`
			MarketCap                  int64    `json:"marketCap"`
			TrailingPE                 *float64 `json:"trailingPE"`
			EPSTrailingTwelveMonths    *float64 `json:"epsTrailingTwelveMonths"`
			DividendYield              *float64 `json:"dividendYield"`
			FiftyTwoWeekHigh           float64  `json:"fiftyTwoWeekHigh"`
			FiftyTwoWeekLow            float64  `json:"fiftyTwoWeekLow"`
			AverageDailyVolume3Month   int64    `json:"averageDailyVolume3Month"`
			Currency                   string   `json:"currency"`
			FullExchangeName           string   `json:"fullExchangeName"`
			MarketState                string   `json:"marketState"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// Quote fetches a point-in-time snapshot for one symbol
func (c *YahooClient) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	var body quoteResponse
	params := url.Values{"symbols": {symbol}}
	if err := c.get(ctx, "/v7/finance/quote", params, &body); err != nil {
		return nil, err
	}
	if len(body.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("market provider returned no quote for %s", symbol)
	}

	r := body.QuoteResponse.Result[0]
	name := r.ShortName
	if name == "" {
		name = r.LongName
	}
	if name == "" {
		name = r.Symbol
	}

	return &models.Quote{
		Symbol:           r.Symbol,
		Name:             name,
		Price:            r.RegularMarketPrice,
		Change:           r.RegularMarketChange,
		ChangePercent:    r.RegularMarketChangePercent,
		Volume:           r.RegularMarketVolume,
		MarketCap:        r.MarketCap,
		PERatio:          r.TrailingPE,
		EPS:              r.EPSTrailingTwelveMonths,
		DividendYield:    r.DividendYield,
		FiftyTwoWeekHigh: r.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:  r.FiftyTwoWeekLow,
		AverageVolume:    r.AverageDailyVolume3Month,
		Currency:         r.Currency,
		Exchange:         r.FullExchangeName,
		MarketState:      r.MarketState,
	}, nil
}

// startForRange maps a chart range token to its window start. Unknown tokens
// fall back to six months.
func startForRange(rng string, now time.Time) time.Time {
	switch rng {
	case "1mo":
		return now.AddDate(0, -1, 0)
	case "3mo":
		return now.AddDate(0, -3, 0)
	case "6mo":
		return now.AddDate(0, -6, 0)
	case "1y":
		return now.AddDate(-1, 0, 0)
	case "2y":
		return now.AddDate(-2, 0, 0)
	case "5y":
		return now.AddDate(-5, 0, 0)
	default:
		return now.AddDate(0, -6, 0)
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
