package models

// Candle is one OHLCV bar. Time is the bar's date in YYYY-MM-DD form.
type Candle struct {
	Time   string  `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Chart is a symbol's candle history plus the provider's chart metadata
type Chart struct {
	Symbol             string   `json:"symbol"`
	Currency           string   `json:"currency"`
	Exchange           string   `json:"exchange"`
	Name               string   `json:"name"`
	RegularMarketPrice float64  `json:"regularMarketPrice"`
	PreviousClose      float64  `json:"previousClose"`
	Candles            []Candle `json:"candles"`
}

// Quote is a point-in-time market snapshot for one symbol. Pointer fields are
// ratios the provider omits for some instruments.
type Quote struct {
	Symbol           string   `json:"symbol"`
	Name             string   `json:"name"`
	Price            float64  `json:"price"`
	Change           float64  `json:"change"`
	ChangePercent    float64  `json:"changePercent"`
	Volume           int64    `json:"volume"`
	MarketCap        int64    `json:"marketCap"`
	PERatio          *float64 `json:"peRatio,omitempty"`
	EPS              *float64 `json:"eps,omitempty"`
	DividendYield    *float64 `json:"dividendYield,omitempty"`
	FiftyTwoWeekHigh float64  `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow  float64  `json:"fiftyTwoWeekLow"`
	AverageVolume    int64    `json:"averageVolume"`
	Currency         string   `json:"currency"`
	Exchange         string   `json:"exchange"`
	MarketState      string   `json:"marketState"`
}

// SearchResult is one equity match for a ticker search
type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Type     string `json:"type"`
}
