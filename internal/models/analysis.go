package models

// Analysis is the structured technical analysis returned to the client. The
// JSON shape matches what the language model is asked to produce.
type Analysis struct {
	Trend           string             `json:"trend"`
	Confidence      float64            `json:"confidence"`
	PatternAnalysis string             `json:"patternAnalysis"`
	Indicators      AnalysisIndicators `json:"indicators"`
	Sentiment       string             `json:"sentiment"`
	CompanyProfile  CompanyProfile     `json:"companyProfile"`
	Recommendation  string             `json:"recommendation"`
}

// AnalysisIndicators holds the model's technical indicator readings
type AnalysisIndicators struct {
	RSI        RSIReading   `json:"rsi"`
	MACD       MACDReading  `json:"macd"`
	Trend      TrendReading `json:"trend"`
	Support    float64      `json:"support"`
	Resistance float64      `json:"resistance"`
	MA20       float64      `json:"ma20"`
	MA50       float64      `json:"ma50"`
}

type RSIReading struct {
	Value  float64 `json:"value"`
	Signal string  `json:"signal"`
}

// MACDReading keeps the value as a signed string ("+0.45", "-0.12")
type MACDReading struct {
	Value  string `json:"value"`
	Signal string `json:"signal"`
}

type TrendReading struct {
	Value  string `json:"value"`
	Signal string `json:"signal"`
}

// CompanyProfile is the model's qualitative view of the business
type CompanyProfile struct {
	Business  string   `json:"business"`
	Strengths []string `json:"strengths"`
	Risks     []string `json:"risks"`
}

// FallbackAnalysis is the neutral result returned when the model's output
// cannot be parsed as JSON.
func FallbackAnalysis() *Analysis {
	return &Analysis{
		Trend:           "neutral",
		Confidence:      50,
		PatternAnalysis: "Unable to parse analysis. Please try again.",
		Indicators: AnalysisIndicators{
			RSI:   RSIReading{Value: 50, Signal: "Neutral"},
			MACD:  MACDReading{Value: "0.00", Signal: "Neutral"},
			Trend: TrendReading{Value: "Sideways", Signal: "Direction"},
		},
		Sentiment: "Analysis unavailable.",
		CompanyProfile: CompanyProfile{
			Business:  "Information unavailable.",
			Strengths: []string{},
			Risks:     []string{},
		},
		Recommendation: "Please try again.",
	}
}
