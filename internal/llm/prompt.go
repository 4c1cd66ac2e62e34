package llm

import (
	"fmt"
	"strings"

	"github.com/tickerdesk/tickerdesk/internal/models"
)

// promptCandleWindow bounds how much history goes into the prompt
const promptCandleWindow = 60

// BuildAnalysisPrompt renders the analysis prompt from the most recent candles
// and an optional quote snapshot.
func BuildAnalysisPrompt(symbol string, candles []models.Candle, quote *models.Quote) string {
	recent := candles
	if len(recent) > promptCandleWindow {
		recent = recent[len(recent)-promptCandleWindow:]
	}

	var prices strings.Builder
	for i, c := range recent {
		if i > 0 {
			prices.WriteByte('\n')
		}
		fmt.Fprintf(&prices, "%s: O=%g H=%g L=%g C=%g V=%d", c.Time, c.Open, c.High, c.Low, c.Close, c.Volume)
	}

	quoteInfo := ""
	if quote != nil {
		quoteInfo = fmt.Sprintf(`
Current Price: %g %s
Change: %g (%.2f%%)
Volume: %d
Market Cap: %d
P/E Ratio: %s
EPS: %s
Dividend Yield: %s
52-Week High: %g
52-Week Low: %g
Market State: %s
`,
			quote.Price, quote.Currency,
			quote.Change, quote.ChangePercent,
			quote.Volume,
			quote.MarketCap,
			formatOptional(quote.PERatio),
			formatOptional(quote.EPS),
			formatYield(quote.DividendYield),
			quote.FiftyTwoWeekHigh,
			quote.FiftyTwoWeekLow,
			quote.MarketState,
		)
	}

	return fmt.Sprintf(`You are an expert stock market technical analyst. Analyze the following stock data for %s and provide a comprehensive analysis.

%s

Recent OHLCV Data (last %d trading days):
%s

Provide your analysis in the following JSON format exactly:
{
  "trend": "bullish" or "bearish" or "neutral",
  "confidence": <number 0-100>,
  "patternAnalysis": "<detailed description of chart patterns detected, e.g., ascending triangle, head and shoulders, double bottom, etc.>",
  "indicators": {
    "rsi": { "value": <number>, "signal": "<Overbought/Oversold/Neutral>" },
    "macd": { "value": "<string like +0.45 or -0.12>", "signal": "<Strong/Weak/Neutral>" },
    "trend": { "value": "<Upward/Downward/Sideways>", "signal": "<Direction>" },
    "support": <number - key support level>,
    "resistance": <number - key resistance level>,
    "ma20": <number - 20-day moving average>,
    "ma50": <number - 50-day moving average>
  },
  "sentiment": "<1-2 sentence market sentiment summary>",
  "companyProfile": {
    "business": "<brief description of what the company does>",
    "strengths": ["<strength 1>", "<strength 2>", "<strength 3>"],
    "risks": ["<risk 1>", "<risk 2>"]
  },
  "recommendation": "<brief actionable recommendation for investors>"
}

Be accurate with your technical calculations. Base RSI, MACD, and moving averages on the actual price data provided. Return ONLY valid JSON, no markdown.`,
		symbol, quoteInfo, len(recent), prices.String())
}

func formatOptional(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%g", *v)
}

func formatYield(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", *v*100)
}
