package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/valyala/fastjson"

	"ashare-chanlun/fetcherr"
	"ashare-chanlun/model"
	"ashare-chanlun/pacer"
	"ashare-chanlun/provider"
	"ashare-chanlun/symbol"
)

// International is the Yahoo-style fallback adapter (spec §4.4: priority
// 4, lowest). It uses the `.SS`/`.SZ` suffix convention and Yahoo's
// public chart JSON endpoint, the same surface the Python original's
// `yfinance` client wraps. Two fields Yahoo doesn't carry in the shape
// the rest of the pipeline expects:
//   - pct_chg is absent and computed from consecutive closes.
//   - amount is absent and approximated as volume * close.
//
// Grounded on original_source/data_provider/yfinance_fetcher.py.
type International struct {
	pacer  pacer.Pacer
	client *retryablehttp.Client
}

func NewInternational(sleepMin, sleepMax float64) *International {
	if sleepMin == 0 && sleepMax == 0 {
		sleepMin, sleepMax = 0.2, 0.5
	}
	return &International{
		pacer:  pacer.NewIntervalPacer(secondsToDuration(sleepMin), secondsToDuration(sleepMax)),
		client: provider.NewHTTPClient(defaultTimeout),
	}
}

func (y *International) Name() string      { return "international" }
func (y *International) Priority() float64 { return 4 }

func (y *International) GetDailyData(ctx context.Context, code string, days int) ([]model.Bar, error) {
	y.pacer.Wait()

	yCode, err := symbol.Normalize(code, symbol.International)
	if err != nil {
		return nil, fetcherr.Wrap(fetcherr.Parse, y.Name(), "GetDailyData", err)
	}

	// range is generous because trading-day gaps (weekends, holidays)
	// aren't calendar days; Yahoo trims to what it actually has.
	rng := "3mo"
	switch {
	case days > 250:
		rng = "2y"
	case days > 60:
		rng = "1y"
	}
	url := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s?range=%s&interval=1d", yCode, rng)

	body, err := y.doGet(ctx, url)
	if err != nil {
		return nil, err
	}
	return parseYahooChart(code, body)
}

func (y *International) GetRealtimeQuote(ctx context.Context, code string) (*model.Quote, error) {
	bars, err := y.GetDailyData(ctx, code, 2)
	if err != nil {
		return nil, err
	}
	last := bars[len(bars)-1]
	q := &model.Quote{
		Code:      code,
		Price:     last.Close,
		High:      last.High,
		Low:       last.Low,
		OpenPrice: last.Open,
		Volume:    last.Volume,
		Amount:    last.Amount,
		ChangePct: last.PctChg,
	}
	if len(bars) >= 2 {
		q.PreClose = bars[len(bars)-2].Close
		q.ChangeAmount = last.Close - q.PreClose
	}
	return q, nil
}

// GetFundamentalData is best-effort: Yahoo's chart endpoint carries none
// of these fields, so every field is zero-as-unknown (spec §3).
func (y *International) GetFundamentalData(ctx context.Context, code string) (model.Fundamental, error) {
	return model.Fundamental{Code: code}, nil
}

func (y *International) GetEnhancedData(ctx context.Context, code string, days int) (model.EnhancedData, error) {
	bars, err := y.GetDailyData(ctx, code, days)
	if err != nil {
		return model.EnhancedData{}, err
	}
	quote, _ := y.GetRealtimeQuote(ctx, code)
	fd, _ := y.GetFundamentalData(ctx, code)
	return model.EnhancedData{Bars: bars, Quote: quote, Fundamental: fd}, nil
}

func (y *International) doGet(ctx context.Context, url string) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fetcherr.Wrap(fetcherr.Transport, y.Name(), "doGet", err)
	}
	setBrowserHeaders(req.Request)

	resp, err := y.client.Do(req)
	if err != nil {
		return "", fetcherr.Wrap(fetcherr.Classify(err), y.Name(), "doGet", err)
	}
	defer resp.Body.Close()

	if kind := provider.ClassifyHTTPStatus(resp.StatusCode); kind != nil {
		return "", fetcherr.Wrap(kind, y.Name(), "doGet", fmt.Errorf("status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fetcherr.Wrap(fetcherr.Transport, y.Name(), "doGet", err)
	}
	return string(data), nil
}

// parseYahooChart parses `{"chart":{"result":[{"timestamp":[...],
// "indicators":{"quote":[{"open":[...],"high":[...],"low":[...],
// "close":[...],"volume":[...]}]}}]}}`, filling pct_chg and amount per
// the International adapter's approximation rules.
func parseYahooChart(code, body string) ([]model.Bar, error) {
	var p fastjson.Parser
	v, err := p.Parse(body)
	if err != nil {
		return nil, fetcherr.Wrap(fetcherr.Parse, "international", "parseYahooChart", err)
	}

	chart := v.Get("chart")
	if chart == nil {
		return nil, fetcherr.Wrap(fetcherr.Empty, "international", "parseYahooChart", fmt.Errorf("no chart field"))
	}
	results, err := chart.Get("result").Array()
	if err != nil || len(results) == 0 {
		return nil, fetcherr.Wrap(fetcherr.Empty, "international", "parseYahooChart", fmt.Errorf("no chart result"))
	}
	result := results[0]

	timestamps, err := result.Get("timestamp").Array()
	if err != nil || len(timestamps) == 0 {
		return nil, fetcherr.Wrap(fetcherr.Empty, "international", "parseYahooChart", fmt.Errorf("no timestamps"))
	}

	indicators := result.Get("indicators")
	if indicators == nil {
		return nil, fetcherr.Wrap(fetcherr.Parse, "international", "parseYahooChart", fmt.Errorf("no indicators field"))
	}
	quotes, err := indicators.Get("quote").Array()
	if err != nil || len(quotes) == 0 {
		return nil, fetcherr.Wrap(fetcherr.Parse, "international", "parseYahooChart", fmt.Errorf("no quote indicators"))
	}
	q := quotes[0]

	opens, _ := q.Get("open").Array()
	highs, _ := q.Get("high").Array()
	lows, _ := q.Get("low").Array()
	closes, _ := q.Get("close").Array()
	volumes, _ := q.Get("volume").Array()

	bars := make([]model.Bar, 0, len(timestamps))
	var prevClose float64
	for i := range timestamps {
		ts, err := timestamps[i].Int64()
		if err != nil {
			continue
		}
		close := arrFloat(closes, i)
		if close == 0 {
			continue // Yahoo emits a null row for non-trading minutes in the window
		}
		bar := model.Bar{
			Code:   code,
			Date:   time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Open:   arrFloat(opens, i),
			High:   arrFloat(highs, i),
			Low:    arrFloat(lows, i),
			Close:  close,
			Volume: arrInt(volumes, i),
			Amount: arrFloat(volumes, i) * close, // approximated, spec §4.4
		}
		if prevClose > 0 {
			bar.PctChg = (close - prevClose) / prevClose * 100
		}
		prevClose = close
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, fetcherr.Wrap(fetcherr.Empty, "international", "parseYahooChart", fmt.Errorf("no usable rows"))
	}
	return bars, nil
}

func arrFloat(arr []*fastjson.Value, i int) float64 {
	if i < 0 || i >= len(arr) || arr[i] == nil {
		return 0
	}
	f, err := arr[i].Float64()
	if err != nil {
		return 0
	}
	return f
}

func arrInt(arr []*fastjson.Value, i int) int64 {
	return int64(arrFloat(arr, i))
}
