package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/valyala/fastjson"

	"ashare-chanlun/fetcherr"
	"ashare-chanlun/model"
	"ashare-chanlun/pacer"
	"ashare-chanlun/provider"
	"ashare-chanlun/symbol"
)

// General is the general-purpose adapter (spec §4.4: priority 1). The
// Python original reaches this tier through the `akshare`/`efinance`
// libraries, which in turn proxy East Money's push2 JSON endpoints; no
// Go client for those libraries exists in the pack, so General talks to
// push2 directly and parses the response with fastjson (spec §2A
// domain-stack wiring; see DESIGN.md for why this is grounded rather
// than invented).
type General struct {
	pacer  pacer.Pacer
	client *retryablehttp.Client
}

func NewGeneral(sleepMin, sleepMax float64) *General {
	if sleepMin == 0 && sleepMax == 0 {
		sleepMin, sleepMax = 0.1, 0.3
	}
	return &General{
		pacer:  pacer.NewIntervalPacer(secondsToDuration(sleepMin), secondsToDuration(sleepMax)),
		client: provider.NewHTTPClient(defaultTimeout),
	}
}

func (g *General) Name() string      { return "general" }
func (g *General) Priority() float64 { return 1 }

func (g *General) GetDailyData(ctx context.Context, code string, days int) ([]model.Bar, error) {
	g.pacer.Wait()

	secid, err := symbol.Normalize(code, symbol.General)
	if err != nil {
		return nil, fetcherr.Wrap(fetcherr.Parse, g.Name(), "GetDailyData", err)
	}

	url := fmt.Sprintf(
		"http://push2his.eastmoney.com/api/qt/stock/kline/get?secid=%s&klt=101&fqt=1&lmt=%d&fields1=f1,f2,f3,f4,f5&fields2=f51,f52,f53,f54,f55,f56,f57,f58",
		secid, days,
	)
	body, err := g.doGet(ctx, url)
	if err != nil {
		return nil, err
	}
	return parseEastmoneyKLine(code, body)
}

func (g *General) GetRealtimeQuote(ctx context.Context, code string) (*model.Quote, error) {
	g.pacer.Wait()

	secid, err := symbol.Normalize(code, symbol.General)
	if err != nil {
		return nil, fetcherr.Wrap(fetcherr.Parse, g.Name(), "GetRealtimeQuote", err)
	}

	url := fmt.Sprintf(
		"http://push2.eastmoney.com/api/qt/stock/get?secid=%s&fields=f43,f44,f45,f46,f47,f48,f57,f60,f116,f117,f162,f167,f168,f169,f170",
		secid,
	)
	body, err := g.doGet(ctx, url)
	if err != nil {
		return nil, err
	}
	return parseEastmoneyQuote(code, body)
}

func (g *General) GetFundamentalData(ctx context.Context, code string) (model.Fundamental, error) {
	g.pacer.Wait()

	secid, err := symbol.Normalize(code, symbol.General)
	if err != nil {
		return model.Fundamental{}, fetcherr.Wrap(fetcherr.Parse, g.Name(), "GetFundamentalData", err)
	}

	url := fmt.Sprintf(
		"http://push2.eastmoney.com/api/qt/stock/get?secid=%s&fields=f9,f23,f116,f117,f162",
		secid,
	)
	body, err := g.doGet(ctx, url)
	if err != nil {
		return model.Fundamental{}, err
	}
	return parseEastmoneyFundamental(code, body)
}

func (g *General) GetEnhancedData(ctx context.Context, code string, days int) (model.EnhancedData, error) {
	bars, err := g.GetDailyData(ctx, code, days)
	if err != nil {
		return model.EnhancedData{}, err
	}
	quote, _ := g.GetRealtimeQuote(ctx, code)
	fundamental, _ := g.GetFundamentalData(ctx, code)
	return model.EnhancedData{Bars: bars, Quote: quote, Fundamental: fundamental}, nil
}

func (g *General) doGet(ctx context.Context, url string) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fetcherr.Wrap(fetcherr.Transport, g.Name(), "doGet", err)
	}
	setBrowserHeaders(req.Request)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fetcherr.Wrap(fetcherr.Classify(err), g.Name(), "doGet", err)
	}
	defer resp.Body.Close()

	if kind := provider.ClassifyHTTPStatus(resp.StatusCode); kind != nil {
		return "", fetcherr.Wrap(kind, g.Name(), "doGet", fmt.Errorf("status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fetcherr.Wrap(fetcherr.Transport, g.Name(), "doGet", err)
	}
	return string(data), nil
}

// parseEastmoneyKLine parses push2his's `{"data":{"klines":["date,open,close,high,low,vol,amt,pct_chg",...]}}`.
func parseEastmoneyKLine(code, body string) ([]model.Bar, error) {
	var p fastjson.Parser
	v, err := p.Parse(body)
	if err != nil {
		return nil, fetcherr.Wrap(fetcherr.Parse, "general", "parseEastmoneyKLine", err)
	}

	data := v.Get("data")
	if data == nil {
		return nil, fetcherr.Wrap(fetcherr.Empty, "general", "parseEastmoneyKLine", fmt.Errorf("no data field"))
	}
	klinesField := data.Get("klines")
	if klinesField == nil {
		return nil, fetcherr.Wrap(fetcherr.Empty, "general", "parseEastmoneyKLine", fmt.Errorf("no klines field"))
	}
	klines, err := klinesField.Array()
	if err != nil || len(klines) == 0 {
		return nil, fetcherr.Wrap(fetcherr.Empty, "general", "parseEastmoneyKLine", fmt.Errorf("no klines"))
	}

	bars := make([]model.Bar, 0, len(klines))
	for _, k := range klines {
		line := string(k.GetStringBytes())
		parts := splitComma(line)
		if len(parts) < 8 {
			continue
		}
		day, err := time.Parse("2006-01-02", field(parts, 0))
		if err != nil {
			continue
		}
		bars = append(bars, model.Bar{
			Code:   code,
			Date:   day,
			Open:   safeFloat(field(parts, 1)),
			Close:  safeFloat(field(parts, 2)),
			High:   safeFloat(field(parts, 3)),
			Low:    safeFloat(field(parts, 4)),
			Volume: safeInt(field(parts, 5)),
			Amount: safeFloat(field(parts, 6)),
			PctChg: safeFloat(field(parts, 7)),
		})
	}
	return bars, nil
}

func parseEastmoneyQuote(code, body string) (*model.Quote, error) {
	var p fastjson.Parser
	v, err := p.Parse(body)
	if err != nil {
		return nil, fetcherr.Wrap(fetcherr.Parse, "general", "parseEastmoneyQuote", err)
	}
	data := v.Get("data")
	if data == nil {
		return nil, fetcherr.Wrap(fetcherr.Empty, "general", "parseEastmoneyQuote", fmt.Errorf("no data field"))
	}

	// push2 encodes prices scaled by 100 (f43=price, f44=high, f45=low,
	// f46=open, f47=volume, f48=amount, f60=preclose, f57=name).
	return &model.Quote{
		Code:          code,
		Name:          string(data.GetStringBytes("f57")),
		Price:         emField(data, "f43") / 100,
		High:          emField(data, "f44") / 100,
		Low:           emField(data, "f45") / 100,
		OpenPrice:     emField(data, "f46") / 100,
		Volume:        int64(emField(data, "f47")),
		Amount:        emField(data, "f48"),
		PreClose:      emField(data, "f60") / 100,
		PERatio:       emField(data, "f162"),
		TotalMV:       emField(data, "f116"),
		CirculationMV: emField(data, "f117"),
	}, nil
}

func parseEastmoneyFundamental(code, body string) (model.Fundamental, error) {
	var p fastjson.Parser
	v, err := p.Parse(body)
	if err != nil {
		return model.Fundamental{}, fetcherr.Wrap(fetcherr.Parse, "general", "parseEastmoneyFundamental", err)
	}
	data := v.Get("data")
	if data == nil {
		return model.Fundamental{}, fetcherr.Wrap(fetcherr.Empty, "general", "parseEastmoneyFundamental", fmt.Errorf("no data field"))
	}
	return model.Fundamental{
		Code:    code,
		PERatio: emField(data, "f9"),
		PBRatio: emField(data, "f23"),
		TotalMV: emField(data, "f116"),
		CircMV:  emField(data, "f117"),
	}, nil
}

// emField reads a numeric push2 field that may arrive as either a JSON
// number or a string.
func emField(v *fastjson.Value, key string) float64 {
	f := v.Get(key)
	if f == nil {
		return 0
	}
	if n, err := f.Float64(); err == nil {
		return n
	}
	s := string(f.GetStringBytes())
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return n
}

func splitComma(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
