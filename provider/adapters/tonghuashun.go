package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"ashare-chanlun/fetcherr"
	"ashare-chanlun/model"
	"ashare-chanlun/pacer"
	"ashare-chanlun/provider"
	"ashare-chanlun/symbol"
)

var thsTitleRe = regexp.MustCompile(`<title>([^(]+)`)

// Tonghuashun is the secondary adapter (spec §4.4: priority 0.5), ranked
// alongside the fast adapter. It scrapes d.10jqka.com.cn's JSONP quote
// line and, separately, a stock's <title> tag for its display name.
// Grounded on original_source/data_provider/tonghuashun_fetcher.py. The
// upstream API is realtime-only; GetDailyData synthesizes a single bar
// from the current snapshot rather than a true history (same shortcut
// the original takes).
type Tonghuashun struct {
	pacer  pacer.Pacer
	client *retryablehttp.Client
}

// NewTonghuashun builds the secondary adapter. sleepMin/sleepMax default
// to the original's 0.2s/0.6s jitter window when zero.
func NewTonghuashun(sleepMin, sleepMax float64) *Tonghuashun {
	if sleepMin == 0 && sleepMax == 0 {
		sleepMin, sleepMax = 0.2, 0.6
	}
	return &Tonghuashun{
		pacer:  pacer.NewIntervalPacer(secondsToDuration(sleepMin), secondsToDuration(sleepMax)),
		client: provider.NewHTTPClient(defaultTimeout),
	}
}

func (t *Tonghuashun) Name() string      { return "tonghuashun" }
func (t *Tonghuashun) Priority() float64 { return 0.5 }

// GetDailyData returns the single synthesized bar the original's
// get_daily_data shortcut produces: no true multi-day history exists
// behind this API.
func (t *Tonghuashun) GetDailyData(ctx context.Context, code string, days int) ([]model.Bar, error) {
	q, err := t.GetRealtimeQuote(ctx, code)
	if err != nil {
		return nil, err
	}
	return []model.Bar{{
		Code:   code,
		Date:   time.Now(),
		Open:   q.OpenPrice,
		High:   q.High,
		Low:    q.Low,
		Close:  q.Price,
		Volume: q.Volume,
		Amount: q.Amount,
		PctChg: q.ChangePct,
	}}, nil
}

func (t *Tonghuashun) GetRealtimeQuote(ctx context.Context, code string) (*model.Quote, error) {
	t.pacer.Wait()

	thsCode, err := symbol.Normalize(code, symbol.Secondary)
	if err != nil {
		return nil, fetcherr.Wrap(fetcherr.Parse, t.Name(), "GetRealtimeQuote", err)
	}

	url := fmt.Sprintf("http://d.10jqka.com.cn/v6/line/%s/01/last.js", thsCode)
	body, err := t.doGet(ctx, url, "http://10jqka.com.cn/")
	if err != nil {
		return nil, err
	}

	q, err := parseThsJSONP(code, body)
	if err != nil {
		return nil, err
	}
	q.Name = t.fetchName(ctx, code)
	return q, nil
}

func (t *Tonghuashun) GetFundamentalData(ctx context.Context, code string) (model.Fundamental, error) {
	q, err := t.GetRealtimeQuote(ctx, code)
	if err != nil {
		return model.Fundamental{}, err
	}
	return model.Fundamental{Code: code, PERatio: q.PERatio, PBRatio: q.PBRatio}, nil
}

func (t *Tonghuashun) GetEnhancedData(ctx context.Context, code string, days int) (model.EnhancedData, error) {
	q, err := t.GetRealtimeQuote(ctx, code)
	if err != nil {
		return model.EnhancedData{}, err
	}
	bars, _ := t.GetDailyData(ctx, code, 1)
	return model.EnhancedData{Bars: bars, Quote: q}, nil
}

// fetchName performs a best-effort separate call against the basic-info
// page and regex-extracts the <title> tag; failures fall back to a
// generic "stock <code>" label, matching the original's behavior.
func (t *Tonghuashun) fetchName(ctx context.Context, code string) string {
	url := fmt.Sprintf("http://basic.10jqka.com.cn/%s/", code)
	body, err := t.doGet(ctx, url, "")
	if err != nil {
		return "stock " + code
	}
	m := thsTitleRe.FindStringSubmatch(body)
	if len(m) < 2 {
		return "stock " + code
	}
	return strings.TrimSpace(m[1])
}

func (t *Tonghuashun) doGet(ctx context.Context, url, referer string) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fetcherr.Wrap(fetcherr.Transport, t.Name(), "doGet", err)
	}
	setBrowserHeaders(req.Request)
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fetcherr.Wrap(fetcherr.Classify(err), t.Name(), "doGet", err)
	}
	defer resp.Body.Close()

	if kind := provider.ClassifyHTTPStatus(resp.StatusCode); kind != nil {
		return "", fetcherr.Wrap(kind, t.Name(), "doGet", fmt.Errorf("status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fetcherr.Wrap(fetcherr.Transport, t.Name(), "doGet", err)
	}
	return string(data), nil
}

var thsJSONPRe = regexp.MustCompile(`\(({.*})\)`)

// parseThsJSONP unwraps `quotebridge_v6_line_hs_600519_01_last({"data":"date,open,close,high,low,vol,amt,pct"})`.
func parseThsJSONP(code, body string) (*model.Quote, error) {
	body = strings.TrimSpace(body)
	if body == "" || strings.Contains(body, "null") || len(body) < 10 {
		return nil, fetcherr.Wrap(fetcherr.Empty, "tonghuashun", "parseThsJSONP", fmt.Errorf("empty or null payload"))
	}

	m := thsJSONPRe.FindStringSubmatch(body)
	if len(m) < 2 {
		return nil, fetcherr.Wrap(fetcherr.Parse, "tonghuashun", "parseThsJSONP", fmt.Errorf("unexpected JSONP shape"))
	}

	dataStr := extractJSONStringField(m[1], "data")
	if dataStr == "" {
		return nil, fetcherr.Wrap(fetcherr.Empty, "tonghuashun", "parseThsJSONP", fmt.Errorf("empty data field"))
	}

	fields := strings.Split(dataStr, ",")
	if len(fields) < 8 {
		return nil, fetcherr.Wrap(fetcherr.Parse, "tonghuashun", "parseThsJSONP", fmt.Errorf("only %d fields", len(fields)))
	}

	openPrice := safeFloat(field(fields, 1))
	price := safeFloat(field(fields, 2))
	high := safeFloat(field(fields, 3))
	if high == 0 {
		high = price
	}
	low := safeFloat(field(fields, 4))
	if low == 0 {
		low = price
	}
	volume := safeInt(field(fields, 5)) * 100
	amount := safeFloat(field(fields, 6)) * 10000
	changePct := safeFloat(field(fields, 7))

	preClose := price
	if changePct != 0 {
		preClose = price / (1 + changePct/100)
	}
	changeAmount := price - preClose
	var amplitude float64
	if preClose > 0 {
		amplitude = (high - low) / preClose * 100
	}

	return &model.Quote{
		Code:         code,
		Price:        price,
		ChangePct:    changePct,
		ChangeAmount: changeAmount,
		Volume:       volume,
		Amount:       amount,
		Amplitude:    amplitude,
		High:         high,
		Low:          low,
		OpenPrice:    openPrice,
		PreClose:     preClose,
	}, nil
}

// extractJSONStringField does a narrow, allocation-light extraction of
// one top-level string field from a small flat JSON object without
// pulling in a full decoder for a single field.
func extractJSONStringField(obj, key string) string {
	marker := `"` + key + `":"`
	idx := strings.Index(obj, marker)
	if idx < 0 {
		return ""
	}
	rest := obj[idx+len(marker):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return ""
	}
	return rest[:end]
}
