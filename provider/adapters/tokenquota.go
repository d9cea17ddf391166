package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"ashare-chanlun/fetcherr"
	"ashare-chanlun/model"
	"ashare-chanlun/pacer"
	"ashare-chanlun/provider"
	"ashare-chanlun/symbol"
)

const tushareAPIURL = "http://api.tushare.pro"

// TokenQuota is the credential-gated adapter (spec §4.4: priority 2).
// It speaks Tushare Pro's JSON-over-HTTP interface directly (the same
// wire protocol the `tushare` Python client uses under the hood),
// enforcing the free tier's 80-calls-per-minute budget with a
// BudgetPacer. Grounded on
// original_source/data_provider/tushare_fetcher.py. An adapter with no
// token configured reports Configured() == false so the Manager
// disables it permanently rather than retrying every call.
type TokenQuota struct {
	token  string
	pacer  pacer.Pacer
	client *retryablehttp.Client
}

// NewTokenQuota builds the adapter. An empty token leaves the adapter
// registered but permanently disabled (Configured() == false).
func NewTokenQuota(token string, callsPerMinute int) *TokenQuota {
	if callsPerMinute <= 0 {
		callsPerMinute = 80
	}
	return &TokenQuota{
		token:  token,
		pacer:  pacer.NewBudgetPacer(callsPerMinute),
		client: provider.NewHTTPClient(defaultTimeout),
	}
}

func (t *TokenQuota) Name() string      { return "tokenquota" }
func (t *TokenQuota) Priority() float64 { return 2 }
func (t *TokenQuota) Configured() bool  { return t.token != "" }

type tushareRequest struct {
	APIName string                 `json:"api_name"`
	Token   string                 `json:"token"`
	Params  map[string]interface{} `json:"params"`
	Fields  string                 `json:"fields"`
}

type tushareResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Fields []string        `json:"fields"`
		Items  [][]interface{} `json:"items"`
	} `json:"data"`
}

func (t *TokenQuota) call(ctx context.Context, apiName string, params map[string]interface{}, fields string) (*tushareResponse, error) {
	if !t.Configured() {
		return nil, fetcherr.Wrap(fetcherr.NotConfigured, t.Name(), apiName, fmt.Errorf("tushare token not set"))
	}

	t.pacer.Wait()

	body, err := json.Marshal(tushareRequest{APIName: apiName, Token: t.token, Params: params, Fields: fields})
	if err != nil {
		return nil, fetcherr.Wrap(fetcherr.Parse, t.Name(), apiName, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, tushareAPIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fetcherr.Wrap(fetcherr.Transport, t.Name(), apiName, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fetcherr.Wrap(fetcherr.Classify(err), t.Name(), apiName, err)
	}
	defer resp.Body.Close()

	if kind := provider.ClassifyHTTPStatus(resp.StatusCode); kind != nil {
		return nil, fetcherr.Wrap(kind, t.Name(), apiName, fmt.Errorf("status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fetcherr.Wrap(fetcherr.Transport, t.Name(), apiName, err)
	}

	var out tushareResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fetcherr.Wrap(fetcherr.Parse, t.Name(), apiName, err)
	}
	if out.Code != 0 {
		if containsQuotaKeyword(out.Msg) {
			return nil, fetcherr.Wrap(fetcherr.RateLimit, t.Name(), apiName, fmt.Errorf("%s", out.Msg))
		}
		return nil, fetcherr.Wrap(fetcherr.Parse, t.Name(), apiName, fmt.Errorf("%s", out.Msg))
	}
	return &out, nil
}

func containsQuotaKeyword(msg string) bool {
	lower := strings.ToLower(msg)
	for _, kw := range []string{"quota", "limit", "权限", "配额"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// GetDailyData calls the `daily` API, converting Tushare's lots->shares
// (×100) and thousand-yuan->yuan (×1000) unit conventions.
func (t *TokenQuota) GetDailyData(ctx context.Context, code string, days int) ([]model.Bar, error) {
	tsCode, err := symbol.Normalize(code, symbol.TokenQuota)
	if err != nil {
		return nil, fetcherr.Wrap(fetcherr.Parse, t.Name(), "GetDailyData", err)
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days*2) // generous window; trading-day gaps aren't calendar days
	resp, err := t.call(ctx, "daily", map[string]interface{}{
		"ts_code":    tsCode,
		"start_date": start.Format("20060102"),
		"end_date":   end.Format("20060102"),
	}, "ts_code,trade_date,open,high,low,close,pre_close,change,pct_chg,vol,amount")
	if err != nil {
		return nil, err
	}

	idx := fieldIndex(resp.Data.Fields)
	bars := make([]model.Bar, 0, len(resp.Data.Items))
	for _, row := range resp.Data.Items {
		dateStr, _ := row[idx["trade_date"]].(string)
		day, err := time.Parse("20060102", dateStr)
		if err != nil {
			continue
		}
		bars = append(bars, model.Bar{
			Code:   code,
			Date:   day,
			Open:   numField(row, idx, "open"),
			High:   numField(row, idx, "high"),
			Low:    numField(row, idx, "low"),
			Close:  numField(row, idx, "close"),
			Volume: int64(numField(row, idx, "vol") * 100),
			Amount: numField(row, idx, "amount") * 1000,
			PctChg: numField(row, idx, "pct_chg"),
		})
	}
	// Tushare returns rows newest-first; the provider's invariant is
	// strictly increasing by date.
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	if len(bars) == 0 {
		return nil, fetcherr.Wrap(fetcherr.Empty, t.Name(), "GetDailyData", fmt.Errorf("no rows for %s", code))
	}
	return bars, nil
}

func (t *TokenQuota) GetRealtimeQuote(ctx context.Context, code string) (*model.Quote, error) {
	fd, err := t.dailyBasic(ctx, code)
	if err != nil {
		return nil, err
	}
	return &model.Quote{
		Code:          code,
		Price:         fd.close,
		PERatio:       fd.peRatio,
		PBRatio:       fd.pbRatio,
		TotalMV:       fd.totalMV,
		CirculationMV: fd.circMV,
		TurnoverRate:  fd.turnoverRate,
	}, nil
}

func (t *TokenQuota) GetFundamentalData(ctx context.Context, code string) (model.Fundamental, error) {
	fd, err := t.dailyBasic(ctx, code)
	if err != nil {
		return model.Fundamental{}, err
	}
	return model.Fundamental{Code: code, PERatio: fd.peRatio, PBRatio: fd.pbRatio, TotalMV: fd.totalMV, CircMV: fd.circMV}, nil
}

func (t *TokenQuota) GetEnhancedData(ctx context.Context, code string, days int) (model.EnhancedData, error) {
	bars, err := t.GetDailyData(ctx, code, days)
	if err != nil {
		return model.EnhancedData{}, err
	}
	quote, _ := t.GetRealtimeQuote(ctx, code)
	fd, _ := t.GetFundamentalData(ctx, code)
	return model.EnhancedData{Bars: bars, Quote: quote, Fundamental: fd}, nil
}

type dailyBasicRow struct {
	close        float64
	peRatio      float64
	pbRatio      float64
	totalMV      float64
	circMV       float64
	turnoverRate float64
}

// dailyBasic calls the `daily_basic` API, the fundamentals source the
// original uses for both its realtime-quote and fundamentals shortcuts,
// converting the wan-yuan (10k yuan) market-cap unit to yuan.
func (t *TokenQuota) dailyBasic(ctx context.Context, code string) (dailyBasicRow, error) {
	tsCode, err := symbol.Normalize(code, symbol.TokenQuota)
	if err != nil {
		return dailyBasicRow{}, fetcherr.Wrap(fetcherr.Parse, t.Name(), "dailyBasic", err)
	}

	resp, err := t.call(ctx, "daily_basic", map[string]interface{}{"ts_code": tsCode}, "ts_code,trade_date,close,turnover_rate,pe,pb,total_mv,circ_mv")
	if err != nil {
		return dailyBasicRow{}, err
	}
	if len(resp.Data.Items) == 0 {
		return dailyBasicRow{}, fetcherr.Wrap(fetcherr.Empty, t.Name(), "dailyBasic", fmt.Errorf("no rows for %s", code))
	}

	idx := fieldIndex(resp.Data.Fields)
	row := resp.Data.Items[0]
	return dailyBasicRow{
		close:        numField(row, idx, "close"),
		turnoverRate: numField(row, idx, "turnover_rate"),
		peRatio:      numField(row, idx, "pe"),
		pbRatio:      numField(row, idx, "pb"),
		totalMV:      numField(row, idx, "total_mv") * 10000,
		circMV:       numField(row, idx, "circ_mv") * 10000,
	}, nil
}

func fieldIndex(fields []string) map[string]int {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		idx[f] = i
	}
	return idx
}

func numField(row []interface{}, idx map[string]int, name string) float64 {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return 0
	}
	switch v := row[i].(type) {
	case float64:
		return v
	default:
		return 0
	}
}
