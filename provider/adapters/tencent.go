package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"ashare-chanlun/fetcherr"
	"ashare-chanlun/model"
	"ashare-chanlun/pacer"
	"ashare-chanlun/provider"
	"ashare-chanlun/symbol"
)

// Tencent is the fast snapshot adapter (spec §4.4: priority 0). It
// scrapes qt.gtimg.cn's tilde-delimited quote line, grounded on
// original_source/data_provider/tencent_fetcher.py. It offers no
// historical K-line endpoint in the original, so GetDailyData always
// fails over (returns an Empty classification).
type Tencent struct {
	pacer  pacer.Pacer
	client *retryablehttp.Client
}

// NewTencent builds the fast snapshot adapter. sleepMin/sleepMax
// default to the original's 0.1s/0.5s anti-ban jitter window when zero.
func NewTencent(sleepMin, sleepMax float64) *Tencent {
	if sleepMin == 0 && sleepMax == 0 {
		sleepMin, sleepMax = 0.1, 0.5
	}
	return &Tencent{
		pacer:  pacer.NewIntervalPacer(secondsToDuration(sleepMin), secondsToDuration(sleepMax)),
		client: provider.NewHTTPClient(defaultTimeout),
	}
}

func (t *Tencent) Name() string      { return "tencent" }
func (t *Tencent) Priority() float64 { return 0 }

func (t *Tencent) GetDailyData(ctx context.Context, code string, days int) ([]model.Bar, error) {
	return nil, fetcherr.Wrap(fetcherr.Empty, t.Name(), "GetDailyData", fmt.Errorf("tencent adapter has no historical endpoint"))
}

func (t *Tencent) GetRealtimeQuote(ctx context.Context, code string) (*model.Quote, error) {
	t.pacer.Wait()

	tencentCode, err := symbol.Normalize(code, symbol.Fast)
	if err != nil {
		return nil, fetcherr.Wrap(fetcherr.Parse, t.Name(), "GetRealtimeQuote", err)
	}

	url := fmt.Sprintf("http://qt.gtimg.cn/q=%s", tencentCode)
	body, err := t.doGet(ctx, url)
	if err != nil {
		return nil, err
	}

	return parseTencentLine(code, body)
}

func (t *Tencent) GetFundamentalData(ctx context.Context, code string) (model.Fundamental, error) {
	q, err := t.GetRealtimeQuote(ctx, code)
	if err != nil {
		return model.Fundamental{}, err
	}
	return model.Fundamental{Code: code, PERatio: q.PERatio, TotalMV: q.TotalMV, CircMV: q.CirculationMV}, nil
}

func (t *Tencent) GetEnhancedData(ctx context.Context, code string, days int) (model.EnhancedData, error) {
	q, err := t.GetRealtimeQuote(ctx, code)
	if err != nil {
		return model.EnhancedData{}, err
	}
	fd, _ := t.GetFundamentalData(ctx, code)
	return model.EnhancedData{Quote: q, Fundamental: fd}, nil
}

func (t *Tencent) doGet(ctx context.Context, url string) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fetcherr.Wrap(fetcherr.Transport, t.Name(), "doGet", err)
	}
	setBrowserHeaders(req.Request)

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

// parseTencentLine parses a `v_<code>="f0~f1~...";` line using the
// positional field map from spec §6.
func parseTencentLine(code, raw string) (*model.Quote, error) {
	start := strings.Index(raw, `"`)
	end := strings.LastIndex(raw, `"`)
	if start < 0 || end <= start {
		return nil, fetcherr.Wrap(fetcherr.Parse, "tencent", "parseTencentLine", fmt.Errorf("missing quoted payload"))
	}
	parts := strings.Split(raw[start+1:end], "~")
	if len(parts) < 10 {
		return nil, fetcherr.Wrap(fetcherr.Parse, "tencent", "parseTencentLine", fmt.Errorf("only %d fields", len(parts)))
	}

	volumeLots := safeFloat(field(parts, 6))
	amountWan := safeFloat(field(parts, 21))

	return &model.Quote{
		Code:         code,
		Name:         field(parts, 1),
		Price:        safeFloat(field(parts, 3)),
		PreClose:     safeFloat(field(parts, 4)),
		OpenPrice:    safeFloat(field(parts, 5)),
		Volume:       int64(volumeLots * 100),
		High:         safeFloat(field(parts, 18)),
		Low:          safeFloat(field(parts, 19)),
		Amount:       amountWan * 10000,
		ChangeAmount: safeFloat(field(parts, 42)),
		ChangePct:    safeFloat(field(parts, 43)),
		TurnoverRate: safeFloat(field(parts, 49)),
		PERatio:      safeFloat(field(parts, 50)),
	}, nil
}
