package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/valyala/fastjson"

	"ashare-chanlun/fetcherr"
	"ashare-chanlun/model"
	"ashare-chanlun/pacer"
	"ashare-chanlun/provider"
	"ashare-chanlun/symbol"
)

// sinaBatchSize is the maximum number of symbols batched into one
// hq.sinajs.cn request, per spec §4.4's "group requests... one HTTP
// call per 800 symbols" note.
const sinaBatchSize = 800

// Sina is the ultra-fast snapshot adapter (spec §4.4: priority 0.1). It
// bulk fans realtime quotes and also exposes a JSON K-line historical
// endpoint, grounded on original_source/data_provider/sina_fetcher.py.
type Sina struct {
	pacer  pacer.Pacer
	client *retryablehttp.Client
}

// NewSina builds the ultra-fast adapter with the original's default
// 0.05s/0.2s jitter window when sleepMin/sleepMax are both zero.
func NewSina(sleepMin, sleepMax float64) *Sina {
	if sleepMin == 0 && sleepMax == 0 {
		sleepMin, sleepMax = 0.05, 0.2
	}
	return &Sina{
		pacer:  pacer.NewIntervalPacer(secondsToDuration(sleepMin), secondsToDuration(sleepMax)),
		client: provider.NewHTTPClient(defaultTimeout),
	}
}

func (s *Sina) Name() string      { return "sina" }
func (s *Sina) Priority() float64 { return 0.1 }

func (s *Sina) GetDailyData(ctx context.Context, code string, days int) ([]model.Bar, error) {
	s.pacer.Wait()

	sinaCode, err := symbol.Normalize(code, symbol.UltraFast)
	if err != nil {
		return nil, fetcherr.Wrap(fetcherr.Parse, s.Name(), "GetDailyData", err)
	}

	url := fmt.Sprintf(
		"http://money.finance.sina.com.cn/quotes_service/api/json_v2.php/CN_MarketData.getKLineData?symbol=%s&scale=240&ma=no&datalen=%d",
		sinaCode, days,
	)
	body, err := s.doGet(ctx, url, "")
	if err != nil {
		return nil, err
	}

	return parseSinaKLine(code, body)
}

func (s *Sina) GetRealtimeQuote(ctx context.Context, code string) (*model.Quote, error) {
	quotes, err := s.GetBatchRealtimeQuotes(ctx, []string{code})
	if err != nil {
		return nil, err
	}
	q := quotes[code]
	if q == nil {
		return nil, fetcherr.Wrap(fetcherr.Empty, s.Name(), "GetRealtimeQuote", fmt.Errorf("no quote for %s", code))
	}
	return q, nil
}

// GetBatchRealtimeQuotes fans the given codes into requests of at most
// sinaBatchSize symbols (spec §4B supplement).
func (s *Sina) GetBatchRealtimeQuotes(ctx context.Context, codes []string) (map[string]*model.Quote, error) {
	out := make(map[string]*model.Quote, len(codes))

	for start := 0; start < len(codes); start += sinaBatchSize {
		end := start + sinaBatchSize
		if end > len(codes) {
			end = len(codes)
		}
		chunk := codes[start:end]

		s.pacer.Wait()

		sinaCodes := make([]string, len(chunk))
		originalByWire := make(map[string]string, len(chunk))
		for i, c := range chunk {
			wire, err := symbol.Normalize(c, symbol.UltraFast)
			if err != nil {
				continue
			}
			sinaCodes[i] = wire
			originalByWire[wire] = c
		}

		url := "http://hq.sinajs.cn/list=" + strings.Join(sinaCodes, ",")
		body, err := s.doGet(ctx, url, "https://finance.sina.com.cn/")
		if err != nil {
			return nil, err
		}

		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			wireCode, q, err := parseSinaLine(line)
			if err != nil {
				continue
			}
			if orig, ok := originalByWire[wireCode]; ok {
				out[orig] = q
			}
		}
	}

	return out, nil
}

func (s *Sina) GetFundamentalData(ctx context.Context, code string) (model.Fundamental, error) {
	return model.Fundamental{Code: code}, nil
}

func (s *Sina) GetEnhancedData(ctx context.Context, code string, days int) (model.EnhancedData, error) {
	bars, err := s.GetDailyData(ctx, code, days)
	if err != nil {
		return model.EnhancedData{}, err
	}
	quote, _ := s.GetRealtimeQuote(ctx, code)
	return model.EnhancedData{Bars: bars, Quote: quote}, nil
}

func (s *Sina) doGet(ctx context.Context, url, referer string) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fetcherr.Wrap(fetcherr.Transport, s.Name(), "doGet", err)
	}
	setBrowserHeaders(req.Request)
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fetcherr.Wrap(fetcherr.Classify(err), s.Name(), "doGet", err)
	}
	defer resp.Body.Close()

	if kind := provider.ClassifyHTTPStatus(resp.StatusCode); kind != nil {
		return "", fetcherr.Wrap(kind, s.Name(), "doGet", fmt.Errorf("status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fetcherr.Wrap(fetcherr.Transport, s.Name(), "doGet", err)
	}
	return string(data), nil
}

// parseSinaLine parses one `var hq_str_<code>="name,open,pre_close,...";`
// line, returning the wire-form code it was keyed under.
func parseSinaLine(line string) (string, *model.Quote, error) {
	const prefix = "var hq_str_"
	if !strings.HasPrefix(line, prefix) {
		return "", nil, fetcherr.Wrap(fetcherr.Parse, "sina", "parseSinaLine", fmt.Errorf("unexpected line shape"))
	}
	eq := strings.Index(line, "=")
	if eq < 0 {
		return "", nil, fetcherr.Wrap(fetcherr.Parse, "sina", "parseSinaLine", fmt.Errorf("missing ="))
	}
	wireCode := strings.TrimSpace(line[len(prefix):eq])

	start := strings.Index(line, `"`)
	end := strings.LastIndex(line, `"`)
	if start < 0 || end <= start {
		return wireCode, nil, fetcherr.Wrap(fetcherr.Empty, "sina", "parseSinaLine", fmt.Errorf("empty payload"))
	}
	fields := strings.Split(line[start+1:end], ",")
	if len(fields) < 10 {
		return wireCode, nil, fetcherr.Wrap(fetcherr.Parse, "sina", "parseSinaLine", fmt.Errorf("only %d fields", len(fields)))
	}

	bareCode, _ := symbol.Denormalize(wireCode, symbol.UltraFast)
	q := &model.Quote{
		Code:      bareCode,
		Name:      field(fields, 0),
		OpenPrice: safeFloat(field(fields, 1)),
		PreClose:  safeFloat(field(fields, 2)),
		Price:     safeFloat(field(fields, 3)),
		High:      safeFloat(field(fields, 4)),
		Low:       safeFloat(field(fields, 5)),
		Volume:    safeInt(field(fields, 8)),
		Amount:    safeFloat(field(fields, 9)),
	}
	if q.PreClose > 0 {
		q.ChangeAmount = q.Price - q.PreClose
		q.ChangePct = q.ChangeAmount / q.PreClose * 100
	}
	return wireCode, q, nil
}

// parseSinaKLine parses the JSON array returned by the ultra-fast
// historical K-line endpoint using fastjson.
func parseSinaKLine(code, body string) ([]model.Bar, error) {
	var p fastjson.Parser
	v, err := p.Parse(body)
	if err != nil {
		return nil, fetcherr.Wrap(fetcherr.Parse, "sina", "parseSinaKLine", err)
	}
	arr, err := v.Array()
	if err != nil {
		return nil, fetcherr.Wrap(fetcherr.Parse, "sina", "parseSinaKLine", err)
	}
	if len(arr) == 0 {
		return nil, fetcherr.Wrap(fetcherr.Empty, "sina", "parseSinaKLine", fmt.Errorf("empty kline array"))
	}

	bars := make([]model.Bar, 0, len(arr))
	var prevClose float64
	for i, item := range arr {
		dayStr := string(item.GetStringBytes("day"))
		day, err := time.Parse("2006-01-02", dayStr)
		if err != nil {
			continue
		}
		open := jsonFloat(item, "open")
		high := jsonFloat(item, "high")
		low := jsonFloat(item, "low")
		close_ := jsonFloat(item, "close")
		volume := int64(jsonFloat(item, "volume"))

		var pct float64
		if i > 0 && prevClose > 0 {
			pct = (close_ - prevClose) / prevClose * 100
		}
		prevClose = close_

		bars = append(bars, model.Bar{
			Code:   code,
			Date:   day,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close_,
			Volume: volume,
			Amount: 0, // Sina's K-line endpoint carries no turnover figure
			PctChg: pct,
		})
	}
	return bars, nil
}

func jsonFloat(v *fastjson.Value, key string) float64 {
	s := string(v.GetStringBytes(key))
	if s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err == nil {
			return f
		}
	}
	return v.GetFloat64(key)
}
