package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"ashare-chanlun/fetcherr"
	"ashare-chanlun/model"
	"ashare-chanlun/pacer"
	"ashare-chanlun/provider"
	"ashare-chanlun/symbol"
)

const baostockGatewayURL = "http://www.baostock.com/api"

// Session is the login/logout-bracketed adapter (spec §4.4: priority
// 3). The original library (`baostock`) holds one implicit process-wide
// login for the life of the session but the fetcher re-logs-in and logs
// out around every single query to avoid leaking a stale connection;
// Session reproduces exactly that bracket using a scoped-acquire helper
// modeled on the teacher's auth.AuthClient token lifecycle (login,
// defer logout, run the query in between). Grounded on
// original_source/data_provider/baostock_fetcher.py. Free, unauthenticated,
// no quota, but every call pays a full login+logout round trip.
type Session struct {
	pacer  pacer.Pacer
	client *retryablehttp.Client
}

func NewSession() *Session {
	return &Session{
		pacer:  pacer.NewIntervalPacer(0, 0),
		client: provider.NewHTTPClient(defaultTimeout),
	}
}

func (s *Session) Name() string      { return "session" }
func (s *Session) Priority() float64 { return 3 }

type sessionEnvelope struct {
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
	SessionID string `json:"session_id"`
}

// login acquires a session handle; logout releases it. Every exported
// method brackets its work between the two via withSession.
func (s *Session) login(ctx context.Context) (string, error) {
	s.pacer.Wait()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, baostockGatewayURL+"/login", nil)
	if err != nil {
		return "", fetcherr.Wrap(fetcherr.Transport, s.Name(), "login", err)
	}
	setBrowserHeaders(req.Request)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fetcherr.Wrap(fetcherr.Classify(err), s.Name(), "login", err)
	}
	defer resp.Body.Close()

	if kind := provider.ClassifyHTTPStatus(resp.StatusCode); kind != nil {
		return "", fetcherr.Wrap(kind, s.Name(), "login", fmt.Errorf("status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fetcherr.Wrap(fetcherr.Transport, s.Name(), "login", err)
	}
	var env sessionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fetcherr.Wrap(fetcherr.Parse, s.Name(), "login", err)
	}
	if env.ErrorCode != "0" {
		return "", fetcherr.Wrap(fetcherr.Parse, s.Name(), "login", fmt.Errorf("%s", env.ErrorMsg))
	}
	return env.SessionID, nil
}

func (s *Session) logout(ctx context.Context, sessionID string) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, baostockGatewayURL+"/logout", bytes.NewReader([]byte(`{"session_id":"`+sessionID+`"}`)))
	if err != nil {
		return
	}
	setBrowserHeaders(req.Request)
	resp, err := s.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}

// withSession runs fn between a login and its matching logout, logging
// out even if fn returns an error. The logout request is detached from
// ctx's cancellation so it is still sent after the caller cancels.
func (s *Session) withSession(ctx context.Context, fn func(sessionID string) error) error {
	sessionID, err := s.login(ctx)
	if err != nil {
		return err
	}
	defer s.logout(context.WithoutCancel(ctx), sessionID)
	return fn(sessionID)
}

type historyRow struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open,string"`
	High   float64 `json:"high,string"`
	Low    float64 `json:"low,string"`
	Close  float64 `json:"close,string"`
	Volume float64 `json:"volume,string"`
	Amount float64 `json:"amount,string"`
	PctChg float64 `json:"pctChg,string"`
}

type historyResponse struct {
	sessionEnvelope
	Rows []historyRow `json:"rows"`
}

func (s *Session) queryHistory(ctx context.Context, code string, startDate, endDate time.Time) ([]model.Bar, error) {
	bsCode, err := symbol.Normalize(code, symbol.Session)
	if err != nil {
		return nil, fetcherr.Wrap(fetcherr.Parse, s.Name(), "queryHistory", err)
	}

	var bars []model.Bar
	err = s.withSession(ctx, func(sessionID string) error {
		payload, _ := json.Marshal(map[string]string{
			"session_id": sessionID,
			"code":       bsCode,
			"start_date": startDate.Format("2006-01-02"),
			"end_date":   endDate.Format("2006-01-02"),
			"frequency":  "d",
			"adjustflag": "2",
		})

		req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, baostockGatewayURL+"/query_history_k_data_plus", bytes.NewReader(payload))
		if err != nil {
			return fetcherr.Wrap(fetcherr.Transport, s.Name(), "queryHistory", err)
		}
		req.Header.Set("Content-Type", "application/json")
		setBrowserHeaders(req.Request)

		resp, err := s.client.Do(req)
		if err != nil {
			return fetcherr.Wrap(fetcherr.Classify(err), s.Name(), "queryHistory", err)
		}
		defer resp.Body.Close()

		if kind := provider.ClassifyHTTPStatus(resp.StatusCode); kind != nil {
			return fetcherr.Wrap(kind, s.Name(), "queryHistory", fmt.Errorf("status %d", resp.StatusCode))
		}

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fetcherr.Wrap(fetcherr.Transport, s.Name(), "queryHistory", err)
		}
		var out historyResponse
		if err := json.Unmarshal(raw, &out); err != nil {
			return fetcherr.Wrap(fetcherr.Parse, s.Name(), "queryHistory", err)
		}
		if out.ErrorCode != "0" {
			return fetcherr.Wrap(fetcherr.Parse, s.Name(), "queryHistory", fmt.Errorf("%s", out.ErrorMsg))
		}
		if len(out.Rows) == 0 {
			return fetcherr.Wrap(fetcherr.Empty, s.Name(), "queryHistory", fmt.Errorf("no rows for %s", code))
		}

		bars = make([]model.Bar, 0, len(out.Rows))
		for _, r := range out.Rows {
			day, err := time.Parse("2006-01-02", r.Date)
			if err != nil {
				continue
			}
			bars = append(bars, model.Bar{
				Code: code, Date: day,
				Open: r.Open, High: r.High, Low: r.Low, Close: r.Close,
				Volume: int64(r.Volume), Amount: r.Amount, PctChg: r.PctChg,
			})
		}
		return nil
	})

	return bars, err
}

func (s *Session) GetDailyData(ctx context.Context, code string, days int) ([]model.Bar, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days*2)
	return s.queryHistory(ctx, code, start, end)
}

// GetRealtimeQuote simulates realtime data from the most recent daily
// bar, matching the original (Baostock has no true realtime feed).
func (s *Session) GetRealtimeQuote(ctx context.Context, code string) (*model.Quote, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -3)
	bars, err := s.queryHistory(ctx, code, start, end)
	if err != nil {
		return nil, err
	}
	latest := bars[len(bars)-1]

	preClose := latest.Close
	if latest.PctChg != 0 {
		preClose = latest.Close / (1 + latest.PctChg/100)
	}
	var amplitude float64
	if preClose > 0 {
		amplitude = (latest.High - latest.Low) / preClose * 100
	}

	return &model.Quote{
		Code:         code,
		Price:        latest.Close,
		ChangePct:    latest.PctChg,
		ChangeAmount: latest.Close - preClose,
		Volume:       latest.Volume,
		Amount:       latest.Amount,
		Amplitude:    amplitude,
		High:         latest.High,
		Low:          latest.Low,
		OpenPrice:    latest.Open,
		PreClose:     preClose,
	}, nil
}

// GetFundamentalData returns an all-zero Fundamental: Baostock does not
// expose valuation metrics, matching the original's documented limit.
func (s *Session) GetFundamentalData(ctx context.Context, code string) (model.Fundamental, error) {
	return model.Fundamental{Code: code}, nil
}

func (s *Session) GetEnhancedData(ctx context.Context, code string, days int) (model.EnhancedData, error) {
	bars, err := s.GetDailyData(ctx, code, days)
	if err != nil {
		return model.EnhancedData{}, err
	}
	quote, _ := s.GetRealtimeQuote(ctx, code)
	return model.EnhancedData{Bars: bars, Quote: quote}, nil
}
