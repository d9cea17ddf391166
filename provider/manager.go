package provider

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"ashare-chanlun/fetcherr"
	"ashare-chanlun/model"
)

const (
	defaultQuoteTTL = 30 * time.Second
	defaultBarTTL   = 5 * time.Minute
	coolDown        = 2 * time.Minute
)

// Manager holds the set of registered adapters, sorted ascending by
// priority, and implements the failover algorithm of spec §4.5. Public
// operations mirror the Fetcher contract plus a source-attribution
// return value so callers know which adapter actually served the data.
type Manager struct {
	mu        sync.Mutex
	adapters  []Fetcher
	cooldowns map[string]time.Time
	disabled  map[string]bool

	cache    Cache
	quoteTTL time.Duration
	barTTL   time.Duration
}

// NewManager builds an empty Manager. Register adapters with Register.
// A nil cache disables the read-through cache entirely.
func NewManager(cache Cache) *Manager {
	return &Manager{
		cooldowns: make(map[string]time.Time),
		disabled:  make(map[string]bool),
		cache:     cache,
		quoteTTL:  defaultQuoteTTL,
		barTTL:    defaultBarTTL,
	}
}

// SetTTLs overrides the default cache TTLs.
func (m *Manager) SetTTLs(quoteTTL, barTTL time.Duration) {
	m.quoteTTL, m.barTTL = quoteTTL, barTTL
}

// Register adds an adapter. Adapters implementing Configured that
// report false are disabled permanently (spec §7 NotConfigured).
func (m *Manager) Register(f Fetcher) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := f.(Configured); ok && !c.Configured() {
		log.Printf("provider: %s not configured, disabling for this session", f.Name())
		m.disabled[f.Name()] = true
	}
	m.adapters = append(m.adapters, f)
	sort.SliceStable(m.adapters, func(i, j int) bool {
		return m.adapters[i].Priority() < m.adapters[j].Priority()
	})
}

// candidates returns the enabled, non-cooling-down adapters in
// priority order.
func (m *Manager) candidates() []Fetcher {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	out := make([]Fetcher, 0, len(m.adapters))
	for _, f := range m.adapters {
		if m.disabled[f.Name()] {
			continue
		}
		if until, cooling := m.cooldowns[f.Name()]; cooling && now.Before(until) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func (m *Manager) markCooldown(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cooldowns[name] = time.Now().Add(coolDown)
}

// GetDailyData runs the failover algorithm of spec §4.5 step by step.
func (m *Manager) GetDailyData(ctx context.Context, code string, days int) ([]model.Bar, string, error) {
	if m.cache != nil {
		if bars, source, ok := m.cache.GetBars(code, days); ok {
			return bars, source, nil
		}
	}

	for _, f := range m.candidates() {
		if err := ctx.Err(); err != nil {
			return nil, "", fetcherr.Wrap(fetcherr.Cancelled, f.Name(), "GetDailyData", err)
		}

		bars, err := f.GetDailyData(ctx, code, days)
		if err == nil && len(bars) > 0 {
			if m.cache != nil {
				m.cache.SetBars(code, days, bars, f.Name(), m.barTTL)
			}
			return bars, f.Name(), nil
		}
		m.handleFailure(f, err)
	}

	return nil, "", fetcherr.Wrap(fetcherr.AllSourcesExhausted, "", "GetDailyData", fmt.Errorf("code=%s days=%d", code, days))
}

// GetRealtimeQuote runs the same failover algorithm for a single quote.
func (m *Manager) GetRealtimeQuote(ctx context.Context, code string) (*model.Quote, string, error) {
	if m.cache != nil {
		if q, source, ok := m.cache.GetQuote(code); ok {
			return q, source, nil
		}
	}

	for _, f := range m.candidates() {
		if err := ctx.Err(); err != nil {
			return nil, "", fetcherr.Wrap(fetcherr.Cancelled, f.Name(), "GetRealtimeQuote", err)
		}

		q, err := f.GetRealtimeQuote(ctx, code)
		if err == nil && q != nil {
			if m.cache != nil {
				m.cache.SetQuote(code, q, f.Name(), m.quoteTTL)
			}
			return q, f.Name(), nil
		}
		m.handleFailure(f, err)
	}

	return nil, "", fetcherr.Wrap(fetcherr.AllSourcesExhausted, "", "GetRealtimeQuote", fmt.Errorf("code=%s", code))
}

// GetFundamentalData runs the failover algorithm for fundamentals.
func (m *Manager) GetFundamentalData(ctx context.Context, code string) (model.Fundamental, string, error) {
	for _, f := range m.candidates() {
		if err := ctx.Err(); err != nil {
			return model.Fundamental{}, "", fetcherr.Wrap(fetcherr.Cancelled, f.Name(), "GetFundamentalData", err)
		}

		fd, err := f.GetFundamentalData(ctx, code)
		if err == nil {
			return fd, f.Name(), nil
		}
		m.handleFailure(f, err)
	}
	return model.Fundamental{}, "", fetcherr.Wrap(fetcherr.AllSourcesExhausted, "", "GetFundamentalData", fmt.Errorf("code=%s", code))
}

// InvalidateQuote evicts a cached quote, forcing the next
// GetRealtimeQuote call to bypass the cache tier. A no-op when the
// Manager has no cache configured.
func (m *Manager) InvalidateQuote(code string) {
	if m.cache != nil {
		m.cache.InvalidateQuote(code)
	}
}

// GetEnhancedData assembles bars, a quote, and fundamentals, preferring
// whichever adapter answers each piece first rather than requiring one
// adapter to serve all three (spec §4B supplement).
func (m *Manager) GetEnhancedData(ctx context.Context, code string, days int) (model.EnhancedData, string, error) {
	bars, barSource, err := m.GetDailyData(ctx, code, days)
	if err != nil {
		return model.EnhancedData{}, "", err
	}
	quote, _, _ := m.GetRealtimeQuote(ctx, code)
	fundamental, _, _ := m.GetFundamentalData(ctx, code)

	return model.EnhancedData{Bars: bars, Quote: quote, Fundamental: fundamental}, barSource, nil
}

// handleFailure classifies an adapter's error and either puts it into
// cool-down (RateLimit) or simply logs and lets the caller move on to
// the next candidate (Transport/Parse/Empty).
func (m *Manager) handleFailure(f Fetcher, err error) {
	if err == nil {
		log.Printf("provider: %s returned an empty result, failing over", f.Name())
		return
	}

	kind := fetcherr.Classify(err)
	var fe *fetcherr.Error
	if asFetcherErr(err, &fe) {
		kind = fe.Kind
	}

	if kind == fetcherr.RateLimit {
		log.Printf("provider: %s rate limited, cooling down for %s", f.Name(), coolDown)
		m.markCooldown(f.Name())
		return
	}
	log.Printf("provider: %s failed (%v), failing over", f.Name(), err)
}

func asFetcherErr(err error, target **fetcherr.Error) bool {
	fe, ok := err.(*fetcherr.Error)
	if ok {
		*target = fe
	}
	return ok
}
