package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ashare-chanlun/fetcherr"
	"ashare-chanlun/model"
)

// fakeFetcher is a minimal Fetcher for exercising the Manager's
// failover algorithm without any real network I/O.
type fakeFetcher struct {
	name       string
	priority   float64
	calls      int
	quoteCalls int
	bars       []model.Bar
	quote      *model.Quote
	err        error
}

func (f *fakeFetcher) Name() string      { return f.name }
func (f *fakeFetcher) Priority() float64 { return f.priority }

func (f *fakeFetcher) GetDailyData(ctx context.Context, code string, days int) ([]model.Bar, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.bars, nil
}

func (f *fakeFetcher) GetRealtimeQuote(ctx context.Context, code string) (*model.Quote, error) {
	f.quoteCalls++
	if f.quote == nil {
		return nil, errors.New("not implemented")
	}
	return f.quote, nil
}

func (f *fakeFetcher) GetFundamentalData(ctx context.Context, code string) (model.Fundamental, error) {
	return model.Fundamental{}, errors.New("not implemented")
}

func (f *fakeFetcher) GetEnhancedData(ctx context.Context, code string, days int) (model.EnhancedData, error) {
	return model.EnhancedData{}, errors.New("not implemented")
}

func sampleBars() []model.Bar {
	return []model.Bar{{Code: "600519", Date: time.Now(), Open: 10, High: 11, Low: 9, Close: 10, Volume: 100}}
}

func TestFailoverScenario(t *testing.T) {
	// Scenario 5 from spec §8: A (priority 0) raises RateLimit,
	// B (priority 1) succeeds. Expect one call to A, one to B, B wins,
	// and A is marked cooling down.
	a := &fakeFetcher{name: "A", priority: 0, err: fetcherr.Wrap(fetcherr.RateLimit, "A", "GetDailyData", nil)}
	b := &fakeFetcher{name: "B", priority: 1, bars: sampleBars()}

	mgr := NewManager(nil)
	mgr.Register(a)
	mgr.Register(b)

	bars, source, err := mgr.GetDailyData(context.Background(), "600519", 10)
	require.NoError(t, err)
	assert.Equal(t, "B", source)
	assert.Len(t, bars, 1)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)

	_, cooling := mgr.cooldowns["A"]
	assert.True(t, cooling)
}

func TestAllSourcesExhausted(t *testing.T) {
	a := &fakeFetcher{name: "A", priority: 0, err: errors.New("boom")}
	mgr := NewManager(nil)
	mgr.Register(a)

	_, _, err := mgr.GetDailyData(context.Background(), "600519", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fetcherr.AllSourcesExhausted))
}

func TestCacheHitBypassesFailover(t *testing.T) {
	a := &fakeFetcher{name: "A", priority: 0, bars: sampleBars()}
	mgr := NewManager(NewMemCache())
	mgr.Register(a)

	_, _, err := mgr.GetDailyData(context.Background(), "600519", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, a.calls)

	_, source, err := mgr.GetDailyData(context.Background(), "600519", 10)
	require.NoError(t, err)
	assert.Equal(t, "A", source)
	assert.Equal(t, 1, a.calls, "cache hit must not call the adapter again")
}

func TestRegisterDisablesNotConfiguredAdapter(t *testing.T) {
	mgr := NewManager(nil)
	mgr.Register(&configurableFetcher{fakeFetcher: fakeFetcher{name: "C", priority: 2, bars: sampleBars()}, configured: false})

	_, _, err := mgr.GetDailyData(context.Background(), "600519", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fetcherr.AllSourcesExhausted))
}

func TestInvalidateQuote_ForcesReQuery(t *testing.T) {
	a := &fakeFetcher{name: "A", priority: 0, quote: &model.Quote{Code: "600519", Price: 10}}
	mgr := NewManager(NewMemCache())
	mgr.Register(a)

	_, _, err := mgr.GetRealtimeQuote(context.Background(), "600519")
	require.NoError(t, err)
	assert.Equal(t, 1, a.quoteCalls)

	_, _, err = mgr.GetRealtimeQuote(context.Background(), "600519")
	require.NoError(t, err)
	assert.Equal(t, 1, a.quoteCalls, "cache hit must not call the adapter again")

	mgr.InvalidateQuote("600519")

	_, _, err = mgr.GetRealtimeQuote(context.Background(), "600519")
	require.NoError(t, err)
	assert.Equal(t, 2, a.quoteCalls, "invalidated entry must re-query the adapter")
}

type configurableFetcher struct {
	fakeFetcher
	configured bool
}

func (f *configurableFetcher) Configured() bool { return f.configured }
