// Package provider implements the multi-source market data provider:
// the Fetcher contract every upstream adapter satisfies, the shared
// retrying HTTP transport, the read-through cache, and the
// priority-ordered failover Manager. Grounded structurally on the
// teacher's handlers/manager.go registry-of-implementers pattern.
package provider

import (
	"context"

	"ashare-chanlun/model"
)

// Fetcher is the contract every upstream adapter implements. Lower
// Priority values are consulted first by the Manager.
type Fetcher interface {
	Name() string
	Priority() float64

	GetDailyData(ctx context.Context, code string, days int) ([]model.Bar, error)
	GetRealtimeQuote(ctx context.Context, code string) (*model.Quote, error)
	GetFundamentalData(ctx context.Context, code string) (model.Fundamental, error)
	GetEnhancedData(ctx context.Context, code string, days int) (model.EnhancedData, error)
}

// BatchQuoter is an optional capability: adapters that can fan a batch
// of symbols into a small number of upstream calls implement it.
type BatchQuoter interface {
	GetBatchRealtimeQuotes(ctx context.Context, codes []string) (map[string]*model.Quote, error)
}

// Configured reports whether an adapter has everything required to run
// (credentials, session capability). The Manager uses this to
// permanently skip adapters that are NotConfigured rather than retrying
// them every call.
type Configured interface {
	Configured() bool
}
