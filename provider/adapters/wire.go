package adapters

import (
	"ashare-chanlun/config"
	"ashare-chanlun/provider"
)

// NewManagerFromConfig builds a Manager with all seven adapters
// registered and priority-sorted, mirroring the teacher's app.New(cfg)
// wiring function (_examples/nofendian17-stockbit-haka-haki/app/app.go).
// The caller supplies the Cache tier (provider.NewMemCache, or
// provider.NewRedisCache wrapping cache.NewRedisClient(cfg.RedisHost,
// cfg.RedisPort, cfg.RedisPassword) when cfg.RedisHost is set) since
// the Redis constructor performs a live connection check this function
// otherwise would have to swallow or propagate.
func NewManagerFromConfig(cfg *config.Config, cache provider.Cache) *provider.Manager {
	if cfg.HTTPTimeout > 0 {
		defaultTimeout = cfg.HTTPTimeout
	}

	m := provider.NewManager(cache)
	m.SetTTLs(cfg.QuoteCacheTTL, cfg.BarCacheTTL)

	m.Register(NewTencent(cfg.Tencent.SleepMin, cfg.Tencent.SleepMax))
	m.Register(NewSina(cfg.Sina.SleepMin, cfg.Sina.SleepMax))
	m.Register(NewTonghuashun(cfg.Tonghuashun.SleepMin, cfg.Tonghuashun.SleepMax))
	m.Register(NewGeneral(cfg.General.SleepMin, cfg.General.SleepMax))
	m.Register(NewTokenQuota(cfg.TokenQuota.Token, cfg.TokenQuota.CallsPerMinute))
	m.Register(NewSession())
	m.Register(NewInternational(cfg.Intl.SleepMin, cfg.Intl.SleepMax))

	return m
}
