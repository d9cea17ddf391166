package adapters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ashare-chanlun/config"
	"ashare-chanlun/provider"
)

func TestNewManagerFromConfig_BuildsManagerAndAppliesTimeout(t *testing.T) {
	defaultTimeout = 8 * time.Second // reset package state other tests may have mutated

	cfg := &config.Config{
		HTTPTimeout:   3 * time.Second,
		QuoteCacheTTL: time.Minute,
		BarCacheTTL:   time.Hour,
		Tencent:       config.PacerConfig{SleepMin: 0.1, SleepMax: 0.2},
		Sina:          config.PacerConfig{SleepMin: 0.1, SleepMax: 0.2},
		Tonghuashun:   config.PacerConfig{SleepMin: 0.1, SleepMax: 0.2},
		General:       config.PacerConfig{SleepMin: 0.1, SleepMax: 0.2},
		Intl:          config.PacerConfig{SleepMin: 0.1, SleepMax: 0.2},
		TokenQuota:    config.TokenQuotaConfig{Token: "", CallsPerMinute: 80},
	}

	m := NewManagerFromConfig(cfg, provider.NewMemCache())

	assert.NotNil(t, m)
	assert.Equal(t, 3*time.Second, defaultTimeout)
}
