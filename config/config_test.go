package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvInt_FallsBackOnMissingOrInvalid(t *testing.T) {
	os.Unsetenv("CFG_TEST_INT")
	assert.Equal(t, 80, getEnvInt("CFG_TEST_INT", 80))

	os.Setenv("CFG_TEST_INT", "not-a-number")
	defer os.Unsetenv("CFG_TEST_INT")
	assert.Equal(t, 80, getEnvInt("CFG_TEST_INT", 80))

	os.Setenv("CFG_TEST_INT", "42")
	assert.Equal(t, 42, getEnvInt("CFG_TEST_INT", 80))
}

func TestGetEnvFloat_ParsesFractionalSeconds(t *testing.T) {
	os.Setenv("CFG_TEST_FLOAT", "0.35")
	defer os.Unsetenv("CFG_TEST_FLOAT")
	assert.Equal(t, 0.35, getEnvFloat("CFG_TEST_FLOAT", 0.1))
}

func TestGetEnvDuration_ParsesGoDurationSyntax(t *testing.T) {
	os.Setenv("CFG_TEST_DURATION", "500ms")
	defer os.Unsetenv("CFG_TEST_DURATION")
	assert.Equal(t, 500*time.Millisecond, getEnvDuration("CFG_TEST_DURATION", time.Second))

	os.Setenv("CFG_TEST_DURATION", "garbage")
	assert.Equal(t, time.Second, getEnvDuration("CFG_TEST_DURATION", time.Second))
}

func TestLoadFromEnv_AppliesDefaultsWhenUnset(t *testing.T) {
	os.Unsetenv("TUSHARE_TOKEN")
	os.Unsetenv("PROVIDER_HTTP_TIMEOUT")

	cfg := LoadFromEnv()

	assert.Equal(t, 8*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "", cfg.TokenQuota.Token)
	assert.Equal(t, 80, cfg.TokenQuota.CallsPerMinute)
}
