// Package adapters holds one concrete Fetcher implementation per
// upstream quote API, each grounded on the matching fetcher in
// original_source/data_provider/*.py: Tencent (fast), Sina (ultra-fast),
// Tonghuashun (secondary), General (general-purpose, library-backed in
// the original), TokenQuota (credential-gated), Session (login/logout
// bracketed), and International (Yahoo-style fallback).
package adapters

import (
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// defaultTimeout is the per-call HTTP timeout (spec §5: typical 5-10s).
// It is a var, not a const, so NewManagerFromConfig can apply
// cfg.HTTPTimeout before any adapter is constructed.
var defaultTimeout = 8 * time.Second

// secondsToDuration converts a fractional-seconds pacer config value
// (as used throughout the original Python fetchers) into a Duration.
func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// userAgents is the rotation pool every HTTP-scraping adapter chooses
// from uniformly before each call, per spec §4.4 step 2.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

func randomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", randomUserAgent())
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")
}

// safeFloat parses a numeric field, returning 0 (the "unknown" sentinel
// per spec §3) on any parse failure or missing/empty position instead
// of erroring the whole row.
func safeFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func safeInt(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return int64(v)
}

// field returns the i'th element of parts, or "" if out of range —
// covers the fast adapter's ~50 positional fields where trailing
// positions may be missing entirely.
func field(parts []string, i int) string {
	if i < 0 || i >= len(parts) {
		return ""
	}
	return parts[i]
}
