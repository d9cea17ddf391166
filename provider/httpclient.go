package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"ashare-chanlun/fetcherr"
)

// NewHTTPClient builds the shared retrying transport every adapter uses
// to implement the Retry Engine (spec §4.3): at most 3 attempts,
// exponential backoff capped between 1s and 30s, retried only for
// Transport-kind failures. Rate-limit signals (HTTP 403/429, or a
// round-trip error whose message carries a "banned"/"rate"/"limit"
// keyword) are classified as RateLimit and must NOT be retried here —
// the Manager handles those via cool-down. Response bodies are not
// inspected.
func NewHTTPClient(timeout time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 2 // 3 total attempts
	client.RetryWaitMin = 1 * time.Second
	client.RetryWaitMax = 30 * time.Second
	client.Logger = nil
	client.HTTPClient = &http.Client{Timeout: timeout}
	client.CheckRetry = checkRetry
	return client
}

// checkRetry classifies the outcome of one attempt and tells
// retryablehttp whether to retry. Only Transport-kind failures retry;
// RateLimit signals and context cancellation surface immediately.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		kind := fetcherr.Classify(err)
		return kind == fetcherr.Transport, nil
	}
	if resp == nil {
		return true, nil
	}
	switch resp.StatusCode {
	case http.StatusForbidden, http.StatusTooManyRequests:
		return false, nil // RateLimit — manager cools down, no HTTP-layer retry
	case http.StatusOK:
		return false, nil
	default:
		if resp.StatusCode >= 500 {
			return true, nil
		}
		return false, nil
	}
}

// ClassifyHTTPStatus maps a response's status code to a fetcherr kind
// for adapters that need to surface the error immediately rather than
// let the retryablehttp client retry.
func ClassifyHTTPStatus(statusCode int) *fetcherr.Kind {
	switch {
	case statusCode == http.StatusForbidden || statusCode == http.StatusTooManyRequests:
		return fetcherr.RateLimit
	case statusCode >= 500 || statusCode == 0:
		return fetcherr.Transport
	case statusCode >= 400:
		return fetcherr.Parse
	default:
		return nil
	}
}
