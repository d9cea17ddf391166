// Package fetcherr classifies provider-layer failures into the kinds
// the retry engine and the fetcher manager need to treat differently:
// transport errors retry, rate-limit signals cool down, parse/empty
// results fail over immediately. Modeled on database/errors.go's typed
// wrap-with-Unwrap pattern from the teacher repo.
package fetcherr

import "fmt"

// Kind is a sentinel error identifying one taxonomy bucket from
// spec §7. Callers compare with errors.Is(err, fetcherr.Transport) etc.
type Kind struct{ name string }

func (k *Kind) Error() string { return k.name }

var (
	// Transport covers connection refused, DNS, TLS, and read/write
	// timeouts. The only kind the retry engine retries.
	Transport = &Kind{"transport error"}
	// RateLimit is an explicit upstream throttle signal (banned/rate/
	// limit keywords, HTTP 403/429). Surfaces immediately; the manager
	// puts the adapter into cool-down.
	RateLimit = &Kind{"rate limited"}
	// Parse covers malformed/unexpected response shapes.
	Parse = &Kind{"parse error"}
	// Empty covers a successful response with zero rows / a null marker.
	Empty = &Kind{"empty result"}
	// NotConfigured means a credential or session prerequisite is missing.
	NotConfigured = &Kind{"not configured"}
	// AllSourcesExhausted means every candidate adapter failed.
	AllSourcesExhausted = &Kind{"all sources exhausted"}
	// Cancelled means the caller's context was cancelled mid-flight.
	Cancelled = &Kind{"cancelled"}
)

// Error wraps an underlying cause with a classification kind and the
// adapter/operation context it occurred in.
type Error struct {
	Kind      *Kind
	Source    string // adapter name, empty for manager-level errors
	Operation string
	Err       error
}

func (e *Error) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: %s in %s: %v", e.Kind.name, e.Operation, e.Source, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind.name, e.Operation, e.Err)
}

func (e *Error) Unwrap() error { return e.Kind }

// Wrap creates a classified Error. err may be nil, in which case the
// Kind itself carries the message.
func Wrap(kind *Kind, source, operation string, err error) error {
	if err == nil {
		err = kind
	}
	return &Error{Kind: kind, Source: source, Operation: operation, Err: err}
}

// Classify inspects a plain error (typically from an HTTP round trip)
// and returns the best-guess Kind using the keyword/shape heuristics
// described in spec §7. It returns nil only for a nil error; anything
// unrecognized falls back to Transport since that is the only kind safe
// to retry blindly.
func Classify(err error) *Kind {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if containsAny(msg, "banned", "rate", "limit", "403", "429") {
		return RateLimit
	}
	if containsAny(msg, "context canceled", "context deadline exceeded and cancelled") {
		return Cancelled
	}
	return Transport
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if indexFold(s, sub) >= 0 {
			return true
		}
	}
	return false
}

// indexFold is a tiny case-insensitive substring search, avoiding a
// strings.ToLower allocation on the hot error path.
func indexFold(s, sub string) int {
	n, m := len(s), len(sub)
	if m == 0 {
		return 0
	}
	for i := 0; i+m <= n; i++ {
		match := true
		for j := 0; j < m; j++ {
			a, b := s[i+j], sub[j]
			if 'A' <= a && a <= 'Z' {
				a += 'a' - 'A'
			}
			if 'A' <= b && b <= 'Z' {
				b += 'a' - 'A'
			}
			if a != b {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
