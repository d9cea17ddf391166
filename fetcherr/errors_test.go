package fetcherr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want *Kind
	}{
		{"nil error", nil, nil},
		{"rate limit keyword", errors.New("upstream banned this IP"), RateLimit},
		{"http 429", errors.New("unexpected status 429"), RateLimit},
		{"http 403", errors.New("unexpected status 403"), RateLimit},
		{"context cancelled", errors.New("context canceled"), Cancelled},
		{"unrecognized defaults to transport", errors.New("connection reset by peer"), Transport},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Classify(c.err))
		})
	}
}

func TestWrap_UnwrapsToKind(t *testing.T) {
	err := Wrap(Transport, "tencent", "doGet", errors.New("dial tcp: timeout"))

	assert.True(t, errors.Is(err, Transport))
	assert.False(t, errors.Is(err, RateLimit))
	assert.Contains(t, err.Error(), "tencent")
	assert.Contains(t, err.Error(), "doGet")
}

func TestWrap_NilCauseUsesKindAsError(t *testing.T) {
	err := Wrap(NotConfigured, "tokenquota", "Configured", nil)

	assert.True(t, errors.Is(err, NotConfigured))
	assert.Contains(t, err.Error(), "not configured")
}
