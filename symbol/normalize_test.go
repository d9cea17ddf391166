package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEachProvider(t *testing.T) {
	cases := []struct {
		provider Provider
		shanghai string
		shenzhen string
	}{
		{Fast, "sh600519", "sz000001"},
		{UltraFast, "sh600519", "sz000001"},
		{Secondary, "hs_600519", "hs_000001"},
		{TokenQuota, "600519.SH", "000001.SZ"},
		{Session, "sh.600519", "sz.000001"},
		{International, "600519.SS", "000001.SZ"},
	}

	for _, tc := range cases {
		got, err := Normalize("600519", tc.provider)
		require.NoError(t, err)
		assert.Equal(t, tc.shanghai, got)

		got, err = Normalize("000001", tc.provider)
		require.NoError(t, err)
		assert.Equal(t, tc.shenzhen, got)
	}
}

func TestNormalizeStripsExistingDecoration(t *testing.T) {
	got, err := Normalize("sh600519", Secondary)
	require.NoError(t, err)
	assert.Equal(t, "hs_600519", got)

	got, err = Normalize("600519.SH", Fast)
	require.NoError(t, err)
	assert.Equal(t, "sh600519", got)
}

func TestUnknownPrefixDefaultsToShenzhen(t *testing.T) {
	got, err := Normalize("900999", Fast)
	require.NoError(t, err)
	assert.Equal(t, "sz900999", got)
}

func TestRoundTripEveryProvider(t *testing.T) {
	providers := []Provider{Fast, UltraFast, Secondary, TokenQuota, Session, International}
	for _, code := range []string{"600519", "000001", "300750", "688981"} {
		for _, p := range providers {
			wire, err := Normalize(code, p)
			require.NoError(t, err)
			back, err := Denormalize(wire, p)
			require.NoError(t, err)
			assert.Equal(t, code, back, "provider %v", p)
		}
	}
}
