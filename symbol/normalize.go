// Package symbol translates between a plain 6-digit A-share display
// code ("600519") and each upstream provider's required wire form, per
// spec §4.1 and §6. Grounded on the five independent
// `_convert_stock_code` methods in the Python original and on the
// small pure-function file style of the teacher's helpers package.
package symbol

import (
	"fmt"
	"log"
	"strings"
)

// Market is the exchange a code trades on.
type Market int

const (
	Shanghai Market = iota
	Shenzhen
)

func (m Market) String() string {
	if m == Shanghai {
		return "Shanghai"
	}
	return "Shenzhen"
}

// Provider names the upstream whose symbol convention is being applied.
type Provider int

const (
	Fast          Provider = iota // tencent-style: sh600519 / sz000001
	UltraFast                     // sina-style: sh600519 / sz000001 (same as Fast)
	Secondary                     // tonghuashun-style: hs_600519 / hs_000001
	General                       // eastmoney secid-style: 1.600519 / 0.000001
	TokenQuota                    // tushare-style: 600519.SH / 000001.SZ
	Session                       // baostock-style: sh.600519 / sz.000001
	International                 // yfinance-style: 600519.SS / 000001.SZ
)

var decorations = []string{".SH", ".SZ", ".SS", "sh", "sz", "hs_", "1.", "0."}

// stripDecoration removes any existing market decoration so a code can
// be re-normalized regardless of its current form.
func stripDecoration(code string) string {
	c := strings.TrimSpace(code)
	upper := strings.ToUpper(c)
	for _, suffix := range []string{".SH", ".SZ", ".SS"} {
		if strings.HasSuffix(upper, suffix) {
			return c[:len(c)-len(suffix)]
		}
	}
	for _, prefix := range []string{"sh.", "sz.", "sh", "sz", "hs_", "1.", "0."} {
		if strings.HasPrefix(strings.ToLower(c), prefix) {
			return c[len(prefix):]
		}
	}
	return c
}

// MarketOf classifies a bare 6-digit code by its leading digits, per
// spec §4.1. An unrecognized prefix defaults to Shenzhen with a logged
// warning.
func MarketOf(bareCode string) Market {
	switch {
	case hasAnyPrefix(bareCode, "600", "601", "603", "688"):
		return Shanghai
	case hasAnyPrefix(bareCode, "000", "002", "300", "301"):
		return Shenzhen
	default:
		log.Printf("symbol: unrecognized code prefix %q, defaulting to Shenzhen", bareCode)
		return Shenzhen
	}
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Normalize converts a display code (optionally already decorated) into
// the wire form the given provider expects.
func Normalize(code string, provider Provider) (string, error) {
	bare := stripDecoration(code)
	if len(bare) != 6 {
		return "", fmt.Errorf("symbol: %q is not a 6-digit A-share code", code)
	}
	market := MarketOf(bare)

	switch provider {
	case Fast, UltraFast:
		if market == Shanghai {
			return "sh" + bare, nil
		}
		return "sz" + bare, nil
	case Secondary:
		return "hs_" + bare, nil
	case General:
		if market == Shanghai {
			return "1." + bare, nil
		}
		return "0." + bare, nil
	case TokenQuota:
		if market == Shanghai {
			return bare + ".SH", nil
		}
		return bare + ".SZ", nil
	case Session:
		if market == Shanghai {
			return "sh." + bare, nil
		}
		return "sz." + bare, nil
	case International:
		if market == Shanghai {
			return bare + ".SS", nil
		}
		return bare + ".SZ", nil
	default:
		return "", fmt.Errorf("symbol: unknown provider %d", provider)
	}
}

// Denormalize recovers the bare 6-digit display code from a provider's
// wire form.
func Denormalize(providerCode string, provider Provider) (string, error) {
	bare := stripDecoration(providerCode)
	if len(bare) != 6 {
		return "", fmt.Errorf("symbol: %q does not decode to a 6-digit code", providerCode)
	}
	return bare, nil
}
