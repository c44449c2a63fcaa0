package tx

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// SatoshisPerBSV is the number of satoshis in one BSV.
const SatoshisPerBSV = 100_000_000

var satsPerCoin = decimal.NewFromInt(SatoshisPerBSV)

// ParseAmount converts a decimal BSV string such as "0.0005" into satoshis.
// More than 8 fractional digits, negative values and overflow are rejected.
func ParseAmount(s string) (uint64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidAmount, s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	sats := d.Mul(satsPerCoin)
	if !sats.Equal(sats.Truncate(0)) {
		return 0, fmt.Errorf("%w: %q has more than 8 decimal places", ErrInvalidAmount, s)
	}
	if !sats.BigInt().IsUint64() {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidAmount, s)
	}
	return sats.BigInt().Uint64(), nil
}

// FormatAmount renders satoshis as a BSV decimal string with 8 places.
func FormatAmount(sats uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(sats), 0).Div(satsPerCoin).StringFixed(8)
}
