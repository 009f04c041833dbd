package presaleprogram

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

var decimalPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

var maxUint64 = new(big.Int).SetUint64(^uint64(0))

// ParseDecimalToBase converts a user-entered decimal string into base units.
// Digits beyond the supported decimal places are truncated toward zero, never
// rounded up. No floating point is involved at this boundary.
func ParseDecimalToBase(value string, decimals int) (uint64, error) {
	if decimals < 0 || decimals > 10 {
		return 0, fmt.Errorf("decimal places must be between 0 and 10")
	}

	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if cleaned == "" || !decimalPattern.MatchString(cleaned) {
		return 0, fmt.Errorf("invalid number format: %q", value)
	}

	intPart := cleaned
	fracPart := ""
	if i := strings.IndexByte(cleaned, '.'); i >= 0 {
		intPart, fracPart = cleaned[:i], cleaned[i+1:]
	}

	if len(fracPart) > decimals {
		fracPart = fracPart[:decimals] // truncate, don't round
	}
	fracPart += strings.Repeat("0", decimals-len(fracPart))

	n, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return 0, fmt.Errorf("invalid number format: %q", value)
	}
	if n.Cmp(maxUint64) > 0 {
		return 0, fmt.Errorf("amount out of range: %q", value)
	}
	return n.Uint64(), nil
}

// FormatBaseUnits renders a base-unit quantity as a decimal string with full
// precision, trailing zeros trimmed. Round-trips through ParseDecimalToBase
// without loss.
func FormatBaseUnits(value uint64, decimals int) string {
	return FormatWithPrecision(value, decimals, decimals)
}

// FormatWithPrecision renders a base-unit quantity with at most decimalPlaces
// fraction digits. The fraction is truncated, not rounded.
func FormatWithPrecision(value uint64, decimals, decimalPlaces int) string {
	divisor := pow10(decimals)
	integerPart := value / divisor
	remainder := value % divisor

	if decimalPlaces > decimals {
		decimalPlaces = decimals
	}
	if decimalPlaces < decimals {
		remainder /= pow10(decimals - decimalPlaces)
	}

	if remainder == 0 {
		return fmt.Sprintf("%d", integerPart)
	}

	frac := strings.TrimRight(fmt.Sprintf("%0*d", decimalPlaces, remainder), "0")
	if frac == "" {
		return fmt.Sprintf("%d", integerPart)
	}
	return fmt.Sprintf("%d.%s", integerPart, frac)
}

// FormatSOL renders lamports as a SOL amount with 4 decimal places.
func FormatSOL(lamports uint64) string {
	return FormatWithPrecision(lamports, TokenDecimals, 4)
}

// FormatTokens renders token base units as a whole-token amount.
func FormatTokens(base uint64) string {
	return FormatWithPrecision(base, TokenDecimals, 2)
}

// LamportsForTokenBase converts a token quantity in base units into the
// lamports it costs at the given phase price. Intermediate math is done in
// big integers since base × price can exceed 64 bits.
func LamportsForTokenBase(tokenBase, priceLamportsPerToken uint64) uint64 {
	n := new(big.Int).SetUint64(tokenBase)
	n.Mul(n, new(big.Int).SetUint64(priceLamportsPerToken))
	n.Div(n, new(big.Int).SetUint64(DecimalsMultiplier))
	if n.Cmp(maxUint64) > 0 {
		return ^uint64(0)
	}
	return n.Uint64()
}

// ShortenAddress abbreviates a base58 address for display.
func ShortenAddress(address string) string {
	if len(address) <= 9 {
		return address
	}
	return address[:4] + "..." + address[len(address)-5:]
}

func pow10(n int) uint64 {
	v := uint64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}
