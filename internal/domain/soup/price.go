package soup

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Cents is a price in euro cents.
type Cents int64

// ErrInvalidPrice is returned by ParseCents for malformed, signed or oversized input.
var ErrInvalidPrice = fmt.Errorf("invalid price")

// MaxCents is the largest price the store's INTEGER price column holds.
const MaxCents = Cents(math.MaxInt32)

// String renders the price with exactly two decimals, e.g. "2.50".
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// ParseCents parses "2.5", "2,50" or "3" into cents.
func ParseCents(s string) (Cents, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "€"))
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidPrice)
	}
	if strings.ContainsAny(s, "+-") {
		return 0, fmt.Errorf("%w: %q has a sign", ErrInvalidPrice, s)
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	euros, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || euros < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	if euros > int64(MaxCents)/100 {
		return 0, fmt.Errorf("%w: %q is too large", ErrInvalidPrice, s)
	}

	var cents int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
		}
		if len(frac) == 1 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || cents < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
		}
	}
	total := Cents(euros*100 + cents)
	if total > MaxCents {
		return 0, fmt.Errorf("%w: %q is too large", ErrInvalidPrice, s)
	}
	return total, nil
}
