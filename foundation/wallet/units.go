package wallet

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/params"
)

// Set of errors for unit conversion.
var (
	ErrUnknownUnit   = errors.New("unknown unit")
	ErrInvalidAmount = errors.New("invalid amount")
)

// unit describes a denomination of ether.
type unit struct {
	decimals int
	wei      *big.Int
}

var units = map[string]unit{
	"wei":   {decimals: 0, wei: new(big.Int).SetUint64(params.Wei)},
	"gwei":  {decimals: 9, wei: new(big.Int).SetUint64(params.GWei)},
	"ether": {decimals: 18, wei: new(big.Int).SetUint64(params.Ether)},
}

func lookupUnit(name string) (unit, error) {
	u, exists := units[strings.ToLower(name)]
	if !exists {
		return unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, name)
	}
	return u, nil
}

// ToWei parses a decimal amount expressed in the named unit into wei. The
// amount may not carry more fractional digits than the unit supports.
func ToWei(amount string, unitName string) (*big.Int, error) {
	u, err := lookupUnit(unitName)
	if err != nil {
		return nil, err
	}

	whole, frac, _ := strings.Cut(strings.TrimSpace(amount), ".")
	if whole == "" {
		whole = "0"
	}

	if len(frac) > u.decimals {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, amount, u.decimals)
	}

	digits := whole + frac + strings.Repeat("0", u.decimals-len(frac))
	if strings.ContainsAny(digits, "+-") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}

	wei, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}

	return wei, nil
}

// FromWei formats a wei value in the named unit. Ether and gwei values
// always carry at least one fractional digit.
func FromWei(wei *big.Int, unitName string) (string, error) {
	u, err := lookupUnit(unitName)
	if err != nil {
		return "", err
	}

	if u.decimals == 0 {
		return wei.String(), nil
	}

	sign := ""
	abs := new(big.Int).Abs(wei)
	if wei.Sign() < 0 {
		sign = "-"
	}

	whole, rem := new(big.Int).QuoRem(abs, u.wei, new(big.Int))

	frac := rem.String()
	frac = strings.Repeat("0", u.decimals-len(frac)) + frac
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		frac = "0"
	}

	return sign + whole.String() + "." + frac, nil
}

// Convert changes an amount from one unit into another.
func Convert(amount string, from string, to string) (string, error) {
	wei, err := ToWei(amount, from)
	if err != nil {
		return "", err
	}

	return FromWei(wei, to)
}
