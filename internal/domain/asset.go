package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxAssetAmount bounds asset magnitude: |amount| must stay below 2^62.
const MaxAssetAmount = (int64(1) << 62) - 1

// ErrAmountOverflow is returned when an amount magnitude is at or beyond 2^62.
var ErrAmountOverflow = errors.New("magnitude of asset amount must be less than 2^62")

// Asset is a fixed-point token amount: a signed integer magnitude scaled by
// the symbol's precision. "1.500 TKN" is stored as Amount=1500, Precision=3.
type Asset struct {
	Amount int64  // integer magnitude in smallest units
	Symbol Symbol // currency identity (code + precision)
}

// Validate checks the symbol and the magnitude bound.
func (a Asset) Validate() error {
	if err := a.Symbol.Validate(); err != nil {
		return err
	}
	if a.Amount > MaxAssetAmount || a.Amount < -MaxAssetAmount {
		return ErrAmountOverflow
	}
	return nil
}

// Add returns a+b. Fails on symbol mismatch or if the result leaves the
// representable range.
func (a Asset) Add(b Asset) (Asset, error) {
	if !a.Symbol.Equal(b.Symbol) {
		return Asset{}, fmt.Errorf("add assets: symbol mismatch %s vs %s", a.Symbol, b.Symbol)
	}
	sum := a.Amount + b.Amount
	// Overflow of int64 addition flips the sign relative to the operands.
	if (b.Amount > 0 && sum < a.Amount) || (b.Amount < 0 && sum > a.Amount) {
		return Asset{}, ErrAmountOverflow
	}
	if sum > MaxAssetAmount || sum < -MaxAssetAmount {
		return Asset{}, ErrAmountOverflow
	}
	return Asset{Amount: sum, Symbol: a.Symbol}, nil
}

// Sub returns a-b under the same rules as Add.
func (a Asset) Sub(b Asset) (Asset, error) {
	if !a.Symbol.Equal(b.Symbol) {
		return Asset{}, fmt.Errorf("sub assets: symbol mismatch %s vs %s", a.Symbol, b.Symbol)
	}
	return a.Add(Asset{Amount: -b.Amount, Symbol: b.Symbol})
}

// String formats the asset in the external form, e.g. "1000.000 TKN".
// Zero-precision assets carry no decimal point: "1000 CERO".
func (a Asset) String() string {
	if a.Symbol.Precision == 0 {
		return fmt.Sprintf("%d %s", a.Amount, a.Symbol.Code)
	}

	amount := a.Amount
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	factor := a.Symbol.PrecisionFactor()
	whole := amount / factor
	frac := amount % factor

	return fmt.Sprintf("%s%d.%0*d %s", sign, whole, int(a.Symbol.Precision), frac, a.Symbol.Code)
}

// ParseAsset parses the external form "<amount> <code>", e.g. "1000.000 TKN"
// or "-1 CERO". The precision is taken from the number of decimal digits.
func ParseAsset(str string) (Asset, error) {
	parts := strings.Fields(str)
	if len(parts) != 2 {
		return Asset{}, fmt.Errorf("parse asset %q: expected <amount> <code>", str)
	}
	numStr, code := parts[0], parts[1]
	if !ValidSymbolCode(code) {
		return Asset{}, fmt.Errorf("parse asset %q: %w", str, ErrInvalidSymbolCode)
	}

	negative := false
	if strings.HasPrefix(numStr, "-") {
		negative = true
		numStr = numStr[1:]
	}

	wholeStr := numStr
	fracStr := ""
	if dot := strings.IndexByte(numStr, '.'); dot >= 0 {
		wholeStr = numStr[:dot]
		fracStr = numStr[dot+1:]
		if fracStr == "" {
			return Asset{}, fmt.Errorf("parse asset %q: missing digits after decimal point", str)
		}
	}
	if len(fracStr) > MaxPrecision {
		return Asset{}, fmt.Errorf("parse asset %q: %w", str, ErrInvalidPrecision)
	}

	whole, err := strconv.ParseInt(wholeStr, 10, 64)
	if err != nil {
		return Asset{}, fmt.Errorf("parse asset %q: %w", str, err)
	}
	var frac int64
	if fracStr != "" {
		frac, err = strconv.ParseInt(fracStr, 10, 64)
		if err != nil {
			return Asset{}, fmt.Errorf("parse asset %q: %w", str, err)
		}
	}

	symbol := Symbol{Precision: uint8(len(fracStr)), Code: code}
	factor := symbol.PrecisionFactor()
	if whole > (MaxAssetAmount-frac)/factor {
		return Asset{}, ErrAmountOverflow
	}
	amount := whole*factor + frac
	if negative {
		amount = -amount
	}

	return Asset{Amount: amount, Symbol: symbol}, nil
}
