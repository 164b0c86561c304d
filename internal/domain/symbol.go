package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxPrecision is the largest supported number of decimal places.
const MaxPrecision = 18

// Symbol identifies a currency: a decimal precision plus a ticker code.
// The canonical string form is "<precision>,<code>", e.g. "3,TKN".
type Symbol struct {
	Precision uint8  // number of decimal places
	Code      string // ticker, 1-7 uppercase letters A-Z
}

// Symbol validation errors.
var (
	ErrInvalidSymbolCode = errors.New("invalid symbol code")
	ErrInvalidPrecision  = errors.New("invalid symbol precision")
)

// ValidSymbolCode reports whether code is 1-7 uppercase letters.
func ValidSymbolCode(code string) bool {
	if len(code) == 0 || len(code) > 7 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

// Validate checks the code charset and precision bound.
func (s Symbol) Validate() error {
	if !ValidSymbolCode(s.Code) {
		return ErrInvalidSymbolCode
	}
	if s.Precision > MaxPrecision {
		return ErrInvalidPrecision
	}
	return nil
}

// Equal reports whether two symbols share both code and precision.
func (s Symbol) Equal(other Symbol) bool {
	return s.Code == other.Code && s.Precision == other.Precision
}

// String returns the canonical "<precision>,<code>" form.
func (s Symbol) String() string {
	return fmt.Sprintf("%d,%s", s.Precision, s.Code)
}

// ParseSymbol parses the canonical "<precision>,<code>" form, e.g. "0,CERO".
func ParseSymbol(str string) (Symbol, error) {
	parts := strings.SplitN(str, ",", 2)
	if len(parts) != 2 {
		return Symbol{}, fmt.Errorf("parse symbol %q: expected <precision>,<code>", str)
	}

	precision, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil || precision > MaxPrecision {
		return Symbol{}, fmt.Errorf("parse symbol %q: %w", str, ErrInvalidPrecision)
	}
	if !ValidSymbolCode(parts[1]) {
		return Symbol{}, fmt.Errorf("parse symbol %q: %w", str, ErrInvalidSymbolCode)
	}

	return Symbol{Precision: uint8(precision), Code: parts[1]}, nil
}

// PrecisionFactor returns 10^Precision as int64.
func (s Symbol) PrecisionFactor() int64 {
	factor := int64(1)
	for i := uint8(0); i < s.Precision; i++ {
		factor *= 10
	}
	return factor
}
