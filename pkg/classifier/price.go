package classifier

import (
	"errors"
	"strconv"
	"strings"
)

// ErrPriceParse indicates a price string that carries no parseable numeric
// value, e.g. "A convenir". Callers must treat it as non-excluding.
var ErrPriceParse = errors.New("unparseable price")

// ParsePrice converts a locale-formatted price string to a numeric value.
// "." is a thousands separator and "," the decimal separator, so
// "1.200 €" parses to 1200 and "10,50 €" to 10.50.
func ParsePrice(raw string) (float64, error) {
	s := strings.NewReplacer("€", "", "$", "", "£", "", ".", "").Replace(raw)
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrPriceParse
	}
	return val, nil
}
