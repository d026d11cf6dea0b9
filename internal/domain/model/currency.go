package model

import "strings"

type Currency string

// USD is the base every full listing is expressed in.
const USD Currency = "USD"

// NormalizeCurrency trims surrounding whitespace and uppercases a code typed by
// a user, so " usd " and "USD" address the same table.
func NormalizeCurrency(code string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(code)))
}

func (c Currency) String() string {
	return string(c)
}
