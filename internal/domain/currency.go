package domain

import "strings"

// supportedCurrencies lists the ISO 4217 codes accepted for new payments.
// Every entry has a minor unit of 1/100.
var supportedCurrencies = map[string]struct{}{
	"USD": {},
	"EUR": {},
	"GBP": {},
	"NGN": {},
}

// NormalizeCurrency upper-cases and trims an ISO 4217 code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsSupportedCurrency reports whether code (after normalization) is accepted.
func IsSupportedCurrency(code string) bool {
	_, ok := supportedCurrencies[NormalizeCurrency(code)]
	return ok
}
