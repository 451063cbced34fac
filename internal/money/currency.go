package money

import (
	"fmt"
	"strings"
)

// Currency describes how amounts are displayed for one ISO currency code.
type Currency struct {
	Code   string
	Name   string
	Symbol string
	// Suffix currencies render as "12.50 kr" instead of "kr 12.50".
	Suffix bool
}

var currencies = map[string]Currency{
	"AED": {Code: "AED", Name: "UAE Dirham", Symbol: "AED"},
	"USD": {Code: "USD", Name: "US Dollar", Symbol: "$"},
	"EUR": {Code: "EUR", Name: "Euro", Symbol: "€"},
	"GBP": {Code: "GBP", Name: "British Pound", Symbol: "£"},
	"JPY": {Code: "JPY", Name: "Japanese Yen", Symbol: "¥"},
	"AUD": {Code: "AUD", Name: "Australian Dollar", Symbol: "A$"},
	"CAD": {Code: "CAD", Name: "Canadian Dollar", Symbol: "C$"},
	"CHF": {Code: "CHF", Name: "Swiss Franc", Symbol: "CHF"},
	"CNY": {Code: "CNY", Name: "Chinese Yuan", Symbol: "¥"},
	"INR": {Code: "INR", Name: "Indian Rupee", Symbol: "₹"},
	"SGD": {Code: "SGD", Name: "Singapore Dollar", Symbol: "S$"},
	"HKD": {Code: "HKD", Name: "Hong Kong Dollar", Symbol: "HK$"},
	"SAR": {Code: "SAR", Name: "Saudi Riyal", Symbol: "SAR"},
	"QAR": {Code: "QAR", Name: "Qatari Riyal", Symbol: "QAR"},
	"KWD": {Code: "KWD", Name: "Kuwaiti Dinar", Symbol: "KWD"},
	"BHD": {Code: "BHD", Name: "Bahraini Dinar", Symbol: "BHD"},
	"OMR": {Code: "OMR", Name: "Omani Rial", Symbol: "OMR"},
	"JOD": {Code: "JOD", Name: "Jordanian Dinar", Symbol: "JOD"},
	"EGP": {Code: "EGP", Name: "Egyptian Pound", Symbol: "EGP"},
	"ZAR": {Code: "ZAR", Name: "South African Rand", Symbol: "R"},
	"NZD": {Code: "NZD", Name: "New Zealand Dollar", Symbol: "NZ$"},
	"SEK": {Code: "SEK", Name: "Swedish Krona", Symbol: "kr", Suffix: true},
	"NOK": {Code: "NOK", Name: "Norwegian Krone", Symbol: "kr", Suffix: true},
	"DKK": {Code: "DKK", Name: "Danish Krone", Symbol: "kr", Suffix: true},
	"PLN": {Code: "PLN", Name: "Polish Zloty", Symbol: "zł", Suffix: true},
	"CZK": {Code: "CZK", Name: "Czech Koruna", Symbol: "Kč", Suffix: true},
	"TRY": {Code: "TRY", Name: "Turkish Lira", Symbol: "₺"},
	"MXN": {Code: "MXN", Name: "Mexican Peso", Symbol: "$"},
	"BRL": {Code: "BRL", Name: "Brazilian Real", Symbol: "R$"},
	"THB": {Code: "THB", Name: "Thai Baht", Symbol: "฿"},
	"MYR": {Code: "MYR", Name: "Malaysian Ringgit", Symbol: "RM"},
	"IDR": {Code: "IDR", Name: "Indonesian Rupiah", Symbol: "Rp"},
	"PHP": {Code: "PHP", Name: "Philippine Peso", Symbol: "₱"},
	"KRW": {Code: "KRW", Name: "South Korean Won", Symbol: "₩"},
	"ILS": {Code: "ILS", Name: "Israeli Shekel", Symbol: "₪"},
	"LKR": {Code: "LKR", Name: "Sri Lankan Rupee", Symbol: "Rs"},
}

// Lookup returns the display info for an ISO code.
func Lookup(code string) (Currency, bool) {
	c, ok := currencies[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// Supported reports whether the code is in the currency table.
func Supported(code string) bool {
	_, ok := Lookup(code)
	return ok
}

// Format renders a rounded amount with the currency's symbol. Unknown codes
// fall back to the bare code as a prefix so nothing is ever dropped.
func Format(amount float64, code string) string {
	c, ok := Lookup(code)
	if !ok {
		c = Currency{Code: strings.ToUpper(strings.TrimSpace(code)), Symbol: strings.ToUpper(strings.TrimSpace(code))}
	}
	value := fmt.Sprintf("%.2f", Round2(amount))
	if c.Suffix {
		return value + " " + c.Symbol
	}
	return c.Symbol + " " + value
}
