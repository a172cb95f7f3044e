package domain

const (
	CurrencyBTC = "BTC"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyGBP = "GBP"
	CurrencyDKK = "DKK"
)

// Currency is a fiat or crypto currency.
type Currency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

var currencies = []Currency{
	{CurrencyUSD, "U.S. Dollar", "$"},
	{CurrencyEUR, "Euro", "€"},
	{CurrencyGBP, "British Pound", "£"},
	{CurrencyDKK, "Danish Krone", "kr"},
	{"SEK", "Swedish Krona", "kr"},
	{"NOK", "Norwegian Krone", "kr"},
	{"CHF", "Swiss Franc", "CHF"},
	{"CAD", "Canadian Dollar", "$"},
	{"AUD", "Australian Dollar", "$"},
	{"JPY", "Japanese Yen", "¥"},
	{"PLN", "Polish Zloty", "zł"},
	{CurrencyBTC, "Bitcoin", "BTC"},
}

// Currencies returns every known currency.
func Currencies() []Currency {
	list := make([]Currency, len(currencies))
	copy(list, currencies)
	return list
}

// LookupCurrency returns the currency with the given code.
func LookupCurrency(code string) (Currency, bool) {
	for _, c := range currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

// CurrenciesByCode returns the known currencies matching codes, in the same
// order. Unknown codes are skipped.
func CurrenciesByCode(codes []string) []Currency {
	list := make([]Currency, 0, len(codes))
	for _, code := range codes {
		if c, ok := LookupCurrency(code); ok {
			list = append(list, c)
		}
	}
	return list
}
