package provider

import (
	"fmt"
	"strings"
)

// currencyExponents lists the ISO 4217 currencies whose minor unit is not
// the default two decimal places.
var currencyExponents = map[string]int{
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0,
	"KMF": 0, "KRW": 0, "PYG": 0, "RWF": 0, "UGX": 0, "VND": 0,
	"VUV": 0, "XAF": 0, "XOF": 0, "XPF": 0,
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3,
	"TND": 3,
}

// FormatAmount renders an integer minor-unit amount as the fixed-point
// decimal string gateways expect, e.g. 10000 USD minor units -> "100.00",
// 10000 JPY -> "10000". Dialect encoders decide where the string goes, not
// how it is formatted.
func FormatAmount(minor int64, currency string) string {
	exp, ok := currencyExponents[strings.ToUpper(currency)]
	if !ok {
		exp = 2
	}
	if exp == 0 {
		return fmt.Sprintf("%d", minor)
	}

	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}

	div := int64(1)
	for i := 0; i < exp; i++ {
		div *= 10
	}
	return fmt.Sprintf("%s%d.%0*d", sign, minor/div, exp, minor%div)
}
