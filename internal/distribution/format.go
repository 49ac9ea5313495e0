package distribution

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var currencyPrinter = message.NewPrinter(language.MustParse("nb-NO"))

// FormatCurrency renders a whole-krone amount with Norwegian digit grouping,
// e.g. "kr 10 000".
func FormatCurrency(amount int) string {
	return currencyPrinter.Sprintf("kr %d", amount)
}
