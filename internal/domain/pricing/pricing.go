// Package pricing holds the price records shown by the payment gate and the
// plan catalogue shown by the subscription gate.
package pricing

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// PriceTypeOneTime marks a price that is charged once.
const PriceTypeOneTime = "one_time"

// Recurring describes the billing interval of a recurring price.
type Recurring struct {
	Interval      string `json:"interval" yaml:"interval"`
	IntervalCount int    `json:"interval_count" yaml:"interval_count"`
}

// Price is one entry of GET /apps/{appId}/stripe/prices.
type Price struct {
	ID         string     `json:"id" yaml:"id"`
	Nickname   string     `json:"nickname" yaml:"nickname"`
	UnitAmount int64      `json:"unit_amount" yaml:"unit_amount"`
	Currency   string     `json:"currency" yaml:"currency"`
	Type       string     `json:"type" yaml:"type"`
	Recurring  *Recurring `json:"recurring,omitempty" yaml:"recurring,omitempty"`
}

// DisplayName returns the nickname, or "Plan" when none is set.
func (p Price) DisplayName() string {
	if p.Nickname == "" {
		return "Plan"
	}
	return p.Nickname
}

// OneTime reports whether the price is charged once.
func (p Price) OneTime() bool {
	return p.Type == PriceTypeOneTime || p.Recurring == nil
}

// Amount formats the price's unit amount in its currency.
func (p Price) Amount() string {
	return FormatAmount(p.UnitAmount, p.Currency)
}

// RecurrenceText describes how often the price is charged.
func RecurrenceText(p Price) string {
	if p.Type == PriceTypeOneTime || p.Recurring == nil {
		return "One-time payment"
	}
	r := p.Recurring
	if r.IntervalCount <= 1 {
		return "Per " + r.Interval
	}
	return fmt.Sprintf("Every %d %ss", r.IntervalCount, r.Interval)
}

// usEnglish renders amounts the way an en-US browser does.
var usEnglish = message.NewPrinter(language.AmericanEnglish)

// FormatAmount renders an amount in minor units (cents) as en-US currency
// text, e.g. 129900 usd -> "$1,299.00". The amount is divided by 100 and
// then rounded to the currency's own digits, so 129900 jpy -> "¥1,299". An
// empty currency means USD. A symbol that ends in a letter is followed by a
// space: "CHF 12.50". Unknown codes keep two decimals.
func FormatAmount(minor int64, currencyCode string) string {
	code := strings.ToUpper(currencyCode)
	if code == "" {
		code = "USD"
	}

	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	value := float64(minor) / 100

	sym, scale := code, 2
	if unit, err := currency.ParseISO(code); err == nil {
		sym = usEnglish.Sprint(currency.Symbol(unit))
		scale, _ = currency.Standard.Rounding(unit)
	}

	digits := usEnglish.Sprint(number.Decimal(value, number.Scale(scale)))
	if r, _ := utf8.DecodeLastRuneInString(sym); unicode.IsLetter(r) {
		return sign + sym + " " + digits
	}
	return sign + sym + digits
}
