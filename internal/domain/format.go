package domain

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	// RupeeASCII используется там, где шрифт не умеет ₹ (core-шрифты PDF).
	RupeeASCII = "Rs. "

	// DateTimeLayout: «medium date + short time»: Jan 05, 2025, 02:30 PM.
	DateTimeLayout = "Jan 02, 2006, 03:04 PM"

	invalidDate = "Invalid Date"
)

// indian печатает числа по CLDR-шаблону en-IN #,##,##0.### (лакхи, кроры).
var indian = message.NewPrinter(language.MustParse("en-IN"))

// RupeeSymbol: символ валюты для экранов и текстовых чеков.
var RupeeSymbol = indian.Sprint(currency.NarrowSymbol(currency.INR))

// FormatINR форматирует сумму в рупиях по правилам en-IN: ₹12,34,567.50.
func FormatINR(amount float64) string {
	return FormatMoney(amount, RupeeSymbol)
}

// FormatMoney форматирует сумму с двумя знаками после запятой и индийской
// группировкой разрядов. Знак минуса ставится перед символом валюты.
func FormatMoney(amount float64, symbol string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + symbol + indian.Sprint(number.Decimal(d.Abs().InexactFloat64(), number.Scale(2)))
}

// FormatDateTime отображает момент времени в зоне loc: Jan 05, 2025, 02:30 PM.
// Пустая loc означает UTC.
func FormatDateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateTimeLayout)
}

// FormatTimestamp разбирает ISO-8601 строку и форматирует её через FormatDateTime.
func FormatTimestamp(iso string, loc *time.Location) string {
	t, err := ParseISO(iso)
	if err != nil {
		return invalidDate
	}
	return FormatDateTime(t, loc)
}

// DisplayName возвращает значение или прочерк для пустых полей чека и выгрузок.
func DisplayName(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
