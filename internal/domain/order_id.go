package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// DefaultOrderIDPrefix: префикс номеров квитанций Vela Dry Wash.
const DefaultOrderIDPrefix = "VDW"

var orderIDPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]*-\d{4}-\d{3,}$`)

// GenerateOrderID возвращает VDW-<год>-<existingCount+1 с нулями до трёх цифр>.
// Хранилище не опрашивается: точность count целиком на вызывающей стороне.
func GenerateOrderID(existingCount int, now time.Time) string {
	if existingCount < 0 {
		existingCount = 0
	}
	return FormatOrderID(DefaultOrderIDPrefix, now.Year(), int64(existingCount)+1)
}

// FormatOrderID собирает номер заказа из префикса, года и порядкового номера.
func FormatOrderID(prefix string, year int, seq int64) string {
	if prefix == "" {
		prefix = DefaultOrderIDPrefix
	}
	return fmt.Sprintf("%s-%d-%03d", prefix, year, seq)
}

// SequenceScope возвращает ключ счётчика для года.
func SequenceScope(now time.Time) string {
	return strconv.Itoa(now.Year())
}

// MatchesOrderIDPattern сообщает, похож ли номер на PREFIX-YEAR-SEQ.
// Проверка рекомендательная: заказ с другим номером всё равно сохраняется.
func MatchesOrderIDPattern(id string) bool {
	return orderIDPattern.MatchString(id)
}
