package receipt

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
)

// Width: ширина строки чека в символах (80 мм, моноширинный шрифт).
const Width = 48

// Ширины колонок таблицы позиций; в сумме Width.
const (
	colItem  = 18
	colQty   = 6
	colPrice = 12
	colTotal = 12
)

// RenderText печатает чек моноширинным текстом по Width символов в строке.
func RenderText(order domain.Order, profile Profile, loc *time.Location) string {
	var b strings.Builder
	rule := strings.Repeat("-", Width)

	for _, line := range profile.headerLines() {
		writeLine(&b, center(line, Width))
	}
	writeLine(&b, rule)

	writeLine(&b, "Date: "+domain.FormatDateTime(order.CreatedAt, loc))
	writeLine(&b, "Order: "+order.ID)
	writeLine(&b, "Customer: "+domain.DisplayName(order.CustomerName))
	writeLine(&b, rule)

	writeLine(&b, itemRow("Item", "Qty", "Price", "Total"))
	writeLine(&b, rule)
	for _, item := range order.Items {
		chunks := wrap(domain.DisplayName(item.Name), colItem-1)
		writeLine(&b, itemRow(
			chunks[0],
			FormatQty(item.Qty),
			domain.FormatINR(item.Price),
			domain.FormatINR(item.Amount()),
		))
		for _, rest := range chunks[1:] {
			writeLine(&b, rest)
		}
	}
	writeLine(&b, rule)

	total := domain.FormatINR(order.Total())
	writeLine(&b, "Total:"+padLeft(total, Width-len("Total:")))
	writeLine(&b, rule)

	if profile.Footer != "" {
		writeLine(&b, center(profile.Footer, Width))
	}
	return b.String()
}

// FormatQty печатает количество без лишних нулей: 2, 1.5.
func FormatQty(qty float64) string {
	return strconv.FormatFloat(domain.Coerce(qty), 'f', -1, 64)
}

func itemRow(name, qty, price, total string) string {
	return padRight(name, colItem) + padLeft(qty, colQty) + padLeft(price, colPrice) + padLeft(total, colTotal)
}

func writeLine(b *strings.Builder, line string) {
	b.WriteString(strings.TrimRight(line, " "))
	b.WriteByte('\n')
}

func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", (width-n)/2) + s
}

func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func padLeft(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return " " + s
	}
	return strings.Repeat(" ", width-n) + s
}

// wrap режет строку на куски не длиннее width символов.
func wrap(s string, width int) []string {
	runes := []rune(s)
	if len(runes) <= width {
		return []string{s}
	}
	chunks := make([]string, 0, len(runes)/width+1)
	for len(runes) > width {
		chunks = append(chunks, string(runes[:width]))
		runes = runes[width:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
