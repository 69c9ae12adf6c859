package domain

import "strings"

// ItemSuggestions: справочник типовых вещей для автодополнения.
var ItemSuggestions = []string{
	"shirt",
	"pant",
	"t-shirt",
	"lower",
	"inner",
	"vest",
	"vesti",
	"lungi",
	"kerchief",
	"socks",
	"saree",
	"blouse",
	"white-pillow-cover",
	"white-towel",
	"white-bed-cover-double",
	"white-bed-cover-single",
	"colour-pillow-cover",
	"colour-towel",
	"colour-bed-cover-double",
	"colour-bed-cover-single",
	"double-bedcover",
	"bed-sheet",
	"colour-blanket",
	"white-blanket",
}

// CustomerSuggestions: постоянные клиенты (гостиницы и курорты).
var CustomerSuggestions = []string{
	"JK Residency Toll Plaza",
	"JK Resort",
	"JK Village Resort Ukl",
	"URC Lodge",
	"URC Resort",
	"JK Paradise",
}

// Suggest фильтрует справочник по подстроке без учёта регистра, сохраняя порядок.
// Пустой запрос возвращает весь справочник.
func Suggest(list []string, query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]string, 0, len(list))
	for _, entry := range list {
		if strings.Contains(strings.ToLower(entry), query) {
			out = append(out, entry)
		}
	}
	return out
}
