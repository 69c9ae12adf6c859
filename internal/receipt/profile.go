// Package receipt печатает чек заказа для 80-миллиметрового термопринтера.
package receipt

// Profile: реквизиты прачечной в шапке чека.
type Profile struct {
	ShopName string
	Tagline  string
	Address  []string
	Phone    string
	Footer   string
}

// DefaultProfile возвращает реквизиты Vela Dry Wash.
func DefaultProfile() Profile {
	return Profile{
		ShopName: "VELA DRY WASH",
		Tagline:  "Fully Mechanised Laundry Enterprise",
		Address:  []string{"Arasa Thottam, Sellipalayam,", "Uthukuli - 638 751"},
		Phone:    "95664 42121",
		Footer:   "Thank you!",
	}
}

// headerLines возвращает строки шапки в порядке печати.
func (p Profile) headerLines() []string {
	lines := make([]string, 0, len(p.Address)+3)
	if p.ShopName != "" {
		lines = append(lines, p.ShopName)
	}
	if p.Tagline != "" {
		lines = append(lines, p.Tagline)
	}
	lines = append(lines, p.Address...)
	if p.Phone != "" {
		lines = append(lines, "Mob: "+p.Phone)
	}
	return lines
}
