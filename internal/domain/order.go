package domain

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TimestampLayout: формат хранения CreatedAt (ISO-8601, UTC, миллисекунды).
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// StorageTime приводит момент к точности хранения: UTC, миллисекунды.
func StorageTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// OrderItem представляет одну строку заказа.
type OrderItem struct {
	// ID генерируется на клиенте и уникален в пределах заказа.
	// В хранилище не попадает, поэтому у прочитанных заказов он пустой.
	ID string
	// Name: произвольное название вещи (shirt, saree, white-towel...).
	Name string
	// Qty: количество, после нормализации всегда >= 0.
	Qty float64
	// Price: цена за единицу, после нормализации всегда >= 0.
	Price float64
}

// Amount возвращает qty * price. Некорректные значения считаются нулём.
func (i OrderItem) Amount() float64 {
	return ItemAmount(i)
}

// Order: квитанция клиента с позициями.
type Order struct {
	// ID задаёт оператор (ожидаемый шаблон PREFIX-YEAR-SEQ), уникальность не проверяется.
	ID           string
	CustomerName string
	Phone        string
	// CreatedAt фиксируется в момент создания и больше не меняется.
	CreatedAt time.Time
	// Items хранит позиции в порядке добавления.
	Items []OrderItem
}

// Total возвращает сумму по всем позициям.
func (o Order) Total() float64 {
	return OrderTotal(o)
}

// CreatedAtISO возвращает CreatedAt в формате хранения.
func (o Order) CreatedAtISO() string {
	return FormatISO(o.CreatedAt)
}

// ValidateInvariants проверяет инварианты сохраняемого заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if strings.TrimSpace(o.ID) == "" {
		errs = append(errs, ErrOrderIDRequired)
	}
	if o.CreatedAt.IsZero() {
		errs = append(errs, ErrCreatedAtRequired)
	}
	for _, item := range o.Items {
		if item.Qty < 0 || math.IsNaN(item.Qty) || math.IsInf(item.Qty, 0) {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.Price < 0 || math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
			errs = append(errs, ErrItemPriceInvalid)
		}
	}

	return errs
}

// Clone возвращает копию заказа с собственным срезом позиций.
func (o Order) Clone() Order {
	if o.Items != nil {
		items := make([]OrderItem, len(o.Items))
		copy(items, o.Items)
		o.Items = items
	}
	return o
}

// WithoutItemIDs возвращает копию заказа в том виде, в каком он лежит в хранилище.
func (o Order) WithoutItemIDs() Order {
	out := o.Clone()
	for i := range out.Items {
		out.Items[i].ID = ""
	}
	return out
}

// ItemAmount считает qty * price; нечисловые и отрицательные значения дают 0.
func ItemAmount(item OrderItem) float64 {
	return itemAmountDecimal(item).InexactFloat64()
}

// OrderTotal суммирует ItemAmount по всем позициям. Пустой заказ даёт 0.
func OrderTotal(order Order) float64 {
	total := decimal.Zero
	for _, item := range order.Items {
		total = total.Add(itemAmountDecimal(item))
	}
	return total.InexactFloat64()
}

func itemAmountDecimal(item OrderItem) decimal.Decimal {
	qty := decimal.NewFromFloat(Coerce(item.Qty))
	price := decimal.NewFromFloat(Coerce(item.Price))
	return qty.Mul(price)
}

// Coerce приводит число к допустимому значению: NaN, ±Inf и отрицательные становятся 0.
func Coerce(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// ParseNumeric разбирает пользовательский ввод количества или цены.
// Ошибки разбора не возвращаются: невалидный ввод превращается в 0.
func ParseNumeric(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return Coerce(v)
}

// NormalizeItem обрезает пробелы в названии и нормализует числа.
func NormalizeItem(item OrderItem) OrderItem {
	item.Name = strings.TrimSpace(item.Name)
	item.Qty = Coerce(item.Qty)
	item.Price = Coerce(item.Price)
	return item
}

// NewItemID генерирует идентификатор позиции.
func NewItemID() string {
	return uuid.NewString()
}

// FormatISO форматирует момент времени в UTC так же, как он хранится в документе.
func FormatISO(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseISO разбирает CreatedAt из документа.
func ParseISO(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
}
