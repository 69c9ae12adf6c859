package domain

import "errors"

var (
	// Ошибка отсутствующего номера заказа.
	ErrOrderIDRequired = errors.New("order id is required")
	// Ошибка отсутствующей даты создания.
	ErrCreatedAtRequired = errors.New("order createdAt is required")
	// Ошибка отрицательного или нечислового количества.
	ErrItemQtyInvalid = errors.New("item qty must be a non-negative number")
	// Ошибка отрицательной или нечисловой цены.
	ErrItemPriceInvalid = errors.New("item price must be a non-negative number")
	// ErrOrderNotFound возвращается, если заказ не найден в коллекции.
	ErrOrderNotFound = errors.New("order not found")
	// ErrStoreUnavailable: сетевая ошибка или ошибка хранилища при CRUD-операции.
	ErrStoreUnavailable = errors.New("order store unavailable")
	// ErrSessionNotReady: сессия с хранилищем не установлена.
	ErrSessionNotReady = errors.New("store session is not ready")
	// ErrConfiguration: не хватает параметров подключения при старте.
	ErrConfiguration = errors.New("invalid configuration")
)

// IsNotFound проверяет, что заказ отсутствует.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}

// IsUnavailable проверяет, что операция не дошла до хранилища или упала в нём.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// IsValidation проверяет, что ошибка вызвана нарушением инвариантов заказа.
func IsValidation(err error) bool {
	return errors.Is(err, ErrOrderIDRequired) ||
		errors.Is(err, ErrCreatedAtRequired) ||
		errors.Is(err, ErrItemQtyInvalid) ||
		errors.Is(err, ErrItemPriceInvalid)
}
