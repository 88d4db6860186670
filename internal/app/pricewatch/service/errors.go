package service

import "errors"

// Ошибки бизнес-логики для обработки в handlers
var (
	ErrProductNotFound = errors.New("product not found")
	// ErrFetchFailed - первичная загрузка страницы при добавлении товара
	// не удалась; для вызывающего это ошибка запроса, а не сервера
	ErrFetchFailed = errors.New("failed to fetch product page")
)

// Виды ошибок загрузки страницы товара. Для прохода проверки все виды
// равнозначны ("проверка этого товара в этот раз не удалась"),
// различаются только в логах и метриках.
var (
	ErrUnreachable      = errors.New("product page unreachable")
	ErrTitleNotFound    = errors.New("product title not found")
	ErrPriceNotFound    = errors.New("product price not found")
	ErrPriceUnparseable = errors.New("product price unparseable")
)

// fetchErrorKind возвращает метку вида ошибки для метрик
func fetchErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrTitleNotFound):
		return "title_not_found"
	case errors.Is(err, ErrPriceNotFound):
		return "price_not_found"
	case errors.Is(err, ErrPriceUnparseable):
		return "price_unparseable"
	default:
		return "unreachable"
	}
}
