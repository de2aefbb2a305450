package domain

import "errors"

var (
	// ErrUpstreamUnavailable возвращается, когда модель не ответила или ответ непригоден.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrValidationShortfall означает, что после всех попыток не набралось нужное число элементов.
	ErrValidationShortfall = errors.New("validation shortfall")

	// ErrEntitlementDenied возвращается, когда у пользователя нет доступа.
	ErrEntitlementDenied = errors.New("entitlement denied")

	// ErrNotFound возвращается, когда сущность не найдена.
	ErrNotFound = errors.New("not found")

	// ErrPersistence оборачивает ошибки хранилища.
	ErrPersistence = errors.New("persistence failure")

	// ErrForbidden возвращается, когда действие требует прав администратора.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadySubscribed возвращается при попытке повторно оформить активную подписку.
	ErrAlreadySubscribed = errors.New("user already has an active subscription")

	// ErrInvalidSignature возвращается, когда подпись платежа не совпала.
	ErrInvalidSignature = errors.New("invalid payment signature")

	// ErrConflict возвращается при нарушении уникальности.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput возвращается при некорректных входных данных.
	ErrInvalidInput = errors.New("invalid input")
)

// DeniedError описывает отказ в доступе с причиной для пользователя.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return e.Reason
}

// Unwrap позволяет сравнивать через errors.Is(err, ErrEntitlementDenied).
func (e *DeniedError) Unwrap() error {
	return ErrEntitlementDenied
}

// CouponError описывает причину, по которой купон нельзя применить.
type CouponError struct {
	Reason string
}

func (e *CouponError) Error() string {
	return e.Reason
}

// Unwrap сводит ошибку купона к ErrInvalidInput.
func (e *CouponError) Unwrap() error {
	return ErrInvalidInput
}
