package service

import (
	"errors"
	"fmt"
)

// Ошибки ядра оформления заказа. Все они локальны для одного запроса,
// фатальных для процесса ошибок здесь нет
var (
	// ErrEmptyCart — попытка оформить пустую корзину
	ErrEmptyCart = errors.New("cart is empty")
	// ErrPaymentUnavailable — провайдер платежей недоступен или отклонил запрос;
	// ошибка повторяемая, заказ остается pending
	ErrPaymentUnavailable = errors.New("payment provider unavailable")
	// ErrPaymentNotCompleted — redirect об успехе пришел, но провайдер оплату не подтверждает
	ErrPaymentNotCompleted = errors.New("payment is not completed")
	// ErrAmountMismatch — оплаченная сумма не совпадает с суммой заказа;
	// переход отклоняется, событие логируется как подозрительное
	ErrAmountMismatch = errors.New("paid amount does not match order total")
)

// ValidationError перечисляет все непрошедшие проверку поля разом,
// чтобы форму можно было перерисовать со всеми сообщениями
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d invalid field(s)", len(e.Fields))
}
