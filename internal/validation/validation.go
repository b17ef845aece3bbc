// Package validation содержит функции валидации входных данных.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mmeshcher/moneywise/internal/model"
)

// Ограничения для произвольного начисления баллов.
const (
	MaxPointsAward  = 10000
	MaxReasonLength = 200
)

var (
	// ErrInvalidAmount возвращается при неположительном или слишком большом начислении.
	ErrInvalidAmount = errors.New("invalid points amount")
	// ErrInvalidReason возвращается при пустом или слишком длинном описании начисления.
	ErrInvalidReason = errors.New("invalid points reason")
	// ErrUnknownAction возвращается для неизвестного вида действия.
	ErrUnknownAction = errors.New("unknown action")
)

// ValidatePointsAward проверяет параметры произвольного начисления баллов.
func ValidatePointsAward(amount int, reason string) error {
	if amount <= 0 || amount > MaxPointsAward {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	reason = strings.TrimSpace(reason)
	if reason == "" || utf8.RuneCountInString(reason) > MaxReasonLength {
		return ErrInvalidReason
	}

	return nil
}

// ParseAction проверяет имя действия и возвращает соответствующий model.Action.
func ParseAction(name string) (model.Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, a := range model.Actions() {
		if string(a) == name {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, name)
}
