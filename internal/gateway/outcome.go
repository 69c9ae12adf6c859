package gateway

import (
	"errors"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
)

// Outcome отделяет "пусто" от "сломано" для вызывающего кода.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeNotFound
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "failed"
	}
}

// Classify сводит ошибку операции шлюза к Outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrOrderNotFound):
		return OutcomeNotFound
	default:
		return OutcomeFailed
	}
}
