package usecase

import (
	"fmt"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

func domainValidation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}
