package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the externally visible view of an account. Balance arithmetic
// uses decimal.Decimal throughout; binary floating point would drift on
// monetary values.
type Account struct {
	ID        string
	Balance   decimal.Decimal
	CreatedAt time.Time
}
