package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Transaction is a persisted statement line.
type Transaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	PostedAt    time.Time       `gorm:"index;not null" json:"postedAt"`
	Description string          `gorm:"size:512;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"` // negative = expense, positive = income
	CategoryID  *uint           `gorm:"index" json:"categoryId"`
	Category    *Category       `json:"category,omitempty"`
	Raw         datatypes.JSON  `json:"raw,omitempty"`                       // source row as a JSON object
	Hash        string          `gorm:"size:64;index" json:"hash,omitempty"` // per-import fingerprint, not unique
	CreatedAt   time.Time       `json:"-"`
}

// StatementRow is one parsed, normalized line of a statement export.
type StatementRow struct {
	Line        int
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Raw         map[string]string
}
