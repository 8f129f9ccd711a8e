package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"

	"github.com/spendwise-dev/spendwise/internal/model"
)

// AppendTransaction inserts t. The category is referenced by t.CategoryID;
// t.Category is never written.
func (s *Store) AppendTransaction(ctx context.Context, t *model.Transaction) error {
	if t.Category != nil && t.CategoryID == nil {
		id := t.Category.ID
		t.CategoryID = &id
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(t).Error; err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}
	return nil
}

// ListTransactions returns transactions with their categories, oldest
// first. A nil month lists everything.
func (s *Store) ListTransactions(ctx context.Context, month *model.Month) ([]model.Transaction, error) {
	q := s.db.WithContext(ctx).Preload("Category").Order("posted_at ASC").Order("id ASC")
	if month != nil {
		q = q.Where("posted_at >= ? AND posted_at <= ?", month.Start(), month.End())
	}
	var txns []model.Transaction
	if err := q.Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return txns, nil
}

// MonthlySummary totals a month's income and expenses. Expenses are
// reported as positive magnitudes; ByGroup only counts expenses whose
// category has a group.
type MonthlySummary struct {
	Month    string
	Income   decimal.Decimal
	Expenses decimal.Decimal
	ByGroup  map[model.Group]decimal.Decimal
	Net      decimal.Decimal
}

// SummarizeMonth aggregates the month's transactions by sign and group.
func (s *Store) SummarizeMonth(ctx context.Context, month model.Month) (*MonthlySummary, error) {
	txns, err := s.ListTransactions(ctx, &month)
	if err != nil {
		return nil, err
	}

	sum := &MonthlySummary{
		Month:    month.String(),
		Income:   decimal.Zero,
		Expenses: decimal.Zero,
		ByGroup:  make(map[model.Group]decimal.Decimal, len(model.Groups)),
	}
	for _, g := range model.Groups {
		sum.ByGroup[g] = decimal.Zero
	}

	for _, t := range txns {
		switch {
		case t.Amount.IsPositive():
			sum.Income = sum.Income.Add(t.Amount)
		case t.Amount.IsNegative():
			sum.Expenses = sum.Expenses.Add(t.Amount.Abs())
			if t.Category != nil && t.Category.Group != nil {
				g := *t.Category.Group
				sum.ByGroup[g] = sum.ByGroup[g].Add(t.Amount.Abs())
			}
		}
	}
	sum.Net = sum.Income.Sub(sum.Expenses)
	return sum, nil
}

// Months returns every month that has at least one transaction, newest
// first.
func (s *Store) Months(ctx context.Context) ([]string, error) {
	var txns []model.Transaction
	if err := s.db.WithContext(ctx).Select("posted_at").Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("listing months: %w", err)
	}
	seen := make(map[string]bool)
	var months []string
	for _, t := range txns {
		m := model.MonthOf(t.PostedAt).String()
		if !seen[m] {
			seen[m] = true
			months = append(months, m)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months, nil
}
