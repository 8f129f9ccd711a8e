// Package categories seeds and reconciles the category taxonomy.
package categories

import "github.com/spendwise-dev/spendwise/internal/model"

// Seed describes a category that should exist. An empty Group never clears
// a group that was set later.
type Seed struct {
	Name     string
	IsIncome bool
	Group    model.Group // empty for income
}

// IncomeName is the name of the single income category.
const IncomeName = "Income"

// UncategorizedName is the fallback expense category.
const UncategorizedName = "Uncategorized"

// DefaultSeeds returns the full taxonomy.
func DefaultSeeds() []Seed {
	return []Seed{
		{Name: "Rent", Group: model.GroupEssential},
		{Name: "Utilities", Group: model.GroupEssential},
		{Name: "Groceries", Group: model.GroupEssential},
		{Name: "Fuel", Group: model.GroupEssential},
		{Name: "Transport", Group: model.GroupEssential},
		{Name: "Health Insurance", Group: model.GroupEssential},
		{Name: "Medical", Group: model.GroupEssential},
		{Name: "Internet", Group: model.GroupEssential},
		{Name: "Phone", Group: model.GroupEssential},

		{Name: "Eating Out", Group: model.GroupSurplus},
		{Name: "Coffee", Group: model.GroupSurplus},
		{Name: "Shopping", Group: model.GroupSurplus},
		{Name: "Entertainment", Group: model.GroupSurplus},
		{Name: "Travel", Group: model.GroupSurplus},
		{Name: "Subscriptions", Group: model.GroupSurplus},
		{Name: UncategorizedName, Group: model.GroupSurplus},

		{Name: "Mortgage", Group: model.GroupDebt},
		{Name: "Home Loan", Group: model.GroupDebt},
		{Name: "Car Loan", Group: model.GroupDebt},
		{Name: "Student Loan", Group: model.GroupDebt},
		{Name: "Personal Loan", Group: model.GroupDebt},
		{Name: "Credit Card Payment", Group: model.GroupDebt},
		{Name: "Debt Repayment", Group: model.GroupDebt},

		{Name: IncomeName, IsIncome: true},
	}
}

// BaseSeeds returns the subset bootstrapped before every import.
func BaseSeeds() []Seed {
	return []Seed{
		{Name: UncategorizedName, Group: model.GroupSurplus},
		{Name: IncomeName, IsIncome: true},
		{Name: "Groceries", Group: model.GroupEssential},
		{Name: "Transport", Group: model.GroupEssential},
		{Name: "Fuel", Group: model.GroupEssential},
		{Name: "Coffee", Group: model.GroupSurplus},
		{Name: "Eating Out", Group: model.GroupSurplus},
		{Name: "Shopping", Group: model.GroupSurplus},
		{Name: "Mortgage", Group: model.GroupDebt},
		{Name: "Car Loan", Group: model.GroupDebt},
		{Name: "Student Loan", Group: model.GroupDebt},
		{Name: "Credit Card Payment", Group: model.GroupDebt},
	}
}
