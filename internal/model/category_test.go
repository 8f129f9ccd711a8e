package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGroup(t *testing.T) {
	tests := []struct {
		in   string
		want Group
		ok   bool
	}{
		{"ESSENTIAL", GroupEssential, true},
		{" surplus ", GroupSurplus, true},
		{"Debt", GroupDebt, true},
		{"", "", false},
		{"income", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseGroup(tt.in)
		assert.Equal(t, tt.ok, ok, "ParseGroup(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseGroup(%q)", tt.in)
	}
}

func TestCategoryNormalize_IncomeDropsGroup(t *testing.T) {
	c := Category{Name: "  Income ", IsIncome: true, Group: GroupPtr(GroupSurplus)}
	c.Normalize()

	assert.Equal(t, "Income", c.Name)
	assert.Equal(t, "income", c.NameKey)
	assert.Nil(t, c.Group)
	assert.Equal(t, "", c.GroupName())
}

func TestCategoryNormalize_KeepsExpenseGroup(t *testing.T) {
	c := Category{Name: "Eating Out", Group: GroupPtr(GroupSurplus)}
	c.Normalize()

	require.NotNil(t, c.Group)
	assert.Equal(t, "SURPLUS", c.GroupName())
	assert.Equal(t, "eating out", c.NameKey)
}

func TestCategoryNormalize_ExpenseDefaultsToSurplus(t *testing.T) {
	c := Category{Name: "Pets"}
	c.Normalize()

	assert.Equal(t, "SURPLUS", c.GroupName())
}

func TestGroupPtr_Empty(t *testing.T) {
	assert.Nil(t, GroupPtr(""))
}
