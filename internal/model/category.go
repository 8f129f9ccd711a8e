package model

import (
	"strings"
	"time"
)

// Group is the budgeting bucket of an expense category.
type Group string

const (
	GroupEssential Group = "ESSENTIAL"
	GroupSurplus   Group = "SURPLUS"
	GroupDebt      Group = "DEBT"
)

// Groups lists the expense groups in display order.
var Groups = []Group{GroupEssential, GroupSurplus, GroupDebt}

// ParseGroup accepts a group name in any case, surrounded by whitespace.
func ParseGroup(s string) (Group, bool) {
	g := Group(strings.ToUpper(strings.TrimSpace(s)))
	switch g {
	case GroupEssential, GroupSurplus, GroupDebt:
		return g, true
	}
	return "", false
}

// GroupPtr returns a pointer to g, or nil for the empty group.
func GroupPtr(g Group) *Group {
	if g == "" {
		return nil
	}
	return &g
}

// Category is a budgeting category. Names are unique ignoring case.
// Income categories never carry a group.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	NameKey   string    `gorm:"size:128;not null;uniqueIndex" json:"-"`
	IsIncome  bool      `gorm:"not null;default:false" json:"isIncome"`
	Group     *Group    `gorm:"column:group_type;size:16" json:"group"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// NameKey returns the lookup key for a category name.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Normalize trims the name and refreshes the lookup key. Income categories
// lose their group; expense categories without one land in SURPLUS.
func (c *Category) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.NameKey = NameKey(c.Name)
	switch {
	case c.IsIncome:
		c.Group = nil
	case c.Group == nil:
		c.Group = GroupPtr(GroupSurplus)
	}
}

// GroupName returns the group as a string, or "" when the category has none.
func (c *Category) GroupName() string {
	if c == nil || c.Group == nil {
		return ""
	}
	return string(*c.Group)
}
