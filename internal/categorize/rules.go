// Package categorize maps transaction descriptions to budgeting categories
// with an ordered keyword rule table.
package categorize

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spendwise-dev/spendwise/internal/model"
)

// Rule assigns Category when any keyword is a substring of the lowercased
// description.
type Rule struct {
	Keywords []string    `yaml:"keywords"`
	Category string      `yaml:"category"`
	Group    model.Group `yaml:"group"`
}

// Uncategorized is the fallback when no rule matches.
var Uncategorized = Rule{Category: "Uncategorized", Group: model.GroupSurplus}

// DefaultRules returns the built-in table. Order is significant: debt
// rules run before essentials, essentials before surplus, and the first
// matching rule wins.
func DefaultRules() []Rule {
	return []Rule{
		// DEBT
		{Keywords: []string{"mortgage"}, Category: "Mortgage", Group: model.GroupDebt},
		{Keywords: []string{"home loan"}, Category: "Home Loan", Group: model.GroupDebt},
		{Keywords: []string{"car loan", "auto loan"}, Category: "Car Loan", Group: model.GroupDebt},
		{Keywords: []string{"student loan"}, Category: "Student Loan", Group: model.GroupDebt},
		{Keywords: []string{"personal loan"}, Category: "Personal Loan", Group: model.GroupDebt},
		{Keywords: []string{"credit card payment", "cc payment", "card payment"}, Category: "Credit Card Payment", Group: model.GroupDebt},
		{Keywords: []string{"emi", "installment"}, Category: "Debt Repayment", Group: model.GroupDebt},

		// ESSENTIAL
		{Keywords: []string{"uber", "lyft"}, Category: "Transport", Group: model.GroupEssential},
		{Keywords: []string{"shell", "exxon"}, Category: "Fuel", Group: model.GroupEssential},
		{Keywords: []string{"whole foods", "trader joe", "walmart"}, Category: "Groceries", Group: model.GroupEssential},
		{Keywords: []string{"comcast", "xfinity", "att", "verizon"}, Category: "Internet", Group: model.GroupEssential},

		// SURPLUS
		{Keywords: []string{"starbucks"}, Category: "Coffee", Group: model.GroupSurplus},
		{Keywords: []string{"mcdonald", "chipotle", "pizza"}, Category: "Eating Out", Group: model.GroupSurplus},
		{Keywords: []string{"amazon", "best buy", "target"}, Category: "Shopping", Group: model.GroupSurplus},
	}
}

// Match returns the first rule matching description, or Uncategorized.
func Match(rules []Rule, description string) Rule {
	d := strings.ToLower(description)
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if kw != "" && strings.Contains(d, strings.ToLower(kw)) {
				return r
			}
		}
	}
	return Uncategorized
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a rules file:
//
//	rules:
//	  - keywords: [netflix, spotify]
//	    category: Subscriptions
//	    group: SURPLUS
//
// An empty list yields the default table.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	if len(f.Rules) == 0 {
		return DefaultRules(), nil
	}
	for i := range f.Rules {
		r := &f.Rules[i]
		r.Category = strings.TrimSpace(r.Category)
		if r.Category == "" {
			return nil, fmt.Errorf("rule %d: category is empty", i+1)
		}
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("rule %d (%s): no keywords", i+1, r.Category)
		}
		g, ok := model.ParseGroup(string(r.Group))
		if !ok {
			return nil, fmt.Errorf("rule %d (%s): invalid group %q", i+1, r.Category, r.Group)
		}
		r.Group = g
	}
	return f.Rules, nil
}

// SaveRules writes rules in the format read by LoadRules.
func SaveRules(path string, rules []Rule) error {
	data, err := yaml.Marshal(rulesFile{Rules: rules})
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}
