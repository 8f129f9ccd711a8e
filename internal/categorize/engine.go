package categorize

import (
	"context"

	"github.com/spendwise-dev/spendwise/internal/model"
)

// CategoryResolver finds a category by name or creates it from the given
// prototype.
type CategoryResolver interface {
	FindOrCreateCategory(ctx context.Context, proto model.Category) (*model.Category, error)
}

// Engine resolves rule matches to stored categories.
type Engine struct {
	rules    []Rule
	resolver CategoryResolver
}

// NewEngine creates an Engine. A nil rule slice uses DefaultRules.
func NewEngine(rules []Rule, resolver CategoryResolver) *Engine {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Engine{rules: rules, resolver: resolver}
}

// Rules returns the engine's rule table.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Guess returns the category for an expense description, creating it with
// the rule's group if it does not exist yet.
func (e *Engine) Guess(ctx context.Context, description string) (*model.Category, error) {
	r := Match(e.rules, description)
	return e.resolver.FindOrCreateCategory(ctx, model.Category{
		Name:  r.Category,
		Group: model.GroupPtr(r.Group),
	})
}
