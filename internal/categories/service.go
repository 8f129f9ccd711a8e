package categories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spendwise-dev/spendwise/internal/model"
	"github.com/spendwise-dev/spendwise/internal/store"
)

// Store is the category persistence used by Bootstrap.
type Store interface {
	FindCategory(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, c *model.Category) error
	UpdateCategory(ctx context.Context, c *model.Category) error
}

// BootstrapResult counts the rows Bootstrap wrote.
type BootstrapResult struct {
	Created int
	Updated int
}

// Bootstrap makes sure every seed exists. Missing categories are created.
// Existing ones get their income flag reconciled, and their group when the
// seed names one; rows are only written when something changed. Safe to run
// on every startup.
func Bootstrap(ctx context.Context, s Store, seeds []Seed) (BootstrapResult, error) {
	var res BootstrapResult
	for _, seed := range seeds {
		existing, err := s.FindCategory(ctx, seed.Name)
		if errors.Is(err, store.ErrNotFound) {
			c := &model.Category{Name: seed.Name, IsIncome: seed.IsIncome, Group: model.GroupPtr(seed.Group)}
			if err := s.CreateCategory(ctx, c); err != nil {
				// lost a creation race; the row exists now
				if _, ferr := s.FindCategory(ctx, seed.Name); ferr == nil {
					continue
				}
				return res, fmt.Errorf("bootstrapping %q: %w", seed.Name, err)
			}
			res.Created++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("bootstrapping %q: %w", seed.Name, err)
		}

		if reconcile(existing, seed) {
			if err := s.UpdateCategory(ctx, existing); err != nil {
				return res, fmt.Errorf("bootstrapping %q: %w", seed.Name, err)
			}
			res.Updated++
		}
	}
	return res, nil
}

func reconcile(c *model.Category, seed Seed) bool {
	changed := false
	if c.IsIncome != seed.IsIncome {
		c.IsIncome = seed.IsIncome
		changed = true
	}
	if seed.Group != "" && c.GroupName() != string(seed.Group) {
		c.Group = model.GroupPtr(seed.Group)
		changed = true
	}
	if c.IsIncome && c.Group != nil {
		c.Group = nil
		changed = true
	}
	if !c.IsIncome && c.Group == nil {
		c.Group = model.GroupPtr(model.GroupSurplus)
		changed = true
	}
	return changed
}

// SeedPath is the location of the seed file inside a project directory.
func SeedPath(dir string) string {
	return filepath.Join(dir, "categories", "seed.csv")
}

// LoadSeeds reads <dir>/categories/seed.csv, falling back to DefaultSeeds
// when the file does not exist.
func LoadSeeds(dir string) ([]Seed, error) {
	f, err := os.Open(SeedPath(dir))
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSeeds(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()

	seeds, err := ReadSeeds(f)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return seeds, nil
}

// SaveSeeds writes seeds to <dir>/categories/seed.csv.
func SaveSeeds(dir string, seeds []Seed) error {
	path := SeedPath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating categories dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating seed file: %w", err)
	}
	defer f.Close()

	if err := WriteSeeds(f, seeds); err != nil {
		return fmt.Errorf("writing seed file: %w", err)
	}
	return nil
}
