// Package store is the relational persistence layer for categories and
// transactions.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/spendwise-dev/spendwise/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Store wraps a gorm connection.
type Store struct {
	db *gorm.DB
}

// New creates a Store. The schema must already be migrated.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FindCategory looks a category up by name, ignoring case and surrounding
// whitespace.
func (s *Store) FindCategory(ctx context.Context, name string) (*model.Category, error) {
	var c model.Category
	err := s.db.WithContext(ctx).Where("name_key = ?", model.NameKey(name)).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding category %q: %w", name, err)
	}
	return &c, nil
}

// CreateCategory inserts c. Income categories lose their group.
func (s *Store) CreateCategory(ctx context.Context, c *model.Category) error {
	c.Normalize()
	if c.Name == "" {
		return fmt.Errorf("category name is empty")
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("creating category %q: %w", c.Name, err)
	}
	return nil
}

// UpdateCategory writes back the income flag and group of c.
func (s *Store) UpdateCategory(ctx context.Context, c *model.Category) error {
	c.Normalize()
	err := s.db.WithContext(ctx).Model(c).
		Select("is_income", "group_type").
		Updates(map[string]any{"is_income": c.IsIncome, "group_type": c.Group}).Error
	if err != nil {
		return fmt.Errorf("updating category %q: %w", c.Name, err)
	}
	return nil
}

// FindOrCreateCategory returns the category named like proto, creating it
// from proto when absent. Concurrent creators race on the unique name key;
// the loser re-reads the winner's row.
func (s *Store) FindOrCreateCategory(ctx context.Context, proto model.Category) (*model.Category, error) {
	existing, err := s.FindCategory(ctx, proto.Name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	c := proto
	c.ID = 0
	c.Normalize()
	if c.Name == "" {
		return nil, fmt.Errorf("category name is empty")
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name_key"}}, DoNothing: true}).
		Create(&c)
	if res.Error != nil {
		return nil, fmt.Errorf("creating category %q: %w", c.Name, res.Error)
	}
	if res.RowsAffected == 0 {
		return s.FindCategory(ctx, c.Name)
	}
	return &c, nil
}

// ListCategories returns every category ordered by lowercase name.
func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	if err := s.db.WithContext(ctx).Order("name_key ASC").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return cats, nil
}

// Ping checks connectivity and returns the server version string.
func (s *Store) Ping(ctx context.Context) (string, error) {
	query := "SELECT version()"
	if s.db.Dialector.Name() == "sqlite" {
		query = "SELECT sqlite_version()"
	}
	var version string
	if err := s.db.WithContext(ctx).Raw(query).Scan(&version).Error; err != nil {
		return "", fmt.Errorf("pinging database: %w", err)
	}
	return version, nil
}
