// Package importer turns bank and card statement exports into categorized
// transactions, either as a preview or as committed rows.
package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/spendwise-dev/spendwise/internal/categories"
	"github.com/spendwise-dev/spendwise/internal/id"
	"github.com/spendwise-dev/spendwise/internal/logger"
	"github.com/spendwise-dev/spendwise/internal/model"
	"github.com/spendwise-dev/spendwise/internal/normalize"
)

// Response-size caps. Every row is still processed.
const (
	MaxPreviewRows  = 200
	MaxErrorSamples = 10
)

const (
	ModePreview = "preview"
	ModeCommit  = "commit"
)

// ErrInvalidMonth is returned when the month filter is not YYYY-MM.
var ErrInvalidMonth = errors.New("invalid month")

// Store is the persistence the pipeline needs.
type Store interface {
	categories.Store
	FindOrCreateCategory(ctx context.Context, proto model.Category) (*model.Category, error)
	AppendTransaction(ctx context.Context, t *model.Transaction) error
}

// Guesser suggests a category for an expense description.
type Guesser interface {
	Guess(ctx context.Context, description string) (*model.Category, error)
}

// Options controls a single import.
type Options struct {
	Month         string // YYYY-MM, empty for no filter
	DryRun        bool
	StatementType string // "credit" flips every amount

	// Commit-time edits, keyed by row fingerprint.
	Overrides      map[string]string
	DescOverrides  map[string]string
	GroupOverrides map[string]model.Group
	Exclude        map[string]bool

	Source string // file name, for logging
}

// PreviewRow is one row of a dry run.
type PreviewRow struct {
	Date              string       `json:"date"`
	Description       string       `json:"description"`
	Amount            json.Number  `json:"amount"` // keeps the parsed scale
	SuggestedCategory string       `json:"suggestedCategory"`
	CategoryGroup     *model.Group `json:"categoryGroup"`
	Duplicate         bool         `json:"duplicate"`
	InTargetMonth     bool         `json:"inTargetMonth"`
	Hash              string       `json:"hash"`
	WouldImport       bool         `json:"wouldImport"`
}

// Result summarizes an import. Rows and TotalRows are only meaningful in
// preview mode; Inserted and Skipped in commit mode.
type Result struct {
	ImportID    string
	Mode        string
	Month       string
	Rows        []PreviewRow
	TotalRows   int
	Inserted    int
	Skipped     int
	Errors      []string
	ErrorsTotal int
}

// MarshalJSON writes the mode-specific response shape.
func (r *Result) MarshalJSON() ([]byte, error) {
	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}
	if r.Mode == ModePreview {
		rows := r.Rows
		if rows == nil {
			rows = []PreviewRow{}
		}
		return json.Marshal(struct {
			Mode         string       `json:"mode"`
			Month        string       `json:"month"`
			Rows         []PreviewRow `json:"rows"`
			TotalRows    int          `json:"totalRows"`
			ErrorsSample []string     `json:"errorsSample"`
			ErrorsTotal  int          `json:"errorsTotal"`
		}{r.Mode, r.Month, rows, r.TotalRows, errs, r.ErrorsTotal})
	}
	return json.Marshal(struct {
		Mode         string   `json:"mode"`
		Month        string   `json:"month"`
		Inserted     int      `json:"inserted"`
		Skipped      int      `json:"skipped"`
		ErrorsSample []string `json:"errorsSample"`
		ErrorsTotal  int      `json:"errorsTotal"`
	}{r.Mode, r.Month, r.Inserted, r.Skipped, errs, r.ErrorsTotal})
}

// Service runs imports against a store.
type Service struct {
	store   Store
	guesser Guesser
	log     zerolog.Logger
}

// NewService creates an import Service. Imports log through the logger
// carried by their context when there is one, and through log otherwise.
func NewService(store Store, guesser Guesser, log zerolog.Logger) *Service {
	return &Service{store: store, guesser: guesser, log: log}
}

// run holds the state of a single import.
type run struct {
	opts     Options
	month    *model.Month
	credit   bool
	seq      int
	preview  []PreviewRow
	inserted int
	skipped  int
	errors   []string
}

func (r *run) fail(line int, err error) {
	r.skipped++
	r.errors = append(r.errors, fmt.Sprintf("line %d: %s", line, err.Error()))
}

var errMissingFields = errors.New("missing required fields")

// Import reads a delimited statement export and previews or commits it.
// Row problems are collected in the result; only store failures during
// setup, a bad month or an unreadable header abort the import.
func (s *Service) Import(ctx context.Context, data []byte, opts Options) (*Result, error) {
	r := &run{
		opts:   opts,
		credit: strings.EqualFold(strings.TrimSpace(opts.StatementType), "credit"),
	}
	if m := strings.TrimSpace(opts.Month); m != "" {
		parsed, err := model.ParseMonth(m)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMonth, opts.Month)
		}
		r.month = &parsed
	}

	if _, err := categories.Bootstrap(ctx, s.store, categories.BaseSeeds()); err != nil {
		return nil, fmt.Errorf("bootstrapping base categories: %w", err)
	}

	data = bytes.TrimPrefix(data, []byte(bom))
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = DetectDelimiter(firstLine(string(data)))
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	switch {
	case errors.Is(err, io.EOF):
	case err != nil:
		return nil, fmt.Errorf("reading header: %w", err)
	default:
		if err := s.readRows(ctx, r, cr, header); err != nil {
			return nil, err
		}
	}

	res := r.result()
	log := logger.FromContextOr(ctx, s.log).With().
		Str("component", "importer").
		Str("import_id", res.ImportID).
		Logger()
	for _, e := range r.errors {
		log.Debug().Msg(e)
	}
	log.Info().
		Str("source", opts.Source).
		Str("mode", res.Mode).
		Str("month", res.Month).
		Int("rows", len(r.preview)).
		Int("inserted", res.Inserted).
		Int("skipped", res.Skipped).
		Int("errors", res.ErrorsTotal).
		Msg("import finished")
	return res, nil
}

// readRows consumes the data records. line counts the header as line 1.
func (s *Service) readRows(ctx context.Context, r *run, cr *csv.Reader, header []string) error {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = NormalizeKey(h)
	}

	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return fmt.Errorf("reading line %d: %w", line, err)
			}
			r.fail(line, err)
			continue
		}
		if len(rec) != len(header) {
			r.fail(line, fmt.Errorf("record has %d fields, header has %d", len(rec), len(header)))
			continue
		}

		if err := s.processRecord(ctx, r, line, header, keys, rec); err != nil {
			r.fail(line, err)
		}
	}
}

func (s *Service) processRecord(ctx context.Context, r *run, line int, header, keys, rec []string) error {
	raw := make(map[string]string, len(rec))
	row := make(map[string]string, len(rec))
	for i, v := range rec {
		raw[header[i]] = v
		row[keys[i]] = v
	}

	f, ok := extract(row)
	if !ok {
		return errMissingFields
	}

	stmt, err := parseRow(line, f, raw)
	if err != nil {
		return err
	}
	if r.credit {
		stmt.Amount = stmt.Amount.Neg()
	}

	cat, err := s.suggest(ctx, stmt)
	if err != nil {
		return err
	}

	r.seq++
	desc := strings.TrimSpace(stmt.Description)
	hash := id.Fingerprint(stmt.Date, desc, stmt.Amount, r.seq)
	inMonth := r.month == nil || r.month.Contains(stmt.Date)

	if r.opts.DryRun {
		r.preview = append(r.preview, PreviewRow{
			Date:              stmt.Date.Format("2006-01-02"),
			Description:       desc,
			Amount:            json.Number(normalize.PlainString(stmt.Amount)),
			SuggestedCategory: cat.Name,
			CategoryGroup:     cat.Group,
			InTargetMonth:     inMonth,
			Hash:              hash,
			WouldImport:       inMonth,
		})
		return nil
	}

	if d := strings.TrimSpace(r.opts.DescOverrides[hash]); d != "" {
		desc = d
	}
	if name := strings.TrimSpace(r.opts.Overrides[hash]); name != "" {
		cat, err = s.override(ctx, name, r.opts.GroupOverrides[hash])
		if err != nil {
			return err
		}
	}

	if !inMonth || r.opts.Exclude[hash] {
		r.skipped++
		return nil
	}

	rawJSON, err := json.Marshal(stmt.Raw)
	if err != nil {
		return fmt.Errorf("encoding raw row: %w", err)
	}
	t := &model.Transaction{
		PostedAt:    stmt.Date,
		Description: desc,
		Amount:      stmt.Amount,
		Category:    cat,
		Raw:         datatypes.JSON(rawJSON),
		Hash:        hash,
	}
	if err := s.store.AppendTransaction(ctx, t); err != nil {
		return err
	}
	r.inserted++
	return nil
}

func parseRow(line int, f fields, raw map[string]string) (model.StatementRow, error) {
	date, err := normalize.ParseDate(f.date)
	if err != nil {
		return model.StatementRow{}, err
	}
	amount, err := normalize.ParseAmount(f.amount, f.credit, f.debit)
	if err != nil {
		return model.StatementRow{}, err
	}
	return model.StatementRow{
		Line:        line,
		Date:        date,
		Description: f.desc,
		Amount:      amount,
		Raw:         raw,
	}, nil
}

// suggest picks Income for money in and asks the guesser otherwise.
func (s *Service) suggest(ctx context.Context, stmt model.StatementRow) (*model.Category, error) {
	if stmt.Amount.IsPositive() {
		return s.income(ctx)
	}
	return s.guesser.Guess(ctx, stmt.Description)
}

func (s *Service) income(ctx context.Context) (*model.Category, error) {
	return s.store.FindOrCreateCategory(ctx, model.Category{Name: categories.IncomeName, IsIncome: true})
}

// override resolves a user-chosen category name. Unknown names become new
// expense categories in group, or SURPLUS when no group was chosen.
func (s *Service) override(ctx context.Context, name string, group model.Group) (*model.Category, error) {
	if strings.EqualFold(name, categories.IncomeName) {
		return s.income(ctx)
	}
	if group == "" {
		group = model.GroupSurplus
	}
	return s.store.FindOrCreateCategory(ctx, model.Category{Name: name, Group: model.GroupPtr(group)})
}

func (r *run) result() *Result {
	res := &Result{
		ImportID:    uuid.NewString(),
		Mode:        ModeCommit,
		Month:       r.opts.Month,
		Inserted:    r.inserted,
		Skipped:     r.skipped,
		Errors:      r.errors,
		ErrorsTotal: len(r.errors),
	}
	if len(res.Errors) > MaxErrorSamples {
		res.Errors = res.Errors[:MaxErrorSamples]
	}
	if r.opts.DryRun {
		res.Mode = ModePreview
		res.TotalRows = len(r.preview)
		res.Rows = r.preview
		if len(res.Rows) > MaxPreviewRows {
			res.Rows = res.Rows[:MaxPreviewRows]
		}
	}
	return res
}
