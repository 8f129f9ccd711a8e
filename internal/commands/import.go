package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/spendwise-dev/spendwise/internal/categorize"
	"github.com/spendwise-dev/spendwise/internal/id"
	"github.com/spendwise-dev/spendwise/internal/importer"
	"github.com/spendwise-dev/spendwise/internal/importlog"
)

type importFlags struct {
	commit        bool
	month         string
	statementType string
	exclude       []string
	jsonOut       bool
	history       bool
}

func (f importFlags) validate() error {
	for _, h := range f.exclude {
		if !id.IsFingerprint(h) {
			return fmt.Errorf("--exclude %q is not a row hash", h)
		}
	}
	return nil
}

func newImportCommand(dir *string) *cobra.Command {
	var f importFlags

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Preview or commit a statement export",
		Long: "Preview or commit a CSV statement export. Without a file, every CSV in\n" +
			"import/ is committed, moved to import/processed/ and recorded in\n" +
			"logs/import-log.csv.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.history {
				return runImportHistory(cmd.OutOrStdout(), cmd.ErrOrStderr(), *dir)
			}
			if err := f.validate(); err != nil {
				return err
			}
			if len(args) == 1 {
				return runImportFile(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), *dir, args[0], f)
			}
			return runImportInbox(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), *dir, f)
		},
	}

	cmd.Flags().BoolVar(&f.commit, "commit", false, "write transactions instead of previewing")
	cmd.Flags().StringVar(&f.month, "month", "", "only import rows in this month (YYYY-MM)")
	cmd.Flags().StringVar(&f.statementType, "statement-type", "debit", "debit or credit (credit flips signs)")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "row fingerprints to skip on commit")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&f.history, "history", false, "list committed imports from logs/import-log.csv")

	return cmd
}

// importSession holds what one CLI import run needs.
type importSession struct {
	p       *project
	svc     *importer.Service
	closeDB func()
}

func newImportSession(dir string, logOut io.Writer) (*importSession, error) {
	p, err := openProject(dir, logOut)
	if err != nil {
		return nil, err
	}
	rules, err := p.rules()
	if err != nil {
		return nil, err
	}
	st, closeDB, err := p.openStore()
	if err != nil {
		return nil, err
	}
	return &importSession{
		p:       p,
		svc:     importer.NewService(st, categorize.NewEngine(rules, st), p.log),
		closeDB: closeDB,
	}, nil
}

func (f importFlags) options(source string, commit bool) importer.Options {
	exclude := make(map[string]bool, len(f.exclude))
	for _, h := range f.exclude {
		exclude[h] = true
	}
	return importer.Options{
		Month:         f.month,
		DryRun:        !commit,
		StatementType: f.statementType,
		Exclude:       exclude,
		Source:        source,
	}
}

func runImportFile(ctx context.Context, out, logOut io.Writer, dir, path string, f importFlags) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	s, err := newImportSession(dir, logOut)
	if err != nil {
		return err
	}
	defer s.closeDB()

	name := filepath.Base(path)
	res, err := s.svc.Import(ctx, data, f.options(name, f.commit))
	if err != nil {
		return err
	}
	if f.commit {
		if err := importlog.Append(s.p.dir, logEntry(name, res)); err != nil {
			return err
		}
	}
	return printResult(out, name, res, f.jsonOut)
}

func runImportInbox(ctx context.Context, out, logOut io.Writer, dir string, f importFlags) error {
	s, err := newImportSession(dir, logOut)
	if err != nil {
		return err
	}
	defer s.closeDB()

	files, err := importer.Scan(s.p.dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "No files to import.")
		return nil
	}

	for _, fi := range files {
		data, err := os.ReadFile(fi.Path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", fi.Name, err)
		}
		res, err := s.svc.Import(ctx, data, f.options(fi.Name, true))
		if err != nil {
			return fmt.Errorf("importing %s: %w", fi.Name, err)
		}
		if err := importlog.Append(s.p.dir, logEntry(fi.Name, res)); err != nil {
			return err
		}
		if err := importer.MarkProcessed(s.p.dir, fi.Name); err != nil {
			return err
		}
		if err := printResult(out, fi.Name, res, f.jsonOut); err != nil {
			return err
		}
	}
	return nil
}

func runImportHistory(out, logOut io.Writer, dir string) error {
	p, err := openProject(dir, logOut)
	if err != nil {
		return err
	}
	entries, err := importlog.Read(p.dir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No imports recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tFILE\tMONTH\tINSERTED\tSKIPPED\tERRORS\tIMPORT ID")
	for _, e := range entries {
		month := e.Month
		if month == "" {
			month = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			e.Timestamp.Format(time.RFC3339), e.File, month, e.Inserted, e.Skipped, e.Errors, e.ImportID)
	}
	return tw.Flush()
}

func logEntry(file string, res *importer.Result) importlog.Entry {
	return importlog.Entry{
		Timestamp: time.Now(),
		ImportID:  res.ImportID,
		File:      file,
		Mode:      res.Mode,
		Month:     res.Month,
		Inserted:  res.Inserted,
		Skipped:   res.Skipped,
		Errors:    res.ErrorsTotal,
	}
}

func printResult(out io.Writer, name string, res *importer.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if res.Mode == importer.ModePreview {
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "DATE\tAMOUNT\tCATEGORY\tGROUP\tIMPORT\tDESCRIPTION\tHASH")
		for _, r := range res.Rows {
			group := "-"
			if r.CategoryGroup != nil {
				group = string(*r.CategoryGroup)
			}
			wouldImport := "yes"
			if !r.WouldImport {
				wouldImport = "no"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.Date, r.Amount, r.SuggestedCategory, group, wouldImport, r.Description, r.Hash)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d rows previewed (%d shown), %d errors\n", name, res.TotalRows, len(res.Rows), res.ErrorsTotal)
	} else {
		fmt.Fprintf(out, "%s: %d inserted, %d skipped, %d errors\n", name, res.Inserted, res.Skipped, res.ErrorsTotal)
	}
	for _, e := range res.Errors {
		fmt.Fprintf(out, "  %s\n", e)
	}
	return nil
}
