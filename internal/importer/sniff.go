package importer

import (
	"strings"
)

const bom = "\ufeff"

// Header aliases, in priority order.
var (
	dateKeys   = []string{"date", "posted date", "transaction date"}
	descKeys   = []string{"description", "details", "memo", "narrative", "name", "payee"}
	amountKeys = []string{"amount", "transaction amount", "amt"}
	creditKeys = []string{"credit", "cr"}
	debitKeys  = []string{"debit", "dr", "withdrawal"}
)

// delimiters in tie-break order.
var delimiters = []rune{',', ';', '\t', '|'}

// DetectDelimiter picks the most frequent of , ; tab | in the header line.
// Ties go to the earlier candidate; a header with none of them is comma
// separated.
func DetectDelimiter(header string) rune {
	header = strings.ReplaceAll(header, bom, "")
	best, bestN := ',', 0
	for _, d := range delimiters {
		if n := strings.Count(header, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

// NormalizeKey lowercases a header name and strips whitespace and BOMs.
func NormalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(k, bom, "")))
}

// firstLine returns data up to the first newline, without a trailing CR.
func firstLine(data string) string {
	if i := strings.IndexByte(data, '\n'); i >= 0 {
		data = data[:i]
	}
	return strings.TrimSuffix(data, "\r")
}

// pick returns the first non-blank value among keys.
func pick(row map[string]string, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := row[k]; ok && strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	return "", false
}

// fields holds the columns a statement row is built from.
type fields struct {
	date, desc, amount, credit, debit string
}

// extract pulls the aliased columns out of a normalized row. ok is false
// when date or description is missing, or when no amount column has a value.
func extract(row map[string]string) (fields, bool) {
	var f fields
	var hasDate, hasDesc bool
	f.date, hasDate = pick(row, dateKeys...)
	f.desc, hasDesc = pick(row, descKeys...)
	amount, hasAmount := pick(row, amountKeys...)
	credit, hasCredit := pick(row, creditKeys...)
	debit, hasDebit := pick(row, debitKeys...)
	f.amount, f.credit, f.debit = amount, credit, debit

	if !hasDate || !hasDesc {
		return f, false
	}
	if !hasAmount && !hasCredit && !hasDebit {
		return f, false
	}
	return f, true
}
