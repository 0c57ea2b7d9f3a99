// Package pairfile implements the bilingual pair table: an ordered mapping
// from source text to target text, loaded from the tabular files translators
// actually hand back (CSV, TSV, or Excel workbooks).
package pairfile

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ---------------------------------------------------------------------------
// Pair table
// ---------------------------------------------------------------------------

// Pair is a single (source, target) row.
type Pair struct {
	Source string
	Target string
}

// Table maps source text to target text, preserving first-seen row order.
// Rows with an empty source or target (after trimming) are dropped on Add;
// when a source repeats, the last row read wins.
type Table struct {
	order  []string
	values map[string]string
}

// New returns an empty table.
func New() *Table {
	return &Table{values: make(map[string]string)}
}

// Add inserts a pair. Both sides are trimmed; the row is ignored when either
// side ends up empty. A repeated source keeps its original position but takes
// the newer target.
func (t *Table) Add(source, target string) {
	source = strings.TrimSpace(source)
	target = strings.TrimSpace(target)
	if source == "" || target == "" {
		return
	}
	if _, exists := t.values[source]; !exists {
		t.order = append(t.order, source)
	}
	t.values[source] = target
}

// Get returns the target for a source text.
func (t *Table) Get(source string) (string, bool) {
	v, ok := t.values[source]
	return v, ok
}

// Len returns the number of usable pairs.
func (t *Table) Len() int {
	return len(t.order)
}

// Sources returns the source texts in first-seen order.
func (t *Table) Sources() []string {
	return append([]string(nil), t.order...)
}

// Pairs returns all pairs in first-seen order.
func (t *Table) Pairs() []Pair {
	pairs := make([]Pair, 0, len(t.order))
	for _, s := range t.order {
		pairs = append(pairs, Pair{Source: s, Target: t.values[s]})
	}
	return pairs
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Options controls how tabular input is read.
type Options struct {
	// SrcCol and TgtCol are zero-based column indexes (defaults 0 and 1).
	SrcCol int
	TgtCol int
	// Sheet selects the worksheet for Excel input; empty means the first one.
	Sheet string
	// NoHeader treats the first row as data instead of a header.
	NoHeader bool
}

// Load reads a pair table from path, picking the format by file extension:
// .xlsx/.xlsm via excelize, .tsv/.txt as tab-separated, anything else as CSV.
func Load(path string, opts Options) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return loadExcel(path, opts)
	case ".tsv", ".txt":
		return loadDelimited(path, '\t', opts)
	default:
		return loadDelimited(path, ',', opts)
	}
}

func loadDelimited(path string, comma rune, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1 // translators pad rows unevenly
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return fromRows(rows, opts), nil
}

func loadExcel(path string, opts Options) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%s: workbook has no sheets", path)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", sheet, path, err)
	}
	return fromRows(rows, opts), nil
}

// fromRows builds a table from raw rows, applying header skip and column
// selection. Rows too short for either column are dropped.
func fromRows(rows [][]string, opts Options) *Table {
	if !opts.NoHeader && len(rows) > 0 {
		rows = rows[1:]
	}
	t := New()
	for _, row := range rows {
		if opts.SrcCol >= len(row) || opts.TgtCol >= len(row) {
			continue
		}
		t.Add(row[opts.SrcCol], row[opts.TgtCol])
	}
	return t
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// header row used by Write; the same labels translators see in memoQ exports.
var header = []string{"Source", "Target"}

// Write writes pairs to path, picking CSV or Excel by file extension.
func Write(path string, pairs []Pair) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return WriteXLSX(path, pairs)
	default:
		return WriteCSV(path, pairs)
	}
}

// WriteCSV writes pairs as a two-column CSV with a header row. The file is
// written in one shot so a failed run never leaves a truncated report behind.
func WriteCSV(path string, pairs []Pair) error {
	var b strings.Builder
	w := csv.NewWriter(&b)
	records := [][]string{header}
	for _, p := range pairs {
		records = append(records, []string{p.Source, p.Target})
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteXLSX writes pairs as a two-column worksheet with a header row.
func WriteXLSX(path string, pairs []Pair) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{header[0], header[1]}); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	for i, p := range pairs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{p.Source, p.Target}); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
