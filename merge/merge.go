// Package merge implements the bilingual merge operation: it writes pair
// table translations into every matching segment of an XLIFF document and
// reports the segments that had no match.
//
// Matching is exact, on the trimmed plain text of each <source> element —
// inline markup and namespace prefixes never influence a match. Segments
// without a match are not errors; they are collected and written to a
// side-car CSV so the translator can fill the gaps.
package merge

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adhamw/xliffkit/pairfile"
	"github.com/adhamw/xliffkit/xliff"
)

// StateTranslated is the target state written to updated segments.
const StateTranslated = "translated"

// missingSuffix is appended to the output stem to name the no-match report.
const missingSuffix = "_missing_sources"

// missingHeader is the report's single column header, matching the label
// memoQ users already exchange in review spreadsheets.
const missingHeader = "SourceWithoutMatch"

// ErrEmptyPairTable is returned when the pair table has no usable rows.
// The document is not touched in that case.
var ErrEmptyPairTable = errors.New("pair table has no usable pairs")

// ParseError wraps a failure to read or parse the input document.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("loading document %s: %v", e.Path, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// WriteError wraps a failure to persist the merged document or the report.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("writing %s: %v", e.Path, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// Report summarizes one merge run.
type Report struct {
	// TotalTransUnits counts the units visited: every trans-unit with a
	// source child whose plain text is non-empty.
	TotalTransUnits int
	// UpdatedSegments counts the units that matched a pair and were updated.
	UpdatedSegments int
	// MissingSourcesCount is the number of distinct source texts that had
	// no match (duplicates in the document count once).
	MissingSourcesCount int
	// MissingSourcesPath is where the no-match CSV was written.
	MissingSourcesPath string
}

// Merge reads the XLIFF document at docPath, writes the translation of every
// source text found in pairs into the corresponding <target> (creating it
// when absent), marks updated segments as translated, and writes the result
// to outPath. Distinct source texts with no pair are written, sorted, to a
// CSV next to outPath.
//
// targetLang is set as xml:lang on every written target. When outPath equals
// docPath the caller is expected to have backed up the original first.
func Merge(docPath string, pairs *pairfile.Table, outPath, targetLang string) (*Report, error) {
	if pairs == nil || pairs.Len() == 0 {
		return nil, ErrEmptyPairTable
	}

	doc, err := xliff.ParseFile(docPath)
	if err != nil {
		return nil, &ParseError{Path: docPath, Err: err}
	}

	total, updated, missing := apply(doc, pairs, targetLang)

	if err := doc.WriteFile(outPath); err != nil {
		return nil, &WriteError{Path: outPath, Err: err}
	}

	missingPath := MissingReportPath(outPath)
	distinct := dedupSorted(missing)
	if err := writeMissingReport(missingPath, distinct); err != nil {
		return nil, &WriteError{Path: missingPath, Err: err}
	}

	return &Report{
		TotalTransUnits:     total,
		UpdatedSegments:     updated,
		MissingSourcesCount: len(distinct),
		MissingSourcesPath:  missingPath,
	}, nil
}

// apply walks every trans-unit and classifies it exactly once: skipped
// (no source child or empty plain text — not counted), updated, or missing.
// Identical source texts repeated in the document are each updated on their
// own; the pair table carries one translation for all of them.
func apply(doc *xliff.Document, pairs *pairfile.Table, targetLang string) (total, updated int, missing []string) {
	for _, tu := range doc.TransUnits() {
		src := tu.Child("source")
		if src == nil {
			continue
		}
		plain := strings.TrimSpace(src.PlainText())
		if plain == "" {
			continue
		}
		total++

		translation, ok := pairs.Get(plain)
		if !ok {
			missing = append(missing, plain)
			continue
		}

		target := tu.EnsureChild("target")
		target.SetText(translation)
		target.SetAttr("xml", "lang", targetLang)
		target.SetAttr("", "state", StateTranslated)
		tu.SetAttr("", "approved", "yes")
		updated++
	}
	return total, updated, missing
}

// MissingReportPath derives the no-match report path from the output
// document path: same directory, same stem, fixed suffix.
func MissingReportPath(outPath string) string {
	stem := strings.TrimSuffix(outPath, filepath.Ext(outPath))
	return stem + missingSuffix + ".csv"
}

func dedupSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// writeMissingReport writes the single-column no-match CSV in one shot, so a
// failed run never leaves a truncated report behind.
func writeMissingReport(path string, sources []string) error {
	var b strings.Builder
	w := csv.NewWriter(&b)
	records := [][]string{{missingHeader}}
	for _, s := range sources {
		records = append(records, []string{s})
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}
