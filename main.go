// xliffkit — bilingual XLIFF merge tool for CAT workflows.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adhamw/xliffkit/config"
	"github.com/adhamw/xliffkit/i18n"
	"github.com/adhamw/xliffkit/langmeta"
	"github.com/adhamw/xliffkit/merge"
	"github.com/adhamw/xliffkit/pairfile"
	"github.com/adhamw/xliffkit/xliff"
	"github.com/spf13/cobra"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "xliffkit",
		Short: "Bilingual XLIFF merge tool for CAT workflows",
		Long: `xliffkit — merge translation tables into XLIFF bilingual documents.

Takes the bilingual file a CAT tool exported (XLIFF 1.2, memoQ MQXLIFF)
and the two-column table a translator filled in (CSV, TSV, or Excel),
writes each translation into the matching segment, marks it translated,
and reports every segment that had no match.

Commands:
  merge       Merge a translation table into an XLIFF document
  extract     Export (source, target) pairs from an XLIFF document
  status      Show document translation statistics

Matching is exact, on the plain text of each <source> — inline markup
and namespace prefixes are ignored. Segments without a match are listed
in a *_missing_sources.csv next to the output document.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMergeCmd(),
		newExtractCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("xliffkit version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// merge (the core operation)
// ---------------------------------------------------------------------------

func newMergeCmd() *cobra.Command {
	var (
		xliffPath  string
		pairsPath  string
		outPath    string
		targetLang string
		srcCol     int
		tgtCol     int
		sheet      string
		noHeader   bool
	)

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge a translation table into an XLIFF document",
		Long: `Merge a two-column translation table into an XLIFF document.

Every trans-unit whose source plain text exactly matches a table row gets
its target replaced, its state set to "translated" and the unit approved.
Sources with no table row are written to <out>_missing_sources.csv.

Defaults for language, columns and output naming can be placed in a
.xliffkit.yaml in the working directory; flags override it. When --out
resolves to the input path, the original is backed up to <input>.bak
before it is overwritten.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("src-col") {
				srcCol = cfg.SourceColumn
			}
			if !cmd.Flags().Changed("tgt-col") {
				tgtCol = cfg.TargetColumn
			}
			if sheet == "" {
				sheet = cfg.Sheet
			}
			if !cmd.Flags().Changed("no-header") {
				noHeader = cfg.NoHeader
			}
			if targetLang == "" {
				targetLang = cfg.TargetLang
			}
			targetLang = langmeta.Normalize(targetLang)
			if outPath == "" {
				outPath = deriveOutPath(xliffPath, cfg.OutSuffix)
			}

			return runMerge(xliffPath, pairsPath, outPath, targetLang, pairfile.Options{
				SrcCol:   srcCol,
				TgtCol:   tgtCol,
				Sheet:    sheet,
				NoHeader: noHeader,
			})
		},
	}

	cmd.Flags().StringVarP(&xliffPath, "xliff", "x", "", "Input XLIFF/MQXLIFF document (required)")
	cmd.Flags().StringVarP(&pairsPath, "pairs", "p", "", "Translation table: CSV, TSV, or XLSX (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output document path (default: input stem + suffix)")
	cmd.Flags().StringVarP(&targetLang, "target-lang", "l", "", "xml:lang for written targets (default from config, else ar-EG)")
	cmd.Flags().IntVar(&srcCol, "src-col", 0, "Zero-based source column in the table")
	cmd.Flags().IntVar(&tgtCol, "tgt-col", 1, "Zero-based target column in the table")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet name for Excel tables (default: first sheet)")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "Treat the table's first row as data, not a header")
	cmd.MarkFlagRequired("xliff")
	cmd.MarkFlagRequired("pairs")

	return cmd
}

func runMerge(xliffPath, pairsPath, outPath, targetLang string, opts pairfile.Options) error {
	pairs, err := pairfile.Load(pairsPath, opts)
	if err != nil {
		return err
	}
	if pairs.Len() == 0 {
		return fmt.Errorf("%s: %w", pairsPath, merge.ErrEmptyPairTable)
	}
	logInfo(i18n.T("Loaded %d translation pairs from %s"), pairs.Len(), pairsPath)

	meta := langmeta.Resolve(targetLang)
	logInfo(i18n.T("Target language: %s"), fmt.Sprintf("%s %s [%s]", meta.Flag, meta.Name, targetLang))

	// The merge core never silently overwrites its own input; backing the
	// original up first is this caller's job.
	if samePath(xliffPath, outPath) {
		backup := xliffPath + ".bak"
		if err := copyFile(xliffPath, backup); err != nil {
			return fmt.Errorf("backing up %s: %w", xliffPath, err)
		}
		logWarning(i18n.T("Output equals input. Backed up original to: %s"), backup)
	}

	rep, err := merge.Merge(xliffPath, pairs, outPath, targetLang)
	if err != nil {
		return err
	}

	logSuccess(i18n.T("Merge completed."))
	fmt.Fprintf(os.Stderr, "  "+i18n.T("Total trans-units: %d")+"\n", rep.TotalTransUnits)
	fmt.Fprintf(os.Stderr, "  "+i18n.T("Updated segments: %d")+"\n", rep.UpdatedSegments)
	fmt.Fprintf(os.Stderr, "  "+i18n.T("No-match sources: %d")+"\n", rep.MissingSourcesCount)
	fmt.Fprintf(os.Stderr, "  "+i18n.T("No-match report: %s")+"\n", rep.MissingSourcesPath)
	fmt.Fprintf(os.Stderr, "  "+i18n.T("Merged document: %s")+"\n", outPath)
	return nil
}

// ---------------------------------------------------------------------------
// extract (reverse direction: document -> pair table)
// ---------------------------------------------------------------------------

func newExtractCmd() *cobra.Command {
	var (
		xliffPath string
		outPath   string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Export (source, target) pairs from an XLIFF document",
		Long: `Export the plain-text (source, target) pairs of every trans-unit to a
two-column table — the file a translator fills in and merges back.

The output format follows the file extension: .xlsx for an Excel
workbook, anything else for CSV.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				outPath = strings.TrimSuffix(xliffPath, filepath.Ext(xliffPath)) + "_pairs.csv"
			}
			return runExtract(xliffPath, outPath)
		},
	}

	cmd.Flags().StringVarP(&xliffPath, "xliff", "x", "", "Input XLIFF/MQXLIFF document (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output table path (default: input stem + _pairs.csv)")
	cmd.MarkFlagRequired("xliff")

	return cmd
}

func runExtract(xliffPath, outPath string) error {
	doc, err := xliff.ParseFile(xliffPath)
	if err != nil {
		return err
	}

	var pairs []pairfile.Pair
	for _, tu := range doc.TransUnits() {
		src := tu.Child("source")
		if src == nil {
			continue
		}
		source := strings.TrimSpace(src.PlainText())
		if source == "" {
			continue
		}
		target := ""
		if tgt := tu.Child("target"); tgt != nil {
			target = strings.TrimSpace(tgt.PlainText())
		}
		pairs = append(pairs, pairfile.Pair{Source: source, Target: target})
	}

	if err := pairfile.Write(outPath, pairs); err != nil {
		return err
	}
	logSuccess(i18n.T("Extracted %d segments to %s"), len(pairs), outPath)
	return nil
}

// ---------------------------------------------------------------------------
// status (read-only: document statistics)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var xliffPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show document translation statistics",
		Long: `Show translation statistics for an XLIFF document: languages, total
trans-units, and how many already carry a translated target. Does not
modify any files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(xliffPath)
		},
	}

	cmd.Flags().StringVarP(&xliffPath, "xliff", "x", "", "XLIFF/MQXLIFF document (required)")
	cmd.MarkFlagRequired("xliff")

	return cmd
}

func runStatus(xliffPath string) error {
	doc, err := xliff.ParseFile(xliffPath)
	if err != nil {
		return err
	}

	srcLang, tgtLang := "", ""
	if file := doc.Find("file"); file != nil {
		srcLang, _ = file.AttrValue("source-language")
		tgtLang, _ = file.AttrValue("target-language")
	}

	total, translated := 0, 0
	for _, tu := range doc.TransUnits() {
		src := tu.Child("source")
		if src == nil || strings.TrimSpace(src.PlainText()) == "" {
			continue
		}
		total++
		if isTranslated(tu) {
			translated++
		}
	}

	fmt.Fprintf(os.Stderr, "\n%sDocument%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, "  File:        %s\n", xliffPath)
	if srcLang != "" {
		fmt.Fprintf(os.Stderr, "  Source lang: %s %s\n", langCell(srcLang), srcLang)
	}
	if tgtLang != "" {
		fmt.Fprintf(os.Stderr, "  Target lang: %s %s\n", langCell(tgtLang), tgtLang)
	}
	fmt.Fprintf(os.Stderr, "  Trans-units: %d\n", total)

	pct := 0
	if total > 0 {
		pct = translated * 100 / total
	}
	fmt.Fprintf(os.Stderr, "  Translated:  %d/%d %s\n\n", translated, total, progressBar(pct, 20))
	return nil
}

// isTranslated reports whether a trans-unit already carries a usable target:
// either a state the CAT tool set, or simply non-empty target text.
func isTranslated(tu *xliff.Element) bool {
	tgt := tu.Child("target")
	if tgt == nil {
		return false
	}
	if state, ok := tgt.AttrValue("state"); ok {
		return state == "translated" || state == "signed-off" || state == "final"
	}
	return strings.TrimSpace(tgt.PlainText()) != ""
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// progressBar renders a colored bar like "████░░░░  50%".
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100

	color := colorRed
	switch {
	case percent >= 90:
		color = colorGreen
	case percent >= 40:
		color = colorYellow
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s%s%s %3d%%", color, bar, colorReset, percent)
}

func langCell(lang string) string {
	return langmeta.Resolve(lang).Flag
}

// deriveOutPath builds the default output path: same directory, input stem
// plus suffix, same extension.
func deriveOutPath(inPath, suffix string) string {
	ext := filepath.Ext(inPath)
	return strings.TrimSuffix(inPath, ext) + suffix + ext
}

// samePath reports whether two paths resolve to the same file location.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
