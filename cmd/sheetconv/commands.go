package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/SheetEdit/internal/codec"
	"github.com/JonMunkholm/SheetEdit/internal/config"
	"github.com/JonMunkholm/SheetEdit/internal/core"
	"github.com/JonMunkholm/SheetEdit/internal/logging"
	"github.com/spf13/cobra"
)

// sheetOptions are the flags shared by every command.
type sheetOptions struct {
	sheet    int
	logLevel string
}

type exportOptions struct {
	sheetOptions
	format  string
	all     bool
	source  string
	filters []string
	search  string
	mode    string
	expr    string
	output  string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "sheetconv",
		Short:         "Inspect, validate, and export spreadsheets",
		Long:          "sheetconv reads .xlsx, .csv, and .tsv workbooks, infers column types,\nand exports filtered sheets as xlsx, json, or pdf.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(newTypesCmd(), newValidateCmd(), newExportCmd())
	return withUserErrors(root, stderr)
}

// withUserErrors prints command errors the way the editor shows them:
// the user-facing message and code when one exists, the raw error otherwise.
func withUserErrors(root *cobra.Command, stderr io.Writer) *cobra.Command {
	for _, c := range root.Commands() {
		run := c.RunE
		c.RunE = func(cmd *cobra.Command, args []string) error {
			err := run(cmd, args)
			if err != nil {
				if core.IsUserFacing(err) {
					fmt.Fprintln(stderr, "error:", core.FormatUserError(err))
				} else {
					fmt.Fprintln(stderr, "error:", err)
				}
			}
			return err
		}
	}
	return root
}

func addSheetFlags(c *cobra.Command, o *sheetOptions) {
	c.Flags().IntVar(&o.sheet, "sheet", 0, "Sheet index (0-based)")
	c.Flags().StringVar(&o.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
}

// openSession decodes path and opens a session on the requested sheet.
func openSession(cmd *cobra.Command, path string, o sheetOptions) (*core.Session, error) {
	logger := logging.New(cmd.ErrOrStderr(), o.logLevel, "text")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, core.ErrEmptyFile
	}
	wb, err := codec.NewRegistry().Decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	logger.Debug("workbook decoded", "file", path, "sheets", len(wb), "bytes", len(data))

	sess := core.NewSession("cli", filepath.Base(path), wb, data)
	if err := sess.SelectSheet(o.sheet); err != nil {
		return nil, err
	}
	return sess, nil
}

func newTypesCmd() *cobra.Command {
	var o sheetOptions
	c := &cobra.Command{
		Use:   "types FILE",
		Short: "Print the inferred type of each column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, args[0], o)
			if err != nil {
				return err
			}
			st, err := sess.Snapshot()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "COLUMN\tNAME\tTYPE")
			for i, label := range st.View.Rows.HeaderLabels() {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", i, label, st.ColumnTypes.At(i))
			}
			return tw.Flush()
		},
	}
	addSheetFlags(c, &o)
	return c
}

func newValidateCmd() *cobra.Command {
	var (
		o     sheetOptions
		limit int
	)
	c := &cobra.Command{
		Use:   "validate FILE",
		Short: "List cells that do not fit their column's inferred type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd, args[0], o)
			if err != nil {
				return err
			}
			wb := sess.Original()
			if len(wb) == 0 {
				return nil
			}
			errs := core.ValidateMatrix(wb[sess.ActiveSheet()].Rows, sess.ColumnTypes(), limit)
			out := cmd.OutOrStdout()
			for _, e := range errs {
				fmt.Fprintf(out, "row %d, column %d (%s): %q %s\n", e.Row, e.Column, e.Header, e.Value, e.Message)
			}
			if len(errs) > 0 {
				return fmt.Errorf("%d invalid cells", len(errs))
			}
			fmt.Fprintln(out, "all cells valid")
			return nil
		},
	}
	addSheetFlags(c, &o)
	c.Flags().IntVar(&limit, "limit", 100, "Stop after this many invalid cells (0 = no limit)")
	return c
}

func newExportCmd() *cobra.Command {
	var o exportOptions
	c := &cobra.Command{
		Use:   "export FILE",
		Short: "Filter a workbook and export it as xlsx, json, or pdf",
		Example: `  sheetconv export orders.xlsx --format json --filter Region=west
  sheetconv export orders.xlsx --format pdf --all --search acme -o acme.pdf
  sheetconv export orders.csv --format xlsx --expr "[Qty] > 10"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], o)
		},
	}
	addSheetFlags(c, &o.sheetOptions)
	f := c.Flags()
	f.StringVarP(&o.format, "format", "f", "json", "Output format: xlsx, json, pdf")
	f.BoolVar(&o.all, "all", false, "Export every sheet instead of the selected one")
	f.StringVar(&o.source, "source", "filtered", "Dataset to export: filtered or original")
	f.StringArrayVar(&o.filters, "filter", nil, "Column filter COLUMN=TEXT; COLUMN is a header name or 0-based index (repeatable)")
	f.StringVar(&o.search, "search", "", "Keep rows where any cell contains this text")
	f.StringVar(&o.mode, "mode", "column", "Filter mode: column or any")
	f.StringVar(&o.expr, "expr", "", "Filter expression over [Header] names")
	f.StringVarP(&o.output, "output", "o", "", "Output file (default: stdout for json, export name otherwise)")
	return c
}

func runExport(cmd *cobra.Command, path string, o exportOptions) error {
	format, err := codec.ParseFormat(o.format)
	if err != nil {
		return err
	}
	sess, err := openSession(cmd, path, o.sheetOptions)
	if err != nil {
		return err
	}

	st, err := sess.Snapshot()
	if err != nil {
		return err
	}
	filters, err := parseColumnFilters(o.filters, st.View.Rows.HeaderLabels())
	if err != nil {
		return err
	}
	if err := sess.ApplyFilters(filters, o.search, core.ParseFilterMode(o.mode)); err != nil {
		return err
	}
	if err := sess.ApplyExpression(o.expr); err != nil {
		return err
	}

	scope := core.ScopeCurrent
	if o.all {
		scope = core.ScopeAll
	}
	source := core.ParseExportSource(o.source)
	sheets, err := sess.Export(source, scope)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := exportEncoder().Encode(&buf, format, sheets, scope); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}

	dest := o.output
	if dest == "" && format != codec.FormatJSON {
		name := ""
		if len(sheets) > 0 {
			name = sheets[0].Name
		}
		dest = codec.FileName(format, source, scope, name)
	}
	if dest == "" || dest == "-" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(dest, buf.Bytes(), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", dest, buf.Len())
	return nil
}

// exportEncoder takes PDF layout from the EXPORT_PDF_* environment when it
// is valid and falls back to the encoder defaults otherwise.
func exportEncoder() codec.Encoder {
	cfg, err := config.Load()
	if err != nil {
		return codec.Encoder{}
	}
	return codec.Encoder{PDF: codec.PDFOptions{
		Orientation: cfg.Export.PDFOrientation,
		PageSize:    cfg.Export.PDFPageSize,
		FontSize:    float64(cfg.Export.PDFFontSize),
	}}
}

// parseColumnFilters turns COLUMN=TEXT pairs into a positional filter
// vector. COLUMN matches a header label exactly, or is a 0-based index.
func parseColumnFilters(pairs []string, header []string) ([]string, error) {
	filters := make([]string, len(header))
	for _, p := range pairs {
		col, text, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("filter %q: want COLUMN=TEXT", p)
		}
		idx := indexOf(header, col)
		if idx < 0 {
			n, err := strconv.Atoi(col)
			if err != nil || n < 0 || n >= len(header) {
				return nil, fmt.Errorf("filter %q: %w", p, core.ErrColumnOutOfRange)
			}
			idx = n
		}
		filters[idx] = text
	}
	return filters, nil
}

func indexOf(values []string, s string) int {
	for i, v := range values {
		if v == s {
			return i
		}
	}
	return -1
}
