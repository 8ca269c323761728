package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/opengovern/frontend/internal/config"
)

// tabPadding is the column gap of table output.
const tabPadding = 2

// noValue marks an absent value in table output.
const noValue = "-"

// render writes a command result in the selected output format. whole is
// encoded for json; each element of items becomes one line for ndjson; table
// writes the human-readable form.
func render[T any](cmd *cobra.Command, whole any, items []T, table func(w *tabwriter.Writer, p *message.Printer) error) error {
	w := cmd.OutOrStdout()
	switch format := outputFormat(cmd); format {
	case outputJSON:
		return writeJSON(w, whole)
	case outputNDJSON:
		return writeNDJSON(w, items)
	case outputTable:
		tw := newTabWriter(w)
		if err := table(tw, newPrinter()); err != nil {
			return err
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// writeNDJSON writes each item as one JSON line.
func writeNDJSON[T any](w io.Writer, items []T) error {
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshaling item: %w", err)
		}
		if _, err = fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("writing NDJSON line: %w", err)
		}
	}
	return nil
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
}

// writeHeader writes a tab-separated header row and its underline.
func writeHeader(w io.Writer, columns ...string) {
	underline := make([]string, len(columns))
	for i, c := range columns {
		underline[i] = strings.Repeat("-", len(c))
	}
	fmt.Fprintln(w, strings.Join(columns, "\t"))
	fmt.Fprintln(w, strings.Join(underline, "\t"))
}

func newPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}

// formatCost renders a dollar amount with digit grouping at the configured precision.
func formatCost(p *message.Printer, v float64) string {
	return "$" + p.Sprint(number.Decimal(v, number.Scale(config.GetOutputPrecision())))
}

// formatCount renders an integer with digit grouping.
func formatCount(p *message.Printer, n int) string {
	return p.Sprint(number.Decimal(n))
}

// formatPercent renders a ratio in [0,1] as a whole percentage.
func formatPercent(p *message.Printer, ratio float64) string {
	return p.Sprint(number.Percent(ratio, number.Scale(0)))
}

// formatUnix renders unix seconds as a UTC date-time, or a dash for zero.
func formatUnix(sec int64) string {
	if sec == 0 {
		return noValue
	}
	return time.Unix(sec, 0).UTC().Format("2006-01-02 15:04")
}

// orDash returns s, or a dash when s is empty.
func orDash(s string) string {
	if s == "" {
		return noValue
	}
	return s
}
