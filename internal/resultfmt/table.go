// Package resultfmt renders a value.ExecutionResult as a human-readable
// markdown table for CLI output.
package resultfmt

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/wbrown/graphql-engine/internal/value"
)

// Formatter renders results as markdown tables, truncating long cell values
// to keep wide rows readable.
type Formatter struct {
	MaxWidth       int
	TruncateString string
	Color          bool // colorize the summary line (row count / error)
}

func NewFormatter() *Formatter {
	return &Formatter{MaxWidth: 50, TruncateString: "...", Color: true}
}

// FormatResult renders any ExecutionResult variant as a table, converting
// through ToDataSet first (mirroring Project's own universal conversion).
func (f *Formatter) FormatResult(res value.ExecutionResult) string {
	switch res.Kind {
	case value.ResultSuccess:
		return f.status("OK", true)
	case value.ResultEmpty:
		return "_Empty result_"
	case value.ResultError:
		return f.status(fmt.Sprintf("ERROR: %s", res.ErrMsg), false)
	case value.ResultCount:
		return fmt.Sprintf("_Count: %d_", res.Count)
	}
	ds := res.ToDataSet("value")
	return f.FormatDataSet(ds)
}

// FormatDataSet renders a DataSet as a markdown table via tablewriter, with
// consistent column alignment and header conventions.
func (f *Formatter) FormatDataSet(ds *value.DataSet) string {
	if ds == nil || len(ds.Rows) == 0 {
		var cols []string
		if ds != nil {
			cols = ds.Columns
		}
		return fmt.Sprintf("_Columns: %v_\n\n_No rows_", cols)
	}

	var sb strings.Builder
	alignment := make([]tw.Align, len(ds.Columns))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	table := tablewriter.NewTable(&sb,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(ds.Columns)

	for _, row := range ds.Rows {
		rendered := make([]string, len(row))
		for i, v := range row {
			rendered[i] = f.truncate(v.String())
		}
		table.Append(rendered)
	}
	table.Render()

	sb.WriteString(f.status(fmt.Sprintf("%d rows", len(ds.Rows)), true))
	sb.WriteString("\n")
	return sb.String()
}

func (f *Formatter) truncate(s string) string {
	if f.MaxWidth <= 0 || len(s) <= f.MaxWidth {
		return s
	}
	cut := f.MaxWidth - len(f.TruncateString)
	if cut < 0 {
		cut = 0
	}
	return s[:cut] + f.TruncateString
}

func (f *Formatter) status(msg string, ok bool) string {
	if !f.Color {
		return msg
	}
	if ok {
		return color.New(color.FgGreen).Sprint(msg)
	}
	return color.New(color.FgRed, color.Bold).Sprint(msg)
}
