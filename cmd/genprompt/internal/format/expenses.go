package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/germanamz/genprompt/pkg/expenses"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"
)

// DescriptionWidth is the display width descriptions are cut to in tables.
const DescriptionWidth = 40

// WriteExpenses writes items to w as "table" or "json".
func WriteExpenses(w io.Writer, items []expenses.Expense, format string) error {
	switch strings.ToLower(format) {
	case "", "table":
		return writeExpensesTable(w, items)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeExpensesTable(w io.Writer, items []expenses.Expense) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateHeader = true

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 5, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
	})

	tw.AppendHeader(table.Row{"Created", "Description", "Date", "Amount", "Category"})

	var total float64
	for _, e := range items {
		tw.AppendRow(table.Row{
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			Truncate(e.Description, DescriptionWidth),
			e.Date,
			strconv.FormatFloat(e.Amount, 'f', 2, 64),
			e.Category,
		})
		total += e.Amount
	}

	if len(items) == 0 {
		tw.AppendRow(table.Row{"-", "(no expenses)", "-", "0.00", "-"})
	}

	tw.AppendFooter(table.Row{"", "", "Total", strconv.FormatFloat(total, 'f', 2, 64), ""})

	_ = tw.Render()
	return nil
}

// Truncate shortens s to at most width display columns, appending "..." when
// cut. Newlines become spaces.
func Truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
