package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// tableColumn describes one column of CLI output. A zero MaxWidth leaves the
// column unbounded; otherwise long cells wrap at word boundaries.
type tableColumn struct {
	Title    string
	Align    text.Align
	MaxWidth int
	// Merge collapses repeated values in consecutive rows.
	Merge bool
}

var (
	boardColumns = []tableColumn{
		{Title: "Stage", Align: text.AlignLeft, Merge: true},
		{Title: "ID", Align: text.AlignRight},
		{Title: "Title", Align: text.AlignLeft, MaxWidth: 40},
		{Title: "Progress", Align: text.AlignRight},
		{Title: "Due", Align: text.AlignLeft},
		{Title: "Platform", Align: text.AlignLeft},
		{Title: "Tags", Align: text.AlignLeft, MaxWidth: 30},
	}
	historyColumns = []tableColumn{
		{Title: "When", Align: text.AlignLeft},
		{Title: "Event", Align: text.AlignLeft},
		{Title: "Details", Align: text.AlignLeft, MaxWidth: 60},
	}
	fileColumns = []tableColumn{
		{Title: "Name", Align: text.AlignLeft, MaxWidth: 48},
		{Title: "Directory", Align: text.AlignLeft, Merge: true},
		{Title: "Bytes", Align: text.AlignRight},
		{Title: "Modified", Align: text.AlignLeft},
	}
)

// renderTable draws rows under columns. Short rows are padded; caption, when
// set, is printed under the table.
func renderTable(columns []tableColumn, rows [][]string, caption string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, column := range columns {
		header[i] = column.Title
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       column.Align,
			AlignHeader: text.AlignLeft,
			AutoMerge:   column.Merge,
		}
		if column.MaxWidth > 0 {
			configs[i].WidthMax = column.MaxWidth
			configs[i].WidthMaxEnforcer = text.WrapSoft
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range r {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	if caption != "" {
		tw.SetCaption("%s", caption)
	}
	return tw.Render()
}
