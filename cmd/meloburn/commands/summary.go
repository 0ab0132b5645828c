package commands

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"meloburn/internal/core/burn"
	"meloburn/internal/core/organizer"
	"meloburn/internal/core/transfer"
	"meloburn/internal/shared"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func printOrganizeSummary(result organizer.Result) {
	fmt.Printf("\n")
	shared.ColorInfo.Println("📊 Organize Summary:")
	rows := [][]string{
		{"Audio files", strconv.Itoa(result.Analyzed)},
		{"Copied", strconv.Itoa(result.Copied)},
		{"Artists", strconv.Itoa(result.Artists)},
		{"Albums", strconv.Itoa(result.Albums)},
		{"Incomplete metadata", strconv.Itoa(len(result.Unknown))},
		{"Failed", strconv.Itoa(len(result.Failed))},
	}
	fmt.Println(renderTable([]string{"", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))

	if len(result.Unknown) > 0 {
		shared.ColorWarning.Println("Files with incomplete metadata:")
		for _, name := range result.Unknown {
			shared.ColorWarning.Printf("  • %s\n", name)
		}
	}
}

func printTransferSummary(stats transfer.Stats) {
	fmt.Printf("\n")
	shared.ColorInfo.Println("📊 Transfer Summary:")
	rows := [][]string{
		{"Files", strconv.Itoa(stats.Total)},
		{"Copied", strconv.Itoa(stats.Copied)},
		{"Size", humanize.Bytes(uint64(stats.Bytes))},
		{"Failed", strconv.Itoa(len(stats.Failed))},
	}
	fmt.Println(renderTable([]string{"", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
}

func printBurnSummary(report burn.Report) {
	printOrganizeSummary(report.Organize)
	printTransferSummary(report.Transfer)
	if report.Formatted {
		shared.ColorSuccess.Println("✅ Volume formatted as FAT32")
	}
	if report.Labeled {
		shared.ColorSuccess.Println("✅ Volume label applied")
	}
}
