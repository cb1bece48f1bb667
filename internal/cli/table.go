package cli

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/forPelevin/mixcut/internal/types"
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
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range r {
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
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func variantRows(variants []types.OutputVariant) [][]string {
	rows := make([][]string, 0, len(variants))
	for i, v := range variants {
		size := "?"
		if st, err := os.Stat(v.OutputPath); err == nil {
			size = humanize.Bytes(uint64(st.Size()))
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			filepath.Base(v.OutputPath),
			formatDuration(v.Duration),
			size,
			strconv.Itoa(len(v.Videos)),
		})
	}
	return rows
}

// formatDuration renders d as m:ss.cc.
func formatDuration(d time.Duration) string {
	cs := d.Round(10*time.Millisecond) / (10 * time.Millisecond)
	m := cs / 6000
	s := (cs / 100) % 60
	return strconv.FormatInt(int64(m), 10) + ":" + pad2(int64(s)) + "." + pad2(int64(cs%100))
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
