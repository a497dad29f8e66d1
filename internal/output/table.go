package output

import (
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pranshuparmar/wholocked/pkg/model"
)

// RenderTable prints every lock of every report as one table
func RenderTable(w io.Writer, reports []model.Report, colorEnabled bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Options.SeparateRows = false
	if colorEnabled {
		t.Style().Color.Header = text.Colors{text.Bold, text.FgMagenta}
		t.Style().Color.Footer = text.Colors{text.FgHiBlack}
	}

	t.AppendHeader(table.Row{"Target", "Path", "PID", "Name", "Type", "Service", "Started"})
	total := 0
	for _, r := range reports {
		for _, lock := range r.Locks {
			h := lock.Holder
			started := ""
			if h.StartTime != 0 {
				started = h.StartTime.Time().Local().Format(time.DateTime)
			}
			t.AppendRow(sanitizeRow(
				r.Target,
				lock.Path,
				strconv.Itoa(h.PID),
				h.FullName(),
				h.AppType.String(),
				h.ServiceName,
				started,
			))
			total++
		}
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "Total", total})
	t.Render()
}

func sanitizeRow(cells ...string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = SanitizeTerminal(c)
	}
	return row
}
