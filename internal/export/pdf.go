package export

import (
	"context"
	"errors"
	"html/template"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Renderer converts HTML into PDF bytes.
type Renderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

var amountPrinter = message.NewPrinter(language.MustParse("en-IN"))

// WritePDF renders the table as HTML and converts it through the renderer.
func WritePDF(ctx context.Context, r Renderer, t Table) ([]byte, error) {
	if r == nil {
		return nil, errors.New("export: pdf renderer not configured")
	}
	return r.RenderHTML(ctx, HTML(t))
}

// HTML lays the table out as a printable document.
func HTML(t Table) string {
	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"utf-8\"><style>")
	b.WriteString("body{font-family:sans-serif;margin:24px;}h1{font-size:18px;}table{width:100%;border-collapse:collapse;}th,td{border:1px solid #ddd;padding:4px;font-size:11px;}th{background:#f5f5f5;text-align:left;}td.num{text-align:right;}tfoot td{font-weight:bold;}")
	b.WriteString("</style></head><body>")
	b.WriteString("<h1>")
	b.WriteString(template.HTMLEscapeString(t.Title))
	b.WriteString("</h1><table><thead><tr>")
	for _, h := range t.Headers {
		b.WriteString("<th>")
		b.WriteString(template.HTMLEscapeString(h))
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range t.Rows {
		writeHTMLRow(&b, row)
	}
	b.WriteString("</tbody>")
	if len(t.Totals) > 0 {
		b.WriteString("<tfoot>")
		writeHTMLRow(&b, t.Totals)
		b.WriteString("</tfoot>")
	}
	b.WriteString("</table></body></html>")
	return b.String()
}

func writeHTMLRow(b *strings.Builder, row []Cell) {
	b.WriteString("<tr>")
	for _, c := range row {
		if c.Numeric {
			b.WriteString("<td class=\"num\">")
			b.WriteString(FormatAmount(c.Number))
		} else {
			b.WriteString("<td>")
			b.WriteString(template.HTMLEscapeString(c.Text))
		}
		b.WriteString("</td>")
	}
	b.WriteString("</tr>")
}

// FormatAmount prints v with two decimals using Indian digit grouping.
func FormatAmount(v float64) string {
	return amountPrinter.Sprintf("%.2f", v)
}
