// Package views renders the editor's HTML pages as templ components.
package views

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/SheetEdit/internal/core"
	"github.com/a-h/templ"
)

// Alert is an error banner shown above page content.
type Alert struct {
	Message string
	Action  string
	Code    string
}

// HomeData feeds the upload page.
type HomeData struct {
	Accept      []string
	MaxFileSize int64
	Alert       *Alert
}

// EditorData feeds the editor page.
type EditorData struct {
	State   core.State
	Formats []string
	Alert   *Alert
}

// page accumulates the first write error so components can emit HTML
// without checking every call.
type page struct {
	w   io.Writer
	err error
}

func (p *page) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *page) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *page) rawf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

const stylesheet = `
body{font-family:system-ui,sans-serif;margin:0;color:#1f2937;background:#f9fafb}
header{display:flex;gap:1rem;align-items:center;padding:.75rem 1.25rem;background:#1e3a8a;color:#fff}
header h1{font-size:1.1rem;margin:0;flex:1}
header a,header button{color:#fff}
main{padding:1rem 1.25rem}
.alert{border:1px solid #fca5a5;background:#fef2f2;color:#991b1b;padding:.6rem .9rem;margin-bottom:1rem;border-radius:4px}
.alert small{display:block;color:#7f1d1d}
.warn{border-color:#fcd34d;background:#fffbeb;color:#92400e}
.tabs{display:flex;gap:.25rem;margin-bottom:.75rem}
.tabs form{margin:0}
.tabs button[disabled]{font-weight:bold}
.toolbar{display:flex;flex-wrap:wrap;gap:.75rem;align-items:center;margin-bottom:.75rem}
.toolbar form{display:flex;gap:.4rem;margin:0}
table.grid{border-collapse:collapse;background:#fff}
.grid th,.grid td{border:1px solid #d1d5db;padding:0}
.grid th{background:#dbeafe;padding:.3rem .5rem;text-align:left}
.grid td.rownum{padding:.3rem .5rem;color:#6b7280;text-align:right}
.grid form{margin:0}
.grid input{border:0;padding:.3rem .5rem;width:100%;box-sizing:border-box;font:inherit;background:transparent}
.type{display:block;font-weight:normal;font-size:.75rem;color:#1e40af}
.count{color:#4b5563}
.exports td,.exports th{padding:.2rem .6rem;text-align:left}
`

// layout wraps body in the document shell.
func layout(title string, body func(p *page)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw(`<title>`)
		p.text(title)
		p.raw(`</title><style>` + stylesheet + `</style></head><body>`)
		body(p)
		p.raw(`</body></html>`)
		return p.err
	})
}

func alertBox(p *page, a *Alert) {
	if a == nil {
		return
	}
	p.raw(`<div class="alert" role="alert">`)
	p.text(a.Message)
	if a.Code != "" {
		p.raw(` (Code: `)
		p.text(a.Code)
		p.raw(`)`)
	}
	if a.Action != "" {
		p.raw(`<small>`)
		p.text(a.Action)
		p.raw(`</small>`)
	}
	p.raw(`</div>`)
}

// Home renders the upload page.
func Home(d HomeData) templ.Component {
	return layout("Spreadsheet editor", func(p *page) {
		p.raw(`<header><h1>Spreadsheet editor</h1></header><main>`)
		alertBox(p, d.Alert)
		p.raw(`<form method="post" action="/workbooks" enctype="multipart/form-data" class="toolbar">`)
		p.raw(`<input type="file" name="file" required accept="`)
		p.text(strings.Join(d.Accept, ","))
		p.raw(`"><button type="submit">Open workbook</button></form>`)
		if d.MaxFileSize > 0 {
			p.rawf(`<p class="count">Files up to %d MB. The first row of every sheet is treated as the header.</p>`,
				d.MaxFileSize/(1<<20))
		}
		p.raw(`</main>`)
	})
}

// ErrorPage renders a standalone error.
func ErrorPage(a Alert) templ.Component {
	return layout("Error", func(p *page) {
		p.raw(`<header><h1>Spreadsheet editor</h1><a href="/">Home</a></header><main>`)
		alertBox(p, &a)
		p.raw(`</main>`)
	})
}

// Editor renders a loaded workbook: sheet tabs, filters, the editable grid,
// and export links.
func Editor(d EditorData) templ.Component {
	st := d.State
	return layout(st.FileName, func(p *page) {
		base := "/workbooks/" + url.PathEscape(st.ID)

		p.raw(`<header><h1>`)
		p.text(st.FileName)
		p.raw(`</h1><a href="/">Open another</a>`)
		p.raw(`<a href="` + base + `/original">Download original</a>`)
		p.raw(`<form method="post" action="` + base + `/close"><button type="submit">Close</button></form>`)
		p.raw(`</header><main>`)
		alertBox(p, d.Alert)

		if len(st.Sheets) == 0 {
			p.raw(`<p>This workbook has no sheets.</p></main>`)
			return
		}

		sheetTabs(p, base, st)
		filterToolbar(p, base, st)

		if len(st.DuplicateKey) > 0 {
			p.raw(`<div class="alert warn">Duplicate column names: `)
			p.text(strings.Join(st.DuplicateKey, ", "))
			p.raw(`. JSON exports keep only the last of each.</div>`)
		}

		p.rawf(`<p class="count">Showing %d of %d rows</p>`, st.View.Rows.DataLen(), st.TotalRows)
		grid(p, base, st)
		p.raw(`<form method="post" action="` + base + `/rows" class="toolbar"><button type="submit">Add row</button></form>`)
		exportTable(p, base, d.Formats)
		p.raw(`</main>`)
	})
}

func sheetTabs(p *page, base string, st core.State) {
	p.raw(`<nav class="tabs">`)
	for i, name := range st.Sheets {
		p.raw(`<form method="post" action="` + base + `/sheet">`)
		p.rawf(`<input type="hidden" name="index" value="%d">`, i)
		if i == st.ActiveSheet {
			p.raw(`<button type="submit" disabled>`)
		} else {
			p.raw(`<button type="submit">`)
		}
		p.text(name)
		p.raw(`</button></form>`)
	}
	p.raw(`</nav>`)
}

func filterToolbar(p *page, base string, st core.State) {
	f := st.Filters
	p.raw(`<div class="toolbar">`)

	p.raw(`<form id="filter-form" method="post" action="` + base + `/filters">`)
	p.raw(`<input type="search" name="search" placeholder="Search all columns" value="`)
	p.text(f.GlobalSearch)
	p.raw(`"><select name="mode">`)
	option(p, string(core.ModePerColumn), "Match each column", f.Mode != core.ModeAnyColumn)
	option(p, string(core.ModeAnyColumn), "Match any filter in every column", f.Mode == core.ModeAnyColumn)
	p.raw(`</select><button type="submit">Apply filters</button></form>`)

	p.raw(`<form method="post" action="` + base + `/filters/clear"><button type="submit">Clear filters</button></form>`)

	p.raw(`<form method="post" action="` + base + `/expression">`)
	p.raw(`<input type="text" name="expression" size="40" placeholder="[Price] &gt; 10 &amp;&amp; [Qty] &lt; 5" value="`)
	p.text(f.Expression)
	p.raw(`"><button type="submit">Apply expression</button></form>`)

	p.raw(`</div>`)
}

func option(p *page, value, label string, selected bool) {
	p.raw(`<option value="`)
	p.text(value)
	if selected {
		p.raw(`" selected>`)
	} else {
		p.raw(`">`)
	}
	p.text(label)
	p.raw(`</option>`)
}

func grid(p *page, base string, st core.State) {
	rows := st.View.Rows
	width := rows.Width()
	header := rows.HeaderLabels()

	p.raw(`<table class="grid"><thead><tr><th>#</th>`)
	for c := 0; c < width; c++ {
		p.raw(`<th>`)
		p.text(header[c])
		p.raw(`<span class="type">`)
		p.text(string(st.ColumnTypes.At(c)))
		p.raw(`</span></th>`)
	}
	p.raw(`</tr><tr><th></th>`)
	for c := 0; c < width; c++ {
		value := ""
		if c < len(st.Filters.Columns) {
			value = st.Filters.Columns[c]
		}
		p.raw(`<td><input form="filter-form" name="filter" placeholder="Filter" value="`)
		p.text(value)
		p.raw(`"></td>`)
	}
	p.raw(`</tr></thead><tbody>`)

	for r := 1; r < rows.Len(); r++ {
		p.rawf(`<tr><td class="rownum">%d</td>`, st.View.SourceRow(r))
		for c := 0; c < width; c++ {
			p.raw(`<td><form method="post" action="` + base + `/cells">`)
			p.raw(`<input type="hidden" name="row" value="` + strconv.Itoa(r) + `">`)
			p.raw(`<input type="hidden" name="column" value="` + strconv.Itoa(c) + `">`)
			p.raw(`<input name="value" aria-label="`)
			p.text(header[c])
			p.raw(`" value="`)
			p.text(rows.Cell(r, c).String())
			p.raw(`"></form></td>`)
		}
		p.raw(`</tr>`)
	}
	p.raw(`</tbody></table>`)
}

var exportChoices = []struct {
	label  string
	source core.ExportSource
	scope  core.ExportScope
}{
	{"Filtered, this sheet", core.SourceFiltered, core.ScopeCurrent},
	{"Filtered, all sheets", core.SourceFiltered, core.ScopeAll},
	{"Original, this sheet", core.SourceOriginal, core.ScopeCurrent},
	{"Original, all sheets", core.SourceOriginal, core.ScopeAll},
}

func exportTable(p *page, base string, formats []string) {
	if len(formats) == 0 {
		return
	}
	p.raw(`<h2>Export</h2><table class="exports"><tbody>`)
	for _, ch := range exportChoices {
		p.raw(`<tr><th>`)
		p.text(ch.label)
		p.raw(`</th>`)
		for _, f := range formats {
			q := url.Values{"source": {string(ch.source)}, "scope": {string(ch.scope)}}
			p.raw(`<td><a href="`)
			p.text(base + "/export/" + url.PathEscape(f) + "?" + q.Encode())
			p.raw(`">`)
			p.text(strings.ToUpper(f))
			p.raw(`</a></td>`)
		}
		p.raw(`</tr>`)
	}
	p.raw(`</tbody></table>`)
}
