// Package templates renders the HTML pages and HTMX fragments of the web UI.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/linecap/internal/core"
)

// LayoutOption is one entry of the layout picker.
type LayoutOption struct {
	Key   string
	Label string
}

// PreviewData is what the preview fragment shows for one run.
type PreviewData struct {
	RunID   string
	Layout  core.Layout
	Records []core.Record
	Total   int
	Stats   core.Stats
	Partial bool
	Warning string
}

// Index renders the upload page.
func Index(layouts []LayoutOption, selected string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.printf(`<!DOCTYPE html><html lang="ja"><head><meta charset="utf-8"><title>linecap</title>`)
		p.printf(`<script src="https://unpkg.com/htmx.org@1.9.12"></script></head><body>`)
		p.printf(`<h1>Line capacity extraction</h1>`)
		p.printf(`<form hx-post="/preview" hx-target="#preview" hx-encoding="multipart/form-data">`)
		p.printf(`<label>Layout <select name="layout">`)
		for _, l := range layouts {
			sel := ""
			if l.Key == selected {
				sel = " selected"
			}
			label := l.Label
			if label == "" {
				label = l.Key
			}
			p.printf(`<option value="%s"%s>%s</option>`, templ.EscapeString(l.Key), sel, templ.EscapeString(label))
		}
		p.printf(`</select></label>`)
		p.printf(`<label>Pages <input name="pages" placeholder="7-9"></label>`)
		p.printf(`<input type="file" name="file" accept=".pdf,.xlsx,.xlsm,.csv,.tsv" required>`)
		p.printf(`<button type="submit">Preview</button></form>`)
		p.printf(`<div id="preview"></div></body></html>`)
		return p.err
	})
}

// Preview renders the record table fragment returned by POST /preview.
func Preview(d PreviewData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.printf(`<section class="preview" data-run-id="%s">`, templ.EscapeString(d.RunID))
		p.printf(`<p>%d records from %d regions (%d rows, %d replaced, %d incomplete)</p>`,
			d.Total, d.Stats.Regions, d.Stats.Rows, d.Stats.Replaced, d.Stats.Rejected[core.RejectIncomplete.String()])
		if d.Partial {
			p.printf(`<p class="warning">%s</p>`, templ.EscapeString(d.Warning))
		}

		p.printf(`<table><thead><tr><th>key</th>`)
		for _, name := range d.Layout.FieldNames() {
			p.printf(`<th>%s</th>`, templ.EscapeString(name))
		}
		p.printf(`</tr></thead><tbody>`)
		for _, rec := range d.Records {
			p.printf(`<tr><td>%s</td>`, templ.EscapeString(rec.Key))
			for _, f := range rec.Fields {
				p.printf(`<td class="%s">%s</td>`, f.Value.Kind(), templ.EscapeString(f.Value.String()))
			}
			p.printf(`</tr>`)
		}
		p.printf(`</tbody></table>`)
		if d.Total > len(d.Records) {
			p.printf(`<p>Showing first %s of %d records.</p>`, strconv.Itoa(len(d.Records)), d.Total)
		}
		p.printf(`</section>`)
		return p.err
	})
}

// ErrorAlert renders an HTMX error fragment.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.printf(`<div class="alert error" role="alert"><strong>%s</strong>`, templ.EscapeString(message))
		if action != "" {
			p.printf(` <span>%s</span>`, templ.EscapeString(action))
		}
		p.printf(` <code>%s</code></div>`, templ.EscapeString(code))
		return p.err
	})
}

// printer keeps the first write error so components can render without
// checking every call.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
