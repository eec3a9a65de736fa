// Package templates renders the dashboard pages and HTMX fragments as templ
// components.
package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// html accumulates markup and keeps the first write error.
type html struct {
	ctx context.Context
	w   io.Writer
	err error
}

func component(fn func(h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{ctx: ctx, w: w}
		fn(h)
		return h.err
	})
}

func (h *html) raw(parts ...string) {
	for _, s := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

// open writes a start tag. attrs alternate name, value; an empty value
// writes a bare boolean attribute.
func (h *html) open(tag string, attrs ...string) {
	h.raw("<", tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		name, value := attrs[i], attrs[i+1]
		if value == "" {
			h.raw(" ", name)
			continue
		}
		h.raw(" ", name, `="`, templ.EscapeString(value), `"`)
	}
	h.raw(">")
}

func (h *html) close(tag string) {
	h.raw("</", tag, ">")
}

// el writes a complete element with escaped text content.
func (h *html) el(tag, text string, attrs ...string) {
	h.open(tag, attrs...)
	h.text(text)
	h.close(tag)
}

func (h *html) render(c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}

// href sanitizes a URL for an href or src attribute.
func href(u string) string {
	return string(templ.URL(u))
}

func classes(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

func when(cond bool, s string) string {
	if cond {
		return s
	}
	return ""
}
