package templates

import (
	"github.com/JonMunkholm/imgdash/internal/theme"
	"github.com/a-h/templ"
)

// NavItem is one sidebar link. Items nest one level.
type NavItem struct {
	Title  string
	URL    string
	Icon   string
	Active bool
	Items  []NavItem
}

// NavSection is a labelled group of sidebar links.
type NavSection struct {
	Label string
	Items []NavItem
}

// Crumb is one breadcrumb segment.
type Crumb struct {
	Title   string
	URL     string
	Current bool
}

// Shell is the data shared by every full page.
type Shell struct {
	Title       string
	Path        string
	Theme       string
	Themes      []theme.Option
	Nav         []NavSection
	Secondary   []NavItem
	Projects    []NavItem
	Breadcrumbs []Crumb
	User        User
}

// User is shown in the sidebar footer.
type User struct {
	Name   string
	Email  string
	Avatar string
}

// Layout wraps body in the document, sidebar and header.
func Layout(s Shell, body templ.Component) templ.Component {
	return LayoutWithHead(s, nil, body)
}

// LayoutWithHead is Layout with extra <head> content.
func LayoutWithHead(s Shell, head, body templ.Component) templ.Component {
	return component(func(h *html) {
		h.raw("<!DOCTYPE html>")
		h.open("html", "lang", "pt-BR")
		h.open("head")
		h.raw(`<meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.el("title", s.Title+" | Admin Dashboard")
		h.open("link", "rel", "stylesheet", "href", "/static/app.css")
		h.open("script", "src", "/static/app.js", "defer", "")
		h.close("script")
		h.render(head)
		h.close("head")

		h.open("body", "class", classes("bg-background", theme.BodyClasses(s.Theme)))
		h.open("div", "class", "layout")
		h.render(Sidebar(s))
		h.open("div", "class", "layout-main")
		h.render(Header(s))
		h.open("main", "class", "content", "id", "content")
		h.render(body)
		h.close("main")
		h.close("div")
		h.close("div")
		h.close("body")
		h.close("html")
	})
}

// PageTitle renders the page heading with an optional subtitle.
func PageTitle(title, subtitle string) templ.Component {
	return component(func(h *html) {
		h.open("div", "class", "page-title")
		h.el("h1", title)
		if subtitle != "" {
			h.el("p", subtitle, "class", "muted")
		}
		h.close("div")
	})
}
