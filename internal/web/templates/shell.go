package templates

import (
	"github.com/JonMunkholm/imgdash/internal/theme"
	"github.com/a-h/templ"
)

// Sidebar renders the navigation column.
func Sidebar(s Shell) templ.Component {
	return component(func(h *html) {
		h.open("aside", "class", "sidebar")

		h.open("a", "class", "sidebar-brand", "href", "/dashboard")
		h.el("span", "A", "class", "brand-mark")
		h.open("span", "class", "brand-text")
		h.el("strong", "Acme Inc.")
		h.el("small", "Enterprise")
		h.close("span")
		h.close("a")

		h.open("nav", "aria-label", "Principal")
		for _, section := range s.Nav {
			navSection(h, section)
		}
		if len(s.Projects) > 0 {
			navSection(h, NavSection{Label: "Projects", Items: s.Projects})
		}
		h.close("nav")

		if len(s.Secondary) > 0 {
			h.open("nav", "class", "sidebar-secondary", "aria-label", "Suporte")
			navList(h, s.Secondary)
			h.close("nav")
		}

		h.open("div", "class", "sidebar-user")
		if s.User.Avatar != "" {
			h.open("img", "class", "avatar", "src", href(s.User.Avatar), "alt", s.User.Name)
		}
		h.open("span")
		h.el("strong", s.User.Name)
		h.el("small", s.User.Email)
		h.close("span")
		h.close("div")

		h.close("aside")
	})
}

func navSection(h *html, section NavSection) {
	h.open("div", "class", "nav-section")
	if section.Label != "" {
		h.el("p", section.Label, "class", "nav-label")
	}
	navList(h, section.Items)
	h.close("div")
}

func navList(h *html, items []NavItem) {
	h.open("ul")
	for _, item := range items {
		h.open("li")
		attrs := []string{"class", classes("nav-link", when(item.Active, "active")), "href", href(item.URL)}
		if item.Active {
			attrs = append(attrs, "aria-current", "page")
		}
		h.open("a", attrs...)
		if item.Icon != "" {
			h.el("span", item.Icon, "class", "icon", "aria-hidden", "true")
		}
		h.el("span", item.Title)
		h.close("a")
		if len(item.Items) > 0 {
			navList(h, item.Items)
		}
		h.close("li")
	}
	h.close("ul")
}

// Header renders breadcrumbs and the theme selector.
func Header(s Shell) templ.Component {
	return component(func(h *html) {
		h.open("header", "class", "header")

		h.open("nav", "class", "breadcrumbs", "aria-label", "breadcrumb")
		h.open("ol")
		for i, c := range s.Breadcrumbs {
			if i > 0 {
				h.el("li", "›", "class", "separator", "aria-hidden", "true")
			}
			h.open("li")
			if c.Current || c.URL == "" {
				h.el("span", c.Title, "aria-current", "page")
			} else {
				h.el("a", c.Title, "href", href(c.URL))
			}
			h.close("li")
		}
		h.close("ol")
		h.close("nav")

		h.render(ThemeSelector(s.Theme, s.Themes))
		h.close("header")
	})
}

// ThemeSelector posts the chosen theme to /theme.
func ThemeSelector(active string, options []theme.Option) templ.Component {
	return component(func(h *html) {
		h.open("form", "class", "theme-selector", "method", "post", "action", "/theme", "data-autosubmit", "")
		h.el("label", "Tema", "for", "theme-select", "class", "sr-only")
		h.open("select", "id", "theme-select", "name", "theme")
		for _, o := range options {
			attrs := []string{"value", o.Value}
			if o.Value == active {
				attrs = append(attrs, "selected", "")
			}
			h.el("option", o.Label, attrs...)
		}
		h.close("select")
		h.open("noscript")
		h.el("button", "Aplicar", "type", "submit", "class", "btn btn-outline btn-sm")
		h.close("noscript")
		h.close("form")
	})
}
