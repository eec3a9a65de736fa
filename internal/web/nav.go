package web

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/imgdash/internal/web/templates"
)

const crumbSeparator = " › "

var navSections = []templates.NavSection{
	{
		Label: "Geral",
		Items: []templates.NavItem{
			{Title: "Dashboard", URL: "/dashboard", Icon: "▦"},
			{Title: "Usage Example", URL: "/dashboard/usage-example", Icon: "◧"},
			{Title: "Upload", URL: "/dashboard/upload", Icon: "⇪"},
		},
	},
	{
		Label: "Outros",
		Items: []templates.NavItem{
			{Title: "Configurações", URL: "#", Icon: "⚙"},
			{Title: "Ajuda", URL: "#", Icon: "?"},
		},
	},
}

var navProjects = []templates.NavItem{
	{Title: "Design Engineering", URL: "#"},
	{Title: "Sales & Marketing", URL: "#"},
	{Title: "Travel", URL: "#"},
}

var navSecondary = []templates.NavItem{
	{Title: "Support", URL: "#", Icon: "☏"},
	{Title: "Feedback", URL: "#", Icon: "✉"},
}

var demoUser = templates.User{
	Name:  "shadcn",
	Email: "m@example.com",
}

// navFor marks the items matching path as active.
func navFor(path string) []templates.NavSection {
	out := make([]templates.NavSection, len(navSections))
	for i, section := range navSections {
		items := make([]templates.NavItem, len(section.Items))
		for j, item := range section.Items {
			item.Active = item.URL == path
			items[j] = item
		}
		out[i] = templates.NavSection{Label: section.Label, Items: items}
	}
	return out
}

// Breadcrumbs turns a request path into crumbs, one per segment. The root
// path yields a single "Home" crumb.
func Breadcrumbs(path string) []templates.Crumb {
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return []templates.Crumb{{Title: "Home", URL: "/", Current: true}}
	}

	crumbs := make([]templates.Crumb, len(segments))
	for i, seg := range segments {
		crumbs[i] = templates.Crumb{
			Title:   segmentTitle(seg),
			URL:     "/" + strings.Join(segments[:i+1], "/"),
			Current: i == len(segments)-1,
		}
	}
	return crumbs
}

// FormatBreadcrumbs joins crumb titles the way the header shows them.
func FormatBreadcrumbs(crumbs []templates.Crumb) string {
	titles := make([]string, len(crumbs))
	for i, c := range crumbs {
		titles[i] = c.Title
	}
	return strings.Join(titles, crumbSeparator)
}

// segmentTitle turns "usage-example" into "Usage Example".
func segmentTitle(seg string) string {
	words := strings.FieldsFunc(seg, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[:1])) + string(r[1:])
	}
	return strings.Join(words, " ")
}

// shell builds the page chrome for r.
func (s *Server) shell(r *http.Request, title string) templates.Shell {
	return templates.Shell{
		Title:       title,
		Path:        r.URL.Path,
		Theme:       s.themes.FromRequest(r),
		Themes:      s.themes.Options(),
		Nav:         navFor(r.URL.Path),
		Secondary:   navSecondary,
		Projects:    navProjects,
		Breadcrumbs: Breadcrumbs(r.URL.Path),
		User:        demoUser,
	}
}
