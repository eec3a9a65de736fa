package templates

import "github.com/a-h/templ"

// ErrorAlert is the error fragment returned to HTMX-style requests.
func ErrorAlert(message, action, code string) templ.Component {
	return component(func(h *html) {
		h.open("div", "class", "alert alert-destructive", "role", "alert", "data-code", code)
		h.el("p", message, "class", "alert-title")
		if action != "" {
			h.el("p", action, "class", "alert-action")
		}
		h.el("small", "Código: "+code, "class", "muted")
		h.close("div")
	})
}
