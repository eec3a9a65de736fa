package templates

import "github.com/a-h/templ"

// StatCard is one quick-stat card.
type StatCard struct {
	Title  string
	Value  string
	Change string
	Trend  string // "up" or "down"
}

// Sale is one row of the recent-sales table.
type Sale struct {
	Name   string
	Email  string
	Amount string
	Status string
}

// StatusItem is one line of the system status card.
type StatusItem struct {
	Label string
	Value string
	OK    bool
}

// DashboardData is the content of the dashboard page.
type DashboardData struct {
	Stats   []StatCard
	Sales   []Sale
	Filters []string
	Status  []StatusItem
}

// Dashboard renders the overview page.
func Dashboard(s Shell, d DashboardData) templ.Component {
	return Layout(s, component(func(h *html) {
		h.render(PageTitle("Dashboard", "Visão geral das métricas principais"))

		h.open("section", "class", "grid grid-3")
		for _, c := range d.Stats {
			h.open("div", "class", "card stat-card")
			h.el("p", c.Title, "class", "muted")
			h.el("p", c.Value, "class", "stat-value")
			h.el("p", c.Change, "class", "stat-change trend-"+c.Trend)
			h.close("div")
		}
		h.close("section")

		h.open("section", "class", "grid grid-dashboard")

		h.open("div", "class", "card")
		h.el("h2", "Vendas Recentes")
		h.open("table", "class", "table")
		h.open("thead")
		h.open("tr")
		for _, col := range []string{"Cliente", "Email", "Status", "Valor"} {
			h.el("th", col)
		}
		h.close("tr")
		h.close("thead")
		h.open("tbody")
		for _, sale := range d.Sales {
			h.open("tr")
			h.el("td", sale.Name)
			h.el("td", sale.Email, "class", "muted")
			h.open("td")
			h.el("span", sale.Status, "class", "badge")
			h.close("td")
			h.el("td", sale.Amount, "class", "text-right")
			h.close("tr")
		}
		h.close("tbody")
		h.close("table")
		h.close("div")

		h.open("div", "class", "stack")

		h.open("div", "class", "card")
		h.el("h2", "Filtro Rápido")
		h.open("form", "class", "stack", "method", "get", "action", "/dashboard")
		h.open("select", "name", "period", "aria-label", "Período")
		for _, f := range d.Filters {
			h.el("option", f, "value", f)
		}
		h.close("select")
		h.el("button", "Aplicar", "type", "submit", "class", "btn btn-outline btn-sm")
		h.close("form")
		h.close("div")

		h.open("div", "class", "card")
		h.el("h2", "Status do Sistema")
		h.open("ul", "class", "status-list")
		for _, item := range d.Status {
			h.open("li")
			h.el("span", item.Label)
			h.el("span", item.Value, "class", classes("badge", when(item.OK, "badge-ok"), when(!item.OK, "badge-warn")))
			h.close("li")
		}
		h.close("ul")
		h.close("div")

		h.close("div")
		h.close("section")
	}))
}

// UsageExample shows the themed components side by side.
func UsageExample(s Shell) templ.Component {
	return Layout(s, component(func(h *html) {
		h.render(PageTitle("Usage Example", "Componentes com o tema ativo"))

		h.open("section", "class", "grid grid-2")

		h.open("div", "class", "card stack")
		h.el("h2", "Botões")
		h.open("div", "class", "row")
		h.el("button", "Primary", "type", "button", "class", "btn btn-primary")
		h.el("button", "Secondary", "type", "button", "class", "btn btn-secondary")
		h.el("button", "Outline", "type", "button", "class", "btn btn-outline")
		h.el("button", "Destructive", "type", "button", "class", "btn btn-destructive")
		h.close("div")
		h.close("div")

		h.open("div", "class", "card stack")
		h.el("h2", "Formulário")
		h.el("label", "Email", "for", "example-email")
		h.open("input", "id", "example-email", "type", "email", "placeholder", "voce@exemplo.com")
		h.open("div", "class", "row")
		h.el("span", "Novo", "class", "badge")
		h.el("span", "Ativo", "class", "badge badge-ok")
		h.el("span", "Pendente", "class", "badge badge-warn")
		h.close("div")
		h.close("div")

		h.open("div", "class", "card stack")
		h.el("h2", "Links")
		h.el("a", "Ir para o Dashboard", "href", "/dashboard")
		h.el("a", "Enviar uma imagem", "href", "/dashboard/upload")
		h.close("div")

		h.close("section")
	}))
}
