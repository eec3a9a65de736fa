package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/JonMunkholm/imgdash/internal/logging"
	"github.com/JonMunkholm/imgdash/internal/preview"
	"github.com/JonMunkholm/imgdash/internal/web/templates"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var dashboardData = templates.DashboardData{
	Stats: []templates.StatCard{
		{Title: "Receita Total", Value: "R$ 45.231,89", Change: "+20,1% em relação ao mês passado", Trend: "up"},
		{Title: "Novos Clientes", Value: "+2.350", Change: "+180,1% em relação ao mês passado", Trend: "up"},
		{Title: "Vendas", Value: "+12.234", Change: "-4,3% em relação ao mês passado", Trend: "down"},
	},
	Sales: []templates.Sale{
		{Name: "Olivia Martin", Email: "olivia.martin@email.com", Amount: "R$ 1.999,00", Status: "Pago"},
		{Name: "Jackson Lee", Email: "jackson.lee@email.com", Amount: "R$ 39,00", Status: "Pago"},
		{Name: "Isabella Nguyen", Email: "isabella.nguyen@email.com", Amount: "R$ 299,00", Status: "Pendente"},
		{Name: "William Kim", Email: "will@email.com", Amount: "R$ 99,00", Status: "Pago"},
		{Name: "Sofia Davis", Email: "sofia.davis@email.com", Amount: "R$ 39,00", Status: "Cancelado"},
	},
	Filters: []string{"Últimos 7 dias", "Últimos 30 dias", "Este ano"},
	Status: []templates.StatusItem{
		{Label: "API", Value: "Operacional", OK: true},
		{Label: "Processamento OCR", Value: "Simulado", OK: false},
		{Label: "Armazenamento", Value: "Operacional", OK: true},
	},
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	render(w, r, templates.Dashboard(s.shell(r, "Dashboard"), dashboardData))
}

func (s *Server) handleUsageExample(w http.ResponseWriter, r *http.Request) {
	render(w, r, templates.UsageExample(s.shell(r, "Usage Example")))
}

// handlePreview serves the bytes behind a live preview reference.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "previewID"))
	if err != nil {
		respondError(w, r, preview.ErrNotFound, http.StatusNotFound)
		return
	}

	contentType, data, err := s.previews.Open(id)
	if err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return
	}

	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, no-store")
	w.Write(data)
}

// handleTheme stores the chosen theme and sends the browser back.
func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	name := r.PostFormValue("theme")
	if err := s.themes.Write(w, name); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	logging.FromContext(r.Context()).Debug("theme changed", "theme", name)

	if isHTMX(r) {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

// backTo returns the same-site path of the Referer, or /dashboard.
func backTo(r *http.Request) string {
	const fallback = "/dashboard"

	u, err := url.Parse(r.Referer())
	if err != nil || r.Referer() == "" {
		return fallback
	}
	if u.Host != "" && u.Host != r.Host {
		return fallback
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return fallback
	}
	return u.Path
}

func (s *Server) handleLimiterStatus(w http.ResponseWriter, r *http.Request) {
	if s.limiter == nil {
		respondError(w, r, errors.New("limiter not configured"), http.StatusNotFound)
		return
	}
	writeJSON(w, s.limiter.Status())
}

func (s *Server) handlePreviewStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.previews.Stats())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":   "ok",
		"sessions": s.pages.Len(),
		"previews": s.previews.Live(),
	})
}
