package templates

import (
	"strconv"

	"github.com/JonMunkholm/imgdash/internal/core"
	"github.com/JonMunkholm/imgdash/internal/intake"
	"github.com/a-h/templ"
)

const acceptAttr = "image/jpeg,image/png,image/webp,.jpg,.jpeg,.png,.webp"

// Button labels of the upload page.
const (
	LabelSubmit     = "Iniciar Processamento OCR"
	LabelSubmitting = "Processando Imagem..."
	LabelRemove     = "Remover Imagem"
	LabelDownload   = "Baixar Excel"
)

// UploadPage is the full upload page.
func UploadPage(s Shell, v core.PageView) templ.Component {
	var head templ.Component
	if v.Pending() {
		// Without JavaScript the page refreshes itself until processing ends.
		head = component(func(h *html) {
			h.open("noscript")
			h.raw(`<meta http-equiv="refresh" content="1">`)
			h.close("noscript")
		})
	}

	body := component(func(h *html) {
		h.render(PageTitle("Upload de Imagem", "Envie uma imagem para extrair os dados com OCR"))
		h.open("div", "class", "card upload-card")
		h.render(UploadPanel(v))
		h.close("div")
	})
	return LayoutWithHead(s, head, body)
}

// UploadPanel is the swappable part of the upload page.
func UploadPanel(v core.PageView) templ.Component {
	return component(func(h *html) {
		phase := v.Phase()
		h.open("div",
			"id", "upload-panel",
			"class", "upload-panel phase-"+string(phase),
			"data-phase", string(phase),
			"data-version", strconv.FormatUint(v.Version, 10),
		)

		if phase == core.PhaseSucceeded {
			h.render(UploadResult(v.ResultLocator))
		} else {
			h.render(Dropzone(v.Dropzone))
			if v.Dropzone.ShowPreview {
				h.render(PreviewImage(v.Dropzone.PreviewURI, v.Dropzone.FileName))
			}
			h.render(UploadStatus(v.Snapshot))
			h.render(uploadActions(v.Snapshot))
		}

		h.close("div")
	})
}

// Dropzone renders the drop target. It doubles as a plain file form.
func Dropzone(v intake.View) templ.Component {
	return component(func(h *html) {
		h.open("form",
			"id", "dropzone",
			"class", classes("dropzone", "dropzone-"+string(v.State), when(v.Disabled, "dropzone-disabled")),
			"data-state", string(v.State),
			"method", "post",
			"action", "/dashboard/upload/drop",
			"enctype", "multipart/form-data",
		)

		input := []string{"id", "dropzone-input", "class", "sr-only", "type", "file", "name", "file", "accept", acceptAttr}
		if v.Disabled {
			input = append(input, "disabled", "")
		}
		h.open("input", input...)

		h.open("label", "for", "dropzone-input", "class", "dropzone-body")
		h.el("span", dropzoneIcon(v.State), "class", "dropzone-icon", "aria-hidden", "true")
		h.el("p", v.Title, "class", "dropzone-title")
		if v.Detail != "" {
			detailClass := "dropzone-detail"
			if v.State == intake.StateRejected {
				detailClass += " text-destructive"
			}
			h.el("p", v.Detail, "class", detailClass)
		}
		h.close("label")

		h.open("noscript")
		h.el("button", "Enviar arquivo", "type", "submit", "class", "btn btn-outline btn-sm")
		h.close("noscript")
		h.close("form")
	})
}

func dropzoneIcon(s intake.State) string {
	switch s {
	case intake.StateSelected:
		return "✓"
	case intake.StateRejected:
		return "✕"
	case intake.StateActive:
		return "⇩"
	default:
		return "⇪"
	}
}

// PreviewImage shows the selected image.
func PreviewImage(uri, name string) templ.Component {
	return component(func(h *html) {
		h.open("figure", "class", "upload-preview")
		h.open("img", "src", href(uri), "alt", "Pré-visualização de "+name)
		h.el("figcaption", name, "class", "muted")
		h.close("figure")
	})
}

// UploadStatus renders the pending indicator or the session message.
func UploadStatus(s core.Snapshot) templ.Component {
	return component(func(h *html) {
		h.open("div", "id", "upload-status", "class", "upload-status", "role", "status", "aria-live", "polite")
		switch {
		case s.Pending():
			h.open("p", "class", "pending")
			h.el("span", "", "class", "spinner", "aria-hidden", "true")
			h.text(" " + LabelSubmitting)
			h.close("p")
		case s.ErrorMessage != "":
			h.open("div", "class", "alert alert-destructive", "role", "alert")
			h.el("p", s.ErrorMessage)
			h.close("div")
		}
		h.close("div")
	})
}

func uploadActions(s core.Snapshot) templ.Component {
	return component(func(h *html) {
		pending := s.Pending()

		h.open("div", "class", "upload-actions")

		h.open("form", "method", "post", "action", "/dashboard/upload/submit", "data-action", "submit")
		btn := []string{"type", "submit", "class", "btn btn-primary"}
		label := LabelSubmit
		if pending {
			btn = append(btn, "disabled", "", "aria-busy", "true")
			label = LabelSubmitting
		}
		h.el("button", label, btn...)
		h.close("form")

		if s.HasFile && !pending {
			h.open("form", "method", "post", "action", "/dashboard/upload/remove", "data-action", "remove")
			h.el("button", LabelRemove, "type", "submit", "class", "btn btn-outline")
			h.close("form")
		}

		h.close("div")
	})
}

// UploadResult is the success panel with the download link.
func UploadResult(locator string) templ.Component {
	return component(func(h *html) {
		h.open("div", "class", "upload-result", "role", "status")
		h.el("h2", "Processamento concluído!")
		h.el("p", "Os dados extraídos da imagem estão prontos para download.", "class", "muted")
		h.el("a", LabelDownload, "class", "btn btn-primary", "href", href(locator), "download", "")
		h.open("form", "method", "post", "action", "/dashboard/upload/remove", "data-action", "remove")
		h.el("button", "Processar outra imagem", "type", "submit", "class", "btn btn-outline")
		h.close("form")
		h.close("div")
	})
}
