package intake

import (
	"log/slog"
	"sync"

	"github.com/JonMunkholm/imgdash/internal/preview"
)

// State is the visual state of the dropzone.
type State string

const (
	StateIdle     State = "idle"
	StateActive   State = "active"
	StateRejected State = "rejected"
	StateSelected State = "selected"
)

// ChangeFunc receives the new selection. Returning an error refuses it.
type ChangeFunc func(*FileHandle) error

// View is everything needed to render the dropzone.
type View struct {
	State       State
	Title       string
	Detail      string
	FileName    string
	PreviewURI  string
	ShowPreview bool
	Disabled    bool
}

// Dropzone is the controlled file selector. It owns only transient
// interaction state; the selection itself lives with its owner.
type Dropzone struct {
	previews *preview.Table
	onChange ChangeFunc

	mu         sync.Mutex
	value      *FileHandle
	disabled   bool
	dragActive bool
	rejected   bool
	rejection  string
	closed     bool
}

// NewDropzone creates a dropzone that acquires previews from previews and
// reports selections to onChange.
func NewDropzone(previews *preview.Table, onChange ChangeFunc) *Dropzone {
	return &Dropzone{
		previews: previews,
		onChange: onChange,
	}
}

// SetValue passes in the owner's current handle. The preview of the handle
// it replaces is released.
func (d *Dropzone) SetValue(h *FileHandle) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		if h != nil {
			h.Release()
		}
		return
	}
	prev := d.value
	d.value = h
	d.mu.Unlock()

	if prev != nil && prev != h {
		prev.Release()
	}
}

// SetDisabled toggles interaction.
func (d *Dropzone) SetDisabled(disabled bool) {
	d.mu.Lock()
	d.disabled = disabled
	if disabled {
		d.dragActive = false
	}
	d.mu.Unlock()
}

// DragEnter marks a drag in progress over the drop target. A new drag
// dismisses the previous rejection.
func (d *Dropzone) DragEnter() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.disabled || d.closed {
		return
	}
	d.dragActive = true
	d.rejected = false
	d.rejection = ""
}

// DragLeave ends the drag.
func (d *Dropzone) DragLeave() {
	d.mu.Lock()
	d.dragActive = false
	d.mu.Unlock()
}

// ClearRejection dismisses the rejection message.
func (d *Dropzone) ClearRejection() {
	d.mu.Lock()
	d.rejected = false
	d.rejection = ""
	d.mu.Unlock()
}

// OnDrop handles one drop or pick already split by a Policy. Any rejection
// clears the selection; otherwise the first accepted file becomes the new
// selection.
func (d *Dropzone) OnDrop(accepted []*RawFile, rejected []Rejection) {
	d.mu.Lock()
	if d.disabled || d.closed {
		d.mu.Unlock()
		return
	}
	d.dragActive = false
	d.rejected = false
	d.rejection = ""

	if len(rejected) > 0 {
		d.rejected = true
		d.rejection = rejected[0].Reason()
		d.mu.Unlock()

		slog.Debug("drop rejected", "code", rejected[0].Code(), "files", len(rejected))
		if err := d.onChange(nil); err != nil {
			slog.Debug("selection clear refused", "error", err)
		}
		return
	}

	if len(accepted) == 0 {
		d.mu.Unlock()
		return
	}

	h := NewHandle(d.previews, accepted[0])
	d.mu.Unlock()

	if err := d.onChange(h); err != nil {
		slog.Debug("selection refused", "file", h.Name(), "error", err)
		h.Release()
	}
}

// View derives the visual state from the current handle and interaction flags.
func (d *Dropzone) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := View{Disabled: d.disabled}

	switch {
	case d.value != nil && !d.rejected:
		v.State = StateSelected
		v.Title = "Imagem Selecionada"
		v.Detail = d.value.Name()
		v.FileName = d.value.Name()
	case d.rejected:
		v.State = StateRejected
		v.Title = "Arquivo não suportado"
		v.Detail = d.rejection
		if v.Detail == "" {
			v.Detail = FallbackHint
		}
	case d.dragActive:
		v.State = StateActive
		v.Title = "Solte a imagem aqui..."
	default:
		v.State = StateIdle
		v.Title = "Arraste e solte ou clique para selecionar"
		v.Detail = "Apenas 1 imagem (.jpg, .png, .webp)"
	}

	if d.value != nil && d.value.PreviewURI() != "" {
		v.ShowPreview = true
		v.PreviewURI = d.value.PreviewURI()
	}

	return v
}

// Close tears the dropzone down, releasing the preview of the current handle.
func (d *Dropzone) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	h := d.value
	d.value = nil
	d.mu.Unlock()

	if h != nil {
		h.Release()
	}
}
