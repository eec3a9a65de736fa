package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/imgdash/internal/core"
	"github.com/JonMunkholm/imgdash/internal/intake"
	"github.com/JonMunkholm/imgdash/internal/logging"
	"github.com/JonMunkholm/imgdash/internal/web/templates"
	"github.com/a-h/templ"
)

const (
	// maxDropParts bounds a drop request body to this many files at the size
	// limit, so oversized drops still reach the policy for a proper reason.
	maxDropParts = 4

	multipartMemory = 1 << 20
	eventPing       = 15 * time.Second
)

var errInvalidDragState = errors.New("invalid form: drag state must be enter or leave")

func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	templ.Handler(c).ServeHTTP(w, r)
}

// respondPanel answers an upload action: the panel fragment for app.js,
// a redirect back to the page for plain form posts.
func respondPanel(w http.ResponseWriter, r *http.Request, page *core.Page) {
	if !isHTMX(r) {
		http.Redirect(w, r, "/dashboard/upload", http.StatusSeeOther)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	render(w, r, templates.UploadPanel(page.View()))
}

func (s *Server) handleUploadPage(w http.ResponseWriter, r *http.Request) {
	page := pageFrom(r)
	w.Header().Set("Cache-Control", "no-store")
	render(w, r, templates.UploadPage(s.shell(r, "Upload"), page.View()))
}

// handleDrop receives a drop or pick as a multipart form with one or more
// "file" parts.
func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	page := pageFrom(r)
	logger := logging.FromContext(r.Context())
	limit := s.cfg.Upload.MaxFileSize

	r.Body = http.MaxBytesReader(w, r.Body, limit*maxDropParts)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		respondError(w, r, fmt.Errorf("invalid form: %w", err), status)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		respondError(w, r, core.ErrNoFile, http.StatusBadRequest)
		return
	}

	files := make([]*intake.RawFile, 0, len(headers))
	for _, fh := range headers {
		f, err := intake.FromMultipart(fh, limit)
		if err != nil {
			respondError(w, r, fmt.Errorf("invalid form: %w", err), http.StatusBadRequest)
			return
		}
		files = append(files, f)
	}

	rejected := page.Drop(files)
	if len(rejected) > 0 {
		logger.Debug("drop rejected", "files", len(files), "code", rejected[0].Code())
	} else {
		logger.Debug("drop accepted", "file", files[0].Name, "bytes", files[0].Size)
	}

	respondPanel(w, r, page)
}

func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	page := pageFrom(r)

	switch r.URL.Query().Get("state") {
	case "enter":
		page.DragEnter()
	case "leave":
		page.DragLeave()
	default:
		respondError(w, r, errInvalidDragState, http.StatusBadRequest)
		return
	}

	render(w, r, templates.Dropzone(page.View().Dropzone))
}

// handleSubmit starts processing and answers as soon as the session is
// pending. The outcome arrives through /status or /events.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	page := pageFrom(r)
	logger := logging.FromContext(r.Context())

	_, err := page.SubmitAsync(r.Context())
	switch {
	case err == nil:
	case errors.Is(err, core.ErrBusy):
		logger.Debug("submit ignored, already processing")
	case errors.Is(err, core.ErrNoFile):
		// The session carries the guidance message.
	default:
		respondError(w, r, err, http.StatusGone)
		return
	}

	respondPanel(w, r, page)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	page := pageFrom(r)
	page.Remove()
	respondPanel(w, r, page)
}

func (s *Server) handleUploadStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	render(w, r, templates.UploadPanel(pageFrom(r).View()))
}

// uploadState is the JSON form of a page view.
type uploadState struct {
	core.Snapshot
	Phase    core.Phase   `json:"phase"`
	Dropzone intake.State `json:"dropzone"`
	Message  string       `json:"dropzone_message,omitempty"`
}

func stateOf(v core.PageView) uploadState {
	st := uploadState{
		Snapshot: v.Snapshot,
		Phase:    v.Phase(),
		Dropzone: v.Dropzone.State,
	}
	if v.Dropzone.State == intake.StateRejected {
		st.Message = v.Dropzone.Detail
	}
	return st
}

func (s *Server) handleUploadState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, stateOf(pageFrom(r).View()))
}

// handleUploadEvents streams the session state via Server-Sent Events. Each
// event carries the snapshot version as its ID.
func (s *Server) handleUploadEvents(w http.ResponseWriter, r *http.Request) {
	page := pageFrom(r)
	logger := logging.WithFields(r.Context(), "stream", "upload_events")

	snaps, cancel := page.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		logger.Error("event stream not supported", "error", err)
		return
	}

	ping := time.NewTicker(eventPing)
	defer ping.Stop()

	for {
		select {
		case snap, ok := <-snaps:
			if !ok {
				fmt.Fprint(w, "event: closed\ndata: {}\n\n")
				rc.Flush()
				return
			}
			data, err := json.Marshal(uploadState{Snapshot: snap, Phase: snap.Phase()})
			if err != nil {
				logger.Error("encode snapshot", "error", err)
				return
			}
			fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", snap.Version, data)
			if err := rc.Flush(); err != nil {
				return
			}

		case <-ping.C:
			fmt.Fprint(w, ": ping\n\n")
			if err := rc.Flush(); err != nil {
				return
			}

		case <-r.Context().Done():
			return
		}
	}
}
