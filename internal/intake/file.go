// Package intake implements the image dropzone: the acceptance policy applied
// to dropped or picked files, and the controlled Dropzone component that turns
// an accepted file into a previewable FileHandle.
//
// The Dropzone holds no authoritative selection. Its owner passes the current
// handle back in with SetValue after every change, and the Dropzone releases
// the preview of whatever handle that replaces.
package intake

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/JonMunkholm/imgdash/internal/preview"
	"github.com/google/uuid"
)

// RawFile is the payload and metadata of one dropped or picked file.
type RawFile struct {
	Name        string
	Size        int64
	ContentType string
	Data        []byte
}

// FileHandle is one selected file awaiting or undergoing processing.
type FileHandle struct {
	ID               uuid.UUID
	File             *RawFile
	Preview          *preview.Ref
	ValidationErrors []string
}

// NewHandle wraps f and acquires a preview reference for it.
func NewHandle(previews *preview.Table, f *RawFile) *FileHandle {
	return &FileHandle{
		ID:               uuid.New(),
		File:             f,
		Preview:          previews.Acquire(f.Data, f.ContentType),
		ValidationErrors: []string{},
	}
}

// Name returns the file name, or "" for a nil handle.
func (h *FileHandle) Name() string {
	if h == nil || h.File == nil {
		return ""
	}
	return h.File.Name
}

// PreviewURI returns the preview address, or "" for a nil handle.
func (h *FileHandle) PreviewURI() string {
	if h == nil || h.Preview == nil {
		return ""
	}
	return h.Preview.URI()
}

// Release revokes the handle's preview reference.
func (h *FileHandle) Release() {
	if h == nil {
		return
	}
	h.Preview.Release()
}

// FromMultipart reads an uploaded part into a RawFile. Reads stop at limit+1
// bytes so oversized parts are still reported with a size above the limit
// without buffering the whole body.
func FromMultipart(fh *multipart.FileHeader, limit int64) (*RawFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	r := io.Reader(f)
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
	}

	size := fh.Size
	if size < int64(len(data)) {
		size = int64(len(data))
	}

	return &RawFile{
		Name:        fh.Filename,
		Size:        size,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
