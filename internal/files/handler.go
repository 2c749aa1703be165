package files

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/namkata/imagestore/internal/response"
	"github.com/namkata/imagestore/internal/storage"
	"github.com/namkata/imagestore/internal/thumbnail"
)

// Handler holds HTTP handlers for stored-file endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new files Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Get godoc
//
//	@Summary		Get file metadata
//	@Description	Returns the metadata record for a stored file.
//	@Tags			files
//	@Produce		json
//	@Param			id	path		string	true	"file record id"
//	@Success		200	{object}	response.Envelope{data=record.FileRecord}
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/files/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "file not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, rec)
}

// Download godoc
//
//	@Summary		Download file content
//	@Description	Streams the stored bytes for a file.
//	@Tags			files
//	@Produce		octet-stream
//	@Param			id	path	string	true	"file record id"
//	@Success		200	{file}	file
//	@Failure		404	{object}	response.Envelope
//	@Failure		502	{object}	response.Envelope
//	@Router			/files/{id}/content [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	data, contentType, err := h.svc.Download(r.Context(), id)
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "file not found")
			return
		}
		response.ReadFailure(w, "storage backend read failed")
		return
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// Thumbnail godoc
//
//	@Summary		Get a thumbnail
//	@Description	Returns a scaled-down rendition of the stored image, derived on demand.
//	@Tags			files
//	@Produce		image/jpeg
//	@Param			id		path	string	true	"file record id"
//	@Param			width	query	int		false	"max width in pixels (default 256, cap 2048)"
//	@Param			height	query	int		false	"max height in pixels (default 256, cap 2048)"
//	@Success		200	{file}		file
//	@Failure		400	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		422	{object}	response.Envelope
//	@Failure		502	{object}	response.Envelope
//	@Router			/files/{id}/thumbnail [get]
func (h *Handler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	width, err := dimension(r, "width")
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	height, err := dimension(r, "height")
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	data, contentType, err := h.svc.Thumbnail(r.Context(), id, width, height)
	if err != nil {
		switch {
		case h.svc.IsNotFound(err):
			response.NotFound(w, "file not found")
		case errors.Is(err, thumbnail.ErrNotAnImage):
			response.Error(w, http.StatusUnprocessableEntity, storage.ErrKindValidation,
				"stored file is not a decodable image")
		default:
			response.ReadFailure(w, "storage backend read failed")
		}
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// dimension reads an optional pixel dimension from the query string. Zero
// (absent) maps to the default later; negative or non-numeric values are a
// client error.
func dimension(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}

// Delete godoc
//
//	@Summary		Soft-delete a file
//	@Description	Marks the file record deleted. The stored bytes remain until purge.
//	@Tags			files
//	@Produce		json
//	@Param			id	path		string	true	"file record id"
//	@Success		200	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/files/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "file not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]string{"id": id, "status": "deleted"})
}

// Purge godoc
//
//	@Summary		Purge a file
//	@Description	Removes the stored bytes from the backend and drops the record.
//	@Tags			files
//	@Produce		json
//	@Param			id	path		string	true	"file record id"
//	@Success		200	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/files/{id}/purge [post]
func (h *Handler) Purge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.Purge(r.Context(), id); err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "file not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]string{"id": id, "status": "purged"})
}
