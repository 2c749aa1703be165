package upload

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/namkata/imagestore/internal/response"
	"github.com/namkata/imagestore/internal/storage"
)

const (
	// multipartMemoryLimit is the in-memory threshold for multipart parsing;
	// larger parts spill to temp files.
	multipartMemoryLimit = 32 << 20

	// maxFilesPerRequest caps how many files one batch may carry.
	maxFilesPerRequest = 16

	// formOverhead is request-body headroom for multipart boundaries and
	// non-file form fields on top of the per-file size budget.
	formOverhead = 1 << 20
)

// Handler holds the HTTP handler for batch uploads.
type Handler struct {
	pipeline *Pipeline
}

// NewHandler creates a new upload Handler.
func NewHandler(pipeline *Pipeline) *Handler {
	return &Handler{pipeline: pipeline}
}

// BatchResponse is the body of a successful upload call: one outcome per
// submitted file, in submission order.
type BatchResponse struct {
	Results       []Result `json:"results"`
	UploadedCount int      `json:"uploadedCount"`
	FailedCount   int      `json:"failedCount"`
}

// Upload godoc
//
//	@Summary		Upload images
//	@Description	Uploads one or more image files. Each file is validated and
//	@Description	stored independently; the response lists one outcome per file
//	@Description	in the order the files were submitted.
//	@Tags			upload
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			files	formData	file	true	"image files (repeatable)"
//	@Success		200		{object}	response.Envelope{data=BatchResponse}
//	@Failure		400		{object}	response.Envelope
//	@Failure		413		{object}	response.Envelope
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	// Cap the request body before any of it is read, so an oversized upload
	// is cut off at the socket instead of being buffered and then rejected.
	r.Body = http.MaxBytesReader(w, r.Body, h.requestBodyLimit())

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			response.Error(w, http.StatusRequestEntityTooLarge, storage.ErrKindValidation,
				"request body exceeds the upload limit")
			return
		}
		response.BadRequest(w, "invalid multipart request: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		response.BadRequest(w, "no files submitted: use the \"files\" form field")
		return
	}
	if len(headers) > maxFilesPerRequest {
		response.BadRequest(w, "too many files in one request")
		return
	}

	// Submission order is the slice order of the repeated form field; the
	// pipeline reports results at the same indexes.
	files := make([]File, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > h.pipeline.maxFileSize {
			// Leave the data unread; the pipeline rejects on the declared
			// size alone.
			files = append(files, File{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
			})
			continue
		}

		part, err := fh.Open()
		if err != nil {
			response.BadRequest(w, "unreadable file "+fh.Filename)
			return
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			response.BadRequest(w, "unreadable file "+fh.Filename)
			return
		}
		files = append(files, File{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
			Size:        int64(len(data)),
		})
	}

	results := h.pipeline.Process(r.Context(), files)

	resp := BatchResponse{Results: results}
	for _, res := range results {
		if res.Succeeded {
			resp.UploadedCount++
		} else {
			resp.FailedCount++
		}
	}
	response.OK(w, resp)
}

func (h *Handler) requestBodyLimit() int64 {
	return int64(maxFilesPerRequest)*h.pipeline.maxFileSize + formOverhead
}
