// Package upload implements the multi-file upload pipeline: validation
// against configured allow-lists, concurrent backend writes through a
// bounded worker pool, and per-file results reported in submission order.
package upload

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/namkata/imagestore/internal/config"
	"github.com/namkata/imagestore/internal/record"
	"github.com/namkata/imagestore/internal/storage"
)

var uploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gateway_uploads_total",
		Help: "Per-file upload outcomes by storage backend",
	},
	[]string{"backend", "result"},
)

// File is one submitted blob with its declared metadata. Size is the
// declared byte count; when it already exceeds the limit the submitter may
// leave Data unread, and validation rejects on Size alone.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
	Size        int64
}

// Result is the outcome for one submitted file, at the same index the file
// was submitted.
type Result struct {
	Filename  string          `json:"filename"`
	Succeeded bool            `json:"succeeded"`
	ID        string          `json:"id,omitempty"`
	ErrorKind storage.ErrKind `json:"errorKind,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Pipeline coordinates validate → store → record for a batch of files.
// Each file is its own unit of work: no transaction spans the batch, and
// one file's failure never aborts its siblings.
type Pipeline struct {
	backend      storage.Backend
	records      record.Store
	maxFileSize  int64
	allowedExt   map[string]struct{}
	allowedTypes map[string]struct{}
	concurrency  int
}

// NewPipeline builds a pipeline from the immutable process config.
func NewPipeline(cfg *config.Config, backend storage.Backend, records record.Store) *Pipeline {
	return &Pipeline{
		backend:      backend,
		records:      records,
		maxFileSize:  cfg.MaxFileSize,
		allowedExt:   toSet(cfg.AllowedExtensions),
		allowedTypes: toSet(cfg.AllowedContentTypes),
		concurrency:  cfg.UploadConcurrency,
	}
}

// Process stores every valid file and returns one result per submitted
// file, in submission order regardless of completion order. Validation
// rejections never reach the backend. If ctx is canceled, no further
// backend call starts; writes already in flight complete (avoiding
// partially written blobs) but their records are discarded.
func (p *Pipeline) Process(ctx context.Context, files []File) []Result {
	results := make([]Result, len(files))

	workers := p.concurrency
	if len(files) < workers {
		workers = len(files)
	}
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i := range files {
		f := &files[i]

		// Reject-fast before any I/O.
		if err := p.validate(f); err != nil {
			results[i] = failure(f.Filename, storage.ErrKindValidation, err)
			uploadsTotal.WithLabelValues(string(p.backend.Kind()), "validation_rejected").Inc()
			continue
		}

		wg.Add(1)
		go func(i int, f *File) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = p.storeOne(ctx, f)
		}(i, f)
	}
	wg.Wait()

	return results
}

// storeOne is the per-file unit of work: backend write first, record
// insert only after the bytes are durable.
func (p *Pipeline) storeOne(ctx context.Context, f *File) Result {
	backend := string(p.backend.Kind())

	// Observed before the backend call: nothing new starts once the
	// request is gone.
	if ctx.Err() != nil {
		uploadsTotal.WithLabelValues(backend, "canceled").Inc()
		return failure(f.Filename, storage.ErrKindCanceled, fmt.Errorf("upload canceled before write started"))
	}

	// The write itself runs detached from the request context so that a
	// client abort mid-transfer cannot strand a half-written blob.
	writeCtx := context.WithoutCancel(ctx)

	loc, err := p.backend.Put(writeCtx, f.Data, f.ContentType, f.Filename)
	if err != nil {
		if orphan := storage.OrphanOf(err); orphan != nil {
			log.Warn().Str("filename", f.Filename).Interface("locator", orphan).
				Msg("storage write left an orphaned locator, needs reconciliation")
		}
		uploadsTotal.WithLabelValues(backend, "storage_error").Inc()
		return failure(f.Filename, storage.KindOf(err), err)
	}

	if ctx.Err() != nil {
		// Write completed after the client left: discard the record and
		// release the blob.
		if delErr := p.backend.Delete(writeCtx, loc); delErr != nil {
			log.Warn().Str("filename", f.Filename).Interface("locator", loc).Err(delErr).
				Msg("could not release blob for canceled upload")
		}
		uploadsTotal.WithLabelValues(backend, "canceled").Inc()
		return failure(f.Filename, storage.ErrKindCanceled, fmt.Errorf("upload canceled, stored blob discarded"))
	}

	id, err := p.records.CreateFileRecord(writeCtx, &record.FileRecord{
		Filename:    f.Filename,
		ContentType: f.ContentType,
		SizeBytes:   int64(len(f.Data)),
		Backend:     p.backend.Kind(),
		Locator:     loc,
	})
	if err != nil {
		// The blob is durable but unrecorded; release it rather than leak.
		if delErr := p.backend.Delete(writeCtx, loc); delErr != nil {
			log.Warn().Str("filename", f.Filename).Interface("locator", loc).Err(delErr).
				Msg("could not release blob after record insert failure")
		}
		uploadsTotal.WithLabelValues(backend, "storage_error").Inc()
		return failure(f.Filename, storage.ErrKindWrite, fmt.Errorf("record file metadata: %w", err))
	}

	uploadsTotal.WithLabelValues(backend, "success").Inc()
	return Result{Filename: f.Filename, Succeeded: true, ID: id}
}

func (p *Pipeline) validate(f *File) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Filename)), ".")
	if ext == "" {
		return fmt.Errorf("file %q has no extension", f.Filename)
	}
	if _, ok := p.allowedExt[ext]; !ok {
		return fmt.Errorf("extension %q is not allowed", ext)
	}
	if _, ok := p.allowedTypes[strings.ToLower(f.ContentType)]; !ok {
		return fmt.Errorf("content type %q is not allowed", f.ContentType)
	}
	size := int64(len(f.Data))
	if f.Size > size {
		size = f.Size
	}
	if size > p.maxFileSize {
		return fmt.Errorf("file size %d exceeds limit %d", size, p.maxFileSize)
	}
	if len(f.Data) == 0 {
		return fmt.Errorf("file %q is empty", f.Filename)
	}
	return nil
}

func failure(filename string, kind storage.ErrKind, err error) Result {
	return Result{Filename: filename, ErrorKind: kind, Error: err.Error()}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}
