package files_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/namkata/imagestore/internal/files"
	"github.com/namkata/imagestore/internal/record"
	"github.com/namkata/imagestore/internal/response"
	"github.com/namkata/imagestore/internal/storage"
)

type memBackend struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemBackend() *memBackend {
	return &memBackend{blobs: make(map[string][]byte)}
}

func (b *memBackend) Kind() storage.Kind { return storage.KindLocal }

func (b *memBackend) Put(_ context.Context, data []byte, _, name string) (storage.Locator, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := fmt.Sprintf("%d-%s", len(b.blobs), name)
	b.blobs[key] = data
	return storage.Locator{Kind: storage.KindLocal, Path: key}, nil
}

func (b *memBackend) Get(_ context.Context, loc storage.Locator) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.blobs[loc.Path]
	if !ok {
		return nil, storage.NewError(storage.ErrKindNotFound, "mem.get", errors.New("no such blob"))
	}
	return data, nil
}

func (b *memBackend) Delete(_ context.Context, loc storage.Locator) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blobs, loc.Path)
	return nil
}

type memStore struct {
	mu   sync.Mutex
	recs map[string]*record.FileRecord
	next int
}

func newMemStore() *memStore {
	return &memStore{recs: make(map[string]*record.FileRecord)}
}

func (s *memStore) CreateFileRecord(_ context.Context, rec *record.FileRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := fmt.Sprintf("id-%d", s.next)
	stored := *rec
	stored.ID = id
	stored.CreatedAt = time.Now()
	s.recs[id] = &stored
	return id, nil
}

func (s *memStore) GetFileRecord(_ context.Context, id string) (*record.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return nil, record.ErrNotFound
	}
	return rec, nil
}

func (s *memStore) SoftDeleteFileRecord(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return record.ErrNotFound
	}
	if rec.DeletedAt == nil {
		now := time.Now()
		rec.DeletedAt = &now
	}
	return nil
}

func (s *memStore) PurgeFileRecord(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recs[id]; !ok {
		return record.ErrNotFound
	}
	delete(s.recs, id)
	return nil
}

// seed stores a blob plus its record and returns the record id.
func seed(t *testing.T, backend *memBackend, store *memStore, data []byte) string {
	t.Helper()
	ctx := context.Background()
	loc, err := backend.Put(ctx, data, "image/png", "seed.png")
	require.NoError(t, err)
	id, err := store.CreateFileRecord(ctx, &record.FileRecord{
		Filename:    "seed.png",
		ContentType: "image/png",
		SizeBytes:   int64(len(data)),
		Backend:     backend.Kind(),
		Locator:     loc,
	})
	require.NoError(t, err)
	return id
}

func TestServiceGetAndDownload(t *testing.T) {
	backend := newMemBackend()
	store := newMemStore()
	svc := files.NewService(store, backend)
	ctx := context.Background()

	id := seed(t, backend, store, []byte("png bytes"))

	rec, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "seed.png", rec.Filename)
	require.Equal(t, int64(9), rec.SizeBytes)

	data, contentType, err := svc.Download(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []byte("png bytes"), data)
	require.Equal(t, "image/png", contentType)
}

func TestServiceGetUnknownID(t *testing.T) {
	svc := files.NewService(newMemStore(), newMemBackend())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	require.True(t, svc.IsNotFound(err))
}

func TestServiceSoftDeleteHidesRecordButKeepsBlob(t *testing.T) {
	backend := newMemBackend()
	store := newMemStore()
	svc := files.NewService(store, backend)
	ctx := context.Background()

	id := seed(t, backend, store, []byte("x"))
	require.NoError(t, svc.Delete(ctx, id))

	_, err := svc.Get(ctx, id)
	require.True(t, svc.IsNotFound(err), "soft-deleted files read as missing")

	_, _, err = svc.Download(ctx, id)
	require.True(t, svc.IsNotFound(err))

	require.Len(t, backend.blobs, 1, "soft delete leaves the stored bytes in place")
}

func TestServicePurgeRemovesBlobAndRecord(t *testing.T) {
	backend := newMemBackend()
	store := newMemStore()
	svc := files.NewService(store, backend)
	ctx := context.Background()

	id := seed(t, backend, store, []byte("x"))
	require.NoError(t, svc.Delete(ctx, id))
	require.NoError(t, svc.Purge(ctx, id), "purge reaches the locator through the tombstone")

	require.Empty(t, backend.blobs)
	require.True(t, svc.IsNotFound(svc.Purge(ctx, id)), "second purge finds nothing")
}

func TestServiceDownloadMissingBlob(t *testing.T) {
	backend := newMemBackend()
	store := newMemStore()
	svc := files.NewService(store, backend)
	ctx := context.Background()

	id := seed(t, backend, store, []byte("x"))
	rec, err := store.GetFileRecord(ctx, id)
	require.NoError(t, err)
	require.NoError(t, backend.Delete(ctx, rec.Locator))

	_, _, err = svc.Download(ctx, id)
	require.Error(t, err)
	require.True(t, svc.IsNotFound(err))
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestServiceThumbnailDerivesScaledRendition(t *testing.T) {
	backend := newMemBackend()
	store := newMemStore()
	svc := files.NewService(store, backend)
	ctx := context.Background()

	id := seed(t, backend, store, pngBytes(t, 64, 64))

	data, contentType, err := svc.Thumbnail(ctx, id, 16, 16)
	require.NoError(t, err)
	require.Equal(t, "image/png", contentType)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 16, img.Bounds().Dx())
}

func TestServiceThumbnailOfSoftDeletedFile(t *testing.T) {
	backend := newMemBackend()
	store := newMemStore()
	svc := files.NewService(store, backend)
	ctx := context.Background()

	id := seed(t, backend, store, pngBytes(t, 8, 8))
	require.NoError(t, svc.Delete(ctx, id))

	_, _, err := svc.Thumbnail(ctx, id, 16, 16)
	require.True(t, svc.IsNotFound(err))
}

func newRouter(h *files.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/files/{id}", h.Get)
	r.Get("/files/{id}/content", h.Download)
	r.Get("/files/{id}/thumbnail", h.Thumbnail)
	r.Delete("/files/{id}", h.Delete)
	r.Post("/files/{id}/purge", h.Purge)
	return r
}

func TestHandlerGetReturnsEnvelope(t *testing.T) {
	backend := newMemBackend()
	store := newMemStore()
	h := files.NewHandler(files.NewService(store, backend))
	id := seed(t, backend, store, []byte("x"))

	rr := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/files/"+id, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.True(t, env.Success)
	require.Nil(t, env.Error)
}

func TestHandlerGetUnknownIDIs404(t *testing.T) {
	h := files.NewHandler(files.NewService(newMemStore(), newMemBackend()))

	rr := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/files/nope", nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	require.Equal(t, storage.ErrKindNotFound, env.Error.Kind)
}

func TestHandlerDownloadSetsContentHeaders(t *testing.T) {
	backend := newMemBackend()
	store := newMemStore()
	h := files.NewHandler(files.NewService(store, backend))
	id := seed(t, backend, store, []byte("png bytes"))

	rr := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/files/"+id+"/content", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	require.Equal(t, "9", rr.Header().Get("Content-Length"))
	require.Equal(t, "png bytes", rr.Body.String())
}

func TestHandlerThumbnail(t *testing.T) {
	backend := newMemBackend()
	store := newMemStore()
	h := files.NewHandler(files.NewService(store, backend))
	id := seed(t, backend, store, pngBytes(t, 64, 64))
	router := newRouter(h)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/files/"+id+"/thumbnail?width=16&height=16", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "image/png", rr.Header().Get("Content-Type"))

	img, err := png.Decode(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	require.Equal(t, 16, img.Bounds().Dx())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/files/"+id+"/thumbnail?width=huge", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerThumbnailOfNonImageIs422(t *testing.T) {
	backend := newMemBackend()
	store := newMemStore()
	h := files.NewHandler(files.NewService(store, backend))
	id := seed(t, backend, store, []byte("plain text, not an image"))

	rr := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/files/"+id+"/thumbnail", nil))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, storage.ErrKindValidation, env.Error.Kind)
}

func TestHandlerDeleteThenPurge(t *testing.T) {
	backend := newMemBackend()
	store := newMemStore()
	h := files.NewHandler(files.NewService(store, backend))
	id := seed(t, backend, store, []byte("x"))
	router := newRouter(h)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/files/"+id, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/files/"+id+"/purge", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/files/"+id+"/purge", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}
