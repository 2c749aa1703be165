package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// SeaweedFS stores blobs in a SeaweedFS cluster using the two-phase write
// protocol: the master assigns a file id and a volume node, then the blob
// is streamed to that volume. Reads re-resolve the volume through the
// master since volumes can migrate between nodes.
type SeaweedFS struct {
	masterURL string
	volumeURL string // optional override for the master-advertised address
	client    *http.Client
	retryMax  int
}

// NewSeaweedFS creates a SeaweedFS backend. client may be nil, in which
// case a default with a 30s timeout is used.
func NewSeaweedFS(masterURL, volumeURL string, client *http.Client, retryMax int) *SeaweedFS {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if retryMax < 1 {
		retryMax = 1
	}
	return &SeaweedFS{
		masterURL: strings.TrimRight(masterURL, "/"),
		volumeURL: strings.TrimRight(volumeURL, "/"),
		client:    client,
		retryMax:  retryMax,
	}
}

func (s *SeaweedFS) Kind() Kind { return KindSeaweedFS }

// Ping checks that the master answers; used by the selector probe.
func (s *SeaweedFS) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.masterURL+"/dir/status", nil)
	if err != nil {
		return NewError(ErrKindConfiguration, "seaweedfs.ping", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return NewError(ErrKindConfiguration, "seaweedfs.ping", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return NewError(ErrKindConfiguration, "seaweedfs.ping",
			fmt.Errorf("master returned status %d", resp.StatusCode))
	}
	return nil
}

type assignResult struct {
	FID       string `json:"fid"`
	URL       string `json:"url"`
	PublicURL string `json:"publicUrl"`
	Count     int    `json:"count"`
	Error     string `json:"error"`
}

type lookupResult struct {
	VolumeID  string `json:"volumeId"`
	Locations []struct {
		URL       string `json:"url"`
		PublicURL string `json:"publicUrl"`
	} `json:"locations"`
	Error string `json:"error"`
}

type volumeUploadResult struct {
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	ETag  string `json:"eTag"`
	Error string `json:"error"`
}

// Put performs the two-phase write. Phase-1 (assignment) failures are
// retried with bounded backoff for transient causes. A phase-2 failure
// after a granted fid leaves an orphan: a best-effort volume delete is
// attempted and the fid is attached to the returned error either way so
// operators can reconcile.
func (s *SeaweedFS) Put(ctx context.Context, data []byte, contentType, suggestedName string) (Locator, error) {
	assign, err := s.assign(ctx)
	if err != nil {
		return Locator{}, err
	}

	volume := s.volumeBase(assign.URL)
	loc := Locator{Kind: KindSeaweedFS, FileID: assign.FID, VolumeURL: volume}

	if err := s.writeVolume(ctx, volume, assign.FID, data, contentType, suggestedName); err != nil {
		// The fid is already reserved on the cluster. Try to release it;
		// if that also fails the locator stays attached for reconciliation.
		if delErr := s.Delete(ctx, loc); delErr != nil {
			log.Warn().Str("fid", assign.FID).Str("volume", volume).Err(delErr).
				Msg("orphaned seaweedfs fid could not be rolled back, needs reconciliation")
		}
		return Locator{}, WriteError("seaweedfs.put", err, &loc)
	}
	return loc, nil
}

// Get resolves the volume currently holding the fid through the master,
// falling back to the volume recorded at write time, then fetches the blob.
func (s *SeaweedFS) Get(ctx context.Context, loc Locator) ([]byte, error) {
	volume := s.volumeURL
	if volume == "" {
		resolved, err := s.lookupVolume(ctx, loc.FileID)
		if err != nil {
			log.Debug().Str("fid", loc.FileID).Err(err).Msg("volume lookup failed, using recorded volume url")
			resolved = loc.VolumeURL
		}
		volume = resolved
	}
	if volume == "" {
		return nil, NewError(ErrKindNotFound, "seaweedfs.get", fmt.Errorf("no volume known for fid %s", loc.FileID))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, volume+"/"+loc.FileID, nil)
	if err != nil {
		return nil, NewError(ErrKindRead, "seaweedfs.get", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, NewError(ErrKindRead, "seaweedfs.get", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewError(ErrKindNotFound, "seaweedfs.get", fmt.Errorf("fid %s not found", loc.FileID))
	case resp.StatusCode != http.StatusOK:
		return nil, NewError(ErrKindRead, "seaweedfs.get", fmt.Errorf("volume returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(ErrKindRead, "seaweedfs.get", err)
	}
	return body, nil
}

// Delete removes the blob from its volume node. Deleting an already-absent
// fid is success; the master reclaims the id through its own vacuum cycle.
func (s *SeaweedFS) Delete(ctx context.Context, loc Locator) error {
	volume := s.volumeURL
	if volume == "" {
		volume = loc.VolumeURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, volume+"/"+loc.FileID, nil)
	if err != nil {
		return NewError(ErrKindWrite, "seaweedfs.delete", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return NewError(ErrKindWrite, "seaweedfs.delete", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return NewError(ErrKindWrite, "seaweedfs.delete", fmt.Errorf("volume returned status %d", resp.StatusCode))
	}
	return nil
}

// assign requests a file id and volume placement from the master,
// retrying transient network failures with exponential backoff.
func (s *SeaweedFS) assign(ctx context.Context) (*assignResult, error) {
	var result *assignResult
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.masterURL+"/dir/assign", nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			if isTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("master returned status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("master returned status %d", resp.StatusCode))
		}

		var ar assignResult
		if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
			return backoff.Permanent(fmt.Errorf("decode assign response: %w", err))
		}
		if ar.Error != "" {
			return backoff.Permanent(fmt.Errorf("assign rejected: %s", ar.Error))
		}
		if ar.FID == "" {
			return backoff.Permanent(fmt.Errorf("assign response missing fid"))
		}
		result = &ar
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(newExponentialBackOff(), uint64(s.retryMax-1)), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, WriteError("seaweedfs.assign", err, nil)
	}
	return result, nil
}

// writeVolume streams the blob to the volume node as a multipart upload.
func (s *SeaweedFS) writeVolume(ctx context.Context, volume, fid string, data []byte, contentType, name string) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, sanitizeFilename(name)))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, volume+"/"+fid, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("volume returned status %d", resp.StatusCode)
	}

	var vr volumeUploadResult
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return fmt.Errorf("decode volume response: %w", err)
	}
	if vr.Error != "" {
		return fmt.Errorf("volume rejected upload: %s", vr.Error)
	}
	if vr.Size != int64(len(data)) {
		return fmt.Errorf("volume stored %d bytes, expected %d", vr.Size, len(data))
	}
	return nil
}

// lookupVolume asks the master which volume currently serves the fid's
// volume id (the part before the comma).
func (s *SeaweedFS) lookupVolume(ctx context.Context, fid string) (string, error) {
	volumeID, _, ok := strings.Cut(fid, ",")
	if !ok {
		return "", fmt.Errorf("malformed fid %q", fid)
	}

	u := s.masterURL + "/dir/lookup?volumeId=" + url.QueryEscape(volumeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("master returned status %d", resp.StatusCode)
	}
	var lr lookupResult
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", err
	}
	if lr.Error != "" || len(lr.Locations) == 0 {
		return "", fmt.Errorf("volume %s has no locations", volumeID)
	}
	return s.volumeBase(lr.Locations[0].URL), nil
}

// volumeBase normalizes a master-advertised volume address ("127.0.0.1:8080")
// into a base URL, honoring the configured override.
func (s *SeaweedFS) volumeBase(advertised string) string {
	if s.volumeURL != "" {
		return s.volumeURL
	}
	if strings.HasPrefix(advertised, "http://") || strings.HasPrefix(advertised, "https://") {
		return strings.TrimRight(advertised, "/")
	}
	return "http://" + advertised
}

func sanitizeFilename(name string) string {
	if name == "" {
		return "file"
	}
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '"' {
			return '_'
		}
		return r
	}, name)
}

func newExponentialBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = 0 // bounded by the retry count, not wall clock
	return bo
}
