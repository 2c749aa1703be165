package storage

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/namkata/imagestore/internal/config"
)

// Select picks the storage backend for the lifetime of the process and
// verifies it is actually usable. The choice is driven by STORAGE_BACKEND;
// "auto" prefers the distributed store, then the object store, then local
// disk, based on which endpoints are configured. There is no per-request
// dispatch and no hot swap: an unreachable backend is a startup failure.
func Select(ctx context.Context, cfg *config.Config) (Backend, error) {
	choice := cfg.StorageBackend
	if choice == "auto" {
		switch {
		case cfg.SeaweedMasterURL != "":
			choice = "seaweedfs"
		case cfg.S3EndpointURL != "":
			choice = "s3"
		case cfg.UploadDir != "":
			choice = "local"
		default:
			return nil, NewError(ErrKindConfiguration, "storage.select",
				fmt.Errorf("no storage backend configured: set SEAWEEDFS_MASTER_URL, S3_ENDPOINT_URL or UPLOAD_DIR"))
		}
	}

	var (
		backend Backend
		err     error
	)
	switch choice {
	case "seaweedfs":
		if cfg.SeaweedMasterURL == "" {
			return nil, NewError(ErrKindConfiguration, "storage.select",
				fmt.Errorf("STORAGE_BACKEND=seaweedfs but SEAWEEDFS_MASTER_URL is not set"))
		}
		sw := NewSeaweedFS(cfg.SeaweedMasterURL, cfg.SeaweedVolumeURL, newHTTPClient(cfg), cfg.StorageRetryMax)
		if err = sw.Ping(ctx); err != nil {
			return nil, err
		}
		backend = sw
	case "s3":
		if cfg.S3EndpointURL == "" {
			return nil, NewError(ErrKindConfiguration, "storage.select",
				fmt.Errorf("STORAGE_BACKEND=s3 but S3_ENDPOINT_URL is not set"))
		}
		backend, err = NewObjectStore(ctx, cfg.S3EndpointURL, cfg.AWSRegion,
			cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, cfg.S3Bucket, cfg.StorageRetryMax)
		if err != nil {
			return nil, err
		}
	case "local":
		backend, err = NewLocal(cfg.UploadDir)
		if err != nil {
			return nil, err
		}
	default:
		return nil, NewError(ErrKindConfiguration, "storage.select",
			fmt.Errorf("unknown storage backend %q", choice))
	}

	log.Info().Str("backend", string(backend.Kind())).Msg("storage backend selected")
	return backend, nil
}

// newHTTPClient builds the process-wide HTTP client for backend calls,
// with its connection pool sized from configuration.
func newHTTPClient(cfg *config.Config) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = cfg.StorageMaxIdleConns
	transport.MaxIdleConnsPerHost = cfg.StorageMaxIdleConns
	return &http.Client{
		Timeout:   cfg.StorageHTTPTimeout,
		Transport: transport,
	}
}
