package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// ObjectStore stores blobs in an S3-compatible object store (LocalStack,
// MinIO, AWS S3) under uuid-derived keys. Reads tolerate the store's
// eventual consistency: a not-found immediately after a write is retried
// with bounded backoff before being reported as genuine.
type ObjectStore struct {
	client   *minio.Client
	bucket   string
	endpoint string
	retryMax int
}

// NewObjectStore creates the client and ensures the bucket exists. A
// failure here is a configuration error; the selector treats it as the
// backend being unreachable.
func NewObjectStore(ctx context.Context, endpointURL, region, accessKey, secretKey, bucket string, retryMax int) (*ObjectStore, error) {
	u, err := url.Parse(endpointURL)
	if err != nil || u.Host == "" {
		return nil, NewError(ErrKindConfiguration, "s3.init", fmt.Errorf("invalid endpoint URL %q", endpointURL))
	}

	// Empty keys degrade to anonymous access, which local test stores allow.
	client, err := minio.New(u.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: u.Scheme == "https",
		Region: region,
	})
	if err != nil {
		return nil, NewError(ErrKindConfiguration, "s3.init", err)
	}
	if retryMax < 1 {
		retryMax = 1
	}

	s := &ObjectStore{
		client:   client,
		bucket:   bucket,
		endpoint: endpointURL,
		retryMax: retryMax,
	}
	if err := s.ensureBucket(ctx, region); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ObjectStore) Kind() Kind { return KindS3 }

func (s *ObjectStore) ensureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return NewError(ErrKindConfiguration, "s3.init", fmt.Errorf("check bucket %q: %w", s.bucket, err))
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return NewError(ErrKindConfiguration, "s3.init", fmt.Errorf("create bucket %q: %w", s.bucket, err))
		}
		log.Info().Str("bucket", s.bucket).Msg("created object store bucket")
	}
	return nil
}

// Put writes the blob under a fresh uuid key and returns its locator.
func (s *ObjectStore) Put(ctx context.Context, data []byte, contentType, suggestedName string) (Locator, error) {
	key := objectKey(suggestedName)

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return Locator{}, WriteError("s3.put", err, nil)
	}
	return Locator{Kind: KindS3, Bucket: s.bucket, Key: key, Endpoint: s.endpoint}, nil
}

// Get fetches the blob, absorbing transient not-founds from an eventually
// consistent store within the configured retry budget.
func (s *ObjectStore) Get(ctx context.Context, loc Locator) ([]byte, error) {
	var data []byte
	sawNotFound := false

	operation := func() error {
		// Classification follows the last attempt only: an early stale
		// not-found must not mask a later transport failure.
		sawNotFound = false

		obj, err := s.client.GetObject(ctx, loc.Bucket, loc.Key, minio.GetObjectOptions{})
		if err != nil {
			return backoff.Permanent(err)
		}
		defer obj.Close()

		body, err := io.ReadAll(obj)
		if err != nil {
			if isStaleNotFound(err) {
				sawNotFound = true
				return err // retry: may be read-after-write lag
			}
			if isTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		data = body
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(newExponentialBackOff(), uint64(s.retryMax-1)), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		if sawNotFound || isStaleNotFound(err) {
			return nil, NewError(ErrKindNotFound, "s3.get", fmt.Errorf("object %s/%s not found", loc.Bucket, loc.Key))
		}
		return nil, NewError(ErrKindRead, "s3.get", err)
	}
	return data, nil
}

// Delete removes the object. The S3 API makes this idempotent already: a
// delete of an absent key succeeds.
func (s *ObjectStore) Delete(ctx context.Context, loc Locator) error {
	if err := s.client.RemoveObject(ctx, loc.Bucket, loc.Key, minio.RemoveObjectOptions{}); err != nil {
		if isStaleNotFound(err) {
			return nil
		}
		return NewError(ErrKindWrite, "s3.delete", err)
	}
	return nil
}

// objectKey derives a collision-free key, keeping the original extension
// so stored objects stay recognizable in bucket listings.
func objectKey(suggestedName string) string {
	ext := strings.ToLower(filepath.Ext(suggestedName))
	return "images/" + uuid.New().String() + ext
}

// isStaleNotFound matches the error shapes S3-compatible stores produce
// for a key that does not (yet) resolve.
func isStaleNotFound(err error) bool {
	if err == nil {
		return false
	}
	var pe *backoff.PermanentError
	if errors.As(err, &pe) {
		err = pe.Unwrap()
	}
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket"
}
