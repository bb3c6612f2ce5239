package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rotisserie/eris"
)

// Store keeps finding photos in a single MinIO/S3 bucket.
type Store struct {
	client     *minio.Client
	bucketName string
	region     string
	baseURL    string
}

type Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PublicURL string
}

// New buat koneksi MinIO dan pastikan bucket ada
func New(ctx context.Context, opts Options) (*Store, error) {
	cli, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, eris.Wrap(err, "minio: new client")
	}

	exists, err := cli.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, eris.Wrapf(err, "minio: check bucket %s", opts.Bucket)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, eris.Wrapf(err, "minio: make bucket %s", opts.Bucket)
		}
	}

	return &Store{
		client:     cli,
		bucketName: opts.Bucket,
		region:     opts.Region,
		baseURL:    BaseURL(opts.PublicURL, opts.Endpoint, opts.UseSSL),
	}, nil
}

// Upload implementasi photos.BlobStore
func (s *Store) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if size <= 0 {
		size = -1 // unknown; minio streams multipart
	}
	_, err := s.client.PutObject(ctx, s.bucketName, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", eris.Wrapf(err, "minio: put %s", key)
	}
	// URL publik (bucket harus public-read)
	return ObjectURL(s.baseURL, s.bucketName, key), nil
}

// Delete removes the object a URL returned by Upload points at.
func (s *Store) Delete(ctx context.Context, rawURL string) error {
	key, err := KeyFromURL(rawURL, s.bucketName)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return eris.Wrapf(err, "minio: remove %s", key)
	}
	return nil
}

// Check is used by the health endpoint.
func (s *Store) Check(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return eris.Wrap(err, "minio: bucket check")
	}
	if !ok {
		return eris.Errorf("minio: bucket %s missing", s.bucketName)
	}
	return nil
}

// BaseURL is the scheme://host prefix of public object URLs.
func BaseURL(publicURL, endpoint string, useSSL bool) string {
	if publicURL != "" {
		return strings.TrimRight(publicURL, "/")
	}
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, endpoint)
}

// ObjectURL builds the path-style URL of key.
func ObjectURL(baseURL, bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", baseURL, bucket, key)
}

// KeyFromURL extracts the object key from a path-style URL of bucket.
func KeyFromURL(rawURL, bucket string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", eris.Wrapf(err, "minio: parse url %q", rawURL)
	}
	prefix := "/" + bucket + "/"
	idx := strings.Index(u.Path, prefix)
	if idx < 0 {
		return "", eris.Errorf("minio: url %q is not in bucket %s", rawURL, bucket)
	}
	key := u.Path[idx+len(prefix):]
	if key == "" {
		return "", eris.Errorf("minio: url %q has no object key", rawURL)
	}
	return key, nil
}
