package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore persists blobs in an S3-compatible bucket and returns public
// https URLs. Objects are grouped under an "uploads/" prefix.
type ObjectStore struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// NewObjectStore connects to an S3-compatible endpoint. publicBaseURL
// overrides the URL prefix returned for stored objects; when empty, the
// endpoint and bucket are used directly.
func NewObjectStore(endpoint, accessKey, secretKey, bucket, publicBaseURL string) (*ObjectStore, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" || bucket == "" {
		return nil, errors.New("object storage is not fully configured")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to object storage: %w", err)
	}
	if publicBaseURL == "" {
		publicBaseURL = "https://" + endpoint + "/" + bucket
	}
	return &ObjectStore{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

func (s *ObjectStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	object := "uploads/" + name
	_, err := s.client.PutObject(ctx, s.bucket, object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return s.publicBase + "/" + object, nil
}
