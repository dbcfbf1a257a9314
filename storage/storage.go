// Package storage abstracts where uploaded images live. Production
// deployments point at an S3-compatible object store; everything else
// writes to a local directory under the served static root.
package storage

import "context"

// BlobStore persists a named blob and returns the URL it will be served
// from: an absolute https URL for the object store, a root-relative path
// for the local backend.
type BlobStore interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}
