/*
Package storage provides the durable blob stores the user directory is persisted to.

The directory is serialized into a single document and rewritten in full on every mutation,
so a store only needs to load and replace one blob. Every implementation must make Save
all-or-nothing: a reader never observes a partially written blob.
*/
package storage

import (
	"context"
	"errors"
)

// ErrBlobNotFound is returned by Load when nothing has been saved yet.
var ErrBlobNotFound = errors.New("storage: blob not found")

// BlobStore defines the public interface for directory persistence.
type BlobStore interface {
	// Load returns the last saved blob, or ErrBlobNotFound.
	Load(ctx context.Context) ([]byte, error)

	// Save atomically replaces the stored blob.
	Save(ctx context.Context, data []byte) error

	// Name identifies the backend in logs.
	Name() string
}

// S3Config holds the configuration required to connect to an S3-compatible bucket.
type S3Config struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// Key is the object key the directory document is stored under.
	Key string
}
