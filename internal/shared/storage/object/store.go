package object

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotFound is returned by Open when no object exists at the key.
	ErrNotFound = errors.New("object not found")
	// ErrInvalidKey is returned for keys that escape the store's namespace.
	ErrInvalidKey = errors.New("invalid storage key")
)

// Object describes a stored blob. URL is retrievable by the completion
// service and by browsers.
type Object struct {
	Key       string
	URL       string
	MimeType  string
	SizeBytes int64
}

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	Save(ctx context.Context, ownerID string, fileName string, r io.Reader) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
