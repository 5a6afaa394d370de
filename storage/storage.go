package storage

import (
	"context"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
)

// Service abstracts the object store holding uploaded files. The
// database only keeps each object's key and public URL.
type Service interface {
	// Upload writes the object and returns its public URL.
	Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	// SignedDownloadURL returns a time-limited URL for private download.
	SignedDownloadURL(key string, expires time.Duration) (string, error)
}

// SignedURLLifetime bounds how long issued download links stay valid.
const SignedURLLifetime = 5 * time.Minute

// NewKey builds a unique object key under the given folder, keeping
// the original file extension.
func NewKey(folder, fileName string) string {
	return folder + "/" + uuid.NewString() + path.Ext(fileName)
}
