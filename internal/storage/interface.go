package storage

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentStore keeps uploaded navigation documents so imports can be replayed
// and audited. Backends: the local filesystem and S3.
type DocumentStore interface {
	Save(ctx context.Context, key string, r io.Reader) error

	// Open returns domain.ErrNotFound when the key does not exist.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	Exists(ctx context.Context, key string) (exists bool, size int64, err error)

	Delete(ctx context.Context, key string) error

	// DownloadURL returns a time-limited link to the document.
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)
}

const FolderNavigation = "navigation"

// NewDocumentKey returns folder/<uuid><ext>, keeping the extension of filename.
func NewDocumentKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".xml"
	}
	return path.Join(folder, uuid.NewString()+ext)
}
