package port

import "context"

// FileStorage defines file storage operations for uploaded documents and
// generated artifacts. Paths are relative; Save returns nothing because the
// caller already owns the relative URL it persists.
type FileStorage interface {
	Save(ctx context.Context, path string, content []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) bool
	Delete(ctx context.Context, path string) error
	GetFullPath(relativePath string) string
}
