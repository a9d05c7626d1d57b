package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
)

type UploadParams struct {
	Name        string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type Uploader interface {
	Upload(context.Context, UploadParams) error
	// Location is where a stored name can be found, for recording in metadata.
	Location(name string) string
}

// FileUploader writes under Root, creating directories as needed.
type FileUploader struct {
	Root string
}

func (u *FileUploader) Upload(ctx context.Context, params UploadParams) error {
	log := logr.FromContextOrDiscard(ctx).WithName("file")
	path := u.Location(params.Name)
	log.Info("writing", "file", path, "bytes", len(params.Data))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, params.Data, 0644)
}

func (u *FileUploader) Location(name string) string {
	return filepath.Join(u.Root, filepath.FromSlash(name))
}
