package media

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	ids "conecta/tools/ids"
)

// Store writes an opaque media blob and returns the URL it will be
// served from. The realtime and conversation layers only ever see the
// URL.
type Store interface {
	Save(ctx context.Context, filename, contentType string, r io.Reader) (url, mediaType string, err error)
}

// DiskStore keeps blobs on local disk under BaseDir, served from
// URLPrefix by the HTTP layer.
type DiskStore struct {
	BaseDir   string
	URLPrefix string
}

func NewDiskStore(baseDir, urlPrefix string) (*DiskStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create media dir")
	}
	return &DiskStore{BaseDir: baseDir, URLPrefix: urlPrefix}, nil
}

func (s *DiskStore) Save(_ context.Context, filename, contentType string, r io.Reader) (string, string, error) {
	name := ids.GenerateString() + sanitizeExt(filename)
	path := filepath.Join(s.BaseDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", "", errors.Wrap(err, "create media file")
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(path)
		return "", "", errors.Wrap(err, "write media file")
	}
	return s.URLPrefix + "/" + name, detectType(contentType), nil
}

func detectType(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	default:
		return "image"
	}
}

func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 {
		return ""
	}
	for _, r := range ext[min(1, len(ext)):] {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return ""
		}
	}
	return ext
}
