package texture

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/dmitrijs2005/exoscope/internal/filex"
	"github.com/google/uuid"
)

var ErrUnknownURL = errors.New("unknown texture url")

// URLStore turns images into revocable URLs.
type URLStore interface {
	Create(img Image) (string, error)
	Revoke(u string) bool
}

// ObjectURLs stores images as files in a private directory and hands out
// file:// URLs for them. A URL stays valid until it is revoked.
type ObjectURLs struct {
	dir string

	mu   sync.Mutex
	live map[string]string // url -> path
}

// NewObjectURLs creates a fresh private directory under root (the user
// cache directory when root is empty).
func NewObjectURLs(root string) (*ObjectURLs, error) {
	base, err := filex.EnsureDir(root)
	if err != nil {
		return nil, err
	}
	dir, err := os.MkdirTemp(base, "textures-")
	if err != nil {
		return nil, fmt.Errorf("create texture dir: %w", err)
	}
	return &ObjectURLs{dir: dir, live: make(map[string]string)}, nil
}

func (o *ObjectURLs) Create(img Image) (string, error) {
	if len(img.Data) == 0 {
		return "", errors.New("empty image")
	}
	path := filepath.Join(o.dir, uuid.NewString()+extension(img.ContentType))
	if err := os.WriteFile(path, img.Data, 0o600); err != nil {
		return "", fmt.Errorf("store texture: %w", err)
	}
	u := (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()

	o.mu.Lock()
	o.live[u] = path
	o.mu.Unlock()
	return u, nil
}

// Revoke releases u and reports whether it was live.
func (o *ObjectURLs) Revoke(u string) bool {
	o.mu.Lock()
	path, ok := o.live[u]
	delete(o.live, u)
	o.mu.Unlock()

	if ok {
		_ = os.Remove(path)
	}
	return ok
}

// Path returns the file behind a live URL.
func (o *ObjectURLs) Path(u string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	path, ok := o.live[u]
	if !ok {
		return "", ErrUnknownURL
	}
	return path, nil
}

// Live lists URLs that have not been revoked.
func (o *ObjectURLs) Live() []string {
	o.mu.Lock()
	out := make([]string, 0, len(o.live))
	for u := range o.live {
		out = append(out, u)
	}
	o.mu.Unlock()
	slices.Sort(out)
	return out
}

// Close revokes every URL and removes the directory.
func (o *ObjectURLs) Close() error {
	o.mu.Lock()
	o.live = make(map[string]string)
	o.mu.Unlock()
	return os.RemoveAll(o.dir)
}

func extension(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".img"
	}
}
