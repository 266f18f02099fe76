// Package blobstore stores uploaded scan images. It defines the Store
// interface, a disk-backed implementation used by the server, and an
// in-memory implementation for tests. Extension, content-type, and size are
// validated here, before any scan record is created.
package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrBlobNotFound       = errors.New("blob not found")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
	ErrMissingFileName    = errors.New("file name is required")
)

// AllowedExtensions lists the image types accepted for scan uploads.
var AllowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".dcm":  true,
}

// AllowedContentTypes lists accepted upload MIME types.
var AllowedContentTypes = map[string]bool{
	"image/png":         true,
	"image/jpeg":        true,
	"image/dicom":       true,
	"application/dicom": true,
}

// Metadata describes a stored image.
type Metadata struct {
	Ref         string    `json:"ref"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is the contract for image storage backends. Save returns an opaque
// ref that Scan rows carry; Load resolves it back to the image bytes.
type Store interface {
	Save(ctx context.Context, meta Metadata, content io.Reader) (*Metadata, error)
	Load(ctx context.Context, ref string) (io.ReadCloser, *Metadata, error)
	Delete(ctx context.Context, ref string) error
}

func validate(meta Metadata, size, maxSize int64) error {
	if meta.FileName == "" {
		return ErrMissingFileName
	}
	ext := strings.ToLower(filepath.Ext(meta.FileName))
	if !AllowedExtensions[ext] {
		return fmt.Errorf("%w: extension %q", ErrInvalidContentType, ext)
	}
	if meta.ContentType != "" && !AllowedContentTypes[meta.ContentType] {
		return fmt.Errorf("%w: %q", ErrInvalidContentType, meta.ContentType)
	}
	if size > maxSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, size, maxSize)
	}
	return nil
}

// ContentTypeForRef maps a ref's extension back to its MIME type. Refs keep
// the upload's extension, so this is how Load recovers the content type the
// disk layout does not store.
func ContentTypeForRef(ref string) string {
	switch strings.ToLower(filepath.Ext(ref)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".dcm":
		return "application/dicom"
	default:
		return ""
	}
}

// newRef builds a collision-free ref preserving the original extension,
// namespaced per owner so the upload tree stays browsable.
func newRef(meta Metadata) string {
	ext := strings.ToLower(filepath.Ext(meta.FileName))
	return filepath.Join("patient_"+meta.OwnerID, uuid.New().String()+ext)
}

// ---------------------------------------------------------------------------
// Disk-backed implementation
// ---------------------------------------------------------------------------

// DiskStore writes images under a root directory.
type DiskStore struct {
	root    string
	maxSize int64
}

func NewDiskStore(root string, maxSize int64) *DiskStore {
	return &DiskStore{root: root, maxSize: maxSize}
}

func (s *DiskStore) Save(_ context.Context, meta Metadata, content io.Reader) (*Metadata, error) {
	// Read one byte past the limit so oversized uploads are detected without
	// buffering the whole stream unchecked.
	data, err := io.ReadAll(io.LimitReader(content, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := validate(meta, int64(len(data)), s.maxSize); err != nil {
		return nil, err
	}

	ref := newRef(meta)
	path := filepath.Join(s.root, ref)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	meta.Ref = ref
	meta.Size = int64(len(data))
	meta.CreatedAt = time.Now().UTC()
	return &meta, nil
}

func (s *DiskStore) Load(_ context.Context, ref string) (io.ReadCloser, *Metadata, error) {
	path, err := s.resolve(ref)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrBlobNotFound
		}
		return nil, nil, fmt.Errorf("open blob: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat blob: %w", err)
	}
	meta := &Metadata{
		Ref:         ref,
		FileName:    filepath.Base(ref),
		ContentType: ContentTypeForRef(ref),
		Size:        info.Size(),
		CreatedAt:   info.ModTime(),
	}
	return f, meta, nil
}

func (s *DiskStore) Delete(_ context.Context, ref string) error {
	path, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrBlobNotFound
		}
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}

// resolve rejects refs that would escape the root directory.
func (s *DiskStore) resolve(ref string) (string, error) {
	clean := filepath.Clean(ref)
	if clean == "" || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", ErrBlobNotFound
	}
	return filepath.Join(s.root, clean), nil
}

// ---------------------------------------------------------------------------
// In-memory implementation
// ---------------------------------------------------------------------------

// MemoryStore keeps blobs in memory. Test and development use only.
type MemoryStore struct {
	mu      sync.RWMutex
	blobs   map[string]storedBlob
	maxSize int64
}

type storedBlob struct {
	meta    Metadata
	content []byte
}

func NewMemoryStore(maxSize int64) *MemoryStore {
	return &MemoryStore{blobs: make(map[string]storedBlob), maxSize: maxSize}
}

func (s *MemoryStore) Save(_ context.Context, meta Metadata, content io.Reader) (*Metadata, error) {
	data, err := io.ReadAll(io.LimitReader(content, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := validate(meta, int64(len(data)), s.maxSize); err != nil {
		return nil, err
	}

	meta.Ref = newRef(meta)
	meta.Size = int64(len(data))
	meta.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	s.blobs[meta.Ref] = storedBlob{meta: meta, content: data}
	s.mu.Unlock()

	return &meta, nil
}

func (s *MemoryStore) Load(_ context.Context, ref string) (io.ReadCloser, *Metadata, error) {
	s.mu.RLock()
	blob, ok := s.blobs[ref]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, ErrBlobNotFound
	}
	meta := blob.meta
	return io.NopCloser(bytes.NewReader(blob.content)), &meta, nil
}

func (s *MemoryStore) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[ref]; !ok {
		return ErrBlobNotFound
	}
	delete(s.blobs, ref)
	return nil
}
