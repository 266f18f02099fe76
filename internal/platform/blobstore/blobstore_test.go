package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	store := NewDiskStore(t.TempDir(), 1<<20)
	payload := []byte("fake jpeg bytes")

	meta, err := store.Save(context.Background(), Metadata{
		FileName:    "chest.jpg",
		ContentType: "image/jpeg",
		OwnerID:     "owner-1",
	}, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if meta.Ref == "" || meta.Size != int64(len(payload)) {
		t.Fatalf("meta = %+v", meta)
	}

	rc, _, err := store.Load(context.Background(), meta.Ref)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("loaded bytes differ from saved bytes")
	}

	if err := store.Delete(context.Background(), meta.Ref); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := store.Load(context.Background(), meta.Ref); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("load after delete: want ErrBlobNotFound, got %v", err)
	}
}

func TestDiskStoreLoadRecoversContentType(t *testing.T) {
	store := NewDiskStore(t.TempDir(), 1<<20)

	cases := []struct {
		fileName string
		want     string
	}{
		{"chest.png", "image/png"},
		{"chest.jpg", "image/jpeg"},
		{"chest.jpeg", "image/jpeg"},
		{"series.dcm", "application/dicom"},
	}
	for _, tc := range cases {
		saved, err := store.Save(context.Background(), Metadata{
			FileName:    tc.fileName,
			ContentType: tc.want,
			OwnerID:     "owner-1",
		}, strings.NewReader("pixels"))
		if err != nil {
			t.Fatalf("save %s: %v", tc.fileName, err)
		}

		rc, meta, err := store.Load(context.Background(), saved.Ref)
		if err != nil {
			t.Fatalf("load %s: %v", tc.fileName, err)
		}
		rc.Close()
		if meta.ContentType != tc.want {
			t.Errorf("%s: content type = %q, want %q", tc.fileName, meta.ContentType, tc.want)
		}
	}
}

func TestDiskStoreRejectsEscapingRefs(t *testing.T) {
	store := NewDiskStore(t.TempDir(), 1<<20)

	for _, ref := range []string{"../../etc/passwd", "/etc/passwd", ""} {
		if _, _, err := store.Load(context.Background(), ref); !errors.Is(err, ErrBlobNotFound) {
			t.Errorf("ref %q: want ErrBlobNotFound, got %v", ref, err)
		}
	}
}

func TestSaveValidation(t *testing.T) {
	store := NewMemoryStore(16)

	cases := []struct {
		name    string
		meta    Metadata
		content string
		want    error
	}{
		{"missing filename", Metadata{ContentType: "image/png"}, "x", ErrMissingFileName},
		{"bad extension", Metadata{FileName: "scan.exe"}, "x", ErrInvalidContentType},
		{"bad content type", Metadata{FileName: "scan.png", ContentType: "text/html"}, "x", ErrInvalidContentType},
		{"oversized", Metadata{FileName: "scan.png", ContentType: "image/png"}, strings.Repeat("x", 17), ErrFileTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.Save(context.Background(), tc.meta, strings.NewReader(tc.content))
			if !errors.Is(err, tc.want) {
				t.Errorf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(1 << 20)

	meta, err := store.Save(context.Background(), Metadata{
		FileName:    "brain.dcm",
		ContentType: "application/dicom",
		OwnerID:     "owner-2",
	}, strings.NewReader("dicom data"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	rc, got, err := store.Load(context.Background(), meta.Ref)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rc.Close()
	if got.ContentType != "application/dicom" {
		t.Errorf("content type = %q", got.ContentType)
	}

	if err := store.Delete(context.Background(), meta.Ref); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(context.Background(), meta.Ref); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("double delete: want ErrBlobNotFound, got %v", err)
	}
}
