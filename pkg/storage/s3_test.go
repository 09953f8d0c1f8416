package storage

import (
	"strings"
	"testing"
)

func TestValidatePhotoFileType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		filename    string
		want        bool
	}{
		{"jpeg by type", "image/jpeg", "shot.bin", true},
		{"png by extension", "", "shot.PNG", true},
		{"octet-stream with jpg ext", "application/octet-stream", "shot.jpg", true},
		{"heic", "image/heic", "shot.heic", true},
		{"pdf rejected", "application/pdf", "doc.pdf", false},
		{"video rejected", "video/mp4", "clip.mp4", false},
		{"no hints rejected", "", "mystery", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidatePhotoFileType(tt.contentType, tt.filename); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContentTypeForFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"a.jpg", "image/jpeg"},
		{"a.JPEG", "image/jpeg"},
		{"a.png", "image/png"},
		{"a.webp", "image/webp"},
		{"a.bin", "application/octet-stream"},
		{"noext", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := ContentTypeForFilename(tt.filename); got != tt.want {
			t.Errorf("ContentTypeForFilename(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestPhotoKey(t *testing.T) {
	key := PhotoKey("tenant-1", "album-2", "photo-3", "Wedding Shot.JPG")
	want := "photos/tenant-1/album-2/photo-3.jpg"
	if key != want {
		t.Fatalf("key = %q, want %q", key, want)
	}
	if strings.Contains(key, " ") {
		t.Fatal("key must not contain the original filename")
	}

	noExt := PhotoKey("t", "a", "p", "raw")
	if noExt != "photos/t/a/p" {
		t.Fatalf("extensionless key = %q", noExt)
	}
}
