package utils

import (
	"strings"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal plaintext")
	}
	if !CheckPassword("correct horse battery staple", hash) {
		t.Fatal("correct password must verify")
	}
	if CheckPassword("wrong password", hash) {
		t.Fatal("wrong password must not verify")
	}
	if CheckPassword("correct horse battery staple", "") {
		t.Fatal("empty hash must not verify")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Asha's Studio", "asha-s-studio"},
		{"  Lumen  Photography  ", "lumen-photography"},
		{"UPPER case", "upper-case"},
		{"123 go", "123-go"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTenantSlug(t *testing.T) {
	a := TenantSlug("Asha")
	b := TenantSlug("Asha")
	if a == b {
		t.Fatal("two slugs from the same name must differ")
	}
	if !strings.HasPrefix(a, "asha-") {
		t.Fatalf("slug %q missing name prefix", a)
	}
	if empty := TenantSlug("!!!"); !strings.HasPrefix(empty, "studio-") {
		t.Fatalf("empty base must fall back to studio prefix, got %q", empty)
	}
}
