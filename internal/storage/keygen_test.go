package storage

import (
	"regexp"
	"strings"
	"testing"
)

var storedNamePattern = regexp.MustCompile(`^\d{13}-[0-9a-z]{13}(\.[0-9a-z.]+)?$`)

func TestGeneratedNameShape(t *testing.T) {
	name := GeneratedName("Contract Final (2).PDF")
	if !storedNamePattern.MatchString(name) {
		t.Fatalf("unexpected stored name %q", name)
	}
	if !strings.HasSuffix(name, ".pdf") {
		t.Fatalf("expected lowercased .pdf extension, got %q", name)
	}
}

func TestGeneratedNameWithoutExtension(t *testing.T) {
	name := GeneratedName("README")
	if strings.Contains(name, ".") {
		t.Fatalf("expected no extension, got %q", name)
	}
}

func TestGeneratedNameUniqueWithinMillisecond(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		name := GeneratedName("photo.jpg")
		if seen[name] {
			t.Fatalf("duplicate stored name %q", name)
		}
		seen[name] = true
	}
}

func TestKeyLayouts(t *testing.T) {
	uctx := UploadContext{
		TenantID: "t-1",
		KitID:    "kit-1",
		ClientID: "client-1",
		StepID:   "step-1",
	}

	key := PrimaryKey(uctx, "170000-abc.jpg")
	if key != "kits/kit-1/clients/client-1/steps/step-1/170000-abc.jpg" {
		t.Fatalf("unexpected primary key %q", key)
	}

	path := SecondaryPath(uctx, "170000-abc.jpg")
	if path != "kit-1/client-1/step-1/170000-abc.jpg" {
		t.Fatalf("unexpected secondary path %q", path)
	}
}

func TestFileCategory(t *testing.T) {
	cases := []struct {
		mime string
		want string
	}{
		{"image/png", "image"},
		{"video/mp4", "video"},
		{"audio/mpeg", "audio"},
		{"application/pdf", "document"},
		{"text/plain", "document"},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "document"},
		{"application/zip", "other"},
	}
	for _, tc := range cases {
		if got := FileCategory(tc.mime); got != tc.want {
			t.Errorf("FileCategory(%q) = %q, want %q", tc.mime, got, tc.want)
		}
	}
}
