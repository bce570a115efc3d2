package storage

import (
	"strings"
	"testing"
)

func testFile(name, contentType string, size int64) FileInfo {
	return FileInfo{
		Name:        name,
		Size:        size,
		ContentType: contentType,
		Body:        strings.NewReader(""),
	}
}

func TestValidateFileRejectsEmptyFile(t *testing.T) {
	err := ValidateFile(testFile("empty.png", "image/png", 0), 1024, nil)
	if !IsCode(err, CodeValidationFailed) {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}
}

func TestValidateFileSizeLimitIsInclusive(t *testing.T) {
	if err := ValidateFile(testFile("ok.png", "image/png", 1024), 1024, nil); err != nil {
		t.Fatalf("file exactly at the limit should pass, got %v", err)
	}
	err := ValidateFile(testFile("big.png", "image/png", 1025), 1024, nil)
	if !IsCode(err, CodeValidationFailed) {
		t.Fatalf("expected VALIDATION_FAILED for oversize file, got %v", err)
	}
}

func TestValidateFileWildcardTypes(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		allowed     []string
		wantOK      bool
	}{
		{"wildcard matches subtype", "image/png", []string{"image/*"}, true},
		{"wildcard rejects other family", "application/pdf", []string{"image/*"}, false},
		{"exact match", "application/pdf", []string{"application/pdf"}, true},
		{"exact match is case-insensitive", "Application/PDF", []string{"application/pdf"}, true},
		{"star accepts anything", "video/mp4", []string{"*"}, true},
		{"star-slash-star accepts anything", "video/mp4", []string{"*/*"}, true},
		{"empty list accepts anything", "application/zip", nil, true},
		{"charset params are stripped", "text/plain; charset=utf-8", []string{"text/plain"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateFile(testFile("f", tc.contentType, 10), 1024, tc.allowed)
			if tc.wantOK && err != nil {
				t.Fatalf("expected pass, got %v", err)
			}
			if !tc.wantOK && !IsCode(err, CodeValidationFailed) {
				t.Fatalf("expected VALIDATION_FAILED, got %v", err)
			}
		})
	}
}

func TestValidateBatchFileCount(t *testing.T) {
	files := []FileInfo{
		testFile("a.png", "image/png", 10),
		testFile("b.png", "image/png", 10),
		testFile("c.png", "image/png", 10),
	}
	err := ValidateBatch(files, FileConfig{MaxFileSize: 1024, MaxFiles: 2})
	if !IsCode(err, CodeTooManyFiles) {
		t.Fatalf("expected TOO_MANY_FILES, got %v", err)
	}
}

func TestValidateBatchAggregateSize(t *testing.T) {
	// two files of 80 bytes each: under the per-file limit of 100 but over
	// the aggregate limit of 100*1
	files := []FileInfo{
		testFile("a.bin", "application/octet-stream", 80),
		testFile("b.bin", "application/octet-stream", 80),
	}
	err := ValidateBatch(files, FileConfig{MaxFileSize: 100, MaxFiles: 2})
	if err != nil {
		t.Fatalf("aggregate 160 <= 200 should pass, got %v", err)
	}

	files = append(files, testFile("c.bin", "application/octet-stream", 80))
	err = ValidateBatch(files, FileConfig{MaxFileSize: 100, MaxFiles: 3})
	if err != nil {
		t.Fatalf("aggregate 240 <= 300 should pass, got %v", err)
	}

	err = ValidateBatch(files, FileConfig{MaxFileSize: 70, MaxFiles: 3})
	if !IsCode(err, CodeBatchTooLarge) && !IsCode(err, CodeValidationFailed) {
		t.Fatalf("expected a limit error, got %v", err)
	}
}

func TestValidateBatchPerFileCheckRunsAfterAggregate(t *testing.T) {
	files := []FileInfo{
		testFile("ok.png", "image/png", 10),
		testFile("bad.exe", "application/x-msdownload", 10),
	}
	err := ValidateBatch(files, FileConfig{MaxFileSize: 1024, MaxFiles: 5, AcceptedTypes: []string{"image/*"}})
	if !IsCode(err, CodeValidationFailed) {
		t.Fatalf("expected VALIDATION_FAILED for disallowed type, got %v", err)
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(newError(CodeTooManyFiles, "", "x", nil)) {
		t.Fatal("TOO_MANY_FILES should count as validation")
	}
	if IsValidation(newError(CodeUploadFailed, ProviderPrimary, "x", nil)) {
		t.Fatal("UPLOAD_FAILED should not count as validation")
	}
}
