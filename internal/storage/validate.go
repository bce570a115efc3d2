package storage

import (
	"fmt"
	"strings"
)

// ValidateFile runs the pre-upload guards: non-empty, within maxSize and of
// an accepted MIME type. It never touches the network. A file exactly at
// maxSize bytes passes; maxSize+1 fails. Wildcard patterns like "image/*"
// match by prefix. An empty allowedTypes list accepts any type.
func ValidateFile(file FileInfo, maxSize int64, allowedTypes []string) error {
	if file.Size <= 0 {
		return newError(CodeValidationFailed, "", "file is empty", nil)
	}
	if maxSize > 0 && file.Size > maxSize {
		return newError(CodeValidationFailed, "",
			fmt.Sprintf("file %q is %d bytes, limit is %d", file.Name, file.Size, maxSize), nil)
	}
	if len(allowedTypes) > 0 && !typeAllowed(file.ContentType, allowedTypes) {
		return newError(CodeValidationFailed, "",
			fmt.Sprintf("file type %q is not allowed", file.ContentType), nil)
	}
	return nil
}

// ValidateBatch enforces the aggregate limits before any per-file upload:
// file count against MaxFiles and total byte size against
// MaxFileSize*MaxFiles.
func ValidateBatch(files []FileInfo, cfg FileConfig) error {
	if cfg.MaxFiles > 0 && len(files) > cfg.MaxFiles {
		return newError(CodeTooManyFiles, "",
			fmt.Sprintf("%d files exceed the limit of %d", len(files), cfg.MaxFiles), nil)
	}
	if cfg.MaxFiles > 0 && cfg.MaxFileSize > 0 {
		var total int64
		for _, f := range files {
			total += f.Size
		}
		if limit := cfg.MaxFileSize * int64(cfg.MaxFiles); total > limit {
			return newError(CodeBatchTooLarge, "",
				fmt.Sprintf("batch is %d bytes, limit is %d", total, limit), nil)
		}
	}
	for _, f := range files {
		if err := ValidateFile(f, cfg.MaxFileSize, cfg.AcceptedTypes); err != nil {
			return err
		}
	}
	return nil
}

func typeAllowed(contentType string, allowed []string) bool {
	// strip charset params the way the detector reports them
	contentType = strings.TrimSpace(strings.Split(contentType, ";")[0])
	for _, pattern := range allowed {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if pattern == "*" || pattern == "*/*" {
			return true
		}
		if strings.HasSuffix(pattern, "/*") {
			if strings.HasPrefix(contentType, strings.TrimSuffix(pattern, "*")) {
				return true
			}
			continue
		}
		if strings.EqualFold(contentType, pattern) {
			return true
		}
	}
	return false
}
