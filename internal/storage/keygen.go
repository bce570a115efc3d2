package storage

import (
	"fmt"
	"math/rand"
	"path"
	"strings"
	"time"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// GeneratedName returns a stored filename that never trusts the user-supplied
// name: a millisecond timestamp plus a random base36 suffix, keeping only the
// original extension. Two calls within the same millisecond still differ.
func GeneratedName(original string) string {
	ext := strings.ToLower(path.Ext(original))
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), randBase36(13), ext)
}

func randBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36[rand.Intn(len(base36))]
	}
	return string(b)
}

// PrimaryKey builds the S3 object key for an upload:
// kits/{kit}/clients/{client}/steps/{step}/{storedName}.
func PrimaryKey(uctx UploadContext, storedName string) string {
	return fmt.Sprintf("kits/%s/clients/%s/steps/%s/%s",
		uctx.KitID, uctx.ClientID, uctx.StepID, storedName)
}

// SecondaryPath builds the supabase storage path for an upload:
// {kit}/{client}/{step}/{storedName}.
func SecondaryPath(uctx UploadContext, storedName string) string {
	return fmt.Sprintf("%s/%s/%s/%s",
		uctx.KitID, uctx.ClientID, uctx.StepID, storedName)
}

// FileCategory maps a MIME type onto the coarse category stored in the
// file_uploads.file_type column.
func FileCategory(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	case strings.HasPrefix(mimeType, "video/"):
		return "video"
	case strings.HasPrefix(mimeType, "audio/"):
		return "audio"
	case mimeType == "application/pdf",
		strings.HasPrefix(mimeType, "text/"),
		strings.Contains(mimeType, "document"),
		strings.Contains(mimeType, "spreadsheet"):
		return "document"
	default:
		return "other"
	}
}
