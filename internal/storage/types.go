package storage

import (
	"io"
	"time"
)

// Provider identifies which backend(s) hold the bytes of an uploaded object.
type Provider string

const (
	ProviderPrimary   Provider = "aws-s3"
	ProviderSecondary Provider = "supabase"
	ProviderDual      Provider = "dual"
)

// UploadContext scopes an uploaded object to the kit, client and step it
// belongs to. All identifiers end up in the object key, so they must be
// URL-safe (UUIDs in practice).
type UploadContext struct {
	TenantID string
	KitID    string
	ClientID string
	StepID   string
}

// FileInfo describes an incoming file. Handlers adapt multipart headers into
// this shape so the storage layer never touches net/http request types.
type FileInfo struct {
	Name        string // original filename as supplied by the user
	Size        int64
	ContentType string
	Body        io.Reader
}

// FileConfig is the caller-supplied upload policy enforced by the secondary
// provider and by batch uploads.
type FileConfig struct {
	MaxFileSize   int64    // per-file limit in bytes
	MaxFiles      int      // batch limit; 0 means unlimited
	AcceptedTypes []string // exact MIME types or wildcard patterns like "image/*"
}

// ProgressFunc reports transferred bytes out of total. In dual mode the
// dispatcher reports synthetic 0/50/100 milestones instead of byte counts.
type ProgressFunc func(transferred, total int64)

// UploadResult records where an upload landed. It is immutable after
// creation: the Provider tag decides which backend(s) later delete and
// signed-URL calls are routed to.
type UploadResult struct {
	ID          string    `json:"id"`
	Provider    Provider  `json:"provider"`
	Key         string    `json:"key,omitempty"`         // S3 object key (primary leg)
	URL         string    `json:"url"`                   // public URL of the authoritative leg
	BackupURL   string    `json:"backup_url,omitempty"`  // populated only for dual results
	Path        string    `json:"path,omitempty"`        // supabase storage path (secondary leg)
	MetadataID  int64     `json:"metadata_id,omitempty"` // file_uploads row id (secondary leg)
	Name        string    `json:"name"`
	ContentType string    `json:"type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// Object describes a stored object returned by list calls on the primary
// provider.
type Object struct {
	Key  string
	Size int64
}

// Health is the result of a best-effort connectivity probe of both
// providers. Used for operational diagnostics only.
type Health struct {
	Primary   bool     `json:"primary"`
	Secondary bool     `json:"secondary"`
	Errors    []string `json:"errors,omitempty"`
}
