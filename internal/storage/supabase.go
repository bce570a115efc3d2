package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// SupabaseConfig describes the secondary provider: a supabase project URL,
// its service-role key and the storage bucket files land in.
type SupabaseConfig struct {
	URL        string // project URL, e.g. https://xyz.supabase.co
	ServiceKey string
	Bucket     string // defaults to "kit-files"
}

// SupabaseClient uploads to supabase storage over its REST API and records
// a file_uploads row for every object. The row is the system of record:
// delete removes the object best-effort but always propagates row-deletion
// failures. The REST transport is driven directly so byte-level progress can
// be reported through a counting reader.
type SupabaseClient struct {
	cfg  SupabaseConfig
	http *http.Client
	meta MetadataRepository
}

func NewSupabaseClient(cfg SupabaseConfig, meta MetadataRepository) (*SupabaseClient, error) {
	if cfg.URL == "" {
		return nil, errors.New("supabase url required")
	}
	if cfg.ServiceKey == "" {
		return nil, errors.New("supabase service key required")
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "kit-files"
	}
	cfg.URL = strings.TrimSuffix(cfg.URL, "/")
	return &SupabaseClient{
		cfg:  cfg,
		http: &http.Client{},
		meta: meta,
	}, nil
}

// progressReader counts bytes as the transport consumes them.
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	fn    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.fn(p.read, p.total)
	}
	return n, err
}

// Upload validates the file against the caller-supplied config, streams it
// to the storage bucket and inserts the metadata row. If the row insert
// fails the freshly written object is removed and the upload fails: an
// upload without its metadata record is incomplete.
func (c *SupabaseClient) Upload(ctx context.Context, file FileInfo, uctx UploadContext, cfg FileConfig, progress ProgressFunc) (*UploadResult, error) {
	if err := ValidateFile(file, cfg.MaxFileSize, cfg.AcceptedTypes); err != nil {
		return nil, err
	}

	storedName := GeneratedName(file.Name)
	objectPath := SecondaryPath(uctx, storedName)

	body := file.Body
	if progress != nil {
		progress(0, file.Size)
		body = &progressReader{r: file.Body, total: file.Size, fn: progress}
	}

	if err := c.putObject(ctx, objectPath, file.ContentType, file.Size, body); err != nil {
		return nil, newError(CodeUploadFailed, ProviderSecondary,
			fmt.Sprintf("upload %s", objectPath), err)
	}

	contextJSON, _ := json.Marshal(map[string]string{
		"tenant_id": uctx.TenantID,
		"kit_id":    uctx.KitID,
		"client_id": uctx.ClientID,
		"step_id":   uctx.StepID,
	})

	row := &FileUpload{
		KitID:            uctx.KitID,
		StepID:           uctx.StepID,
		ClientIdentifier: uctx.ClientID,
		OriginalFilename: file.Name,
		StoredFilename:   storedName,
		FilePath:         objectPath,
		FileSize:         file.Size,
		FileType:         FileCategory(file.ContentType),
		MimeType:         file.ContentType,
		UploadStatus:     UploadStatusCompleted,
		VirusScanStatus:  ScanStatusPending,
		Metadata:         string(contextJSON),
		CreatedAt:        time.Now(),
	}
	if err := c.meta.Create(ctx, row); err != nil {
		if delErr := c.removeObject(ctx, objectPath); delErr != nil {
			log.Printf("supabase rollback delete failed path=%s error=%v", objectPath, delErr)
		}
		return nil, newError(CodeMetadataFailed, ProviderSecondary, "insert file_uploads row", err)
	}

	return &UploadResult{
		ID:          strconv.FormatInt(row.ID, 10),
		Provider:    ProviderSecondary,
		Path:        objectPath,
		URL:         c.PublicURL(objectPath),
		MetadataID:  row.ID,
		Name:        file.Name,
		ContentType: file.ContentType,
		Size:        file.Size,
		CreatedAt:   row.CreatedAt,
	}, nil
}

// UploadMany enforces the aggregate limits up front, then uploads
// sequentially, stopping at the first failure.
func (c *SupabaseClient) UploadMany(ctx context.Context, files []FileInfo, uctx UploadContext, cfg FileConfig, progress ProgressFunc) ([]*UploadResult, error) {
	if err := ValidateBatch(files, cfg); err != nil {
		return nil, err
	}
	results := make([]*UploadResult, 0, len(files))
	for _, f := range files {
		res, err := c.Upload(ctx, f, uctx, cfg, progress)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Delete removes the storage object first (failure logged, not fatal), then
// the metadata row, whose failure propagates.
func (c *SupabaseClient) Delete(ctx context.Context, objectPath string, metadataID int64) error {
	if err := c.removeObject(ctx, objectPath); err != nil {
		log.Printf("supabase object delete failed path=%s error=%v", objectPath, err)
	}
	if err := c.meta.Delete(ctx, metadataID); err != nil {
		return newError(CodeDeleteFailed, ProviderSecondary,
			fmt.Sprintf("delete file_uploads row %d", metadataID), err)
	}
	return nil
}

// SignedURL asks the storage API to sign a time-limited download URL.
func (c *SupabaseClient) SignedURL(ctx context.Context, objectPath string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = DefaultSignedURLTTL
	}
	reqBody, _ := json.Marshal(map[string]int64{"expiresIn": int64(expires.Seconds())})
	endpoint := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", c.cfg.URL, c.cfg.Bucket, objectPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", newError(CodeSignFailed, ProviderSecondary, "build sign request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.ServiceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", newError(CodeSignFailed, ProviderSecondary, fmt.Sprintf("sign %s", objectPath), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", newError(CodeSignFailed, ProviderSecondary,
			fmt.Sprintf("sign %s: %s", objectPath, readAPIError(resp.Body)), nil)
	}

	var out struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", newError(CodeSignFailed, ProviderSecondary, "decode sign response", err)
	}
	return c.cfg.URL + "/storage/v1" + out.SignedURL, nil
}

// List returns completed uploads for a kit/step as results, newest first.
func (c *SupabaseClient) List(ctx context.Context, kitID, stepID, clientID string) ([]*UploadResult, error) {
	rows, err := c.meta.ListCompleted(ctx, kitID, stepID, clientID)
	if err != nil {
		return nil, err
	}
	results := make([]*UploadResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, &UploadResult{
			ID:          strconv.FormatInt(row.ID, 10),
			Provider:    ProviderSecondary,
			Path:        row.FilePath,
			URL:         c.PublicURL(row.FilePath),
			MetadataID:  row.ID,
			Name:        row.OriginalFilename,
			ContentType: row.MimeType,
			Size:        row.FileSize,
			CreatedAt:   row.CreatedAt,
		})
	}
	return results, nil
}

// Ping checks the bucket exists and the key is accepted.
func (c *SupabaseClient) Ping(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/storage/v1/bucket/%s", c.cfg.URL, c.cfg.Bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.ServiceKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bucket %s: %s", c.cfg.Bucket, readAPIError(resp.Body))
	}
	return nil
}

// PublicURL builds the public object URL; useful only when the bucket is
// public, which kit-files is not in production. Download access goes through
// SignedURL.
func (c *SupabaseClient) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.cfg.URL, c.cfg.Bucket, objectPath)
}

func (c *SupabaseClient) putObject(ctx context.Context, objectPath, contentType string, size int64, body io.Reader) error {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.cfg.URL, c.cfg.Bucket, objectPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.ServiceKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("x-upsert", "false")
	if size > 0 {
		req.ContentLength = size
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, readAPIError(resp.Body))
	}
	return nil
}

func (c *SupabaseClient) removeObject(ctx context.Context, objectPath string) error {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.cfg.URL, c.cfg.Bucket, objectPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.ServiceKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("status %d: %s", resp.StatusCode, readAPIError(resp.Body))
	}
	return nil
}

func readAPIError(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	msg := strings.TrimSpace(string(b))
	if msg == "" {
		return "no response body"
	}
	return msg
}
