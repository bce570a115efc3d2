package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// FileUpload is the metadata row recorded for every secondary-provider
// upload. The row, not the storage object, is the system of record for
// "does this upload exist".
type FileUpload struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	KitID            string    `gorm:"column:kit_id;index" json:"kit_id"`
	StepID           string    `gorm:"column:step_id;index" json:"step_id"`
	ClientIdentifier string    `gorm:"column:client_identifier;index" json:"client_identifier"`
	OriginalFilename string    `gorm:"column:original_filename" json:"original_filename"`
	StoredFilename   string    `gorm:"column:stored_filename" json:"stored_filename"`
	FilePath         string    `gorm:"column:file_path" json:"file_path"`
	FileSize         int64     `gorm:"column:file_size" json:"file_size"`
	FileType         string    `gorm:"column:file_type" json:"file_type"` // coarse category: image/video/document/...
	MimeType         string    `gorm:"column:mime_type" json:"mime_type"`
	UploadStatus     string    `gorm:"column:upload_status;index" json:"upload_status"`
	VirusScanStatus  string    `gorm:"column:virus_scan_status" json:"virus_scan_status"`
	Metadata         string    `gorm:"column:metadata" json:"-"` // JSON blob with tenant context
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
}

func (FileUpload) TableName() string { return "file_uploads" }

const (
	UploadStatusCompleted = "completed"
	ScanStatusPending     = "pending"
)

type MetadataRepository interface {
	Create(ctx context.Context, row *FileUpload) error
	GetByID(ctx context.Context, id int64) (*FileUpload, error)
	Delete(ctx context.Context, id int64) error
	// ListCompleted returns completed uploads for a kit/step, newest first.
	// clientID narrows the result when non-empty.
	ListCompleted(ctx context.Context, kitID, stepID, clientID string) ([]*FileUpload, error)
}

type metadataRepository struct {
	db *gorm.DB
}

func NewMetadataRepository(db *gorm.DB) MetadataRepository {
	return &metadataRepository{db: db}
}

func (r *metadataRepository) Create(ctx context.Context, row *FileUpload) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *metadataRepository) GetByID(ctx context.Context, id int64) (*FileUpload, error) {
	var row FileUpload
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUploadNotFound
	}
	return &row, err
}

func (r *metadataRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&FileUpload{}).Error
}

func (r *metadataRepository) ListCompleted(ctx context.Context, kitID, stepID, clientID string) ([]*FileUpload, error) {
	q := r.db.WithContext(ctx).
		Where("kit_id = ? AND step_id = ? AND upload_status = ?", kitID, stepID, UploadStatusCompleted)
	if clientID != "" {
		q = q.Where("client_identifier = ?", clientID)
	}
	var rows []*FileUpload
	err := q.Order("created_at DESC").Find(&rows).Error
	return rows, err
}
