package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"
)

// Mode selects which provider(s) the Manager writes to. It is resolved once
// at startup from configuration and never re-derived per call.
type Mode string

const (
	ModePrimary   Mode = "primary"
	ModeSecondary Mode = "secondary"
	ModeDual      Mode = "dual"
)

// PrimaryStore is the surface of the S3 client the dispatcher needs.
type PrimaryStore interface {
	Upload(ctx context.Context, file FileInfo, uctx UploadContext, progress ProgressFunc) (*UploadResult, error)
	UploadMany(ctx context.Context, files []FileInfo, uctx UploadContext, progress ProgressFunc) ([]*UploadResult, error)
	Delete(ctx context.Context, key string) error
	SignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
	Ping(ctx context.Context) error
}

// SecondaryStore is the surface of the supabase client the dispatcher needs.
type SecondaryStore interface {
	Upload(ctx context.Context, file FileInfo, uctx UploadContext, cfg FileConfig, progress ProgressFunc) (*UploadResult, error)
	UploadMany(ctx context.Context, files []FileInfo, uctx UploadContext, cfg FileConfig, progress ProgressFunc) ([]*UploadResult, error)
	Delete(ctx context.Context, objectPath string, metadataID int64) error
	SignedURL(ctx context.Context, objectPath string, expires time.Duration) (string, error)
	List(ctx context.Context, kitID, stepID, clientID string) ([]*UploadResult, error)
	Ping(ctx context.Context) error
}

// Manager is the single entry point hiding the choice of provider from
// callers. Stateless per call: the only configuration is the mode computed
// at construction and the designated authoritative provider for dual mode.
type Manager struct {
	mode        Mode
	dualPrimary Provider
	primary     PrimaryStore
	secondary   SecondaryStore
}

// NewManager validates the mode eagerly: a mode that names a provider whose
// client is missing fails at startup, not on the first upload.
func NewManager(mode Mode, dualPrimary Provider, primary PrimaryStore, secondary SecondaryStore) (*Manager, error) {
	switch mode {
	case ModePrimary:
		if primary == nil {
			return nil, errors.New("primary mode selected but no s3 client configured")
		}
	case ModeSecondary:
		if secondary == nil {
			return nil, errors.New("secondary mode selected but no supabase client configured")
		}
	case ModeDual:
		if primary == nil || secondary == nil {
			return nil, errors.New("dual mode requires both providers configured")
		}
		if dualPrimary != ProviderPrimary && dualPrimary != ProviderSecondary {
			return nil, fmt.Errorf("invalid dual primary provider %q", dualPrimary)
		}
	default:
		return nil, fmt.Errorf("invalid storage mode %q", mode)
	}
	return &Manager{mode: mode, dualPrimary: dualPrimary, primary: primary, secondary: secondary}, nil
}

func (m *Manager) Mode() Mode { return m.mode }

// resolve applies a per-call provider override on top of the process mode.
// An override naming an unconfigured provider is rejected.
func (m *Manager) resolve(override Provider) (Mode, error) {
	switch override {
	case "":
		return m.mode, nil
	case ProviderPrimary:
		if m.primary == nil {
			return "", errors.New("aws-s3 override requested but no s3 client configured")
		}
		return ModePrimary, nil
	case ProviderSecondary:
		if m.secondary == nil {
			return "", errors.New("supabase override requested but no supabase client configured")
		}
		return ModeSecondary, nil
	case ProviderDual:
		if m.primary == nil || m.secondary == nil {
			return "", errors.New("dual override requires both providers configured")
		}
		return ModeDual, nil
	default:
		return "", fmt.Errorf("unknown provider %q", override)
	}
}

// Upload dispatches to the selected provider(s). In dual mode the
// authoritative leg runs first and its failure fails the call; the other
// leg is attempted as backup and its failure is logged only. Dual progress
// is synthetic: 0 at start, 50 after the authoritative leg, 100 after the
// backup attempt regardless of its outcome.
func (m *Manager) Upload(ctx context.Context, file FileInfo, uctx UploadContext, cfg FileConfig, override Provider, progress ProgressFunc) (*UploadResult, error) {
	mode, err := m.resolve(override)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModePrimary:
		if err := ValidateFile(file, cfg.MaxFileSize, cfg.AcceptedTypes); err != nil {
			return nil, err
		}
		return m.primary.Upload(ctx, file, uctx, progress)
	case ModeSecondary:
		return m.secondary.Upload(ctx, file, uctx, cfg, progress)
	default:
		return m.uploadDual(ctx, file, uctx, cfg, progress)
	}
}

func (m *Manager) uploadDual(ctx context.Context, file FileInfo, uctx UploadContext, cfg FileConfig, progress ProgressFunc) (*UploadResult, error) {
	// both legs need the bytes, so buffer once
	data, err := io.ReadAll(file.Body)
	if err != nil {
		return nil, newError(CodeUploadFailed, ProviderDual, "read upload body", err)
	}
	leg := func() FileInfo {
		f := file
		f.Body = bytes.NewReader(data)
		return f
	}

	if err := ValidateFile(leg(), cfg.MaxFileSize, cfg.AcceptedTypes); err != nil {
		return nil, err
	}

	if progress != nil {
		progress(0, file.Size)
	}

	var result *UploadResult
	if m.dualPrimary == ProviderPrimary {
		result, err = m.primary.Upload(ctx, leg(), uctx, nil)
		if err != nil {
			return nil, err
		}
		if progress != nil {
			progress(file.Size/2, file.Size)
		}
		if backup, berr := m.secondary.Upload(ctx, leg(), uctx, cfg, nil); berr != nil {
			log.Printf("dual upload backup leg failed provider=%s error=%v", ProviderSecondary, berr)
		} else {
			result.Path = backup.Path
			result.MetadataID = backup.MetadataID
			result.BackupURL = backup.URL
		}
	} else {
		result, err = m.secondary.Upload(ctx, leg(), uctx, cfg, nil)
		if err != nil {
			return nil, err
		}
		if progress != nil {
			progress(file.Size/2, file.Size)
		}
		if backup, berr := m.primary.Upload(ctx, leg(), uctx, nil); berr != nil {
			log.Printf("dual upload backup leg failed provider=%s error=%v", ProviderPrimary, berr)
		} else {
			result.Key = backup.Key
			result.BackupURL = backup.URL
		}
	}

	result.Provider = ProviderDual
	if progress != nil {
		progress(file.Size, file.Size)
	}
	return result, nil
}

// UploadMany applies the aggregate limits once, then uploads sequentially.
// Results collected before a failure are returned alongside the error.
func (m *Manager) UploadMany(ctx context.Context, files []FileInfo, uctx UploadContext, cfg FileConfig, override Provider, progress ProgressFunc) ([]*UploadResult, error) {
	mode, err := m.resolve(override)
	if err != nil {
		return nil, err
	}
	if err := ValidateBatch(files, cfg); err != nil {
		return nil, err
	}

	switch mode {
	case ModePrimary:
		return m.primary.UploadMany(ctx, files, uctx, progress)
	case ModeSecondary:
		return m.secondary.UploadMany(ctx, files, uctx, cfg, progress)
	default:
		results := make([]*UploadResult, 0, len(files))
		for _, f := range files {
			res, err := m.uploadDual(ctx, f, uctx, cfg, progress)
			if err != nil {
				return results, err
			}
			results = append(results, res)
		}
		return results, nil
	}
}

// Delete routes by the result's provider tag. For dual results both legs
// are attempted; only a failure of the designated authoritative leg fails
// the call, the other leg is logged.
func (m *Manager) Delete(ctx context.Context, res *UploadResult) error {
	switch res.Provider {
	case ProviderPrimary:
		return m.primary.Delete(ctx, res.Key)
	case ProviderSecondary:
		return m.secondary.Delete(ctx, res.Path, res.MetadataID)
	case ProviderDual:
		var primaryErr, secondaryErr error
		if res.Key != "" && m.primary != nil {
			primaryErr = m.primary.Delete(ctx, res.Key)
		}
		if res.Path != "" && m.secondary != nil {
			secondaryErr = m.secondary.Delete(ctx, res.Path, res.MetadataID)
		}
		if m.dualPrimary == ProviderSecondary {
			if primaryErr != nil {
				log.Printf("dual delete backup leg failed provider=%s key=%s error=%v", ProviderPrimary, res.Key, primaryErr)
			}
			return secondaryErr
		}
		if secondaryErr != nil {
			log.Printf("dual delete backup leg failed provider=%s path=%s error=%v", ProviderSecondary, res.Path, secondaryErr)
		}
		return primaryErr
	default:
		return fmt.Errorf("unknown provider %q", res.Provider)
	}
}

// SignedURL routes by the result's provider tag. For dual results the
// designated authoritative leg is preferred, falling back to the other when
// its locator is missing.
func (m *Manager) SignedURL(ctx context.Context, res *UploadResult, expires time.Duration) (string, error) {
	switch res.Provider {
	case ProviderPrimary:
		return m.primary.SignedURL(ctx, res.Key, expires)
	case ProviderSecondary:
		return m.secondary.SignedURL(ctx, res.Path, expires)
	case ProviderDual:
		if m.dualPrimary == ProviderSecondary {
			if res.Path != "" {
				return m.secondary.SignedURL(ctx, res.Path, expires)
			}
			return m.primary.SignedURL(ctx, res.Key, expires)
		}
		if res.Key != "" {
			return m.primary.SignedURL(ctx, res.Key, expires)
		}
		return m.secondary.SignedURL(ctx, res.Path, expires)
	default:
		return "", fmt.Errorf("unknown provider %q", res.Provider)
	}
}

// List returns uploads for a kit/step. Listing rides on the metadata rows,
// so it requires the secondary provider.
func (m *Manager) List(ctx context.Context, kitID, stepID, clientID string) ([]*UploadResult, error) {
	if m.secondary == nil {
		return nil, errors.New("listing requires the supabase provider")
	}
	return m.secondary.List(ctx, kitID, stepID, clientID)
}

// Ping probes each configured provider with a lightweight call.
func (m *Manager) Ping(ctx context.Context) Health {
	h := Health{}
	if m.primary != nil {
		if err := m.primary.Ping(ctx); err != nil {
			h.Errors = append(h.Errors, fmt.Sprintf("aws-s3: %v", err))
		} else {
			h.Primary = true
		}
	}
	if m.secondary != nil {
		if err := m.secondary.Ping(ctx); err != nil {
			h.Errors = append(h.Errors, fmt.Sprintf("supabase: %v", err))
		} else {
			h.Secondary = true
		}
	}
	return h
}
