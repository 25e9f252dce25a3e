package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"planportal/internal/metrics"
	"planportal/internal/model"
	"planportal/internal/repository"
	"planportal/internal/storage"
)

// MaxUploadSize bounds a single uploaded document.
const MaxUploadSize = 10 << 20

// FileListResult is the service-level DTO for a user's uploaded files.
type FileListResult struct {
	Items []model.StoredFile `json:"data"`
	Total int                `json:"total"`
}

// UploadService stores user documents under content-addressed keys.
type UploadService interface {
	// Upload hashes the content and writes it to users/{userID}/{purpose}/{sha256}{ext}
	// unless an object already exists at that key.
	Upload(ctx context.Context, userID string, purpose model.DocumentPurpose, filename, contentType string, r io.Reader) (*model.StoredFile, error)

	// Replace uploads the new content, runs commit to record it, and only
	// then deletes previousPath if it differs from the new path. A failed
	// commit removes the new object and leaves the previous one in place.
	Replace(ctx context.Context, userID string, purpose model.DocumentPurpose, filename, contentType string, r io.Reader, previousPath string, commit CommitFunc) (*model.StoredFile, error)

	// Rollback deletes objects written by an abandoned submission, best effort.
	Rollback(ctx context.Context, paths []string) error

	// Verify reports whether a cached public URL still resolves.
	Verify(ctx context.Context, url string) (bool, error)

	Delete(ctx context.Context, userID, path string) error
	List(ctx context.Context, userID string, limit, offset int) (*FileListResult, error)
}

// CommitFunc records a replacement upload, typically in user metadata.
type CommitFunc func(ctx context.Context, f *model.StoredFile) error

// URLResolver is satisfied by storage.URLChecker.
type URLResolver interface {
	Resolves(ctx context.Context, url string) (bool, error)
}

type uploadService struct {
	store   storage.Storage
	files   repository.FileRepository
	checker URLResolver
	metrics *metrics.Domain
	logger  *slog.Logger
}

// NewUploadService constructs a new UploadService.
func NewUploadService(store storage.Storage, files repository.FileRepository, checker URLResolver, m *metrics.Domain, logger *slog.Logger) UploadService {
	return &uploadService{store: store, files: files, checker: checker, metrics: m, logger: logger}
}

// ObjectKey is the storage key of content with the given hash.
func ObjectKey(userID string, purpose model.DocumentPurpose, hash, ext string) string {
	return fmt.Sprintf("users/%s/%s/%s%s", userID, purpose, hash, ext)
}

// cleanExt keeps a short lowercase alphanumeric extension and drops anything else.
func cleanExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 8 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

func ownedBy(userID, path string) bool {
	return strings.HasPrefix(path, "users/"+userID+"/")
}

func (s *uploadService) Upload(ctx context.Context, userID string, purpose model.DocumentPurpose, filename, contentType string, r io.Reader) (*model.StoredFile, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	if r == nil {
		return nil, ErrReaderNil
	}
	if !purpose.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPurpose, purpose)
	}

	var buf bytes.Buffer
	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(&buf, h), io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if n > MaxUploadSize {
		return nil, ErrFileTooLarge
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	hash := hex.EncodeToString(h.Sum(nil))
	key := ObjectKey(userID, purpose, hash, cleanExt(filename))
	out := &model.StoredFile{
		Path:        key,
		URL:         s.store.PublicURL(key),
		Hash:        hash,
		Size:        n,
		ContentType: contentType,
		Purpose:     purpose,
	}

	exists, err := storage.Exists(ctx, s.store, key)
	if err != nil {
		return nil, fmt.Errorf("check existing object: %w", err)
	}
	if !exists {
		if _, err := s.store.Put(ctx, key, &buf, storage.PutObjectOptions{
			Size:        n,
			ContentType: contentType,
			Metadata:    map[string]string{"original-filename": filepath.Base(filename)},
		}); err != nil {
			return nil, fmt.Errorf("upload to storage: %w", err)
		}
		out.Created = true
	}

	if err := s.files.Create(ctx, userID, *out); err != nil {
		if !out.Created {
			return nil, fmt.Errorf("db save failed: %w", err)
		}
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	s.metrics.Upload(purpose, out.Created)
	return out, nil
}

func (s *uploadService) Replace(ctx context.Context, userID string, purpose model.DocumentPurpose, filename, contentType string, r io.Reader, previousPath string, commit CommitFunc) (*model.StoredFile, error) {
	f, err := s.Upload(ctx, userID, purpose, filename, contentType, r)
	if err != nil {
		return nil, err
	}
	if commit != nil {
		if err := commit(ctx, f); err != nil {
			if f.Created && f.Path != previousPath {
				if rbErr := s.Rollback(ctx, []string{f.Path}); rbErr != nil {
					return nil, fmt.Errorf("commit replacement: %v; rollback: %v", err, rbErr)
				}
			}
			return nil, fmt.Errorf("commit replacement: %w", err)
		}
	}
	if previousPath == "" || previousPath == f.Path {
		return f, nil
	}
	if !ownedBy(userID, previousPath) {
		s.logger.WarnContext(ctx, "replace_skip_foreign_path", "user_id", userID, "path", previousPath)
		return f, nil
	}
	if err := s.store.Delete(ctx, previousPath); err != nil {
		s.logger.WarnContext(ctx, "replace_delete_failed", "user_id", userID, "path", previousPath, "error", err.Error())
		return f, nil
	}
	if err := s.files.DeleteByPath(ctx, previousPath); err != nil {
		s.logger.WarnContext(ctx, "replace_unindex_failed", "path", previousPath, "error", err.Error())
	}
	return f, nil
}

func (s *uploadService) Rollback(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	err := s.store.DeleteMany(ctx, paths)
	for _, p := range paths {
		if dErr := s.files.DeleteByPath(ctx, p); dErr != nil {
			err = errors.Join(err, dErr)
		}
	}
	if err != nil {
		s.logger.WarnContext(ctx, "upload_rollback_incomplete", "paths", paths, "error", err.Error())
	}
	return err
}

func (s *uploadService) Verify(ctx context.Context, url string) (bool, error) {
	if url == "" {
		return false, nil
	}
	return s.checker.Resolves(ctx, url)
}

// Delete removes one of the user's objects and its index record.
func (s *uploadService) Delete(ctx context.Context, userID, path string) error {
	if path == "" {
		return ErrIDRequired
	}
	if !ownedBy(userID, path) {
		return ErrForbidden
	}
	exists, err := storage.Exists(ctx, s.store, path)
	if err != nil {
		return err
	}
	if !exists {
		return ErrFileNotFound
	}
	if err := s.store.Delete(ctx, path); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.files.DeleteByPath(ctx, path)
}

func (s *uploadService) List(ctx context.Context, userID string, limit, offset int) (*FileListResult, error) {
	limit, offset = clampPage(limit, offset)
	res, err := s.files.ListByUser(ctx, userID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &FileListResult{Items: res.Items, Total: res.Total}, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
