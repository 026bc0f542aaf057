package file

import (
	"CourseLoom/internal/app_errors"
	"CourseLoom/internal/models"
	"CourseLoom/pkg/logger"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const maxUploadBytes = 8 << 20

type blobStore interface {
	Put(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error
	Get(ctx context.Context, objectKey string) ([]byte, string, error)
	Delete(ctx context.Context, objectKey string) error
	PresignedURL(ctx context.Context, objectKey string) (string, error)
}

type fileRepo interface {
	InsertFile(ctx context.Context, file *models.File) error
	FileByID(ctx context.Context, id uuid.UUID) (*models.File, error)
	FilesByAdmin(ctx context.Context, adminID uuid.UUID) ([]models.File, error)
	RepointFile(ctx context.Context, id uuid.UUID, name, objectKey string) error
	DeleteFile(ctx context.Context, id uuid.UUID) error
}

// FileService owns the pairing between file records and their blobs: a record
// exists if and only if its blob does. Mutations order blob writes before
// record writes and clean up after themselves on partial failure.
type FileService struct {
	log   logger.Log
	blobs blobStore
	repo  fileRepo
}

func NewFileService(log logger.Log, blobs blobStore, repo fileRepo) *FileService {
	return &FileService{
		log:   log,
		blobs: blobs,
		repo:  repo,
	}
}

// Create stores the blob first and the record second. If the record write
// fails the fresh blob is removed before the error surfaces, so no orphan
// outlives the call.
func (s *FileService) Create(ctx context.Context, adminID uuid.UUID, kind string, upload models.FileUpload) (*models.File, error) {
	if err := validateUpload(kind, upload); err != nil {
		return nil, err
	}

	objectKey := newObjectKey(kind, upload.Name)
	if err := s.blobs.Put(ctx, objectKey, upload.Reader, upload.Size, upload.ContentType); err != nil {
		return nil, fmt.Errorf("failed to store blob: %w", err)
	}

	file := &models.File{
		Name:      upload.Name,
		ObjectKey: objectKey,
		Kind:      kind,
		AdminID:   adminID,
	}
	if err := s.repo.InsertFile(ctx, file); err != nil {
		if delErr := s.blobs.Delete(ctx, objectKey); delErr != nil {
			s.log.ErrorErr("failed to clean up orphan blob", delErr, "object_key", objectKey)
		}
		return nil, err
	}
	return file, nil
}

// Files lists every record the admin owns, newest first.
func (s *FileService) Files(ctx context.Context, adminID uuid.UUID) ([]models.File, error) {
	files, err := s.repo.FilesByAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []models.File{}
	}
	return files, nil
}

// Replace stores the new blob under a new key, repoints the record, and only
// then deletes the old blob. The record never points at a missing blob.
func (s *FileService) Replace(ctx context.Context, fileID, adminID uuid.UUID, kind string, upload models.FileUpload) (*models.File, error) {
	if err := validateUpload(kind, upload); err != nil {
		return nil, err
	}

	file, err := s.repo.FileByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.AdminID != adminID {
		return nil, app_errors.ErrNotFileOwner
	}

	oldKey := file.ObjectKey
	newKey := newObjectKey(kind, upload.Name)
	if err := s.blobs.Put(ctx, newKey, upload.Reader, upload.Size, upload.ContentType); err != nil {
		return nil, fmt.Errorf("failed to store blob: %w", err)
	}

	if err := s.repo.RepointFile(ctx, fileID, upload.Name, newKey); err != nil {
		if delErr := s.blobs.Delete(ctx, newKey); delErr != nil {
			s.log.ErrorErr("failed to clean up orphan blob", delErr, "object_key", newKey)
		}
		return nil, err
	}

	if err := s.blobs.Delete(ctx, oldKey); err != nil {
		s.log.ErrorErr("failed to delete replaced blob", err, "object_key", oldKey)
	}

	file.Name = upload.Name
	file.ObjectKey = newKey
	return file, nil
}

// Delete removes the blob, then the record, and returns the record as it was
// before deletion. A failed blob delete keeps the record so the pairing
// invariant holds.
func (s *FileService) Delete(ctx context.Context, fileID, adminID uuid.UUID, kind string) (*models.File, error) {
	file, err := s.repo.FileByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.AdminID != adminID {
		return nil, app_errors.ErrNotFileOwner
	}

	if err := s.blobs.Delete(ctx, file.ObjectKey); err != nil {
		return nil, fmt.Errorf("failed to delete blob: %w", err)
	}
	if err := s.repo.DeleteFile(ctx, fileID); err != nil {
		return nil, err
	}
	return file, nil
}

// Render fetches the bytes for anyone holding the id. Rendering is public by
// policy; ownership gates mutations only.
func (s *FileService) Render(ctx context.Context, fileID uuid.UUID) ([]byte, string, error) {
	file, err := s.repo.FileByID(ctx, fileID)
	if err != nil {
		return nil, "", err
	}
	data, contentType, err := s.blobs.Get(ctx, file.ObjectKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch blob: %w", err)
	}
	return data, contentType, nil
}

// PresignedURL hands out a time-limited direct link to the blob, for clients
// that want to bypass Render.
func (s *FileService) PresignedURL(ctx context.Context, fileID uuid.UUID) (string, error) {
	file, err := s.repo.FileByID(ctx, fileID)
	if err != nil {
		return "", err
	}
	link, err := s.blobs.PresignedURL(ctx, file.ObjectKey)
	if err != nil {
		return "", fmt.Errorf("failed to presign blob url: %w", err)
	}
	return link, nil
}

func validateUpload(kind string, upload models.FileUpload) error {
	if upload.Size <= 0 || upload.Size > maxUploadBytes {
		return app_errors.ErrFileSize
	}
	if kind == models.FileKindImage && !strings.HasPrefix(upload.ContentType, "image/") {
		return app_errors.ErrNotImage
	}
	return nil
}

func newObjectKey(kind, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("%s/%s%s", kind, uuid.New().String(), ext)
}
