package file

import (
	"CourseLoom/internal/app_errors"
	"CourseLoom/internal/models"
	"CourseLoom/pkg/logger"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blobEntry struct {
	data        []byte
	contentType string
}

type fakeBlobStore struct {
	blobs     map[string]blobEntry
	putErr    error
	deleteErr error
	deleted   []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string]blobEntry)}
}

func (f *fakeBlobStore) Put(_ context.Context, objectKey string, reader io.Reader, _ int64, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.blobs[objectKey] = blobEntry{data: data, contentType: contentType}
	return nil
}

func (f *fakeBlobStore) Get(_ context.Context, objectKey string) ([]byte, string, error) {
	entry, ok := f.blobs[objectKey]
	if !ok {
		return nil, "", errors.New("blob missing")
	}
	return entry.data, entry.contentType, nil
}

func (f *fakeBlobStore) PresignedURL(_ context.Context, objectKey string) (string, error) {
	if _, ok := f.blobs[objectKey]; !ok {
		return "", errors.New("blob missing")
	}
	return "https://blobs.local/" + objectKey, nil
}

func (f *fakeBlobStore) Delete(_ context.Context, objectKey string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.blobs, objectKey)
	f.deleted = append(f.deleted, objectKey)
	return nil
}

type fakeFileRepo struct {
	files      map[uuid.UUID]*models.File
	insertErr  error
	repointErr error
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: make(map[uuid.UUID]*models.File)}
}

func (f *fakeFileRepo) InsertFile(_ context.Context, file *models.File) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	file.ID = uuid.New()
	copied := *file
	f.files[file.ID] = &copied
	return nil
}

func (f *fakeFileRepo) FileByID(_ context.Context, id uuid.UUID) (*models.File, error) {
	file, ok := f.files[id]
	if !ok {
		return nil, app_errors.ErrFileNotFound
	}
	copied := *file
	return &copied, nil
}

func (f *fakeFileRepo) FilesByAdmin(_ context.Context, adminID uuid.UUID) ([]models.File, error) {
	var files []models.File
	for _, file := range f.files {
		if file.AdminID == adminID {
			files = append(files, *file)
		}
	}
	return files, nil
}

func (f *fakeFileRepo) RepointFile(_ context.Context, id uuid.UUID, name, objectKey string) error {
	if f.repointErr != nil {
		return f.repointErr
	}
	file, ok := f.files[id]
	if !ok {
		return app_errors.ErrFileNotFound
	}
	file.Name = name
	file.ObjectKey = objectKey
	return nil
}

func (f *fakeFileRepo) DeleteFile(_ context.Context, id uuid.UUID) error {
	if _, ok := f.files[id]; !ok {
		return app_errors.ErrFileNotFound
	}
	delete(f.files, id)
	return nil
}

func imageUpload(name, content string) models.FileUpload {
	return models.FileUpload{
		Name:        name,
		Reader:      strings.NewReader(content),
		Size:        int64(len(content)),
		ContentType: "image/png",
	}
}

func TestCreateStoresBlobAndRecord(t *testing.T) {
	blobs := newFakeBlobStore()
	repo := newFakeFileRepo()
	svc := NewFileService(logger.Discard(), blobs, repo)
	adminID := uuid.New()

	created, err := svc.Create(context.Background(), adminID, models.FileKindImage, imageUpload("logo.png", "png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "logo.png", created.Name)
	assert.Equal(t, adminID, created.AdminID)
	assert.True(t, strings.HasPrefix(created.ObjectKey, models.FileKindImage+"/"))
	assert.True(t, strings.HasSuffix(created.ObjectKey, ".png"))

	entry, ok := blobs.blobs[created.ObjectKey]
	require.True(t, ok)
	assert.Equal(t, []byte("png-bytes"), entry.data)
}

func TestCreateCleansUpOrphanBlob(t *testing.T) {
	blobs := newFakeBlobStore()
	repo := newFakeFileRepo()
	repo.insertErr = errors.New("insert failed")
	svc := NewFileService(logger.Discard(), blobs, repo)

	_, err := svc.Create(context.Background(), uuid.New(), models.FileKindImage, imageUpload("logo.png", "x"))
	require.Error(t, err)

	assert.Empty(t, blobs.blobs)
	require.Len(t, blobs.deleted, 1)
}

func TestCreateRejectsBadUploads(t *testing.T) {
	svc := NewFileService(logger.Discard(), newFakeBlobStore(), newFakeFileRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), models.FileKindImage, models.FileUpload{
		Name: "empty.png", Reader: strings.NewReader(""), Size: 0, ContentType: "image/png",
	})
	assert.ErrorIs(t, err, app_errors.ErrFileSize)

	_, err = svc.Create(ctx, uuid.New(), models.FileKindImage, models.FileUpload{
		Name: "huge.png", Reader: strings.NewReader("x"), Size: maxUploadBytes + 1, ContentType: "image/png",
	})
	assert.ErrorIs(t, err, app_errors.ErrFileSize)

	_, err = svc.Create(ctx, uuid.New(), models.FileKindImage, models.FileUpload{
		Name: "doc.pdf", Reader: strings.NewReader("x"), Size: 1, ContentType: "application/pdf",
	})
	assert.ErrorIs(t, err, app_errors.ErrNotImage)
}

func TestReplaceRepointsThenDeletesOldBlob(t *testing.T) {
	blobs := newFakeBlobStore()
	repo := newFakeFileRepo()
	svc := NewFileService(logger.Discard(), blobs, repo)
	adminID := uuid.New()
	ctx := context.Background()

	created, err := svc.Create(ctx, adminID, models.FileKindImage, imageUpload("old.png", "old"))
	require.NoError(t, err)
	oldKey := created.ObjectKey

	replaced, err := svc.Replace(ctx, created.ID, adminID, models.FileKindImage, imageUpload("new.png", "new"))
	require.NoError(t, err)

	assert.Equal(t, created.ID, replaced.ID)
	assert.Equal(t, "new.png", replaced.Name)
	assert.NotEqual(t, oldKey, replaced.ObjectKey)

	_, hasOld := blobs.blobs[oldKey]
	assert.False(t, hasOld)
	_, hasNew := blobs.blobs[replaced.ObjectKey]
	assert.True(t, hasNew)

	stored, err := repo.FileByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, replaced.ObjectKey, stored.ObjectKey)
}

func TestReplaceRepointFailureRemovesNewBlob(t *testing.T) {
	blobs := newFakeBlobStore()
	repo := newFakeFileRepo()
	svc := NewFileService(logger.Discard(), blobs, repo)
	adminID := uuid.New()
	ctx := context.Background()

	created, err := svc.Create(ctx, adminID, models.FileKindImage, imageUpload("old.png", "old"))
	require.NoError(t, err)

	repo.repointErr = errors.New("repoint failed")
	_, err = svc.Replace(ctx, created.ID, adminID, models.FileKindImage, imageUpload("new.png", "new"))
	require.Error(t, err)

	// the old pairing survives intact
	require.Len(t, blobs.blobs, 1)
	_, hasOld := blobs.blobs[created.ObjectKey]
	assert.True(t, hasOld)
}

func TestReplaceOwnershipRequired(t *testing.T) {
	blobs := newFakeBlobStore()
	repo := newFakeFileRepo()
	svc := NewFileService(logger.Discard(), blobs, repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, uuid.New(), models.FileKindImage, imageUpload("a.png", "a"))
	require.NoError(t, err)

	_, err = svc.Replace(ctx, created.ID, uuid.New(), models.FileKindImage, imageUpload("b.png", "b"))
	assert.ErrorIs(t, err, app_errors.ErrNotFileOwner)

	_, err = svc.Delete(ctx, created.ID, uuid.New(), models.FileKindImage)
	assert.ErrorIs(t, err, app_errors.ErrNotFileOwner)
}

func TestDeleteRemovesBlobThenRecord(t *testing.T) {
	blobs := newFakeBlobStore()
	repo := newFakeFileRepo()
	svc := NewFileService(logger.Discard(), blobs, repo)
	adminID := uuid.New()
	ctx := context.Background()

	created, err := svc.Create(ctx, adminID, models.FileKindImage, imageUpload("a.png", "a"))
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, created.ID, adminID, models.FileKindImage)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	assert.Empty(t, blobs.blobs)
	_, err = repo.FileByID(ctx, created.ID)
	assert.ErrorIs(t, err, app_errors.ErrFileNotFound)
}

func TestDeleteKeepsRecordWhenBlobDeleteFails(t *testing.T) {
	blobs := newFakeBlobStore()
	repo := newFakeFileRepo()
	svc := NewFileService(logger.Discard(), blobs, repo)
	adminID := uuid.New()
	ctx := context.Background()

	created, err := svc.Create(ctx, adminID, models.FileKindImage, imageUpload("a.png", "a"))
	require.NoError(t, err)

	blobs.deleteErr = errors.New("storage down")
	_, err = svc.Delete(ctx, created.ID, adminID, models.FileKindImage)
	require.Error(t, err)

	_, err = repo.FileByID(ctx, created.ID)
	assert.NoError(t, err)
}

func TestRenderIsPublic(t *testing.T) {
	blobs := newFakeBlobStore()
	repo := newFakeFileRepo()
	svc := NewFileService(logger.Discard(), blobs, repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, uuid.New(), models.FileKindImage, imageUpload("a.png", "pixels"))
	require.NoError(t, err)

	data, contentType, err := svc.Render(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("pixels"), data)
	assert.Equal(t, "image/png", contentType)

	_, _, err = svc.Render(ctx, uuid.New())
	assert.ErrorIs(t, err, app_errors.ErrFileNotFound)
}

func TestPresignedURL(t *testing.T) {
	blobs := newFakeBlobStore()
	repo := newFakeFileRepo()
	svc := NewFileService(logger.Discard(), blobs, repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, uuid.New(), models.FileKindImage, imageUpload("a.png", "a"))
	require.NoError(t, err)

	link, err := svc.PresignedURL(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://blobs.local/"+created.ObjectKey, link)

	_, err = svc.PresignedURL(ctx, uuid.New())
	assert.ErrorIs(t, err, app_errors.ErrFileNotFound)
}

func TestFilesScopedToAdmin(t *testing.T) {
	blobs := newFakeBlobStore()
	repo := newFakeFileRepo()
	svc := NewFileService(logger.Discard(), blobs, repo)
	ctx := context.Background()
	adminID := uuid.New()

	_, err := svc.Create(ctx, adminID, models.FileKindImage, imageUpload("a.png", "a"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, uuid.New(), models.FileKindImage, imageUpload("b.png", "b"))
	require.NoError(t, err)

	files, err := svc.Files(ctx, adminID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.png", files[0].Name)

	// an admin with no uploads gets an empty list, never nil
	files, err = svc.Files(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)
}
