package minio_storage

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
)

// BlobStorage stores file bytes by object key in a single bucket. Keys are
// chosen by the file service; the bucket never decides lifecycle.
type BlobStorage struct {
	storage      *MinioStorage
	bucket       string
	presignedTTL time.Duration
}

func NewBlobStorage(storage *MinioStorage, bucketName string, presignedTTL time.Duration) (*BlobStorage, error) {
	if err := storage.ensureBucket(context.Background(), bucketName); err != nil {
		return nil, err
	}
	return &BlobStorage{storage: storage, bucket: bucketName, presignedTTL: presignedTTL}, nil
}

func (s *BlobStorage) Put(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.storage.client.PutObject(
		ctx,
		s.bucket,
		objectKey,
		reader,
		size,
		minio.PutObjectOptions{ContentType: contentType},
	)
	return err
}

func (s *BlobStorage) Get(ctx context.Context, objectKey string) ([]byte, string, error) {
	object, err := s.storage.client.GetObject(ctx, s.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}
	defer object.Close()

	stat, err := object.Stat()
	if err != nil {
		return nil, "", err
	}
	data, err := io.ReadAll(object)
	if err != nil {
		return nil, "", err
	}
	return data, stat.ContentType, nil
}

func (s *BlobStorage) Delete(ctx context.Context, objectKey string) error {
	return s.storage.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
}

func (s *BlobStorage) PresignedURL(ctx context.Context, objectKey string) (string, error) {
	reqParams := make(url.Values)
	presignedURL, err := s.storage.client.PresignedGetObject(
		ctx,
		s.bucket,
		objectKey,
		s.presignedTTL,
		reqParams,
	)
	if err != nil {
		return "", err
	}
	return presignedURL.String(), nil
}
