package postgres

import (
	"CourseLoom/internal/app_errors"
	"CourseLoom/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FilePostgres struct {
	db *pgxpool.Pool
}

func NewFilePostgres(db *pgxpool.Pool) *FilePostgres {
	return &FilePostgres{db: db}
}

func (r *FilePostgres) InsertFile(ctx context.Context, file *models.File) error {
	if file.ID == uuid.Nil {
		file.ID = uuid.New()
	}
	now := time.Now().UTC()
	file.CreatedAt = now
	file.UpdatedAt = now

	query := `
		INSERT INTO files (id, name, object_key, kind, admin_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		file.ID, file.Name, file.ObjectKey, file.Kind, file.AdminID, file.CreatedAt, file.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}
	return nil
}

func (r *FilePostgres) FileByID(ctx context.Context, id uuid.UUID) (*models.File, error) {
	query := `SELECT id, name, object_key, kind, admin_id, created_at, updated_at FROM files WHERE id = $1`
	var f models.File
	err := r.db.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.Name, &f.ObjectKey, &f.Kind, &f.AdminID, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrFileNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *FilePostgres) FilesByAdmin(ctx context.Context, adminID uuid.UUID) ([]models.File, error) {
	query := `
		SELECT id, name, object_key, kind, admin_id, created_at, updated_at
		FROM files
		WHERE admin_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		var f models.File
		if err := rows.Scan(&f.ID, &f.Name, &f.ObjectKey, &f.Kind, &f.AdminID, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// RepointFile swaps the record onto a new blob key.
func (r *FilePostgres) RepointFile(ctx context.Context, id uuid.UUID, name, objectKey string) error {
	query := `UPDATE files SET name = $2, object_key = $3, updated_at = NOW() WHERE id = $1`
	cmdTag, err := r.db.Exec(ctx, query, id, name, objectKey)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrFileNotFound
	}
	return nil
}

// DeleteFile hard-deletes the record; file rows are never tombstoned.
func (r *FilePostgres) DeleteFile(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrFileNotFound
	}
	return nil
}
