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

type CategoryPostgres struct {
	db *pgxpool.Pool
}

func NewCategoryPostgres(db *pgxpool.Pool) *CategoryPostgres {
	return &CategoryPostgres{db: db}
}

func (r *CategoryPostgres) ListCategories(ctx context.Context) ([]models.Category, error) {
	query := `SELECT id, title, created_at, updated_at FROM categories ORDER BY title`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CategoriesByIDs returns only the categories that exist; unknown ids are
// simply absent from the result.
func (r *CategoryPostgres) CategoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id, title, created_at, updated_at FROM categories WHERE id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CategoryPostgres) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now

	query := `INSERT INTO categories (id, title, created_at, updated_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Exec(ctx, query, category.ID, category.Title, category.CreatedAt, category.UpdatedAt)
	if err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == "23505" {
			return app_errors.ErrCategoryExists
		}
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// CategoryByTitle matches case-insensitively; used to enforce unique titles.
func (r *CategoryPostgres) CategoryByTitle(ctx context.Context, title string) (*models.Category, error) {
	query := `SELECT id, title, created_at, updated_at FROM categories WHERE LOWER(title) = LOWER($1)`
	var c models.Category
	err := r.db.QueryRow(ctx, query, title).Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CategoryPostgres) RenameCategory(ctx context.Context, id uuid.UUID, title string) error {
	query := `UPDATE categories SET title = $2, updated_at = NOW() WHERE id = $1`
	cmdTag, err := r.db.Exec(ctx, query, id, title)
	if err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == "23505" {
			return app_errors.ErrCategoryExists
		}
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory removes the category and its course links together.
func (r *CategoryPostgres) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM course_categories WHERE category_id = $1`, id); err != nil {
		return fmt.Errorf("failed to unlink category: %w", err)
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		err = app_errors.ErrCategoryNotFound
		return err
	}

	return tx.Commit(ctx)
}
