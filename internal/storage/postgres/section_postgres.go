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

const sectionColumns = `s.id, s.course_id, s.parent_id, s.title, s.objective, s.duration, s.kind, s.quiz_content, s.created_at, s.updated_at`

// SectionPostgres persists sections and their closure table. The closure row
// sets are computed by the section service; this repository only applies them
// atomically, relying on row-level locks to serialize overlapping rewrites.
type SectionPostgres struct {
	db *pgxpool.Pool
}

func NewSectionPostgres(db *pgxpool.Pool) *SectionPostgres {
	return &SectionPostgres{db: db}
}

func (r *SectionPostgres) SectionByID(ctx context.Context, id uuid.UUID) (*models.Section, error) {
	query := "SELECT " + sectionColumns + " FROM sections s WHERE s.id = $1"
	var s models.Section
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.CourseID, &s.ParentID, &s.Title, &s.Objective,
		&s.Duration, &s.Kind, &s.QuizContent, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrSectionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// AncestorEntries returns (ancestor, depth) pairs for the section, self
// included at depth 0, nearest first.
func (r *SectionPostgres) AncestorEntries(ctx context.Context, id uuid.UUID) ([]models.TreeEntry, error) {
	query := `
		SELECT ancestor_id, depth
		FROM section_closure
		WHERE descendant_id = $1
		ORDER BY depth ASC
	`
	return r.queryEntries(ctx, query, id)
}

// SubtreeEntries returns (descendant, depth) pairs under the section, self
// included at depth 0.
func (r *SectionPostgres) SubtreeEntries(ctx context.Context, id uuid.UUID) ([]models.TreeEntry, error) {
	query := `
		SELECT descendant_id, depth
		FROM section_closure
		WHERE ancestor_id = $1
		ORDER BY depth ASC
	`
	return r.queryEntries(ctx, query, id)
}

func (r *SectionPostgres) queryEntries(ctx context.Context, query string, id uuid.UUID) ([]models.TreeEntry, error) {
	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query closure: %w", err)
	}
	defer rows.Close()

	var entries []models.TreeEntry
	for rows.Next() {
		var e models.TreeEntry
		if err := rows.Scan(&e.SectionID, &e.Depth); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Descendants returns the sections below the given one, depth ascending. The
// closure read needs no recursion.
func (r *SectionPostgres) Descendants(ctx context.Context, id uuid.UUID) ([]models.Section, error) {
	query := "SELECT " + sectionColumns + `
		FROM section_closure sc
		JOIN sections s ON s.id = sc.descendant_id
		WHERE sc.ancestor_id = $1 AND sc.depth > 0
		ORDER BY sc.depth ASC, s.created_at ASC
	`
	return r.querySections(ctx, query, id)
}

// Ancestors returns the full parent chain, nearest first.
func (r *SectionPostgres) Ancestors(ctx context.Context, id uuid.UUID) ([]models.Section, error) {
	query := "SELECT " + sectionColumns + `
		FROM section_closure sc
		JOIN sections s ON s.id = sc.ancestor_id
		WHERE sc.descendant_id = $1 AND sc.depth > 0
		ORDER BY sc.depth ASC
	`
	return r.querySections(ctx, query, id)
}

func (r *SectionPostgres) querySections(ctx context.Context, query string, id uuid.UUID) ([]models.Section, error) {
	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query sections: %w", err)
	}
	defer rows.Close()

	var sections []models.Section
	for rows.Next() {
		var s models.Section
		err := rows.Scan(
			&s.ID, &s.CourseID, &s.ParentID, &s.Title, &s.Objective,
			&s.Duration, &s.Kind, &s.QuizContent, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

func (r *SectionPostgres) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sections WHERE parent_id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// InsertSection writes the section row and its full closure batch in one
// transaction.
func (r *SectionPostgres) InsertSection(ctx context.Context, section *models.Section, closure []models.ClosureRow) error {
	if section.ID == uuid.Nil {
		section.ID = uuid.New()
	}
	now := time.Now().UTC()
	section.CreatedAt = now
	section.UpdatedAt = now

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	query := `
		INSERT INTO sections (id, course_id, parent_id, title, objective, duration, kind, quiz_content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.Exec(ctx, query,
		section.ID, section.CourseID, section.ParentID, section.Title, section.Objective,
		section.Duration, section.Kind, section.QuizContent, section.CreatedAt, section.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert section: %w", err)
	}

	if err = insertClosureRows(ctx, tx, closure); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// MoveSection re-parents a section: removes the closure rows pairing the
// subtree with its old outside ancestors, inserts the rows pairing it with the
// new ones, and updates parent_id, all in one transaction.
func (r *SectionPostgres) MoveSection(
	ctx context.Context,
	sectionID uuid.UUID,
	newParentID *uuid.UUID,
	remove []models.ClosurePair,
	insert []models.ClosureRow,
) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for _, pair := range remove {
		_, err = tx.Exec(ctx,
			`DELETE FROM section_closure WHERE ancestor_id = $1 AND descendant_id = $2`,
			pair.AncestorID, pair.DescendantID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete closure row: %w", err)
		}
	}

	if err = insertClosureRows(ctx, tx, insert); err != nil {
		return err
	}

	cmdTag, err := tx.Exec(ctx,
		`UPDATE sections SET parent_id = $2, updated_at = NOW() WHERE id = $1`,
		sectionID, newParentID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		err = app_errors.ErrSectionNotFound
		return err
	}

	return tx.Commit(ctx)
}

// DeleteSubtree removes the given sections together with every closure row
// that references any of them on either side.
func (r *SectionPostgres) DeleteSubtree(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`DELETE FROM section_closure WHERE ancestor_id = ANY($1) OR descendant_id = ANY($1)`, ids,
	)
	if err != nil {
		return fmt.Errorf("failed to delete closure rows: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM sections WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to delete sections: %w", err)
	}

	return tx.Commit(ctx)
}

func insertClosureRows(ctx context.Context, tx pgx.Tx, rows []models.ClosureRow) error {
	for _, row := range rows {
		_, err := tx.Exec(ctx,
			`INSERT INTO section_closure (ancestor_id, descendant_id, depth) VALUES ($1, $2, $3)`,
			row.AncestorID, row.DescendantID, row.Depth,
		)
		if err != nil {
			return fmt.Errorf("failed to insert closure row: %w", err)
		}
	}
	return nil
}
