package postgres

import (
	"CourseLoom/internal/app_errors"
	"CourseLoom/internal/models"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const courseColumns = `c.id, c.title, c.description, c.difficulty, c.status, c.admin_id, c.thumbnail_id, c.created_at, c.updated_at`

type CoursePostgres struct {
	db *pgxpool.Pool
}

func NewCoursePostgres(db *pgxpool.Pool) *CoursePostgres {
	return &CoursePostgres{db: db}
}

// FetchCatalog runs the catalog predicate twice: once for the requested page
// and once for the total count, so the count is independent of the page slice.
// Ordering is newest first with id as the tie-break.
func (r *CoursePostgres) FetchCatalog(
	ctx context.Context,
	filter models.CatalogFilter,
	scope models.CatalogScope,
	limit, offset int,
) ([]models.Course, int, error) {
	conditions := []string{"c.deleted_at IS NULL"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if scope.AdminID != uuid.Nil {
		conditions = append(conditions, "c.admin_id = "+arg(scope.AdminID))
	} else {
		conditions = append(conditions, "c.status = "+arg(models.StatusActive))
	}
	if filter.Title != "" {
		conditions = append(conditions, "c.title ILIKE "+arg("%"+filter.Title+"%"))
	}
	if filter.Difficulty != "" {
		conditions = append(conditions, "c.difficulty = "+arg(filter.Difficulty))
	}
	if len(filter.CategoryIDs) > 0 {
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM course_categories cc WHERE cc.course_id = c.id AND cc.category_id = ANY("+arg(filter.CategoryIDs)+"))")
	}
	if filter.Subscribed && scope.StudentID != uuid.Nil {
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM course_subscriptions cs WHERE cs.course_id = c.id AND cs.user_id = "+arg(scope.StudentID)+")")
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM courses c WHERE " + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count catalog: %w", err)
	}

	pageQuery := "SELECT " + courseColumns + " FROM courses c WHERE " + where +
		" ORDER BY c.created_at DESC, c.id DESC LIMIT " + arg(limit) + " OFFSET " + arg(offset)
	rows, err := r.db.Query(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	courses, err := scanCourses(rows)
	if err != nil {
		return nil, 0, err
	}

	if err := r.attachCategories(ctx, courses); err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

// CourseByID resolves a live course. A non-nil adminScope narrows the lookup
// to that admin's courses; a miss for either reason is the same not-found.
func (r *CoursePostgres) CourseByID(ctx context.Context, id uuid.UUID, adminScope uuid.UUID) (*models.Course, error) {
	query := "SELECT " + courseColumns + " FROM courses c WHERE c.deleted_at IS NULL AND c.id = $1"
	args := []any{id}
	if adminScope != uuid.Nil {
		query += " AND c.admin_id = $2"
		args = append(args, adminScope)
	}

	course := &models.Course{}
	row := r.db.QueryRow(ctx, query, args...)
	err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.Difficulty,
		&course.Status,
		&course.AdminID,
		&course.ThumbnailID,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrCourseNotFound
		}
		return nil, err
	}

	list := []models.Course{*course}
	if err := r.attachCategories(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// CreateCourse commits the course row and its category links as one unit.
func (r *CoursePostgres) CreateCourse(ctx context.Context, course *models.Course, categoryIDs []uuid.UUID) error {
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

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
		INSERT INTO courses (id, title, description, difficulty, status, admin_id, thumbnail_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.Exec(ctx, query,
		course.ID,
		course.Title,
		course.Description,
		course.Difficulty,
		course.Status,
		course.AdminID,
		course.ThumbnailID,
		course.CreatedAt,
		course.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert course: %w", err)
	}

	if err = insertCategoryLinks(ctx, tx, course.ID, categoryIDs); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateCourse replaces the mutable fields and the whole category set in one
// transaction. The update is scoped to the owning admin.
func (r *CoursePostgres) UpdateCourse(ctx context.Context, course *models.Course, categoryIDs []uuid.UUID) error {
	course.UpdatedAt = time.Now().UTC()

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
		UPDATE courses
		   SET title = $3, description = $4, difficulty = $5, status = $6, thumbnail_id = $7, updated_at = $8
		 WHERE id = $1 AND admin_id = $2 AND deleted_at IS NULL
	`
	cmdTag, err := tx.Exec(ctx, query,
		course.ID,
		course.AdminID,
		course.Title,
		course.Description,
		course.Difficulty,
		course.Status,
		course.ThumbnailID,
		course.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		err = app_errors.ErrCourseNotFound
		return err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM course_categories WHERE course_id = $1`, course.ID); err != nil {
		return fmt.Errorf("failed to clear category links: %w", err)
	}
	if err = insertCategoryLinks(ctx, tx, course.ID, categoryIDs); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// SoftDelete tombstones the course. A second call finds no live row and
// reports not-found.
func (r *CoursePostgres) SoftDelete(ctx context.Context, id, adminID uuid.UUID) error {
	query := `
		UPDATE courses
		   SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND admin_id = $2 AND deleted_at IS NULL
	`
	cmdTag, err := r.db.Exec(ctx, query, id, adminID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

func insertCategoryLinks(ctx context.Context, tx pgx.Tx, courseID uuid.UUID, categoryIDs []uuid.UUID) error {
	for _, categoryID := range categoryIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO course_categories (course_id, category_id) VALUES ($1, $2)`,
			courseID, categoryID,
		)
		if err != nil {
			return fmt.Errorf("failed to link category %s: %w", categoryID, err)
		}
	}
	return nil
}

func scanCourses(rows pgx.Rows) ([]models.Course, error) {
	var courses []models.Course
	for rows.Next() {
		var c models.Course
		err := rows.Scan(
			&c.ID,
			&c.Title,
			&c.Description,
			&c.Difficulty,
			&c.Status,
			&c.AdminID,
			&c.ThumbnailID,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *CoursePostgres) attachCategories(ctx context.Context, courses []models.Course) error {
	if len(courses) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(courses))
	index := make(map[uuid.UUID]int, len(courses))
	for i := range courses {
		ids = append(ids, courses[i].ID)
		index[courses[i].ID] = i
		courses[i].Categories = []models.Category{}
	}

	query := `
		SELECT cc.course_id, cat.id, cat.title, cat.created_at, cat.updated_at
		FROM course_categories cc
		JOIN categories cat ON cat.id = cc.category_id
		WHERE cc.course_id = ANY($1)
		ORDER BY cat.title
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var courseID uuid.UUID
		var cat models.Category
		if err := rows.Scan(&courseID, &cat.ID, &cat.Title, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return err
		}
		i := index[courseID]
		courses[i].Categories = append(courses[i].Categories, cat)
	}
	return rows.Err()
}
