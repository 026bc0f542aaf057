package postgres

import (
	"CourseLoom/internal/app_errors"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubscriptionPostgres struct {
	db *pgxpool.Pool
}

func NewSubscriptionPostgres(db *pgxpool.Pool) *SubscriptionPostgres {
	return &SubscriptionPostgres{db: db}
}

func (r *SubscriptionPostgres) Subscribe(ctx context.Context, courseID, userID uuid.UUID) error {
	query := `
		INSERT INTO course_subscriptions (course_id, user_id, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.Exec(ctx, query, courseID, userID, time.Now().UTC())
	if err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == "23505" {
			return app_errors.ErrAlreadySubscribed
		}
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	return nil
}

func (r *SubscriptionPostgres) Unsubscribe(ctx context.Context, courseID, userID uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM course_subscriptions WHERE course_id = $1 AND user_id = $2`,
		courseID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrNotSubscribed
	}
	return nil
}

func (r *SubscriptionPostgres) IsSubscribed(ctx context.Context, courseID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM course_subscriptions WHERE course_id = $1 AND user_id = $2)`,
		courseID, userID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
