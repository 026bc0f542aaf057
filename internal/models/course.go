package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Course struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  string     `json:"difficulty"`
	Status      string     `json:"status"`
	AdminID     uuid.UUID  `json:"admin_id"`
	ThumbnailID *uuid.UUID `json:"thumbnail_id,omitempty"`
	Categories  []Category `json:"categories"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`
}

type Category struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CatalogFilter is the conjunctive predicate for a catalog read. Zero values
// mean "no constraint".
type CatalogFilter struct {
	Title       string
	CategoryIDs []uuid.UUID
	Difficulty  string
	Subscribed  bool
}

// CatalogScope decides which courses the caller may see. An admin id narrows
// the catalog to that admin's own courses regardless of status; otherwise only
// active courses are visible, and a student id enables the Subscribed filter.
type CatalogScope struct {
	AdminID   uuid.UUID
	StudentID uuid.UUID
}

type CatalogPage struct {
	Courses     []Course `json:"courses"`
	Total       int      `json:"total"`
	CurrentPage int      `json:"current_page"`
	TotalPages  int      `json:"total_pages"`
}

func ValidDifficulty(d string) bool {
	return d == DifficultyBeginner || d == DifficultyIntermediate || d == DifficultyAdvanced
}

func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusInactive
}
