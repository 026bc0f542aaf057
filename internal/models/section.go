package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SectionMaterial  = "material"
	SectionQuiz      = "quiz"
	SectionContainer = "container"
)

type Section struct {
	ID          uuid.UUID  `json:"id"`
	CourseID    uuid.UUID  `json:"course_id"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Title       string     `json:"title"`
	Objective   string     `json:"objective,omitempty"`
	Duration    int        `json:"duration"`
	Kind        string     `json:"kind"`
	QuizContent *string    `json:"quiz_content,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ClosureRow is one (ancestor, descendant, depth) edge of the section closure
// table. Every section has a self row at depth 0.
type ClosureRow struct {
	AncestorID   uuid.UUID
	DescendantID uuid.UUID
	Depth        int
}

// ClosurePair addresses a closure row for deletion.
type ClosurePair struct {
	AncestorID   uuid.UUID
	DescendantID uuid.UUID
}

// TreeEntry is a closure read result: a node id with its depth relative to the
// queried section.
type TreeEntry struct {
	SectionID uuid.UUID
	Depth     int
}

func ValidSectionKind(k string) bool {
	return k == SectionMaterial || k == SectionQuiz || k == SectionContainer
}
