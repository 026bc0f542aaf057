package section

import (
	"CourseLoom/internal/app_errors"
	"CourseLoom/internal/models"
	"CourseLoom/pkg/logger"
	"context"

	"github.com/google/uuid"
)

type sectionRepo interface {
	SectionByID(ctx context.Context, id uuid.UUID) (*models.Section, error)
	AncestorEntries(ctx context.Context, id uuid.UUID) ([]models.TreeEntry, error)
	SubtreeEntries(ctx context.Context, id uuid.UUID) ([]models.TreeEntry, error)
	Descendants(ctx context.Context, id uuid.UUID) ([]models.Section, error)
	Ancestors(ctx context.Context, id uuid.UUID) ([]models.Section, error)
	HasChildren(ctx context.Context, id uuid.UUID) (bool, error)
	InsertSection(ctx context.Context, section *models.Section, closure []models.ClosureRow) error
	MoveSection(ctx context.Context, sectionID uuid.UUID, newParentID *uuid.UUID, remove []models.ClosurePair, insert []models.ClosureRow) error
	DeleteSubtree(ctx context.Context, ids []uuid.UUID) error
}

type courseRepo interface {
	CourseByID(ctx context.Context, id uuid.UUID, adminScope uuid.UUID) (*models.Course, error)
}

type SectionInput struct {
	CourseID    uuid.UUID
	ParentID    *uuid.UUID
	Title       string
	Objective   string
	Duration    int
	Kind        string
	QuizContent *string
}

// SectionService keeps the sections of each course as a forest backed by a
// closure table. The service computes every closure row change itself and
// hands the repository a batch to apply in one transaction.
type SectionService struct {
	log        logger.Log
	repo       sectionRepo
	courseRepo courseRepo
}

func NewSectionService(log logger.Log, repo sectionRepo, courseRepo courseRepo) *SectionService {
	return &SectionService{
		log:        log,
		repo:       repo,
		courseRepo: courseRepo,
	}
}

// Insert adds a section under the given parent, or as a root when parent is
// nil. The closure batch is the self row plus one row per ancestor of the
// parent, so no traversal happens at write time beyond one ancestor read.
func (s *SectionService) Insert(ctx context.Context, adminID uuid.UUID, input SectionInput) (*models.Section, error) {
	if _, err := s.courseRepo.CourseByID(ctx, input.CourseID, adminID); err != nil {
		return nil, err
	}
	if !models.ValidSectionKind(input.Kind) {
		input.Kind = models.SectionMaterial
	}
	if input.Duration < 0 {
		input.Duration = 0
	}

	section := &models.Section{
		ID:          uuid.New(),
		CourseID:    input.CourseID,
		ParentID:    input.ParentID,
		Title:       input.Title,
		Objective:   input.Objective,
		Duration:    input.Duration,
		Kind:        input.Kind,
		QuizContent: input.QuizContent,
	}

	closure := []models.ClosureRow{
		{AncestorID: section.ID, DescendantID: section.ID, Depth: 0},
	}
	if input.ParentID != nil {
		parent, err := s.repo.SectionByID(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.CourseID != input.CourseID {
			return nil, app_errors.ErrSectionNotFound
		}
		ancestors, err := s.repo.AncestorEntries(ctx, parent.ID)
		if err != nil {
			return nil, err
		}
		for _, a := range ancestors {
			closure = append(closure, models.ClosureRow{
				AncestorID:   a.SectionID,
				DescendantID: section.ID,
				Depth:        a.Depth + 1,
			})
		}
	}

	if err := s.repo.InsertSection(ctx, section, closure); err != nil {
		return nil, err
	}
	return section, nil
}

// Move re-parents a whole subtree. Closure rows pairing the subtree with its
// old outside ancestors are dropped and rows pairing it with the new ancestor
// chain are added, holding relative depths inside the subtree. A move under
// the section's own descendant is rejected with the tree untouched.
func (s *SectionService) Move(ctx context.Context, adminID, sectionID uuid.UUID, newParentID *uuid.UUID) error {
	section, err := s.repo.SectionByID(ctx, sectionID)
	if err != nil {
		return err
	}
	if _, err := s.courseRepo.CourseByID(ctx, section.CourseID, adminID); err != nil {
		return err
	}

	subtree, err := s.repo.SubtreeEntries(ctx, sectionID)
	if err != nil {
		return err
	}
	inSubtree := make(map[uuid.UUID]bool, len(subtree))
	for _, node := range subtree {
		inSubtree[node.SectionID] = true
	}

	var newAncestors []models.TreeEntry
	if newParentID != nil {
		if inSubtree[*newParentID] {
			return app_errors.ErrSectionCycle
		}
		parent, err := s.repo.SectionByID(ctx, *newParentID)
		if err != nil {
			return err
		}
		if parent.CourseID != section.CourseID {
			return app_errors.ErrCrossCourseParent
		}
		newAncestors, err = s.repo.AncestorEntries(ctx, parent.ID)
		if err != nil {
			return err
		}
	}

	oldAncestors, err := s.repo.AncestorEntries(ctx, sectionID)
	if err != nil {
		return err
	}

	var remove []models.ClosurePair
	for _, a := range oldAncestors {
		if a.Depth == 0 {
			continue
		}
		for _, node := range subtree {
			remove = append(remove, models.ClosurePair{
				AncestorID:   a.SectionID,
				DescendantID: node.SectionID,
			})
		}
	}

	var insert []models.ClosureRow
	for _, a := range newAncestors {
		for _, node := range subtree {
			insert = append(insert, models.ClosureRow{
				AncestorID:   a.SectionID,
				DescendantID: node.SectionID,
				Depth:        a.Depth + 1 + node.Depth,
			})
		}
	}

	return s.repo.MoveSection(ctx, sectionID, newParentID, remove, insert)
}

// Delete removes a section. Without cascade a section holding children is
// refused; with cascade the whole subtree and every closure row touching it
// goes in one transaction.
func (s *SectionService) Delete(ctx context.Context, adminID, sectionID uuid.UUID, cascade bool) error {
	section, err := s.repo.SectionByID(ctx, sectionID)
	if err != nil {
		return err
	}
	if _, err := s.courseRepo.CourseByID(ctx, section.CourseID, adminID); err != nil {
		return err
	}

	if !cascade {
		hasChildren, err := s.repo.HasChildren(ctx, sectionID)
		if err != nil {
			return err
		}
		if hasChildren {
			return app_errors.ErrSectionHasChildren
		}
		return s.repo.DeleteSubtree(ctx, []uuid.UUID{sectionID})
	}

	subtree, err := s.repo.SubtreeEntries(ctx, sectionID)
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, 0, len(subtree))
	for _, node := range subtree {
		ids = append(ids, node.SectionID)
	}
	return s.repo.DeleteSubtree(ctx, ids)
}

// Descendants lists everything under the section, depth ascending.
func (s *SectionService) Descendants(ctx context.Context, sectionID uuid.UUID) ([]models.Section, error) {
	if _, err := s.repo.SectionByID(ctx, sectionID); err != nil {
		return nil, err
	}
	return s.repo.Descendants(ctx, sectionID)
}

// Ancestors lists the parent chain of the section, nearest first.
func (s *SectionService) Ancestors(ctx context.Context, sectionID uuid.UUID) ([]models.Section, error) {
	if _, err := s.repo.SectionByID(ctx, sectionID); err != nil {
		return nil, err
	}
	return s.repo.Ancestors(ctx, sectionID)
}

// SectionByID is the plain read used by render endpoints.
func (s *SectionService) SectionByID(ctx context.Context, sectionID uuid.UUID) (*models.Section, error) {
	return s.repo.SectionByID(ctx, sectionID)
}
