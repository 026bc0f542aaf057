package section

import (
	"CourseLoom/internal/app_errors"
	"CourseLoom/internal/models"
	"CourseLoom/pkg/logger"
	"context"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closureKey struct {
	ancestor   uuid.UUID
	descendant uuid.UUID
}

// fakeSectionRepo keeps a real closure table in memory so the batches the
// service computes are applied and checked end to end.
type fakeSectionRepo struct {
	sections map[uuid.UUID]*models.Section
	closure  map[closureKey]int
}

func newFakeSectionRepo() *fakeSectionRepo {
	return &fakeSectionRepo{
		sections: make(map[uuid.UUID]*models.Section),
		closure:  make(map[closureKey]int),
	}
}

func (f *fakeSectionRepo) SectionByID(_ context.Context, id uuid.UUID) (*models.Section, error) {
	s, ok := f.sections[id]
	if !ok {
		return nil, app_errors.ErrSectionNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSectionRepo) AncestorEntries(_ context.Context, id uuid.UUID) ([]models.TreeEntry, error) {
	var entries []models.TreeEntry
	for key, depth := range f.closure {
		if key.descendant == id {
			entries = append(entries, models.TreeEntry{SectionID: key.ancestor, Depth: depth})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Depth < entries[j].Depth })
	return entries, nil
}

func (f *fakeSectionRepo) SubtreeEntries(_ context.Context, id uuid.UUID) ([]models.TreeEntry, error) {
	var entries []models.TreeEntry
	for key, depth := range f.closure {
		if key.ancestor == id {
			entries = append(entries, models.TreeEntry{SectionID: key.descendant, Depth: depth})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Depth < entries[j].Depth })
	return entries, nil
}

func (f *fakeSectionRepo) Descendants(ctx context.Context, id uuid.UUID) ([]models.Section, error) {
	entries, _ := f.SubtreeEntries(ctx, id)
	var result []models.Section
	for _, e := range entries {
		if e.Depth == 0 {
			continue
		}
		result = append(result, *f.sections[e.SectionID])
	}
	return result, nil
}

func (f *fakeSectionRepo) Ancestors(ctx context.Context, id uuid.UUID) ([]models.Section, error) {
	entries, _ := f.AncestorEntries(ctx, id)
	var result []models.Section
	for _, e := range entries {
		if e.Depth == 0 {
			continue
		}
		result = append(result, *f.sections[e.SectionID])
	}
	return result, nil
}

func (f *fakeSectionRepo) HasChildren(_ context.Context, id uuid.UUID) (bool, error) {
	for _, s := range f.sections {
		if s.ParentID != nil && *s.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSectionRepo) InsertSection(_ context.Context, section *models.Section, closure []models.ClosureRow) error {
	copied := *section
	f.sections[section.ID] = &copied
	for _, row := range closure {
		f.closure[closureKey{row.AncestorID, row.DescendantID}] = row.Depth
	}
	return nil
}

func (f *fakeSectionRepo) MoveSection(_ context.Context, sectionID uuid.UUID, newParentID *uuid.UUID, remove []models.ClosurePair, insert []models.ClosureRow) error {
	for _, pair := range remove {
		delete(f.closure, closureKey{pair.AncestorID, pair.DescendantID})
	}
	for _, row := range insert {
		f.closure[closureKey{row.AncestorID, row.DescendantID}] = row.Depth
	}
	f.sections[sectionID].ParentID = newParentID
	return nil
}

func (f *fakeSectionRepo) DeleteSubtree(_ context.Context, ids []uuid.UUID) error {
	drop := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	for key := range f.closure {
		if drop[key.ancestor] || drop[key.descendant] {
			delete(f.closure, key)
		}
	}
	for _, id := range ids {
		delete(f.sections, id)
	}
	return nil
}

func (f *fakeSectionRepo) depth(ancestor, descendant uuid.UUID) (int, bool) {
	d, ok := f.closure[closureKey{ancestor, descendant}]
	return d, ok
}

type fakeCourseRepo struct {
	courses map[uuid.UUID]uuid.UUID // course id -> admin id
}

func (f *fakeCourseRepo) CourseByID(_ context.Context, id uuid.UUID, adminScope uuid.UUID) (*models.Course, error) {
	adminID, ok := f.courses[id]
	if !ok {
		return nil, app_errors.ErrCourseNotFound
	}
	if adminScope != uuid.Nil && adminID != adminScope {
		return nil, app_errors.ErrCourseNotFound
	}
	return &models.Course{ID: id, AdminID: adminID}, nil
}

func newTestService() (*SectionService, *fakeSectionRepo, uuid.UUID, uuid.UUID) {
	adminID := uuid.New()
	courseID := uuid.New()
	repo := newFakeSectionRepo()
	courses := &fakeCourseRepo{courses: map[uuid.UUID]uuid.UUID{courseID: adminID}}
	return NewSectionService(logger.Discard(), repo, courses), repo, adminID, courseID
}

func mustInsert(t *testing.T, svc *SectionService, adminID uuid.UUID, input SectionInput) *models.Section {
	t.Helper()
	section, err := svc.Insert(context.Background(), adminID, input)
	require.NoError(t, err)
	return section
}

func TestInsertBuildsClosure(t *testing.T) {
	svc, repo, adminID, courseID := newTestService()
	ctx := context.Background()

	root := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, Title: "root"})
	child := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, ParentID: &root.ID, Title: "child"})
	grandchild := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, ParentID: &child.ID, Title: "grandchild"})

	d, ok := repo.depth(root.ID, root.ID)
	require.True(t, ok)
	assert.Equal(t, 0, d)

	d, ok = repo.depth(root.ID, child.ID)
	require.True(t, ok)
	assert.Equal(t, 1, d)

	d, ok = repo.depth(root.ID, grandchild.ID)
	require.True(t, ok)
	assert.Equal(t, 2, d)

	d, ok = repo.depth(child.ID, grandchild.ID)
	require.True(t, ok)
	assert.Equal(t, 1, d)

	ancestors, err := svc.Ancestors(ctx, grandchild.ID)
	require.NoError(t, err)
	require.Len(t, ancestors, 2)
	assert.Equal(t, child.ID, ancestors[0].ID)
	assert.Equal(t, root.ID, ancestors[1].ID)
}

func TestInsertUnknownCourse(t *testing.T) {
	svc, _, adminID, _ := newTestService()

	_, err := svc.Insert(context.Background(), adminID, SectionInput{CourseID: uuid.New(), Title: "orphan"})
	assert.ErrorIs(t, err, app_errors.ErrCourseNotFound)
}

func TestInsertParentFromOtherCourse(t *testing.T) {
	svc, repo, adminID, courseID := newTestService()

	foreign := &models.Section{ID: uuid.New(), CourseID: uuid.New(), Title: "foreign"}
	repo.sections[foreign.ID] = foreign

	_, err := svc.Insert(context.Background(), adminID, SectionInput{
		CourseID: courseID,
		ParentID: &foreign.ID,
		Title:    "child",
	})
	assert.ErrorIs(t, err, app_errors.ErrSectionNotFound)
}

func TestInsertDefaultsKind(t *testing.T) {
	svc, _, adminID, courseID := newTestService()

	section := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, Title: "s", Kind: "bogus"})
	assert.Equal(t, models.SectionMaterial, section.Kind)
}

func TestMoveRecomputesClosure(t *testing.T) {
	svc, repo, adminID, courseID := newTestService()
	ctx := context.Background()

	root := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, Title: "root"})
	a := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, ParentID: &root.ID, Title: "a"})
	b := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, ParentID: &a.ID, Title: "b"})
	c := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, ParentID: &root.ID, Title: "c"})

	// root -> a -> b becomes root -> c -> a -> b
	require.NoError(t, svc.Move(ctx, adminID, a.ID, &c.ID))

	d, ok := repo.depth(c.ID, a.ID)
	require.True(t, ok)
	assert.Equal(t, 1, d)

	d, ok = repo.depth(c.ID, b.ID)
	require.True(t, ok)
	assert.Equal(t, 2, d)

	d, ok = repo.depth(root.ID, a.ID)
	require.True(t, ok)
	assert.Equal(t, 2, d)

	d, ok = repo.depth(root.ID, b.ID)
	require.True(t, ok)
	assert.Equal(t, 3, d)

	d, ok = repo.depth(a.ID, b.ID)
	require.True(t, ok)
	assert.Equal(t, 1, d)

	moved, err := svc.SectionByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, c.ID, *moved.ParentID)
}

func TestMoveToRoot(t *testing.T) {
	svc, repo, adminID, courseID := newTestService()
	ctx := context.Background()

	root := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, Title: "root"})
	a := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, ParentID: &root.ID, Title: "a"})
	b := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, ParentID: &a.ID, Title: "b"})

	require.NoError(t, svc.Move(ctx, adminID, a.ID, nil))

	_, ok := repo.depth(root.ID, a.ID)
	assert.False(t, ok)
	_, ok = repo.depth(root.ID, b.ID)
	assert.False(t, ok)

	d, ok := repo.depth(a.ID, b.ID)
	require.True(t, ok)
	assert.Equal(t, 1, d)

	moved, err := svc.SectionByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)
}

func TestMoveCycleRejected(t *testing.T) {
	svc, repo, adminID, courseID := newTestService()
	ctx := context.Background()

	root := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, Title: "root"})
	a := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, ParentID: &root.ID, Title: "a"})
	b := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, ParentID: &a.ID, Title: "b"})

	before := len(repo.closure)

	err := svc.Move(ctx, adminID, root.ID, &b.ID)
	assert.ErrorIs(t, err, app_errors.ErrSectionCycle)

	err = svc.Move(ctx, adminID, a.ID, &a.ID)
	assert.ErrorIs(t, err, app_errors.ErrSectionCycle)

	assert.Equal(t, before, len(repo.closure))
	unchanged, err := svc.SectionByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Nil(t, unchanged.ParentID)
}

func TestMoveCrossCourseParent(t *testing.T) {
	svc, repo, adminID, courseID := newTestService()

	section := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, Title: "s"})

	foreign := &models.Section{ID: uuid.New(), CourseID: uuid.New(), Title: "foreign"}
	repo.sections[foreign.ID] = foreign
	repo.closure[closureKey{foreign.ID, foreign.ID}] = 0

	err := svc.Move(context.Background(), adminID, section.ID, &foreign.ID)
	assert.ErrorIs(t, err, app_errors.ErrCrossCourseParent)
}

func TestDeleteRefusesChildrenWithoutCascade(t *testing.T) {
	svc, _, adminID, courseID := newTestService()
	ctx := context.Background()

	root := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, Title: "root"})
	mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, ParentID: &root.ID, Title: "child"})

	err := svc.Delete(ctx, adminID, root.ID, false)
	assert.ErrorIs(t, err, app_errors.ErrSectionHasChildren)

	_, err = svc.SectionByID(ctx, root.ID)
	assert.NoError(t, err)
}

func TestDeleteLeaf(t *testing.T) {
	svc, repo, adminID, courseID := newTestService()
	ctx := context.Background()

	root := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, Title: "root"})
	child := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, ParentID: &root.ID, Title: "child"})

	require.NoError(t, svc.Delete(ctx, adminID, child.ID, false))

	_, err := svc.SectionByID(ctx, child.ID)
	assert.ErrorIs(t, err, app_errors.ErrSectionNotFound)
	_, ok := repo.depth(root.ID, child.ID)
	assert.False(t, ok)
}

func TestDeleteCascade(t *testing.T) {
	svc, repo, adminID, courseID := newTestService()
	ctx := context.Background()

	root := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, Title: "root"})
	a := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, ParentID: &root.ID, Title: "a"})
	b := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, ParentID: &a.ID, Title: "b"})
	other := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, Title: "other"})

	require.NoError(t, svc.Delete(ctx, adminID, a.ID, true))

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		_, err := svc.SectionByID(ctx, id)
		assert.ErrorIs(t, err, app_errors.ErrSectionNotFound)
	}
	_, err := svc.SectionByID(ctx, root.ID)
	assert.NoError(t, err)
	_, err = svc.SectionByID(ctx, other.ID)
	assert.NoError(t, err)

	_, ok := repo.depth(root.ID, a.ID)
	assert.False(t, ok)
	_, ok = repo.depth(root.ID, b.ID)
	assert.False(t, ok)
}

func TestDescendantsDepthOrder(t *testing.T) {
	svc, _, adminID, courseID := newTestService()
	ctx := context.Background()

	root := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, Title: "root"})
	a := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, ParentID: &root.ID, Title: "a"})
	b := mustInsert(t, svc, adminID, SectionInput{CourseID: courseID, ParentID: &a.ID, Title: "b"})

	descendants, err := svc.Descendants(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, descendants, 2)
	assert.Equal(t, a.ID, descendants[0].ID)
	assert.Equal(t, b.ID, descendants[1].ID)

	_, err = svc.Descendants(ctx, uuid.New())
	assert.ErrorIs(t, err, app_errors.ErrSectionNotFound)
}
