package category

import (
	"CourseLoom/internal/app_errors"
	"CourseLoom/internal/models"
	"CourseLoom/pkg/logger"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCategoryRepo struct {
	categories map[uuid.UUID]*models.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[uuid.UUID]*models.Category)}
}

func (f *fakeCategoryRepo) ListCategories(_ context.Context) ([]models.Category, error) {
	var result []models.Category
	for _, c := range f.categories {
		result = append(result, *c)
	}
	return result, nil
}

func (f *fakeCategoryRepo) CreateCategory(_ context.Context, category *models.Category) error {
	category.ID = uuid.New()
	copied := *category
	f.categories[category.ID] = &copied
	return nil
}

func (f *fakeCategoryRepo) CategoryByTitle(_ context.Context, title string) (*models.Category, error) {
	for _, c := range f.categories {
		if strings.EqualFold(c.Title, title) {
			copied := *c
			return &copied, nil
		}
	}
	return nil, app_errors.ErrCategoryNotFound
}

func (f *fakeCategoryRepo) RenameCategory(_ context.Context, id uuid.UUID, title string) error {
	c, ok := f.categories[id]
	if !ok {
		return app_errors.ErrCategoryNotFound
	}
	c.Title = title
	return nil
}

func (f *fakeCategoryRepo) DeleteCategory(_ context.Context, id uuid.UUID) error {
	if _, ok := f.categories[id]; !ok {
		return app_errors.ErrCategoryNotFound
	}
	delete(f.categories, id)
	return nil
}

type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) InvalidateCatalog(_ context.Context) {
	f.calls++
}

func newTestService() (*CategoryService, *fakeCategoryRepo, *fakeInvalidator) {
	repo := newFakeCategoryRepo()
	invalidator := &fakeInvalidator{}
	return NewCategoryService(logger.Discard(), repo, invalidator), repo, invalidator
}

func TestCreateTrimsAndInvalidates(t *testing.T) {
	svc, _, invalidator := newTestService()

	created, err := svc.Create(context.Background(), "  Databases  ")
	require.NoError(t, err)

	assert.Equal(t, "Databases", created.Title)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, 1, invalidator.calls)
}

func TestCreateRejectsCaseInsensitiveDuplicate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "Databases")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "databases")
	assert.ErrorIs(t, err, app_errors.ErrCategoryExists)
}

func TestListNeverNil(t *testing.T) {
	svc, _, _ := newTestService()

	categories, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, categories)
	assert.Empty(t, categories)
}

func TestRenameAndDeleteInvalidate(t *testing.T) {
	svc, repo, invalidator := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "Old")
	require.NoError(t, err)

	require.NoError(t, svc.Rename(ctx, created.ID, " New "))
	assert.Equal(t, "New", repo.categories[created.ID].Title)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Empty(t, repo.categories)
	assert.Equal(t, 3, invalidator.calls)

	err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, app_errors.ErrCategoryNotFound)
}
