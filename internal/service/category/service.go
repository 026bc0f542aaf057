package category

import (
	"CourseLoom/internal/app_errors"
	"CourseLoom/internal/models"
	"CourseLoom/pkg/logger"
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

type categoryRepo interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	CategoryByTitle(ctx context.Context, title string) (*models.Category, error)
	RenameCategory(ctx context.Context, id uuid.UUID, title string) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type catalogInvalidator interface {
	InvalidateCatalog(ctx context.Context)
}

type CategoryService struct {
	log     logger.Log
	repo    categoryRepo
	catalog catalogInvalidator
}

func NewCategoryService(log logger.Log, repo categoryRepo, catalog catalogInvalidator) *CategoryService {
	return &CategoryService{
		log:     log,
		repo:    repo,
		catalog: catalog,
	}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// Create enforces case-insensitive title uniqueness.
func (s *CategoryService) Create(ctx context.Context, title string) (*models.Category, error) {
	title = strings.TrimSpace(title)

	_, err := s.repo.CategoryByTitle(ctx, title)
	if err == nil {
		return nil, app_errors.ErrCategoryExists
	}
	if !errors.Is(err, app_errors.ErrCategoryNotFound) {
		return nil, err
	}

	category := &models.Category{Title: title}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	s.catalog.InvalidateCatalog(ctx)
	return category, nil
}

func (s *CategoryService) Rename(ctx context.Context, id uuid.UUID, title string) error {
	if err := s.repo.RenameCategory(ctx, id, strings.TrimSpace(title)); err != nil {
		return err
	}
	s.catalog.InvalidateCatalog(ctx)
	return nil
}

func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.catalog.InvalidateCatalog(ctx)
	return nil
}
