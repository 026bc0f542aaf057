package course

import (
	"CourseLoom/internal/app_errors"
	"CourseLoom/internal/models"
	"CourseLoom/pkg/logger"
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/google/uuid"
)

type courseRepo interface {
	FetchCatalog(ctx context.Context, filter models.CatalogFilter, scope models.CatalogScope, limit, offset int) ([]models.Course, int, error)
	CourseByID(ctx context.Context, id uuid.UUID, adminScope uuid.UUID) (*models.Course, error)
	CreateCourse(ctx context.Context, course *models.Course, categoryIDs []uuid.UUID) error
	UpdateCourse(ctx context.Context, course *models.Course, categoryIDs []uuid.UUID) error
	SoftDelete(ctx context.Context, id, adminID uuid.UUID) error
}

type categoryRepo interface {
	CategoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Category, error)
}

type fileManager interface {
	Create(ctx context.Context, adminID uuid.UUID, kind string, upload models.FileUpload) (*models.File, error)
	Replace(ctx context.Context, fileID, adminID uuid.UUID, kind string, upload models.FileUpload) (*models.File, error)
	Delete(ctx context.Context, fileID, adminID uuid.UUID, kind string) (*models.File, error)
}

type searchRepo interface {
	Index(ctx context.Context, course models.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, size int) ([]uuid.UUID, error)
	Count(ctx context.Context, query string) (int, error)
}

type subscriptionRepo interface {
	Subscribe(ctx context.Context, courseID, userID uuid.UUID) error
	Unsubscribe(ctx context.Context, courseID, userID uuid.UUID) error
	IsSubscribed(ctx context.Context, courseID, userID uuid.UUID) (bool, error)
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CourseInput is the mutable field set for create and update. Difficulty and
// status must hold valid enum values on every call; update is full-replace,
// so omitting them is an error. Unknown category ids are dropped, not
// rejected.
type CourseInput struct {
	Title       string
	Description string
	Difficulty  string
	Status      string
	CategoryIDs []uuid.UUID
	Image       *models.FileUpload
}

type CourseService struct {
	log        logger.Log
	courseRepo courseRepo
	catRepo    categoryRepo
	files      fileManager
	searchRepo searchRepo
	subRepo    subscriptionRepo
	cache      catalogCache
}

func NewCourseService(
	log logger.Log,
	courseRepo courseRepo,
	catRepo categoryRepo,
	files fileManager,
	searchRepo searchRepo,
	subRepo subscriptionRepo,
	cache catalogCache,
) *CourseService {
	return &CourseService{
		log:        log,
		courseRepo: courseRepo,
		catRepo:    catRepo,
		files:      files,
		searchRepo: searchRepo,
		subRepo:    subRepo,
		cache:      cache,
	}
}

// FetchCatalog returns one page of the catalog plus the total matching count.
// Pages are cached under the full filter+scope+pagination tuple; a bad page or
// page size is rejected, never clamped.
func (s *CourseService) FetchCatalog(
	ctx context.Context,
	filter models.CatalogFilter,
	scope models.CatalogScope,
	page, pageSize int,
) (*models.CatalogPage, error) {
	if page <= 0 || pageSize <= 0 {
		return nil, app_errors.ErrInvalidPagination
	}

	key := catalogKey(filter, scope, page, pageSize)
	cached := &models.CatalogPage{}
	if err := s.cache.Get(ctx, key, cached); err == nil {
		return cached, nil
	}

	offset := (page - 1) * pageSize
	courses, total, err := s.courseRepo.FetchCatalog(ctx, filter, scope, pageSize, offset)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []models.Course{}
	}

	result := &models.CatalogPage{
		Courses:     courses,
		Total:       total,
		CurrentPage: page,
		TotalPages:  (total + pageSize - 1) / pageSize,
	}

	if err := s.cache.Set(ctx, key, result); err != nil {
		s.log.ErrorErr("failed to cache catalog page", err, "key", key)
	}
	return result, nil
}

// CourseByID reports a single not-found for both a missing course and a
// course outside the admin scope.
func (s *CourseService) CourseByID(ctx context.Context, id uuid.UUID, scope models.CatalogScope) (*models.Course, error) {
	return s.courseRepo.CourseByID(ctx, id, scope.AdminID)
}

// CreateCourse persists the course, its category links and the optional
// thumbnail as one unit. A thumbnail created ahead of a failed commit is
// compensating-deleted.
func (s *CourseService) CreateCourse(ctx context.Context, adminID uuid.UUID, input CourseInput) (*models.Course, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	categoryIDs, err := s.resolveCategories(ctx, input.CategoryIDs)
	if err != nil {
		return nil, err
	}

	var thumbnail *models.File
	if input.Image != nil {
		thumbnail, err = s.files.Create(ctx, adminID, models.FileKindImage, *input.Image)
		if err != nil {
			return nil, err
		}
	}

	course := &models.Course{
		Title:       input.Title,
		Description: input.Description,
		Difficulty:  input.Difficulty,
		Status:      input.Status,
		AdminID:     adminID,
	}
	if thumbnail != nil {
		course.ThumbnailID = &thumbnail.ID
	}

	if err := s.courseRepo.CreateCourse(ctx, course, categoryIDs); err != nil {
		if thumbnail != nil {
			if _, delErr := s.files.Delete(ctx, thumbnail.ID, adminID, models.FileKindImage); delErr != nil {
				s.log.ErrorErr("failed to clean up orphan thumbnail", delErr, "file_id", thumbnail.ID)
			}
		}
		return nil, err
	}

	s.indexCourse(ctx, *course)
	s.invalidateCatalog(ctx)

	return s.courseRepo.CourseByID(ctx, course.ID, adminID)
}

// UpdateCourse replaces the mutable fields and the whole category set. A new
// image replaces the existing thumbnail blob-first, or creates and links one
// when none existed.
func (s *CourseService) UpdateCourse(ctx context.Context, id, adminID uuid.UUID, input CourseInput) (*models.Course, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	current, err := s.courseRepo.CourseByID(ctx, id, adminID)
	if err != nil {
		return nil, err
	}

	categoryIDs, err := s.resolveCategories(ctx, input.CategoryIDs)
	if err != nil {
		return nil, err
	}

	thumbnailID := current.ThumbnailID
	var createdFile *models.File
	if input.Image != nil {
		if thumbnailID != nil {
			if _, err := s.files.Replace(ctx, *thumbnailID, adminID, models.FileKindImage, *input.Image); err != nil {
				return nil, err
			}
		} else {
			createdFile, err = s.files.Create(ctx, adminID, models.FileKindImage, *input.Image)
			if err != nil {
				return nil, err
			}
			thumbnailID = &createdFile.ID
		}
	}

	course := &models.Course{
		ID:          id,
		Title:       input.Title,
		Description: input.Description,
		Difficulty:  input.Difficulty,
		Status:      input.Status,
		AdminID:     adminID,
		ThumbnailID: thumbnailID,
	}

	if err := s.courseRepo.UpdateCourse(ctx, course, categoryIDs); err != nil {
		if createdFile != nil {
			if _, delErr := s.files.Delete(ctx, createdFile.ID, adminID, models.FileKindImage); delErr != nil {
				s.log.ErrorErr("failed to clean up orphan thumbnail", delErr, "file_id", createdFile.ID)
			}
		}
		return nil, err
	}

	s.indexCourse(ctx, *course)
	s.invalidateCatalog(ctx)

	return s.courseRepo.CourseByID(ctx, id, adminID)
}

// DeleteCourse hard-deletes the thumbnail file, then tombstones the course.
// Sections are left to their own retention; a second delete is a not-found.
func (s *CourseService) DeleteCourse(ctx context.Context, id, adminID uuid.UUID) (*models.Course, error) {
	course, err := s.courseRepo.CourseByID(ctx, id, adminID)
	if err != nil {
		return nil, err
	}

	if course.ThumbnailID != nil {
		if _, err := s.files.Delete(ctx, *course.ThumbnailID, adminID, models.FileKindImage); err != nil {
			return nil, err
		}
	}

	if err := s.courseRepo.SoftDelete(ctx, id, adminID); err != nil {
		return nil, err
	}

	if err := s.searchRepo.Delete(ctx, id); err != nil {
		s.log.ErrorErr("failed to remove course from search index", err, "course_id", id)
	}
	s.invalidateCatalog(ctx)

	return course, nil
}

// SearchCourses resolves full-text hits against the live catalog; inactive or
// since-deleted courses fall out of both the items and the total. The total
// counts returnable courses, not raw index hits.
func (s *CourseService) SearchCourses(ctx context.Context, query string, count, offset int) ([]models.Course, int, error) {
	if count <= 0 || offset < 0 {
		return nil, 0, app_errors.ErrInvalidPagination
	}

	hits, err := s.searchRepo.Count(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("course search count failed: %w", err)
	}
	if hits == 0 {
		return []models.Course{}, 0, nil
	}

	ids, err := s.searchRepo.Search(ctx, query, hits)
	if err != nil {
		return nil, 0, fmt.Errorf("course search failed: %w", err)
	}

	live := make([]models.Course, 0, len(ids))
	for _, id := range ids {
		course, err := s.courseRepo.CourseByID(ctx, id, uuid.Nil)
		if err != nil {
			continue
		}
		if course.Status != models.StatusActive {
			continue
		}
		live = append(live, *course)
	}

	total := len(live)
	if offset >= total {
		return []models.Course{}, total, nil
	}
	live = live[offset:]
	if len(live) > count {
		live = live[:count]
	}
	return live, total, nil
}

// Subscribe enrolls a student into an active course.
func (s *CourseService) Subscribe(ctx context.Context, courseID, studentID uuid.UUID) error {
	course, err := s.courseRepo.CourseByID(ctx, courseID, uuid.Nil)
	if err != nil {
		return err
	}
	if course.Status != models.StatusActive {
		return app_errors.ErrCourseNotFound
	}
	if err := s.subRepo.Subscribe(ctx, courseID, studentID); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

// SubscriptionStatus reports whether the student is enrolled in the course.
func (s *CourseService) SubscriptionStatus(ctx context.Context, courseID, studentID uuid.UUID) (bool, error) {
	if _, err := s.courseRepo.CourseByID(ctx, courseID, uuid.Nil); err != nil {
		return false, err
	}
	return s.subRepo.IsSubscribed(ctx, courseID, studentID)
}

func (s *CourseService) Unsubscribe(ctx context.Context, courseID, studentID uuid.UUID) error {
	if err := s.subRepo.Unsubscribe(ctx, courseID, studentID); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

// InvalidateCatalog drops every cached catalog page. Category mutations call
// this through the category service.
func (s *CourseService) InvalidateCatalog(ctx context.Context) {
	s.invalidateCatalog(ctx)
}

func (s *CourseService) resolveCategories(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	categories, err := s.catRepo.CategoriesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	resolved := make([]uuid.UUID, 0, len(categories))
	for _, c := range categories {
		resolved = append(resolved, c.ID)
	}
	if len(resolved) < len(ids) {
		s.log.Debug("dropped unknown category ids", "requested", len(ids), "resolved", len(resolved))
	}
	return resolved, nil
}

func (s *CourseService) indexCourse(ctx context.Context, course models.Course) {
	if err := s.searchRepo.Index(ctx, course); err != nil {
		s.log.ErrorErr("failed to index course", err, "course_id", course.ID)
	}
}

func (s *CourseService) invalidateCatalog(ctx context.Context) {
	if err := s.cache.DeleteByPattern(ctx, "catalog:*"); err != nil {
		s.log.ErrorErr("failed to invalidate catalog cache", err)
	}
}

func validateInput(input CourseInput) error {
	if !models.ValidDifficulty(input.Difficulty) {
		return app_errors.ErrInvalidDifficulty
	}
	if !models.ValidStatus(input.Status) {
		return app_errors.ErrInvalidStatus
	}
	return nil
}

func catalogKey(filter models.CatalogFilter, scope models.CatalogScope, page, pageSize int) string {
	categories := make([]string, 0, len(filter.CategoryIDs))
	for _, id := range filter.CategoryIDs {
		categories = append(categories, id.String())
	}
	sort.Strings(categories)

	// free-text segments are escaped so a "|" in them cannot fold two
	// distinct tuples onto one key
	return fmt.Sprintf("catalog:%s|%s|%s|%s|%s|%t|%d|%d",
		scope.AdminID, scope.StudentID,
		url.QueryEscape(strings.ToLower(filter.Title)), url.QueryEscape(filter.Difficulty),
		strings.Join(categories, ","), filter.Subscribed,
		page, pageSize,
	)
}
