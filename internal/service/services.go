package service

import (
	"CourseLoom/internal/service/auth"
	"CourseLoom/internal/service/category"
	"CourseLoom/internal/service/course"
	"CourseLoom/internal/service/file"
	"CourseLoom/internal/service/section"
)

type Collection struct {
	*auth.AuthService
	*course.CourseService
	*category.CategoryService
	*section.SectionService
	*file.FileService
}
