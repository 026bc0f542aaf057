package app_errors

import "errors"

var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrIncorrectPassword = errors.New("incorrect password")
var ErrTokenNotFound = errors.New("token not found")
var ErrTokenExpired = errors.New("token expired")

// Not-found errors cover both "does not exist" and "exists outside the
// caller's scope" so a scoped read never leaks existence.
var ErrCourseNotFound = errors.New("course not found")
var ErrCategoryNotFound = errors.New("category not found")
var ErrSectionNotFound = errors.New("section not found")
var ErrFileNotFound = errors.New("file not found")

var ErrCategoryExists = errors.New("category with this title already exists")
var ErrNotFileOwner = errors.New("you are not the file owner")
var ErrNotImage = errors.New("not image")
var ErrFileSize = errors.New("file size error")

var ErrInvalidPagination = errors.New("page and page size must be positive")
var ErrInvalidDifficulty = errors.New("difficulty must be beginner, intermediate or advanced")
var ErrInvalidStatus = errors.New("status must be active or inactive")
var ErrSectionCycle = errors.New("cannot move a section under its own descendant")
var ErrSectionHasChildren = errors.New("section has children, detach or delete with cascade")
var ErrCrossCourseParent = errors.New("parent section belongs to another course")

var ErrCacheMiss = errors.New("cache miss")

var ErrAlreadySubscribed = errors.New("user is already subscribed to course")
var ErrNotSubscribed = errors.New("user is not subscribed to course")
