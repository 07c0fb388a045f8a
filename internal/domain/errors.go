package domain

import "fmt"

// TransportError is a network, HTTP or web service failure reported by the Moodle client.
type TransportError struct {
	Op  string // Web service function, e.g. core_course_get_courses
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("moodle %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedCategoryPathError means a category path does not encode a top-level id.
type MalformedCategoryPathError struct {
	CategoryID int
	Path       string
	Reason     string
}

func (e *MalformedCategoryPathError) Error() string {
	return fmt.Sprintf("malformed path %q of category %d: %s", e.Path, e.CategoryID, e.Reason)
}

// MissingCategoryReferenceError means a course points at a category that was not fetched.
type MissingCategoryReferenceError struct {
	CourseID   int
	CategoryID int
}

func (e *MissingCategoryReferenceError) Error() string {
	return fmt.Sprintf("course %d references unknown category %d", e.CourseID, e.CategoryID)
}

// MissingFieldError means an API record lacks a required field.
type MissingFieldError struct {
	Record string
	Index  int
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s record #%d is missing required field %q", e.Record, e.Index, e.Field)
}
