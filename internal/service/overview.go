package service

import (
	"context"

	"moodle/analyzer/internal/domain"
)

// BuildOverview returns the reporting view of all courses in API order.
// A repeated course id replaces the earlier entry in place.
func (a *Analyzer) BuildOverview(ctx context.Context) ([]domain.CourseMeta, error) {
	courses, err := a.client.Courses(ctx)
	if err != nil {
		return nil, err
	}

	overview := make([]domain.CourseMeta, 0, len(courses))
	position := make(map[int]int, len(courses))
	for _, course := range courses {
		meta := domain.NewCourseMeta(course, a.location)
		if i, ok := position[course.ID]; ok {
			overview[i] = meta
			continue
		}
		position[course.ID] = len(overview)
		overview = append(overview, meta)
	}

	return overview, nil
}
