package domain

import (
	"strconv"
	"strings"
)

// Category is a Moodle course category as delivered by core_course_get_categories.
type Category struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ParentID int    `json:"parent"`
	Path     string `json:"path"` // Ancestor chain like "/3/17/42"
}

// IsTopLevel reports whether the category has no parent.
func (c Category) IsTopLevel() bool {
	return c.ParentID == 0
}

// CategoryInfo is the derived view of a category used for bucketing.
type CategoryInfo struct {
	Name       string `json:"name"`
	TopLevelID int    `json:"top_level_category_id"`
}

// CategoryLookup maps a category id to its name and top-level ancestor.
type CategoryLookup map[int]CategoryInfo

// Info returns the info of categoryID as referenced by courseID.
func (l CategoryLookup) Info(courseID, categoryID int) (CategoryInfo, error) {
	info, ok := l[categoryID]
	if !ok {
		return CategoryInfo{}, &MissingCategoryReferenceError{CourseID: courseID, CategoryID: categoryID}
	}
	return info, nil
}

// ParseTopLevelID extracts the top-level category id from a path.
//
// The grammar is segment("/")+ and the segment at index 1 is the top-level id.
// Moodle paths start with a slash, so "/3/17" yields ["", "3", "17"] and 3.
func ParseTopLevelID(categoryID int, path string) (int, error) {
	segments := strings.Split(path, "/")
	if len(segments) < 2 {
		return 0, &MalformedCategoryPathError{CategoryID: categoryID, Path: path, Reason: "fewer than 2 segments"}
	}

	second := segments[1]
	if second == "" || strings.TrimLeft(second, "0123456789") != "" {
		return 0, &MalformedCategoryPathError{CategoryID: categoryID, Path: path, Reason: "second segment is not numeric"}
	}

	id, err := strconv.Atoi(second)
	if err != nil {
		return 0, &MalformedCategoryPathError{CategoryID: categoryID, Path: path, Reason: err.Error()}
	}

	return id, nil
}
