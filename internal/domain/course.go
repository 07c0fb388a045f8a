package domain

import (
	"fmt"
	"strings"
	"time"
)

// FrontPageCourseID is the site course Moodle reserves for the front page.
const FrontPageCourseID = 1

// TimestampLayout renders timestamps as YYYY-MM-DD HH:MM:SS.
const TimestampLayout = "2006-01-02 15:04:05"

// Course is a Moodle course as delivered by core_course_get_courses.
type Course struct {
	ID           int    `json:"id"`
	FullName     string `json:"fullname"`
	ShortName    string `json:"shortname"`
	CategoryID   int    `json:"categoryid"`
	TimeCreated  int64  `json:"timecreated"`
	TimeModified int64  `json:"timemodified"`
	StartDate    int64  `json:"startdate"`
}

// LatestTimestamp is the latest of creation, modification and start time.
func (c Course) LatestTimestamp() int64 {
	return max(c.TimeCreated, c.TimeModified, c.StartDate)
}

// CourseMeta is the reporting view of a course.
type CourseMeta struct {
	ID                   int    `json:"id"`
	FullName             string `json:"fullname"`
	ShortName            string `json:"shortname"`
	CategoryID           int    `json:"categoryid"`
	LatestTimestamp      int64  `json:"latest_timestamp"`
	LatestTimestampHuman string `json:"latest_timestamp_human"`
}

// NewCourseMeta builds the reporting view of c, formatting times in loc.
func NewCourseMeta(c Course, loc *time.Location) CourseMeta {
	latest := c.LatestTimestamp()
	return CourseMeta{
		ID:                   c.ID,
		FullName:             c.FullName,
		ShortName:            c.ShortName,
		CategoryID:           c.CategoryID,
		LatestTimestamp:      latest,
		LatestTimestampHuman: time.Unix(latest, 0).In(loc).Format(TimestampLayout),
	}
}

// CourseURL builds the deep link to a course page.
func CourseURL(baseURL string, courseID int) string {
	return fmt.Sprintf("%s/course/view.php?id=%d", strings.TrimRight(baseURL, "/"), courseID)
}
