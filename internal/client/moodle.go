package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"moodle/analyzer/internal/config"
	"moodle/analyzer/internal/domain"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

const (
	restEndpoint = "/webservice/rest/server.php"

	functionCategories    = "core_course_get_categories"
	functionCourses       = "core_course_get_courses"
	functionEnrolledUsers = "core_enrol_get_enrolled_users"
)

// MoodleClient is the subset of the Moodle web service the analyzer consumes.
type MoodleClient interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	Courses(ctx context.Context) ([]domain.Course, error)
	CourseUsers(ctx context.Context, courseID int) ([]json.RawMessage, error)
}

// Client is a MoodleClient holding a live connection that must be closed.
type Client interface {
	MoodleClient
	io.Closer
}

type moodleClient struct {
	httpClient *resty.Client
	token      string
	parser     *nameParser
}

// NewMoodleClient returns a client for the REST protocol of a Moodle site.
// The token must belong to a web service user allowed to call the three functions.
func NewMoodleClient(cfg config.MoodleConfig) Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &moodleClient{
		httpClient: client,
		token:      cfg.Token,
		parser:     newNameParser(cfg.Language),
	}
}

func (c *moodleClient) Close() error {
	return c.httpClient.Close()
}

// webServiceException is what Moodle answers with, usually on HTTP 200, when a call fails.
type webServiceException struct {
	Exception string `json:"exception"`
	ErrorCode string `json:"errorcode"`
	Message   string `json:"message"`
}

func (e *webServiceException) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.ErrorCode, e.Exception, e.Message)
}

type categoryRecord struct {
	ID     *int            `json:"id"`
	Name   *string         `json:"name"`
	Parent *int            `json:"parent"`
	Path   json.RawMessage `json:"path"`
}

type courseRecord struct {
	ID           *int    `json:"id"`
	FullName     *string `json:"fullname"`
	ShortName    *string `json:"shortname"`
	CategoryID   *int    `json:"categoryid"`
	TimeCreated  *int64  `json:"timecreated"`
	TimeModified *int64  `json:"timemodified"`
	StartDate    *int64  `json:"startdate"`
}

func (c *moodleClient) Categories(ctx context.Context) ([]domain.Category, error) {
	var records []categoryRecord
	if err := c.call(ctx, functionCategories, nil, &records); err != nil {
		return nil, err
	}

	categories := make([]domain.Category, 0, len(records))
	for i, r := range records {
		category, err := c.toCategory(i, r)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	log.Debugf("Fetched %d categories", len(categories))
	return categories, nil
}

func (c *moodleClient) Courses(ctx context.Context) ([]domain.Course, error) {
	var records []courseRecord
	if err := c.call(ctx, functionCourses, nil, &records); err != nil {
		return nil, err
	}

	courses := make([]domain.Course, 0, len(records))
	for i, r := range records {
		course, err := c.toCourse(i, r)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	log.Debugf("Fetched %d courses", len(courses))
	return courses, nil
}

func (c *moodleClient) CourseUsers(ctx context.Context, courseID int) ([]json.RawMessage, error) {
	var raw json.RawMessage
	params := map[string]string{"courseid": strconv.Itoa(courseID)}
	if err := c.call(ctx, functionEnrolledUsers, params, &raw); err != nil {
		return nil, err
	}

	users, err := DecodeUsers(raw)
	if err != nil {
		return nil, &domain.TransportError{Op: functionEnrolledUsers, Err: err}
	}

	log.Debugf("Course %d has %d enrolled users", courseID, len(users))
	return users, nil
}

func (c *moodleClient) call(ctx context.Context, function string, params map[string]string, out any) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("wstoken", c.token).
		SetQueryParam("wsfunction", function).
		SetQueryParam("moodlewsrestformat", "json").
		SetQueryParams(params).
		Get(restEndpoint)
	if err != nil {
		if ctx.Err() != nil {
			return &domain.TransportError{Op: function, Err: fmt.Errorf("request cancelled: %w", ctx.Err())}
		}
		return &domain.TransportError{Op: function, Err: fmt.Errorf("failed to fetch URL: %w", err)}
	}

	if resp.IsError() {
		return &domain.TransportError{Op: function, Err: fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())}
	}

	body := []byte(resp.String())

	var exception webServiceException
	if err := json.Unmarshal(body, &exception); err == nil && exception.Exception != "" {
		return &domain.TransportError{Op: function, Err: &exception}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &domain.TransportError{Op: function, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}

func (c *moodleClient) toCategory(index int, r categoryRecord) (domain.Category, error) {
	missing := func(field string) error {
		return &domain.MissingFieldError{Record: "category", Index: index, Field: field}
	}

	switch {
	case r.ID == nil:
		return domain.Category{}, missing("id")
	case r.Name == nil:
		return domain.Category{}, missing("name")
	case r.Parent == nil:
		return domain.Category{}, missing("parent")
	case len(r.Path) == 0:
		return domain.Category{}, missing("path")
	}

	var path string
	if err := json.Unmarshal(r.Path, &path); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return domain.Category{}, &domain.MalformedCategoryPathError{
				CategoryID: *r.ID,
				Path:       string(r.Path),
				Reason:     "path is not a string",
			}
		}
		return domain.Category{}, fmt.Errorf("failed to decode path of category %d: %w", *r.ID, err)
	}

	return domain.Category{
		ID:       *r.ID,
		Name:     c.parser.PlainText(*r.Name),
		ParentID: *r.Parent,
		Path:     path,
	}, nil
}

func (c *moodleClient) toCourse(index int, r courseRecord) (domain.Course, error) {
	course, err := r.validate(index)
	if err != nil {
		return domain.Course{}, err
	}

	course.FullName = c.parser.PlainText(course.FullName)
	course.ShortName = c.parser.PlainText(course.ShortName)
	return course, nil
}

func (r courseRecord) validate(index int) (domain.Course, error) {
	missing := func(field string) error {
		return &domain.MissingFieldError{Record: "course", Index: index, Field: field}
	}

	switch {
	case r.ID == nil:
		return domain.Course{}, missing("id")
	case r.FullName == nil:
		return domain.Course{}, missing("fullname")
	case r.ShortName == nil:
		return domain.Course{}, missing("shortname")
	case r.CategoryID == nil:
		return domain.Course{}, missing("categoryid")
	case r.TimeCreated == nil:
		return domain.Course{}, missing("timecreated")
	case r.TimeModified == nil:
		return domain.Course{}, missing("timemodified")
	case r.StartDate == nil:
		return domain.Course{}, missing("startdate")
	}

	return domain.Course{
		ID:           *r.ID,
		FullName:     *r.FullName,
		ShortName:    *r.ShortName,
		CategoryID:   *r.CategoryID,
		TimeCreated:  *r.TimeCreated,
		TimeModified: *r.TimeModified,
		StartDate:    *r.StartDate,
	}, nil
}

// DecodeCourse decodes a stored course record, requiring every field the web
// service delivers. Names are taken as they are, already in plain text.
func DecodeCourse(index int, data []byte) (domain.Course, error) {
	var r courseRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return domain.Course{}, fmt.Errorf("failed to decode course %d: %w", index, err)
	}
	return r.validate(index)
}

// DecodeUsers decodes a list of enrolled users. Anything but a JSON array,
// null included, is rejected so it cannot pass for a course without users.
func DecodeUsers(data []byte) ([]json.RawMessage, error) {
	var users []json.RawMessage
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to decode enrolled users: %w", err)
	}
	if users == nil {
		return nil, errors.New("enrolled users are not a JSON array")
	}
	return users, nil
}
