package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"moodle/analyzer/internal/config"
	"moodle/analyzer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewMoodleClient(config.MoodleConfig{BaseURL: srv.URL + "/", Token: "secret", Language: "en"})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCategories(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, restEndpoint, r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("wstoken"))
		assert.Equal(t, functionCategories, r.URL.Query().Get("wsfunction"))
		assert.Equal(t, "json", r.URL.Query().Get("moodlewsrestformat"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "name": "Fac &amp; A", "parent": 0, "path": "/1", "coursecount": 3},
			{"id": 7, "name": "<span lang=\"de\" class=\"multilang\">Mathe</span><span lang=\"en\" class=\"multilang\">Maths</span>", "parent": 1, "path": "/1/7"}
		]`))
	})

	categories, err := c.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)

	assert.Equal(t, domain.Category{ID: 1, Name: "Fac & A", ParentID: 0, Path: "/1"}, categories[0])
	assert.Equal(t, domain.Category{ID: 7, Name: "Maths", ParentID: 1, Path: "/1/7"}, categories[1])
}

func TestCategoriesRejectsNonStringPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 4, "name": "X", "parent": 1, "path": 14}]`))
	})

	_, err := c.Categories(context.Background())

	var pathErr *domain.MalformedCategoryPathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, 4, pathErr.CategoryID)
}

func TestCoursesMissingField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 5, "fullname": "A", "shortname": "a", "categoryid": 1, "timecreated": 1, "timemodified": 2}]`))
	})

	_, err := c.Courses(context.Background())

	var fieldErr *domain.MissingFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "course", fieldErr.Record)
	assert.Equal(t, "startdate", fieldErr.Field)
}

func TestCourses(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, functionCourses, r.URL.Query().Get("wsfunction"))
		_, _ = w.Write([]byte(`[{"id": 5, "fullname": "Empty Course", "shortname": "EC", "categoryid": 1,
			"timecreated": 100, "timemodified": 200, "startdate": 50, "summary": "<p>ignored</p>"}]`))
	})

	courses, err := c.Courses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, domain.Course{
		ID: 5, FullName: "Empty Course", ShortName: "EC", CategoryID: 1,
		TimeCreated: 100, TimeModified: 200, StartDate: 50,
	}, courses[0])
}

func TestCourseUsers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, functionEnrolledUsers, r.URL.Query().Get("wsfunction"))
		assert.Equal(t, "42", r.URL.Query().Get("courseid"))
		_, _ = w.Write([]byte(`[{"id": 3, "fullname": "Ann"}, {"id": 9}]`))
	})

	users, err := c.CourseUsers(context.Background(), 42)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestWebServiceExceptionIsTransportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"exception": "moodle_exception", "errorcode": "invalidtoken", "message": "Invalid token - token not found"}`))
	})

	_, err := c.CourseUsers(context.Background(), 3)

	var transportErr *domain.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, functionEnrolledUsers, transportErr.Op)

	var exception *webServiceException
	require.True(t, errors.As(err, &exception))
	assert.Equal(t, "invalidtoken", exception.ErrorCode)
}

func TestHTTPErrorIsTransportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	_, err := c.Courses(context.Background())

	var transportErr *domain.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Contains(t, err.Error(), "502")
}

func TestCancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Categories(ctx)

	var transportErr *domain.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCourseUsersRejectsNull(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	users, err := c.CourseUsers(context.Background(), 4)
	assert.Nil(t, users)

	var transportErr *domain.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, functionEnrolledUsers, transportErr.Op)
}

func TestDecodeCourse(t *testing.T) {
	course, err := DecodeCourse(0, []byte(`{"id": 5, "fullname": "R&D", "shortname": "rd", "categoryid": 3, "timecreated": 1, "timemodified": 2, "startdate": 0}`))
	require.NoError(t, err)
	assert.Equal(t, domain.Course{ID: 5, FullName: "R&D", ShortName: "rd", CategoryID: 3, TimeCreated: 1, TimeModified: 2}, course)

	_, err = DecodeCourse(2, []byte(`{"id": 5, "fullname": "No category"}`))
	var fieldErr *domain.MissingFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, 2, fieldErr.Index)
	assert.Equal(t, "shortname", fieldErr.Field)

	_, err = DecodeCourse(0, []byte(`null`))
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "id", fieldErr.Field)
}

func TestDecodeUsers(t *testing.T) {
	users, err := DecodeUsers([]byte(`[]`))
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	users, err = DecodeUsers([]byte(`[{"id": 1}, {"id": 2}]`))
	require.NoError(t, err)
	assert.Len(t, users, 2)

	for _, data := range []string{`null`, `{"id": 1}`, `"users"`} {
		_, err := DecodeUsers([]byte(data))
		assert.Error(t, err, data)
	}
}
