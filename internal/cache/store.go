package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"moodle/analyzer/internal/client"
	"moodle/analyzer/internal/config"
	"moodle/analyzer/internal/domain"

	log "github.com/sirupsen/logrus"
)

// Store serves courses and enrolled users from JSON files, falling back to the
// wrapped client for anything not cached yet. The presence of a file means the
// data has already been fetched; files are never refreshed.
type Store struct {
	client      client.MoodleClient
	coursesFile string
	usersDir    string
}

var _ client.MoodleClient = (*Store)(nil)

func NewStore(c client.MoodleClient, cfg config.CacheConfig) *Store {
	return &Store{
		client:      c,
		coursesFile: cfg.CoursesFile,
		usersDir:    cfg.UsersDir,
	}
}

// Categories are not cached.
func (s *Store) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.client.Categories(ctx)
}

// Courses loads the course overview from the courses file, downloading it when absent.
// The file holds a JSON object mapping course id to course record. Stored records
// must carry every field the web service delivers.
func (s *Store) Courses(ctx context.Context) ([]domain.Course, error) {
	byID := make(map[string]json.RawMessage)
	found, err := loadJSON(s.coursesFile, &byID)
	if err != nil {
		return nil, err
	}

	if found {
		keys := make([]string, 0, len(byID))
		for key := range byID {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		courses := make([]domain.Course, 0, len(byID))
		for i, key := range keys {
			course, err := client.DecodeCourse(i, byID[key])
			if err != nil {
				return nil, fmt.Errorf("invalid cache file %s: %w", s.coursesFile, err)
			}
			courses = append(courses, course)
		}
		sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
		return courses, nil
	}

	log.Info("🔄 Downloading overview of all courses...")
	courses, err := s.client.Courses(ctx)
	if err != nil {
		return nil, err
	}

	stored := make(map[string]domain.Course, len(courses))
	for _, course := range courses {
		stored[strconv.Itoa(course.ID)] = course
	}
	if err := saveJSON(s.coursesFile, stored); err != nil {
		return nil, err
	}

	return courses, nil
}

// CourseUsers loads <users_dir>/<courseID>.json, downloading it when absent.
func (s *Store) CourseUsers(ctx context.Context, courseID int) ([]json.RawMessage, error) {
	path := filepath.Join(s.usersDir, strconv.Itoa(courseID)+".json")

	var raw json.RawMessage
	found, err := loadJSON(path, &raw)
	if err != nil {
		return nil, err
	}
	if found {
		users, err := client.DecodeUsers(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid cache file %s: %w", path, err)
		}
		return users, nil
	}

	log.Debugf("Downloading users of course %d...", courseID)
	users, err := s.client.CourseUsers(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []json.RawMessage{}
	}

	if err := saveJSON(path, users); err != nil {
		return nil, err
	}

	return users, nil
}

func loadJSON(path string, out any) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat cache file %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read cache file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to decode cache file %s: %w", path, err)
	}

	log.Debugf("Loaded %s. Last modified: %s", path, info.ModTime().Format(time.DateTime))
	return true, nil
}

func saveJSON(path string, data any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory for %s: %w", path, err)
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache file %s: %w", path, err)
	}

	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file %s: %w", path, err)
	}

	return nil
}
