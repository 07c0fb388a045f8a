package export

import (
	"fmt"
	"os"
	"path/filepath"

	"moodle/analyzer/internal/domain"

	log "github.com/sirupsen/logrus"
)

// Exporter writes one file per non-empty bucket into a directory.
type Exporter interface {
	Export(dir string, buckets *domain.Buckets) error
}

// Columns is the field order of every exported record.
var Columns = []string{
	"id",
	"category",
	"url",
	"fullname",
	"shortname",
	"category_id",
	"latest_timestamp",
	"latest_timestamp_human",
}

// New returns the exporter for format, "csv" or "json".
func New(format string) (Exporter, error) {
	switch format {
	case "csv":
		return &CSVExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// writeBuckets creates dir and calls write for each non-empty bucket.
// Bucket names are used verbatim as file stems.
func writeBuckets(dir, ext string, buckets *domain.Buckets, write func(f *os.File, courses []domain.EmptyCourse) error) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	for _, name := range buckets.Names() {
		courses := buckets.Get(name)
		if len(courses) == 0 {
			continue
		}

		path := filepath.Join(dir, name+"."+ext)
		if err := writeFile(path, courses, write); err != nil {
			return err
		}
		log.Infof("📄 Wrote %d courses to %s", len(courses), path)
	}

	return nil
}

func writeFile(path string, courses []domain.EmptyCourse, write func(f *os.File, courses []domain.EmptyCourse) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := write(f, courses); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
