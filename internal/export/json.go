package export

import (
	"encoding/json"
	"io"
	"os"

	"moodle/analyzer/internal/domain"
)

// JSONExporter writes <bucket>.json files holding an array of records.
type JSONExporter struct{}

func (e *JSONExporter) Export(dir string, buckets *domain.Buckets) error {
	return writeBuckets(dir, "json", buckets, func(f *os.File, courses []domain.EmptyCourse) error {
		return WriteJSON(f, courses)
	})
}

func WriteJSON(w io.Writer, courses []domain.EmptyCourse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(courses)
}
