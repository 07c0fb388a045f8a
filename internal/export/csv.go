package export

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"moodle/analyzer/internal/domain"
)

// CSVExporter writes <bucket>.csv files with a header row.
type CSVExporter struct{}

func (e *CSVExporter) Export(dir string, buckets *domain.Buckets) error {
	return writeBuckets(dir, "csv", buckets, func(f *os.File, courses []domain.EmptyCourse) error {
		return WriteCSV(f, courses)
	})
}

// WriteCSV writes courses as comma separated rows in Columns order.
func WriteCSV(w io.Writer, courses []domain.EmptyCourse) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(Columns); err != nil {
		return err
	}

	for _, c := range courses {
		if err := cw.Write(toRow(c)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func toRow(c domain.EmptyCourse) []string {
	return []string{
		strconv.Itoa(c.ID),
		c.Category,
		c.URL,
		c.FullName,
		c.ShortName,
		strconv.Itoa(c.CategoryID),
		strconv.FormatInt(c.LatestTimestamp, 10),
		c.LatestTimestampHuman,
	}
}
