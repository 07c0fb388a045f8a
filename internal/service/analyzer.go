package service

import (
	"context"
	"fmt"
	"time"

	"moodle/analyzer/internal/client"
	"moodle/analyzer/internal/domain"
	"moodle/analyzer/internal/export"

	log "github.com/sirupsen/logrus"
)

// Analyzer finds courses without enrolled users and exports them per top-level category.
type Analyzer struct {
	client    client.MoodleClient
	publicURL string
	location  *time.Location
}

func NewAnalyzer(client client.MoodleClient, publicURL string) *Analyzer {
	return &Analyzer{
		client:    client,
		publicURL: publicURL,
		location:  time.Local,
	}
}

// WithLocation sets the zone used for human readable timestamps.
func (a *Analyzer) WithLocation(loc *time.Location) *Analyzer {
	a.location = loc
	return a
}

// ScanOptions configures a full scan.
type ScanOptions struct {
	ExcludedTopLevelIDs []int
	OutputDir           string
	Exporter            export.Exporter
	MinUsers            int
	Progress            domain.ProgressFunc
	Workers             int
}

// FindAndExportEmptyCourses runs the whole pipeline: categories, courses,
// classification, export. Nothing is written unless classification succeeds.
func (a *Analyzer) FindAndExportEmptyCourses(ctx context.Context, opts ScanOptions) (*domain.Buckets, error) {
	if opts.Exporter == nil {
		return nil, fmt.Errorf("no exporter configured")
	}

	log.Info("🔄 Fetching categories...")
	lookup, err := a.BuildLookup(ctx)
	if err != nil {
		return nil, err
	}

	log.Info("🔄 Fetching courses...")
	overview, err := a.BuildOverview(ctx)
	if err != nil {
		return nil, err
	}

	buckets, err := a.Classify(ctx, lookup, overview, ClassifyOptions{
		ExcludedTopLevelIDs: opts.ExcludedTopLevelIDs,
		MinUsers:            opts.MinUsers,
		Progress:            opts.Progress,
		Workers:             opts.Workers,
	})
	if err != nil {
		return nil, err
	}

	if err := opts.Exporter.Export(opts.OutputDir, buckets); err != nil {
		return nil, fmt.Errorf("failed to export empty courses: %w", err)
	}

	log.Infof("✅ Exported %d empty courses to %s", buckets.Total(), opts.OutputDir)
	return buckets, nil
}
