package container

import (
	"context"
	"fmt"
	"io"

	"moodle/analyzer/internal/cache"
	"moodle/analyzer/internal/client"
	"moodle/analyzer/internal/config"
	"moodle/analyzer/internal/domain"
	"moodle/analyzer/internal/export"
	"moodle/analyzer/internal/progress"
	"moodle/analyzer/internal/service"

	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config   *config.Config
	Client   client.MoodleClient
	Analyzer *service.Analyzer

	moodle client.Client
}

// ScanRequest carries the per-run options of a scan
type ScanRequest struct {
	ExcludedTopLevelIDs []int
	OutputDir           string
	Format              string
	MinUsers            int
	ShowProgress        bool
	ProgressOutput      io.Writer
}

// New creates a new container with all dependencies initialized
func New(cfg *config.Config) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	container := &Container{
		Config: cfg,
	}

	moodle := client.NewMoodleClient(cfg.Moodle)
	container.moodle = moodle
	container.Client = moodle

	if cfg.Cache.Enabled {
		container.Client = cache.NewStore(moodle, cfg.Cache)
		log.Infof("🗄️ Using on-disk cache (%s, %s)", cfg.Cache.CoursesFile, cfg.Cache.UsersDir)
	}

	container.Analyzer = service.NewAnalyzer(container.Client, cfg.Moodle.PublicURL)

	return container, nil
}

// Run executes a full scan and export
func (c *Container) Run(ctx context.Context, req ScanRequest) error {
	exporter, err := export.New(req.Format)
	if err != nil {
		return err
	}

	var observer domain.ProgressFunc
	if req.ShowProgress && req.ProgressOutput != nil {
		observer = progress.NewBar(req.ProgressOutput).Update
	}

	_, err = c.Analyzer.FindAndExportEmptyCourses(ctx, service.ScanOptions{
		ExcludedTopLevelIDs: req.ExcludedTopLevelIDs,
		OutputDir:           req.OutputDir,
		Exporter:            exporter,
		MinUsers:            req.MinUsers,
		Progress:            observer,
		Workers:             c.Config.Scan.Workers,
	})
	return err
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Debug("Shutting down container...")
	return c.moodle.Close()
}
