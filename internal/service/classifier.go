package service

import (
	"context"

	"moodle/analyzer/internal/domain"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ClassifyOptions configures a classification pass.
type ClassifyOptions struct {
	ExcludedTopLevelIDs []int
	MinUsers            int // A course is empty when it has at most MinUsers users
	Progress            domain.ProgressFunc
	Workers             int // Concurrent enrollment requests, 1 or less fetches inline
}

type candidate struct {
	course   domain.CourseMeta
	category domain.CategoryInfo
	topLevel domain.CategoryInfo
	skip     bool
}

// Classify buckets the courses with at most MinUsers enrolled users by the name of
// their top-level category. Each bucket is sorted oldest activity first.
// The first failing lookup or enrollment request aborts the pass.
func (a *Analyzer) Classify(ctx context.Context, lookup domain.CategoryLookup, overview []domain.CourseMeta, opts ClassifyOptions) (*domain.Buckets, error) {
	excluded := make(map[int]struct{}, len(opts.ExcludedTopLevelIDs))
	for _, id := range opts.ExcludedTopLevelIDs {
		excluded[id] = struct{}{}
	}

	candidates, err := a.selectCandidates(lookup, overview, excluded)
	if err != nil {
		return nil, err
	}

	var counts *prefetch
	if opts.Workers > 1 {
		counts = a.startPrefetch(ctx, candidates, opts.Workers)
	}

	total := len(candidates)
	buckets := domain.NewBuckets()
	found := 0

	for i, c := range candidates {
		if !c.skip {
			var count int
			if counts != nil {
				count, err = counts.wait(i)
				if err != nil {
					return nil, err
				}
			} else {
				users, err := a.client.CourseUsers(ctx, c.course.ID)
				if err != nil {
					return nil, err
				}
				count = len(users)
			}

			if count <= opts.MinUsers {
				found++
				buckets.Add(c.topLevel.Name, domain.EmptyCourse{
					ID:                   c.course.ID,
					Category:             c.category.Name,
					URL:                  domain.CourseURL(a.publicURL, c.course.ID),
					FullName:             c.course.FullName,
					ShortName:            c.course.ShortName,
					CategoryID:           c.course.CategoryID,
					LatestTimestamp:      c.course.LatestTimestamp,
					LatestTimestampHuman: c.course.LatestTimestampHuman,
				})
			}
		}

		if opts.Progress != nil {
			opts.Progress(domain.Progress{Index: i + 1, Total: total, Found: found})
		}
	}

	buckets.Sort()

	log.Infof("✅ Finished processing %d courses. Found %d empty courses in %d top-level categories.",
		total, found, buckets.Len())

	return buckets, nil
}

func (a *Analyzer) selectCandidates(lookup domain.CategoryLookup, overview []domain.CourseMeta, excluded map[int]struct{}) ([]candidate, error) {
	candidates := make([]candidate, len(overview))

	for i, course := range overview {
		candidates[i] = candidate{course: course, skip: true}

		if course.ID == domain.FrontPageCourseID {
			log.Debugf("Skipping front page id=%d: %s", course.ID, course.FullName)
			continue
		}

		category, err := lookup.Info(course.ID, course.CategoryID)
		if err != nil {
			return nil, err
		}
		if _, ok := excluded[category.TopLevelID]; ok {
			continue
		}

		topLevel, err := lookup.Info(course.ID, category.TopLevelID)
		if err != nil {
			return nil, err
		}

		candidates[i] = candidate{
			course:   course,
			category: category,
			topLevel: topLevel,
		}
	}

	return candidates, nil
}

// prefetch fetches enrollment counts concurrently while classification consumes
// them in candidate order, so progress advances as soon as the next course is known.
type prefetch struct {
	counts []chan int
	done   chan struct{}
	err    error
}

func (a *Analyzer) startPrefetch(ctx context.Context, candidates []candidate, workers int) *prefetch {
	p := &prefetch{
		counts: make([]chan int, len(candidates)),
		done:   make(chan struct{}),
	}
	for i := range p.counts {
		p.counts[i] = make(chan int, 1)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	go func() {
		defer close(p.done)

		for i, c := range candidates {
			if c.skip {
				continue
			}
			i, c := i, c
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				users, err := a.client.CourseUsers(ctx, c.course.ID)
				if err != nil {
					return err
				}
				p.counts[i] <- len(users)
				return nil
			})
		}

		p.err = g.Wait()
		log.Debugf("Prefetched enrollment of %d courses with %d workers", len(candidates), workers)
	}()

	return p
}

// wait blocks until the count of candidate i is known or a fetch failed.
func (p *prefetch) wait(i int) (int, error) {
	select {
	case count := <-p.counts[i]:
		return count, nil
	case <-p.done:
		if p.err != nil {
			return 0, p.err
		}
		return <-p.counts[i], nil
	}
}
