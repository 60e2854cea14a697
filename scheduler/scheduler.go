package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
	"yad2_scraper/config"
	"yad2_scraper/scraper"
)

// Scheduler fires the pipelines on a cron schedule, one after another.
type Scheduler struct {
	cfg       *config.Config
	pipelines []*scraper.Pipeline
	cron      *cron.Cron
}

func New(cfg *config.Config, pipelines []*scraper.Pipeline) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		pipelines: pipelines,
		cron:      cron.New(),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	spec := s.cfg.Scheduler.Cron
	log.Printf("Starting scheduler with cron: %s", spec)

	_, err := s.cron.AddFunc(spec, func() {
		s.RunAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunAll runs every configured search pipeline sequentially. Rendering is
// rate limited upstream, so parallelism would only trip the anti-bot wall.
func (s *Scheduler) RunAll(ctx context.Context) {
	for _, p := range s.pipelines {
		if err := p.RunAll(ctx); err != nil {
			log.Printf("Scheduled run error: %v", err)
		}
	}
}
