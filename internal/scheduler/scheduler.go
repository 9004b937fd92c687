// Package scheduler runs the daily collection and scoring jobs on a
// cron schedule aligned to the KRX trading calendar.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-compass/internal/config"
	"github.com/yourusername/stock-compass/internal/service"
)

// CollectionRunner runs a full collection pass over the stock universe.
type CollectionRunner interface {
	CollectAll(ctx context.Context) (*service.CollectionSummary, error)
}

// AnalysisRunner scores the full stock universe.
type AnalysisRunner interface {
	AnalyzeAll(ctx context.Context) (*service.BatchResult, error)
}

// Scheduler manages the daily collection and analysis jobs
type Scheduler struct {
	cron       *cron.Cron
	collection CollectionRunner
	analysis   AnalysisRunner
	logger     *logrus.Logger
	cfg        config.SchedulerConfig

	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID
}

// NewScheduler creates a scheduler. Cron expressions are evaluated in
// Korea Standard Time so schedules line up with the KRX session close.
func NewScheduler(cfg config.SchedulerConfig, collection CollectionRunner, analysis AnalysisRunner, logger *logrus.Logger) *Scheduler {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		loc = time.UTC
	}

	return &Scheduler{
		cron:       cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		collection: collection,
		analysis:   analysis,
		logger:     logger,
		cfg:        cfg,
		jobIDs:     make([]cron.EntryID, 0),
	}
}

// ScheduleJobs registers the collection and analysis jobs. Collection
// runs after the session close; analysis runs once collection has had
// time to finish.
func (s *Scheduler) ScheduleJobs() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule jobs while scheduler is running")
	}

	collectionID, err := s.cron.AddFunc(s.cfg.CollectionCron, s.runCollection)
	if err != nil {
		return fmt.Errorf("scheduling collection job: %w", err)
	}
	s.jobIDs = append(s.jobIDs, collectionID)

	analysisID, err := s.cron.AddFunc(s.cfg.AnalysisCron, s.runAnalysis)
	if err != nil {
		return fmt.Errorf("scheduling analysis job: %w", err)
	}
	s.jobIDs = append(s.jobIDs, analysisID)

	s.logger.WithFields(logrus.Fields{
		"collection_cron": s.cfg.CollectionCron,
		"analysis_cron":   s.cfg.AnalysisCron,
	}).Info("Scheduled daily jobs")

	return nil
}

func (s *Scheduler) runCollection() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout())
	defer cancel()

	s.logger.Info("Starting scheduled collection pass")

	summary, err := s.collection.CollectAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled collection pass failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"stocks":     summary.Stocks,
		"price_bars": summary.PriceBars,
		"news_items": summary.NewsItems,
		"financials": summary.Financials,
		"errors":     summary.Errors,
		"duration":   summary.Duration.String(),
	}).Info("Scheduled collection pass completed")
}

func (s *Scheduler) runAnalysis() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout())
	defer cancel()

	s.logger.Info("Starting scheduled analysis pass")

	result, err := s.analysis.AnalyzeAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled analysis pass failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"completed": result.Completed,
		"failed":    result.Failed,
		"duration":  result.Duration.String(),
	}).Info("Scheduled analysis pass completed")
}

func (s *Scheduler) runTimeout() time.Duration {
	minutes := s.cfg.RunTimeoutMinutes
	if minutes <= 0 {
		minutes = 60
	}
	return time.Duration(minutes) * time.Minute
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to
// finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled job run
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}
