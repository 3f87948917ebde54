// Package audit periodically sweeps workflow storage for rows the engine
// should never produce and logs what it finds.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/logging"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/domain"
)

type IntegrityChecker interface {
	CheckIntegrity(ctx context.Context) (domain.IntegrityReport, error)
}

type Scheduler struct {
	checker IntegrityChecker
	cron    *cron.Cron
	timeout time.Duration

	mu   sync.Mutex
	last *domain.IntegrityReport
}

// NewScheduler parses spec with a seconds field, e.g. "0 0 * * * *" for hourly.
func NewScheduler(checker IntegrityChecker, spec string) (*Scheduler, error) {
	s := &Scheduler{
		checker: checker,
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		timeout: 30 * time.Second,
	}
	if _, err := s.cron.AddFunc(spec, func() { _, _ = s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid audit schedule %q: %w", spec, err)
	}
	return s, nil
}

// RunOnce performs one sweep and remembers its report.
func (s *Scheduler) RunOnce(ctx context.Context) (domain.IntegrityReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	log := logging.FromContext(ctx).WithField("job", "workflow_audit")

	rep, err := s.checker.CheckIntegrity(ctx)
	if err != nil {
		log.WithError(err).Error("workflow audit failed")
		return rep, err
	}

	s.mu.Lock()
	s.last = &rep
	s.mu.Unlock()

	fields := logrus.Fields{
		"orphan_transitions":            rep.OrphanTransitions,
		"workflows_without_transitions": rep.WorkflowsWithoutEdges,
		"default_assignee_orphans":      rep.DefaultAssigneesOrphans,
	}
	if rep.Healthy() {
		log.WithFields(fields).Debug("workflow audit clean")
	} else {
		log.WithFields(fields).Warn("workflow audit found inconsistencies")
	}
	return rep, nil
}

// Last returns the most recent report, if any sweep has completed.
func (s *Scheduler) Last() (domain.IntegrityReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return domain.IntegrityReport{}, false
	}
	return *s.last, true
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running sweep to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
