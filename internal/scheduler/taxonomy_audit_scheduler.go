package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/shopadmin-backend/internal/app/service"
	"github.com/ikkim/shopadmin-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// DefaultAuditSpec runs the audit every night at 03:00.
const DefaultAuditSpec = "0 3 * * *"

// TaxonomyAuditScheduler periodically checks the full taxonomy for integrity
// violations. Violations are logged, never repaired.
type TaxonomyAuditScheduler struct {
	cron            *cron.Cron
	spec            string
	timeout         time.Duration
	taxonomyService service.TaxonomyService
}

func NewTaxonomyAuditScheduler(taxonomyService service.TaxonomyService, spec string) *TaxonomyAuditScheduler {
	if spec == "" {
		spec = DefaultAuditSpec
	}
	return &TaxonomyAuditScheduler{
		cron:            cron.New(),
		spec:            spec,
		timeout:         5 * time.Minute,
		taxonomyService: taxonomyService,
	}
}

func (s *TaxonomyAuditScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		logger.Error("Failed to add cron job for taxonomy audit", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Taxonomy audit scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// RunOnce performs a single audit.
func (s *TaxonomyAuditScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	logger.Info("Starting scheduled taxonomy audit")
	report, err := s.taxonomyService.Audit(ctx)
	if err != nil {
		logger.Error("Scheduled taxonomy audit failed", err)
		return
	}
	if len(report.Issues) > 0 {
		logger.Warn("Taxonomy audit found integrity violations", map[string]interface{}{
			"nodes":  report.NodeCount,
			"issues": len(report.Issues),
		})
		return
	}
	logger.Info("Taxonomy audit found no violations", map[string]interface{}{
		"nodes": report.NodeCount,
	})
}

// Stop waits for a running audit to finish.
func (s *TaxonomyAuditScheduler) Stop() {
	logger.Info("Stopping taxonomy audit scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Taxonomy audit scheduler stopped")
}
