package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"xiview-api/models"
)

// StatsCollector periodically exports pool statistics and upload counts.
type StatsCollector struct {
	DB      *gorm.DB
	Metrics *Metrics
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewStatsCollector erstellt einen neuen StatsCollector.
func NewStatsCollector(db *gorm.DB, m *Metrics, logger *zap.Logger) *StatsCollector {
	return &StatsCollector{DB: db, Metrics: m, Logger: logger, Timeout: 30 * time.Second}
}

// Collect takes one snapshot.
func (s *StatsCollector) Collect(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return fmt.Errorf("access sql pool: %w", err)
	}
	s.Metrics.SetPoolStats(sqlDB.Stats())

	db := s.DB.WithContext(ctx).Model(&models.Upload{})
	var uploads int64
	if err := db.Count(&uploads).Error; err != nil {
		return fmt.Errorf("count uploads: %w", err)
	}
	var projects int64
	if err := s.DB.WithContext(ctx).Model(&models.Upload{}).Distinct("project_id").Count(&projects).Error; err != nil {
		return fmt.Errorf("count projects: %w", err)
	}
	s.Metrics.SetUploadCounts(uploads, projects)
	return nil
}

// Schedule registers Collect with the cron scheduler.
func (s *StatsCollector) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
		defer cancel()
		if err := s.Collect(ctx); err != nil {
			s.Logger.Error("Stats collection failed", zap.Error(err))
			return
		}
		s.Logger.Debug("Stats collected")
	})
}
