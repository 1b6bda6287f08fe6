package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pooler-app/pooler/internal/logger"
	"github.com/pooler-app/pooler/internal/store"
	"github.com/pooler-app/pooler/models"
)

type reportService struct {
	reports  store.ReportRepository
	settings store.SettingsRepository
	engine   SyncEngine

	logger *logger.Logger
}

// NewReportService constructs the host-side report operations. Every local
// mutation is followed by a full-snapshot push; push failures are surfaced
// by the engine and retried on its cadence, so they never fail the local
// operation.
func NewReportService(reports store.ReportRepository, settings store.SettingsRepository, engine SyncEngine, log *logger.Logger) ReportService {
	return &reportService{reports: reports, settings: settings, engine: engine, logger: log}
}

// CreateReport implements [ReportService]. The id is derived from the
// creation time plus a random suffix and is immutable from here on; the
// timestamp doubles as the merge tie-breaker.
func (s *reportService) CreateReport(ctx context.Context, draft models.Report) (models.Report, error) {
	now := time.Now().UTC()
	draft.ID = newReportID(now)
	draft.Timestamp = now

	if draft.Severity == "" {
		draft.Severity = models.SeverityMedium
	}
	if draft.Status == "" {
		draft.Status = models.StatusActive
	}
	if draft.Confirmations < 0 {
		draft.Confirmations = 0
	}

	deviceID, err := s.settings.DeviceID(ctx)
	if err != nil {
		return models.Report{}, fmt.Errorf("resolve device id: %w", err)
	}
	draft.ReportedBy = deviceID

	if err = s.reports.SaveReports(ctx, draft); err != nil {
		return models.Report{}, fmt.Errorf("save new report: %w", err)
	}

	s.pushAfterWrite(ctx, draft.ID)
	return draft, nil
}

// GetAllReports implements [ReportService].
func (s *reportService) GetAllReports(ctx context.Context) ([]models.Report, error) {
	return s.reports.GetAllReports(ctx)
}

// ConfirmReport implements [ReportService]. Confirmations only ever grow
// locally; the record timestamp is deliberately left untouched, matching the
// wire format's accepted field-conflict limitation.
func (s *reportService) ConfirmReport(ctx context.Context, id string) (models.Report, error) {
	report, err := s.reports.GetReport(ctx, id)
	if err != nil {
		return models.Report{}, fmt.Errorf("load report %s: %w", id, err)
	}

	report.Confirmations++
	if err = s.reports.SaveReports(ctx, report); err != nil {
		return models.Report{}, fmt.Errorf("save confirmation for %s: %w", id, err)
	}

	s.pushAfterWrite(ctx, id)
	return report, nil
}

// SetReportStatus implements [ReportService].
func (s *reportService) SetReportStatus(ctx context.Context, id string, status models.ReportStatus) (models.Report, error) {
	switch status {
	case models.StatusActive, models.StatusCleaned, models.StatusDisputed:
	default:
		return models.Report{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	report, err := s.reports.GetReport(ctx, id)
	if err != nil {
		return models.Report{}, fmt.Errorf("load report %s: %w", id, err)
	}

	report.Status = status
	if err = s.reports.SaveReports(ctx, report); err != nil {
		return models.Report{}, fmt.Errorf("save status for %s: %w", id, err)
	}

	s.pushAfterWrite(ctx, id)
	return report, nil
}

func (s *reportService) pushAfterWrite(ctx context.Context, reportID string) {
	if err := s.engine.Push(ctx); err != nil {
		s.logger.Warn().Err(err).Str("report_id", reportID).Msg("push after local write")
	}
}

// newReportID derives a report id from the creation instant plus a short
// random suffix, keeping ids roughly sortable by creation time while staying
// collision-safe across devices.
func newReportID(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}
