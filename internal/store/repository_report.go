// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Pooler Authors

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/pooler-app/pooler/internal/logger"
	"github.com/pooler-app/pooler/models"
)

var reportColumns = []string{
	"id",
	"lat",
	"lng",
	"severity",
	"location_type",
	"notes",
	"notify_municipality",
	"timestamp",
	"reported_by",
	"status",
	"confirmations",
	"cleanup_requested",
}

type reportRepository struct {
	*DB
	logger *logger.Logger
}

func NewReportRepository(db *DB, logger *logger.Logger) ReportRepository {
	return &reportRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *reportRepository) GetAllReports(ctx context.Context) ([]models.Report, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.Select(reportColumns...).
		From("reports").
		OrderBy("timestamp DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build reports query: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "reportRepository.GetAllReports").
			Msg("failed to execute query for all reports")
		return nil, fmt.Errorf("failed to query all reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		report, scanErr := scanReport(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "reportRepository.GetAllReports").
				Msg("failed to scan report row")
			return nil, fmt.Errorf("failed to scan report: %w", scanErr)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}

	return reports, nil
}

func (r *reportRepository) GetReport(ctx context.Context, id string) (models.Report, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.Select(reportColumns...).
		From("reports").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Report{}, fmt.Errorf("failed to build report query: %w", err)
	}

	report, scanErr := scanReport(r.DB.QueryRowContext(ctx, query, args...))
	if scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return models.Report{}, fmt.Errorf("report %s: %w", id, ErrReportNotFound)
		}
		log.Err(scanErr).
			Str("func", "reportRepository.GetReport").
			Str("id", id).
			Msg("failed to scan requested report")
		return models.Report{}, fmt.Errorf("failed to get report %s: %w", id, scanErr)
	}

	return report, nil
}

func (r *reportRepository) SaveReports(ctx context.Context, reports ...models.Report) error {
	log := logger.FromContext(ctx)

	if len(reports) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "reportRepository.SaveReports").
			Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin save transaction: %w", err)
	}
	defer tx.Rollback()

	for _, report := range reports {
		query, args, buildErr := sq.Insert("reports").
			Columns(reportColumns...).
			Values(
				report.ID,
				report.Lat,
				report.Lng,
				string(report.Severity),
				report.LocationType,
				report.Notes,
				report.NotifyMunicipality,
				report.Timestamp.UTC().Format(time.RFC3339Nano),
				report.ReportedBy,
				string(report.Status),
				report.Confirmations,
				report.CleanupRequested,
			).
			Suffix(`ON CONFLICT(id) DO UPDATE SET
				lat = excluded.lat,
				lng = excluded.lng,
				severity = excluded.severity,
				location_type = excluded.location_type,
				notes = excluded.notes,
				notify_municipality = excluded.notify_municipality,
				timestamp = excluded.timestamp,
				reported_by = excluded.reported_by,
				status = excluded.status,
				confirmations = excluded.confirmations,
				cleanup_requested = excluded.cleanup_requested`).
			ToSql()
		if buildErr != nil {
			return fmt.Errorf("failed to build upsert for report %s: %w", report.ID, buildErr)
		}

		if _, execErr := tx.ExecContext(ctx, query, args...); execErr != nil {
			log.Err(execErr).
				Str("func", "reportRepository.SaveReports").
				Str("id", report.ID).
				Msg("failed to execute upsert for report")
			return fmt.Errorf("failed to save report (id=%s): %w", report.ID, execErr)
		}
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (models.Report, error) {
	var (
		report    models.Report
		severity  string
		status    string
		timestamp string
	)

	err := row.Scan(
		&report.ID,
		&report.Lat,
		&report.Lng,
		&severity,
		&report.LocationType,
		&report.Notes,
		&report.NotifyMunicipality,
		&timestamp,
		&report.ReportedBy,
		&status,
		&report.Confirmations,
		&report.CleanupRequested,
	)
	if err != nil {
		return models.Report{}, err
	}

	report.Severity = models.Severity(severity)
	report.Status = models.ReportStatus(status)
	report.Timestamp, err = time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return models.Report{}, fmt.Errorf("failed to parse report timestamp %q: %w", timestamp, err)
	}

	return report, nil
}
